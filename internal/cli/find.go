package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/convgraph/pkg/conversion"
)

type findOutput struct {
	Input     string `json:"input"`
	Output    string `json:"output"`
	Converter string `json:"converter"`
	Lazy      bool   `json:"lazy"`
	NilInput  bool   `json:"accepts_nil"`
}

// findCommand creates the find command.
func (c *CLI) findCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "find FROM TO",
		Short: "Show the converter resolved between two types",
		Long: `Resolve a converter from one type to another and print it.

Types are Go type expressions built from the names listed by "convgraph types",
for example int, []string, map[string]float64 or *time.Duration.`,
		Example: `  convgraph find int string
  convgraph find '[]string' '[]int' -o json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine()
			if err != nil {
				return err
			}
			conv, err := e.Resolve(args[0], args[1])
			if err != nil {
				return err
			}
			return c.printConverter(cmd, conv)
		},
	}
}

func (c *CLI) printConverter(cmd *cobra.Command, conv conversion.Converter) error {
	w := cmd.OutOrStdout()
	if c.jsonOutput() {
		return printJSON(w, findOutput{
			Input:     conv.Input().String(),
			Output:    conv.Output().String(),
			Converter: conv.String(),
			Lazy:      conv.Lazy(),
			NilInput:  conv.AcceptsNilInput(),
		})
	}

	printSuccess(w, "%s %s %s", StyleHighlight.Render(conv.Input().String()), iconArrow, StyleHighlight.Render(conv.Output().String()))
	printKeyValue(w, "converter", conv.String())
	if conv.Lazy() {
		printKeyValue(w, "lazy", "yes")
	}
	if conv.AcceptsNilInput() {
		printKeyValue(w, "nil input", "accepted")
	}
	return nil
}
