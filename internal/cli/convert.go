package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// convertCommand creates the convert command.
func (c *CLI) convertCommand() *cobra.Command {
	var from, to string

	cmd := &cobra.Command{
		Use:   "convert VALUE",
		Short: "Convert a literal value to a type",
		Long: `Convert a literal value to the type given with --to.

VALUE is an HCL expression such as 42, "text", [1, "2"] or { a = true }.
Without --from the expression is converted directly. With --from it is first
converted to that type, then from that type to --to, exercising the converter
the registry resolves between the two.`,
		Example: `  convgraph convert '["1", 2]' --to '[]int'
  convgraph convert '"90s"' --from string --to time.Duration
  convgraph convert '{ a = "1" }' --from 'map[string]string' --to 'map[string]int' -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine()
			if err != nil {
				return err
			}
			res, err := e.Convert(args[0], from, to)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if c.jsonOutput() {
				return printJSON(w, res)
			}
			fmt.Fprintf(w, "%v\n", res.Value)
			c.Logger.Debug("converted", "input", res.Input, "output", res.Output, "converter", res.Converter)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "type to build from VALUE before converting")
	cmd.Flags().StringVar(&to, "to", "", "type to convert to (required)")
	cmd.MarkFlagRequired("to")

	return cmd
}
