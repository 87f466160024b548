package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// treeCommand creates the tree command.
func (c *CLI) treeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tree FROM TO",
		Short: "Print the conversion tree explored for a pair of types",
		Long: `Resolve FROM to TO and print the conversion tree of TO as the registry
explored it. The tree is rooted at TO; each indented type converts into the
type above it. Types on the resolved path are highlighted, types reachable
only through lazy converters are marked (lazy).`,
		Example: `  convgraph tree int string
  convgraph tree cty.Value '[]int' -o json`,
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: c.completeTypes,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine()
			if err != nil {
				return err
			}
			in, out, err := e.ParsePair(args[0], args[1])
			if err != nil {
				return err
			}

			snap := e.Registry.Snapshot(in, out)
			w := cmd.OutOrStdout()
			if c.jsonOutput() {
				return printJSON(w, snap)
			}
			fmt.Fprint(w, styleTree(snap.String()))
			return nil
		},
	}
}
