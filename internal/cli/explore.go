package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// exploreCommand creates the interactive explore command.
func (c *CLI) exploreCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "explore",
		Short: "Pick two types interactively and inspect their conversion tree",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine()
			if err != nil {
				return err
			}

			render := func(from, to string) (string, error) {
				in, out, err := e.ParsePair(from, to)
				if err != nil {
					return "", err
				}
				return styleTree(e.Registry.DebugTree(in, out)), nil
			}

			m := NewExploreModel(e.Catalog.Names(), render)
			p := tea.NewProgram(m,
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			if fm, ok := final.(ExploreModel); ok && fm.Output != "" {
				c.Logger.Debug("explored", "input", fm.Input, "output", fm.Output)
			}
			return nil
		},
	}
}
