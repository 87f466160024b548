package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/convgraph/internal/engine"
)

type typeRow struct {
	Name       string `json:"name"`
	Type       string `json:"type"`
	Kind       string `json:"kind"`
	Converters int    `json:"converters"`
}

// typesCommand creates the types command.
func (c *CLI) typesCommand() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the type names usable in type expressions",
		Long: `List the names of the type catalog: the predeclared Go types, a few
standard library types, cty.Value and the aliases of the configuration file.
The converters column counts the converters the registry lists into a type,
including those offered by providers and inherited from subtypes.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := c.newEngine()
			if err != nil {
				return err
			}
			rows := typeRows(e, filter)

			w := cmd.OutOrStdout()
			if c.jsonOutput() {
				return printJSON(w, rows)
			}
			if len(rows) == 0 {
				printInfo(w, "No types match %q", filter)
				return nil
			}
			fmt.Fprintln(w, renderTypeTable(rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "only list names containing this text")
	return cmd
}

func typeRows(e *engine.Engine, filter string) []typeRow {
	var rows []typeRow
	for _, name := range e.Catalog.Names() {
		if filter != "" && !strings.Contains(name, filter) {
			continue
		}
		t, _ := e.Catalog.Lookup(name)
		rows = append(rows, typeRow{
			Name:       name,
			Type:       t.String(),
			Kind:       t.Kind().String(),
			Converters: len(e.Registry.Converters(t)),
		})
	}
	return rows
}

// headerRow is the row index lipgloss passes to StyleFunc for the header.
const headerRow = -1

func renderTypeTable(rows []typeRow) string {
	data := make([][]string, len(rows))
	for i, r := range rows {
		data[i] = []string{r.Name, r.Type, r.Kind, fmt.Sprint(r.Converters)}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Name", "Type", "Kind", "Converters").
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == headerRow:
				return headerStyle
			case col == 0:
				return lipgloss.NewStyle().Foreground(colorCyan)
			case col == 3 && rows[row].Converters == 0:
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle()
		}).
		Render()
}
