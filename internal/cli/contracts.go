package cli

import (
	"context"
	"fmt"
	"strconv"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/layout"
	"github.com/matzehuels/auditgraph/pkg/pipeline"
	"github.com/matzehuels/auditgraph/pkg/view"
)

// contractsCommand creates the contracts command for inspecting and
// filtering the contracts of a model.
func (c *CLI) contractsCommand() *cobra.Command {
	var (
		output  string
		list    bool
		noCache bool
		flags   layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "contracts [model.json]",
		Short: "List contracts or choose which ones to lay out",
		Long: `List contracts or choose which ones to lay out.

With --list the contracts of the model are printed with their kind, function
count and default visibility. Otherwise an interactive picker opens; enter
lays out the chosen contracts and writes the diagram.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := flags.options(cmd, c)
			if err := opts.ValidateAndSetDefaults(); err != nil {
				return err
			}
			g, err := readModel(args[0])
			if err != nil {
				return err
			}
			if list {
				printContracts(g.Contracts(), opts.Filters(g.Contracts()))
				return nil
			}
			return c.runContracts(cmd.Context(), g, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().BoolVarP(&list, "list", "l", false, "print the contracts and exit")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.diagram.json)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	flags.register(cmd)

	return cmd
}

// runContracts opens the picker and lays out the confirmed selection.
func (c *CLI) runContracts(ctx context.Context, g *callgraph.Graph, input string, opts pipeline.Options, output string, noCache bool) error {
	contracts := g.Contracts()
	initial := view.State{
		Filters:   opts.Filters(contracts),
		CodeView:  opts.CodeView,
		Direction: layout.Direction(opts.Direction),
	}

	final, err := tea.NewProgram(NewContractFilterModel(contracts, initial), tea.WithContext(ctx)).Run()
	if err != nil {
		return fmt.Errorf("contract picker: %w", err)
	}
	m, ok := final.(ContractFilterModel)
	if !ok || !m.Confirmed {
		printInfo("Cancelled")
		return nil
	}

	return c.runLayoutGraph(ctx, g, input, applyState(opts, contracts, m.State()), output, noCache)
}

// applyState returns opts with the filter and display mode of s. Every
// contract gets an explicit visibility, so defaults cannot override s.
func applyState(opts pipeline.Options, contracts []callgraph.Contract, s view.State) pipeline.Options {
	opts.Hide, opts.Show = nil, nil
	for _, ct := range contracts {
		if s.Filters.Visible(ct.Name) {
			opts.Show = append(opts.Show, ct.Name)
		} else {
			opts.Hide = append(opts.Hide, ct.Name)
		}
	}
	opts.CodeView = s.CodeView
	opts.Direction = string(s.Direction)
	return opts
}

// printContracts prints the contracts as a table.
func printContracts(contracts []callgraph.Contract, filters view.Filters) {
	rows := make([][]string, 0, len(contracts))
	for _, ct := range contracts {
		mark := "·"
		if filters.Visible(ct.Name) {
			mark = "✓"
		}
		rows = append(rows, []string{"", mark, ct.Name, string(ct.Kind), strconv.Itoa(ct.FunctionCount)})
	}
	t := contractTable(rows).StyleFunc(func(row, col int) lipgloss.Style {
		if row == -1 {
			return listHeaderStyle
		}
		if row < len(contracts) && !filters.Visible(contracts[row].Name) {
			return lipgloss.NewStyle().Foreground(colorDim)
		}
		return lipgloss.NewStyle()
	})
	fmt.Println(t.Render())
}
