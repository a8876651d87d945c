package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/auditgraph/pkg/callgraph"
	"github.com/matzehuels/auditgraph/pkg/layout"
	"github.com/matzehuels/auditgraph/pkg/view"
)

// List styles
var (
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
	listHeaderStyle = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
)

// =============================================================================
// ContractFilterModel - Interactive contract selection
// =============================================================================

// ContractFilterModel is the bubbletea model for choosing visible contracts
// and the display mode. Every change goes through History, so it can be
// undone.
type ContractFilterModel struct {
	Contracts []callgraph.Contract
	History   *view.History
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewContractFilterModel creates a filter model starting at initial.
func NewContractFilterModel(contracts []callgraph.Contract, initial view.State) ContractFilterModel {
	return ContractFilterModel{
		Contracts: contracts,
		History:   view.NewHistory(initial),
		Height:    15,
	}
}

// State returns the current view state.
func (m ContractFilterModel) State() view.State {
	return m.History.Current()
}

func (m ContractFilterModel) Init() tea.Cmd {
	return nil
}

func (m ContractFilterModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Contracts)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Contracts) > 0 {
				m.History.Apply(view.ToggleContract(m.Contracts[m.Cursor].Name))
			}
		case "a":
			m.History.Apply(view.SetVisible(true, m.names()...))
		case "n":
			m.History.Apply(view.SetVisible(false, m.names()...))
		case "c":
			m.History.Apply(view.SetCodeView(!m.State().CodeView))
		case "d":
			dir := layout.TopToBottom
			if m.State().Direction == layout.TopToBottom {
				dir = layout.LeftToRight
			}
			m.History.Apply(view.SetDirection(dir))
		case "u":
			m.History.Undo()
		case "r", "ctrl+r":
			m.History.Redo()
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ContractFilterModel) names() []string {
	names := make([]string, len(m.Contracts))
	for i, c := range m.Contracts {
		names[i] = c.Name
	}
	return names
}

func (m ContractFilterModel) View() string {
	var b strings.Builder
	state := m.State()

	b.WriteString(StyleTitle.Render("Select Contracts"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  a/n all/none  c code view  d direction  u/r undo/redo  ⏎ lay out  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Contracts) {
		end = len(m.Contracts)
	}
	rows := make([][]string, 0, end-m.Offset)
	for i := m.Offset; i < end; i++ {
		ct := m.Contracts[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := "·"
		if state.Filters.Visible(ct.Name) {
			mark = "✓"
		}
		rows = append(rows, []string{cursor, mark, ct.Name, string(ct.Kind), strconv.Itoa(ct.FunctionCount)})
	}

	t := contractTable(rows).StyleFunc(func(row, col int) lipgloss.Style {
		if row == -1 {
			return listHeaderStyle
		}
		idx := m.Offset + row
		if idx >= len(m.Contracts) {
			return lipgloss.NewStyle()
		}
		base := lipgloss.NewStyle()
		if col == 3 || col == 4 {
			base = base.Foreground(colorGray)
		}
		if !state.Filters.Visible(m.Contracts[idx].Name) {
			base = base.Foreground(colorDim)
		} else if col == 1 || col == 2 {
			base = base.Foreground(colorGreen)
		}
		if idx == m.Cursor {
			base = base.Bold(true)
		}
		return base
	})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	mode := "function"
	if state.CodeView {
		mode = "code"
	}
	status := fmt.Sprintf("  [%d/%d]  %d hidden  view: %s  direction: %s",
		m.Cursor+1, len(m.Contracts), len(state.Filters.Hidden()), mode, state.Direction)
	if m.History.CanUndo() {
		status += "  u undo"
	}
	if m.History.CanRedo() {
		status += "  r redo"
	}
	b.WriteString(listDimStyle.Render(status))

	return b.String()
}

// contractTable returns the table used by the picker and by --list.
func contractTable(rows [][]string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Shown", "Contract", "Kind", "Functions").
		Rows(rows...)
}
