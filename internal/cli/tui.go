package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ExploreModel - Interactive type pair selection
// =============================================================================

type exploreStage int

const (
	stageInput exploreStage = iota
	stageOutput
	stageTree
)

// TreeFunc renders the conversion tree for a pair of type names.
type TreeFunc func(from, to string) (string, error)

// ExploreModel is the bubbletea model of the explore command. The user picks
// an input type, then an output type, and sees the conversion tree.
type ExploreModel struct {
	Names  []string
	Cursor int
	Offset int
	Height int

	Input  string
	Output string
	Tree   string
	Err    error

	stage  exploreStage
	render TreeFunc
}

// NewExploreModel creates a model listing names and rendering trees with
// render.
func NewExploreModel(names []string, render TreeFunc) ExploreModel {
	return ExploreModel{
		Names:  names,
		Height: 15,
		render: render,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.stage != stageTree && m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.stage != stageTree && m.Cursor < len(m.Names)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			return m.selectCurrent(), nil
		case "b", "backspace":
			return m.back(), nil
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m ExploreModel) selectCurrent() ExploreModel {
	if len(m.Names) == 0 {
		return m
	}
	switch m.stage {
	case stageInput:
		m.Input = m.Names[m.Cursor]
		m.stage = stageOutput
	case stageOutput:
		m.Output = m.Names[m.Cursor]
		m.Tree, m.Err = m.render(m.Input, m.Output)
		m.stage = stageTree
	}
	return m
}

func (m ExploreModel) back() ExploreModel {
	switch m.stage {
	case stageOutput:
		m.Input = ""
		m.stage = stageInput
	case stageTree:
		m.Output, m.Tree, m.Err = "", "", nil
		m.stage = stageOutput
	}
	return m
}

func (m ExploreModel) View() string {
	var b strings.Builder

	switch m.stage {
	case stageInput:
		b.WriteString(StyleTitle.Render("Select Input Type"))
	case stageOutput:
		b.WriteString(StyleTitle.Render("Select Output Type"))
		b.WriteString(listDimStyle.Render("  from " + m.Input))
	case stageTree:
		if m.Err != nil {
			b.WriteString(StyleWarning.Render(m.Err.Error()))
		} else {
			b.WriteString(m.Tree)
		}
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render("b back  q quit"))
		return b.String()
	}
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  b back  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Names))
	for i := m.Offset; i < end; i++ {
		if i == m.Cursor {
			b.WriteString(listSelectedStyle.Render("▸ " + m.Names[i]))
		} else {
			b.WriteString(listNormalStyle.Render("  " + m.Names[i]))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Names))))
	return b.String()
}
