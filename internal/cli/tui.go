package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/lineage/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// RegionListModel - Interactive region selection
// =============================================================================

// RegionChoice is one row of the region picker.
type RegionChoice struct {
	Name      string
	Districts int
	Events    int
	Roots     int
	Fallback  bool
}

// regionChoices summarizes computed regions for the picker.
func regionChoices(result *pipeline.Result) []RegionChoice {
	choices := make([]RegionChoice, len(result.Regions))
	for i, rr := range result.Regions {
		choices[i] = RegionChoice{
			Name:      rr.Name,
			Districts: rr.Graph.NodeCount(),
			Events:    rr.Graph.EdgeCount(),
			Roots:     len(rr.Roots),
			Fallback:  rr.Fallback,
		}
	}
	return choices
}

// RegionListModel is the bubbletea model for interactive region selection.
type RegionListModel struct {
	Regions  []RegionChoice
	Cursor   int
	Selected string
	Height   int
	Offset   int
}

// NewRegionListModel creates a new region list model.
func NewRegionListModel(regions []RegionChoice) RegionListModel {
	return RegionListModel{
		Regions: regions,
		Height:  15,
	}
}

func (m RegionListModel) Init() tea.Cmd {
	return nil
}

func (m RegionListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Regions)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "home", "g":
			m.Cursor, m.Offset = 0, 0
		case "end", "G":
			m.Cursor = max(len(m.Regions)-1, 0)
			m.Offset = max(m.Cursor-m.Height+1, 0)
		case "enter":
			if len(m.Regions) == 0 {
				return m, tea.Quit
			}
			m.Selected = m.Regions[m.Cursor].Name
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
		if m.Cursor >= m.Offset+m.Height {
			m.Offset = m.Cursor - m.Height + 1
		}
	}
	return m, nil
}

func (m RegionListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Region"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Regions))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		r := m.Regions[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		roots := strconv.Itoa(r.Roots)
		if r.Fallback {
			roots = "fallback"
		}
		rows = append(rows, []string{cursor, r.Name, strconv.Itoa(r.Districts), strconv.Itoa(r.Events), roots})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Region", "Districts", "Events", "Roots").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			idx := m.Offset + row
			switch {
			case idx == m.Cursor:
				return listSelectedStyle
			case idx < len(m.Regions) && m.Regions[idx].Fallback && col == 4:
				return StyleWarning
			case col >= 2:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", min(m.Cursor+1, len(m.Regions)), len(m.Regions))))

	return b.String()
}
