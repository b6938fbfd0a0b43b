package audit

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/internradar/internal/model"
)

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 4)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 2)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	platforms []model.Platform
	keywords  []string
	cursor    int
	chosen    int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.platforms)-1 {
				m.cursor++
			}
		case "enter":
			if len(m.platforms) > 0 {
				m.chosen = m.cursor
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

func (m pickerModel) View() string {
	var b strings.Builder
	b.WriteString(pickerTitleStyle.Render("Keyword Audit: select a platform"))
	b.WriteString("\n")

	for i, p := range m.platforms {
		label := string(p)
		if i == m.cursor {
			b.WriteString(pickerSelectedStyle.Render("> "+label) + "\n")
		} else {
			b.WriteString(pickerItemStyle.Render(label) + "\n")
		}
	}

	kw := "(none, everything matches)"
	if len(m.keywords) > 0 {
		kw = strings.Join(m.keywords, ", ")
	}
	b.WriteString(pickerHintStyle.Render(fmt.Sprintf("keywords: %s", kw)))
	b.WriteString(pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit"))
	return b.String()
}

// RunPlatformPicker shows an interactive platform selector.
// Returns the index of the chosen platform, or -1 if the user quit.
func RunPlatformPicker(platforms []model.Platform, keywords []string) (int, error) {
	m := pickerModel{
		platforms: platforms,
		keywords:  keywords,
		chosen:    -1,
	}

	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	if final.chosen < 0 {
		return -1, nil
	}
	return final.chosen, nil
}
