package audit

import "github.com/charmbracelet/lipgloss"

const (
	accent = lipgloss.Color("36")  // teal
	muted  = lipgloss.Color("242") // gray
	bright = lipgloss.Color("231")
	band   = lipgloss.Color("23") // dark teal selection band
)

var (
	paneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted)

	paneTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(muted)

	footerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(lipgloss.Color("252")).
			Background(lipgloss.Color("235"))

	rowTitleStyle    = lipgloss.NewStyle().Bold(true)
	rowSubtitleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	rowCursorStyle   = lipgloss.NewStyle().Background(band).Foreground(bright)
	seenBadgeStyle   = lipgloss.NewStyle().Foreground(muted).Italic(true)

	fieldLabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Width(14)

	headingStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(bright).
			MarginBottom(1)

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)

	ruleStyle = lipgloss.NewStyle().Foreground(muted)
)

// focused returns s highlighted for the pane that has keyboard focus.
func focused(s lipgloss.Style, on bool) lipgloss.Style {
	if !on {
		return s
	}
	return s.BorderForeground(accent).Foreground(accent)
}
