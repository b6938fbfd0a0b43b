package audit

import (
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/internradar/internal/model"
)

const (
	paneAll = iota
	paneMatched
)

type auditModel struct {
	platform model.Platform
	panes    [2]pane
	focus    int
	isSeen   func(id string) bool

	width, height int
	ready         bool

	// non-nil while a posting is open
	open     *model.Posting
	reader   viewport.Model
	showDesc bool

	wantQuit bool
}

func newAuditModel(platform model.Platform, all, matched []model.Posting, isSeen func(string) bool) auditModel {
	return auditModel{
		platform: platform,
		panes: [2]pane{
			newPane("All "+string(platform), all),
			newPane("Matched", matched),
		},
		isSeen: isSeen,
	}
}

func (m auditModel) Init() tea.Cmd {
	return nil
}

func (m auditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if m.open != nil {
			return m.updateReader(msg)
		}
		return m.updateBrowser(msg)
	}
	return m, nil
}

func (m auditModel) updateBrowser(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "b":
		return m, tea.Quit
	case "tab", "left", "right":
		m.focus = 1 - m.focus
	case "up", "k":
		m.panes[m.focus].move(-1)
	case "down", "j":
		m.panes[m.focus].move(1)
	case "enter":
		if p, ok := m.panes[m.focus].selected(); ok {
			m.openPosting(p)
		}
		return m, nil
	default:
		// pgup/pgdn/home/end scroll the focused pane.
		var cmd tea.Cmd
		m.panes[m.focus].vp, cmd = m.panes[m.focus].vp.Update(msg)
		return m, cmd
	}
	m.refresh()
	return m, nil
}

func (m auditModel) updateReader(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.wantQuit = true
		return m, tea.Quit
	case "esc", "backspace":
		m.open = nil
		return m, nil
	case "o":
		if m.open.URL != "" {
			openURL(m.open.URL)
		}
		return m, nil
	case "r":
		if m.open.Description != "" {
			m.showDesc = !m.showDesc
			m.reader.SetContent(m.renderPosting())
			m.reader.GotoTop()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.reader, cmd = m.reader.Update(msg)
	return m, cmd
}

func (m *auditModel) openPosting(p model.Posting) {
	m.open = &p
	m.showDesc = false
	m.reader = viewport.New(max(m.width-4, 20), max(m.height-4, 5))
	m.reader.SetContent(m.renderPosting())
}

// layout sizes both panes side by side, leaving room for borders, the
// header row and the footer.
func (m *auditModel) layout() {
	w := max((m.width-5)/2, 20)
	h := max(m.height-4, 5)
	if !m.ready {
		for i := range m.panes {
			m.panes[i].vp = viewport.New(w, h)
		}
		m.ready = true
	}
	for i := range m.panes {
		m.panes[i].resize(w, h)
	}
	if m.open != nil {
		m.reader.Width = max(m.width-4, 20)
		m.reader.Height = max(m.height-4, 5)
		m.reader.SetContent(m.renderPosting())
	}
	m.refresh()
}

func (m *auditModel) refresh() {
	for i := range m.panes {
		m.panes[i].refresh(i == m.focus, m.isSeen)
	}
}

// unseenMatches counts matched postings that were never notified.
func (m auditModel) unseenMatches() int {
	n := 0
	for _, p := range m.panes[paneMatched].postings {
		if m.isSeen == nil || !m.isSeen(p.ID) {
			n++
		}
	}
	return n
}

func (m auditModel) View() string {
	switch {
	case !m.ready:
		return "Initializing..."
	case m.open != nil:
		return m.viewReader()
	default:
		return m.viewBrowser()
	}
}

func (m auditModel) viewBrowser() string {
	var headers, columns []string
	for i, p := range m.panes {
		on := i == m.focus
		w := p.vp.Width
		headers = append(headers, lipgloss.NewStyle().Width(w+2).Render(focused(paneTitleStyle, on).Render(p.header())))
		columns = append(columns, focused(paneStyle, on).Width(w).Render(p.vp.View()))
	}

	all, matched := len(m.panes[paneAll].postings), len(m.panes[paneMatched].postings)
	footer := fmt.Sprintf("%d total | %d matched | %d new    tab switch  ↑/↓ move  enter open  esc back  q quit",
		all, matched, m.unseenMatches())

	return lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, headers[0], " ", headers[1]),
		lipgloss.JoinHorizontal(lipgloss.Top, columns[0], " ", columns[1]),
		footerStyle.Width(m.width).Render(footer),
	)
}

func (m auditModel) viewReader() string {
	keys := "o open link  esc back  ↑/↓ scroll  q quit"
	if m.open.Description != "" {
		keys = "o open link  r description  esc back  ↑/↓ scroll  q quit"
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		headingStyle.Render(fmt.Sprintf("%s internship", m.platform)),
		focused(paneStyle, true).Width(max(m.width-2, 20)).Render(m.reader.View()),
		footerStyle.Width(m.width).Render(keys),
	)
}

func (m auditModel) renderPosting() string {
	p := m.open
	var b strings.Builder

	section := func(fields ...[2]string) {
		wrote := false
		for _, f := range fields {
			if f[1] == "" {
				continue
			}
			b.WriteString(fieldLabelStyle.Render(f[0]) + f[1] + "\n")
			wrote = true
		}
		if wrote {
			b.WriteByte('\n')
		}
	}

	hiring, status := "", ""
	if p.ActivelyHiring {
		hiring = "actively hiring"
	}
	if m.isSeen != nil && m.isSeen(p.ID) {
		status = "already notified"
	}

	section(
		[2]string{"Role", p.Title},
		[2]string{"Company", p.Company},
		[2]string{"Location", p.Location},
		[2]string{"Stipend", p.Stipend},
		[2]string{"Duration", p.Duration},
		[2]string{"Type", p.Kind},
	)
	section(
		[2]string{"Start Date", p.StartDate},
		[2]string{"Apply By", p.ApplyBy},
		[2]string{"Posted", p.PostedOn},
		[2]string{"Hiring", hiring},
	)
	section(
		[2]string{"Posting ID", p.ID},
		[2]string{"Status", status},
		[2]string{"URL", p.URL},
	)

	switch {
	case p.Description == "":
	case m.showDesc:
		width := max(m.width-8, 20)
		b.WriteString(ruleStyle.Render(strings.Repeat("─", width)) + "\n\n")
		b.WriteString(wordWrap(p.Description, width) + "\n")
	default:
		b.WriteString(hintStyle.Render("press r to read the description") + "\n")
	}
	return b.String()
}

// wordWrap breaks text on spaces so no line exceeds width, unless a single
// word is longer.
func wordWrap(text string, width int) string {
	var b strings.Builder
	lineLen := 0
	for _, w := range strings.Fields(text) {
		switch {
		case lineLen == 0:
		case lineLen+1+len(w) > width:
			b.WriteByte('\n')
			lineLen = 0
		default:
			b.WriteByte(' ')
			lineLen++
		}
		b.WriteString(w)
		lineLen += len(w)
	}
	return b.String()
}

// openURL hands url to the desktop's default browser without waiting.
func openURL(url string) {
	var name string
	var args []string
	switch runtime.GOOS {
	case "darwin":
		name = "open"
	case "windows":
		name, args = "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		name = "xdg-open"
	}
	_ = exec.Command(name, append(args, url)...).Start()
}

// RunAuditTUI launches the split-pane view of one platform's postings and the
// subset the keyword filter keeps. isSeen may be nil.
// Returns wantQuit=true if the user pressed q/ctrl+c, false if they pressed esc to return to the picker.
func RunAuditTUI(platform model.Platform, all, matched []model.Posting, isSeen func(id string) bool) (bool, error) {
	result, err := tea.NewProgram(newAuditModel(platform, all, matched, isSeen), tea.WithAltScreen()).Run()
	if err != nil {
		return false, err
	}
	return result.(auditModel).wantQuit, nil
}
