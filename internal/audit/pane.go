package audit

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/amishk599/internradar/internal/model"
)

// rowHeight is the number of lines one posting takes in a pane: title,
// subtitle and a spacer.
const rowHeight = 3

// pane is one scrollable column of postings with its own cursor.
type pane struct {
	title    string
	postings []model.Posting
	cursor   int
	vp       viewport.Model
}

func newPane(title string, postings []model.Posting) pane {
	return pane{title: title, postings: postings}
}

func (p *pane) resize(width, height int) {
	p.vp.Width = width
	p.vp.Height = height
}

// move shifts the cursor by delta, clamped to the list, and scrolls so the
// cursor row stays in view.
func (p *pane) move(delta int) {
	if len(p.postings) == 0 {
		return
	}
	p.cursor = min(max(p.cursor+delta, 0), len(p.postings)-1)

	top := p.cursor * rowHeight
	bottom := top + rowHeight - 1
	switch {
	case top < p.vp.YOffset:
		p.vp.SetYOffset(top)
	case bottom >= p.vp.YOffset+p.vp.Height:
		p.vp.SetYOffset(bottom - p.vp.Height + 1)
	}
}

func (p pane) selected() (model.Posting, bool) {
	if len(p.postings) == 0 {
		return model.Posting{}, false
	}
	return p.postings[p.cursor], true
}

func (p pane) header() string {
	return fmt.Sprintf("%s (%d)", p.title, len(p.postings))
}

// refresh re-renders the rows into the viewport.
func (p *pane) refresh(active bool, isSeen func(string) bool) {
	if len(p.postings) == 0 {
		p.vp.SetContent("  (no postings)")
		return
	}

	var b strings.Builder
	for i, posting := range p.postings {
		if i > 0 {
			b.WriteString("\n\n")
		}
		marker, title, sub := "  ", rowTitleStyle, rowSubtitleStyle
		if active && i == p.cursor {
			marker = "▌ "
			title = title.Inherit(rowCursorStyle)
			sub = sub.Inherit(rowCursorStyle)
		}

		b.WriteString(marker + title.Render(posting.Title))
		if isSeen != nil && isSeen(posting.ID) {
			b.WriteString(" " + seenBadgeStyle.Render("seen"))
		}
		b.WriteString("\n" + marker + sub.Render(subtitle(posting)))
	}
	p.vp.SetContent(b.String())
}

// subtitle is the one-line "company · location · stipend" summary.
func subtitle(p model.Posting) string {
	var parts []string
	for _, s := range []string{p.Company, p.Location, p.Stipend} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	if len(parts) == 0 {
		return "n/a"
	}
	return strings.Join(parts, " · ")
}
