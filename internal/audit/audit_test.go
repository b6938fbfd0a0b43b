package audit

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amishk599/internradar/internal/model"
)

func samplePostings() []model.Posting {
	return []model.Posting{
		{ID: "a", Platform: model.PlatformInternshala, Title: "Data Science Intern", Company: "Acme", Location: "Remote", Stipend: "₹10,000 /month", URL: "https://internshala.com/internship/detail/a", Description: "Work with pandas and sklearn."},
		{ID: "b", Platform: model.PlatformInternshala, Title: "Web Developer", Company: "Beta"},
		{ID: "c", Platform: model.PlatformInternshala, Title: "ML Intern"},
	}
}

func sizedModel(t *testing.T, seen map[string]bool) auditModel {
	t.Helper()
	all := samplePostings()
	m := newAuditModel(model.PlatformInternshala, all, []model.Posting{all[0], all[2]}, func(id string) bool { return seen[id] })
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return next.(auditModel)
}

func press(t *testing.T, m auditModel, key string) auditModel {
	t.Helper()
	var msg tea.KeyMsg
	switch key {
	case "enter":
		msg = tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		msg = tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
	}
	next, _ := m.Update(msg)
	return next.(auditModel)
}

func TestAuditModel_ListView(t *testing.T) {
	m := sizedModel(t, map[string]bool{"a": true})

	view := m.View()
	assert.Contains(t, view, "All Internshala (3)")
	assert.Contains(t, view, "Matched (2)")
	assert.Contains(t, view, "3 total | 2 matched | 1 new")
	assert.Contains(t, view, "Acme · Remote · ₹10,000 /month")
}

func TestAuditModel_CursorClampsAndSwitchesPane(t *testing.T) {
	m := sizedModel(t, nil)

	for range 5 {
		m = press(t, m, "down")
	}
	assert.Equal(t, 2, m.panes[paneAll].cursor)

	m = press(t, m, "tab")
	assert.Equal(t, paneMatched, m.focus)
	m = press(t, m, "down")
	m = press(t, m, "down")
	assert.Equal(t, 1, m.panes[paneMatched].cursor)
	assert.Equal(t, 2, m.panes[paneAll].cursor, "unfocused pane keeps its cursor")
}

func TestAuditModel_DetailView(t *testing.T) {
	m := sizedModel(t, map[string]bool{"a": true})

	m = press(t, m, "tab")
	m = press(t, m, "enter")
	require.NotNil(t, m.open)
	assert.Equal(t, "a", m.open.ID)

	detail := m.renderPosting()
	assert.Contains(t, detail, "Data Science Intern")
	assert.Contains(t, detail, "already notified")
	assert.Contains(t, detail, "press r to read the description")

	m = press(t, m, "r")
	assert.True(t, m.showDesc)
	assert.Contains(t, m.renderPosting(), "Work with pandas and sklearn.")

	m = press(t, m, "esc")
	assert.Nil(t, m.open)
}

func TestAuditModel_QuitVersusBack(t *testing.T) {
	m := sizedModel(t, nil)
	assert.True(t, press(t, m, "q").wantQuit)
	assert.False(t, press(t, m, "esc").wantQuit)
}

func TestSubtitle(t *testing.T) {
	assert.Equal(t, "n/a", subtitle(model.Posting{}))
	assert.Equal(t, "Acme · Pune", subtitle(model.Posting{Company: "Acme", Location: "Pune"}))
}

func TestWordWrap(t *testing.T) {
	got := wordWrap("one two three four five", 9)
	assert.Equal(t, "one two\nthree\nfour five", got)
	for _, line := range strings.Split(got, "\n") {
		assert.LessOrEqual(t, len(line), 9, line)
	}
	assert.Equal(t, "", wordWrap("   ", 10))
}

func TestPane_EmptyIsSafe(t *testing.T) {
	p := newPane("Matched", nil)
	p.move(1)
	_, ok := p.selected()
	assert.False(t, ok)
	assert.Equal(t, "Matched (0)", p.header())
}

func TestPickerModel(t *testing.T) {
	m := pickerModel{platforms: []model.Platform{model.PlatformAICTE, model.PlatformInternshala}, keywords: []string{"ml"}, chosen: -1}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, 1, next.(pickerModel).chosen)
	assert.NotNil(t, cmd)
	assert.Contains(t, m.View(), "keywords: ml")
}

func TestLoaderModel_FetchDone(t *testing.T) {
	m := newLoaderModel(model.PlatformAICTE, func(context.Context) ([]model.Posting, error) { return nil, nil })
	assert.Contains(t, m.View(), "Scraping AICTE")

	next, _ := m.Update(fetchDoneMsg{err: errors.New("boom")})
	lm := next.(loaderModel)
	assert.True(t, lm.done)
	assert.EqualError(t, lm.err, "boom")
	assert.Empty(t, lm.View())

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.ErrorIs(t, next.(loaderModel).err, errCancelled)
}
