package audit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/internradar/internal/model"
)

// errCancelled is returned when the user aborts a fetch.
var errCancelled = errors.New("cancelled")

type fetchDoneMsg struct {
	postings []model.Posting
	err      error
}

type loaderModel struct {
	platform model.Platform
	fetchFn  func(ctx context.Context) ([]model.Posting, error)
	spinner  spinner.Model
	started  time.Time
	result   []model.Posting
	err      error
	done     bool
}

func newLoaderModel(platform model.Platform, fetchFn func(ctx context.Context) ([]model.Posting, error)) loaderModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))
	return loaderModel{
		platform: platform,
		fetchFn:  fetchFn,
		spinner:  s,
		started:  time.Now(),
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.spinner.Tick)
}

func (m loaderModel) doFetch() tea.Cmd {
	fetchFn := m.fetchFn
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		postings, err := fetchFn(ctx)
		return fetchDoneMsg{postings: postings, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.postings
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = errCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	elapsed := time.Since(m.started).Round(time.Second)
	return fmt.Sprintf("%s Scraping %s... %s\n", m.spinner.View(), m.platform, elapsed)
}

// RunLoader shows a spinner while fetching postings. It renders inline (no alt screen).
func RunLoader(platform model.Platform, fetchFn func(ctx context.Context) ([]model.Posting, error)) ([]model.Posting, error) {
	result, err := tea.NewProgram(newLoaderModel(platform, fetchFn)).Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
