// internal/tui/progress.go

// Package tui renders live run progress while the orchestrator streams
// events. It is a thin observer over the runner; all run state lives there.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/promptcheck/promptcheck/internal/api"
	"github.com/promptcheck/promptcheck/internal/runner"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	faintStyle  = lipgloss.NewStyle().Faint(true)
	cancelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type progressMsg runner.Progress

type resultMsg api.TestCaseResult

type doneMsg struct{}

// model is the Bubble Tea model for a run in flight.
type model struct {
	spinner      spinner.Model
	orchestrator *runner.Orchestrator

	progress   runner.Progress
	passed     int
	failed     int
	cancelling bool
	done       bool
}

func newModel(o *runner.Orchestrator) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return model{spinner: s, orchestrator: o}
}

// Init starts the spinner animation.
func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update folds orchestrator observations and key presses into the view state.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling {
				m.cancelling = true
				m.orchestrator.Cancel()
			}
			return m, nil
		}
	case progressMsg:
		m.progress = runner.Progress(msg)
		return m, nil
	case resultMsg:
		if msg.Passed {
			m.passed++
		} else {
			m.failed++
		}
		return m, nil
	case doneMsg:
		m.done = true
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

// View renders the spinner line, the current test case, and the tally.
func (m model) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.spinner.View())
	if m.cancelling {
		b.WriteString(cancelStyle.Render("Cancelling run..."))
	} else if m.progress.CurrentModel != "" {
		b.WriteString(titleStyle.Render(fmt.Sprintf("Running %s", m.progress.CurrentModel)))
	} else {
		b.WriteString(titleStyle.Render("Starting run"))
	}
	b.WriteString("\n")

	if m.progress.Total > 0 {
		b.WriteString(fmt.Sprintf("  case %d of %d", m.progress.Current, m.progress.Total))
		if m.progress.TestCaseName != "" {
			b.WriteString(faintStyle.Render("  " + m.progress.TestCaseName))
		}
		b.WriteString("\n")
	}

	b.WriteString(fmt.Sprintf("  %s  %s\n",
		passStyle.Render(fmt.Sprintf("%d passed", m.passed)),
		failStyle.Render(fmt.Sprintf("%d failed", m.failed)),
	))
	b.WriteString(faintStyle.Render("  press q or ctrl+c to cancel"))
	b.WriteString("\n")

	return b.String()
}

// Run executes fn under a live progress display. It installs observer
// callbacks on the orchestrator for the duration of fn and restores a clean
// terminal before returning fn's completion. The callbacks are cleared only
// after fn has resolved; SetCallbacks must not run concurrently with a run.
func Run(o *runner.Orchestrator, fn func(), opts ...tea.ProgramOption) error {
	program := tea.NewProgram(newModel(o), opts...)

	o.SetCallbacks(runner.Callbacks{
		OnProgress: func(p runner.Progress) { program.Send(progressMsg(p)) },
		OnResult:   func(r api.TestCaseResult) { program.Send(resultMsg(r)) },
	})

	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
		program.Send(doneMsg{})
	}()

	_, err := program.Run()
	if err != nil {
		// The display died before the run finished; abort the run so the
		// wait below cannot hang.
		o.Cancel()
	}
	<-done
	o.SetCallbacks(runner.Callbacks{})
	return err
}
