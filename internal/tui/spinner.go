package tui

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// ErrInterrupted is returned when the user stops the spinner with ctrl+c.
var ErrInterrupted = errors.New("interrupted")

// workDoneMsg is sent when the spinner's work function returns.
type workDoneMsg struct{}

// spinnerModel shows a spinner next to a label until work finishes.
type spinnerModel struct {
	spinner     spinner.Model
	label       string
	done        bool
	interrupted bool
}

func newSpinnerModel(label string) spinnerModel {
	return spinnerModel{
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(cyan)),
		),
		label: label,
	}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.interrupted = true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return m.spinner.View() + " " + m.label + "\n"
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// RunWithSpinner runs work while drawing a spinner with label on w. When w is
// not a terminal work runs without any output. Interrupting the spinner
// cancels the context passed to work.
func RunWithSpinner(ctx context.Context, w io.Writer, label string, work func(context.Context) error) error {
	if !IsTerminal(w) {
		return work(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newSpinnerModel(label),
		tea.WithOutput(w),
		tea.WithContext(ctx),
	)

	result := make(chan error, 1)
	go func() {
		err := work(ctx)
		result <- err
		p.Send(workDoneMsg{})
	}()

	final, runErr := p.Run()
	interrupted := false
	if m, ok := final.(spinnerModel); ok && m.interrupted {
		interrupted = true
	}
	if runErr != nil || interrupted {
		cancel()
	}
	workErr := <-result

	switch {
	case interrupted:
		return ErrInterrupted
	case workErr != nil:
		return workErr
	case runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled):
		return runErr
	}
	return nil
}
