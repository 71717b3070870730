package output

import (
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// doneMsg carries the result of the background work into the spinner loop
type doneMsg struct {
	err error
}

// spinnerModel animates a braille spinner next to a status message while
// a long-running call (the generation request) is in flight
type spinnerModel struct {
	spinner spinner.Model
	message string
	err     error
}

func newSpinnerModel(message string) spinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)
	return spinnerModel{spinner: s, message: message}
}

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case doneMsg:
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		// Ignore input; the run is cancelled via Ctrl-C on the process
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m spinnerModel) View() string {
	if m.err != nil {
		return ""
	}
	return m.spinner.View() + m.message
}

// RunWithSpinner executes fn while animating a spinner with the given
// message. Falls back to running fn directly when no terminal is attached.
func RunWithSpinner(message string, fn func() error) error {
	if fi, err := os.Stdout.Stat(); err != nil || (fi.Mode()&os.ModeCharDevice) == 0 {
		return fn()
	}

	program := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(os.Stderr))

	go func() {
		program.Send(doneMsg{err: fn()})
	}()

	final, err := program.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(spinnerModel); ok {
		return m.err
	}
	return nil
}
