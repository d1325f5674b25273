package tui

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser on the alternate screen and blocks until the user quits
// or opts.Context is cancelled.
func Run(opts Options, in io.Reader, out io.Writer) error {
	m := New(opts)
	p := tea.NewProgram(m,
		tea.WithContext(m.ctx),
		tea.WithAltScreen(),
		tea.WithInput(in),
		tea.WithOutput(out),
	)
	m.notify.attach(p)

	_, err := p.Run()
	return err
}
