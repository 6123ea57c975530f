package ui

import (
	"os"

	tea "charm.land/bubbletea/v2"
	"golang.org/x/term"
)

// Run starts the bubbletea program and unmounts the model's session when it
// exits. Explicit Width/Height options force the window size.
func Run(m *Model, opts ...tea.ProgramOption) error {
	defer m.Close()
	if m.opts.Width > 0 || m.opts.Height > 0 {
		w, h := TerminalSize(m.opts.Width, m.opts.Height)
		opts = append(opts, tea.WithWindowSize(w, h))
	}
	_, err := tea.NewProgram(m, opts...).Run()
	return err
}

// Snapshot loads synchronously and renders one frame without a program.
func Snapshot(m *Model) string {
	defer m.Close()
	m.LoadNow()
	return m.Render()
}

// TerminalSize fills zero dimensions from the terminal on stdout, falling
// back to 80x24.
func TerminalSize(width, height int) (int, int) {
	if width <= 0 || height <= 0 {
		if w, h, err := getTermSize(int(os.Stdout.Fd())); err == nil {
			if width <= 0 {
				width = w
			}
			if height <= 0 {
				height = h
			}
		}
	}
	if width <= 0 {
		width = defaultWidth
	}
	if height <= 0 {
		height = defaultHeight
	}
	return width, height
}

// getTermSize is swapped in tests.
var getTermSize = term.GetSize
