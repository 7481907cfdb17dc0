package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samirrijal/snippetmap/internal/core/ports"
)

// App runs a Model inside a bubbletea program.
type App struct {
	model   *Model
	program *tea.Program
	loop    *Loop
}

// NewApp creates the program. Extra program options are passed through,
// e.g. tea.WithAltScreen.
func NewApp(opts Options, progOpts ...tea.ProgramOption) *App {
	m := NewModel(opts)
	p := tea.NewProgram(m, progOpts...)
	return &App{model: m, program: p, loop: &Loop{send: p.Send}}
}

// Model returns the surface and UI ports of the app.
func (a *App) Model() *Model { return a.model }

// Loop returns the task queue that runs continuations on the program loop.
func (a *App) Loop() *Loop { return a.loop }

// Run blocks until the program exits. start runs on the program loop before
// the first key is handled.
func (a *App) Run(start func()) error {
	a.model.onStart = start
	_, err := a.program.Run()
	return err
}

// Loop submits work to goroutines and delivers continuations back to the
// program as messages.
type Loop struct {
	send func(tea.Msg)
}

// NewLoop returns a loop delivering continuations through send.
func NewLoop(send func(tea.Msg)) *Loop {
	return &Loop{send: send}
}

func (l *Loop) Submit(work func() func()) {
	go func() {
		l.send(callbackMsg{fn: work()})
	}()
}

var _ ports.Loop = (*Loop)(nil)
