package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

type dialogKind int

const (
	dialogConfirm dialogKind = iota
	dialogCoordinates
)

// dialog is a queued modal. Only the head of the queue receives keys.
type dialog struct {
	kind  dialogKind
	title string
	text  string

	answer func(ok bool)

	markerID string
	inputs   []textinput.Model
	focus    int
	submit   func(lat, lng string)
	cancel   func()
}

func (m *Model) dialog() *dialog {
	if len(m.dialogs) == 0 {
		return nil
	}
	return m.dialogs[0]
}

func (m *Model) popDialog() {
	m.dialogs = m.dialogs[1:]
}

// Confirm queues a yes/no dialog.
func (m *Model) Confirm(title, text string, answer func(ok bool)) {
	m.dialogs = append(m.dialogs, &dialog{kind: dialogConfirm, title: title, text: text, answer: answer})
}

// EditCoordinates queues the coordinate form of mv, prefilled with its
// current position.
func (m *Model) EditCoordinates(mv *domain.MarkerView, submit func(lat, lng string), cancel func()) {
	lat := textinput.New()
	lat.Prompt = "lat › "
	lat.Placeholder = "-90..90"
	lat.CharLimit = 24
	lat.SetValue(mv.Position.LatString())
	lat.Focus()

	lng := textinput.New()
	lng.Prompt = "lng › "
	lng.Placeholder = "-180..180"
	lng.CharLimit = 24
	lng.SetValue(mv.Position.LngString())

	m.dialogs = append(m.dialogs, &dialog{
		kind:     dialogCoordinates,
		title:    "Edit coordinates",
		text:     mv.Popup.Title,
		markerID: mv.ID(),
		inputs:   []textinput.Model{lat, lng},
		submit:   submit,
		cancel:   cancel,
	})
}

func (m *Model) handleDialogKey(d *dialog, msg tea.KeyMsg) tea.Cmd {
	if msg.String() == "ctrl+c" {
		m.closing = true
		return nil
	}
	if d.kind == dialogConfirm {
		switch msg.String() {
		case "y", "Y", "enter":
			m.popDialog()
			d.answer(true)
		case "n", "N", "esc":
			m.popDialog()
			d.answer(false)
		}
		return nil
	}

	switch msg.String() {
	case "esc":
		m.popDialog()
		if d.cancel != nil {
			d.cancel()
		}
		return nil
	case "enter":
		m.popDialog()
		d.submit(d.inputs[0].Value(), d.inputs[1].Value())
		return nil
	case "tab", "shift+tab", "up", "down":
		d.inputs[d.focus].Blur()
		d.focus = (d.focus + 1) % len(d.inputs)
		return d.inputs[d.focus].Focus()
	}
	var cmd tea.Cmd
	d.inputs[d.focus], cmd = d.inputs[d.focus].Update(msg)
	return cmd
}
