package tui

import (
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
)

const (
	sidebarWidth = 34
	footerRows   = 3
	toastTTL     = 4 * time.Second
	tickEvery    = 500 * time.Millisecond
)

type (
	startMsg    struct{}
	callbackMsg struct{ fn func() }
	tickMsg     time.Time
)

type toast struct {
	notice domain.Notice
	until  time.Time
}

type dragState struct {
	id     string
	origin domain.LatLng
}

// Options configures the terminal map.
type Options struct {
	Title  string
	Center domain.LatLng
	Zoom   int
	// OnReload is bound to the reload key.
	OnReload func()
}

// Model is the terminal map surface. It implements the surface, notifier,
// prompter and legend ports; every method must be called on the program
// loop.
type Model struct {
	title string
	vp    Viewport

	width, height int

	handlers map[domain.EventKind]ports.Handler
	markers  map[string]*domain.MarkerView
	order    []string

	cursorCol, cursorRow int
	selected             string
	drag                 *dragState

	status string
	total  string
	legend domain.Legend
	toasts []toast

	dialogs []*dialog

	onStart  func()
	onReload func()
	closing  bool
	now      func() time.Time
}

// NewModel returns a model sized for an 80x24 terminal until the first
// window size message arrives.
func NewModel(opts Options) *Model {
	title := opts.Title
	if title == "" {
		title = "Snippet map"
	}
	m := &Model{
		title:    title,
		vp:       Viewport{Center: opts.Center, Zoom: opts.Zoom},
		handlers: make(map[domain.EventKind]ports.Handler),
		markers:  make(map[string]*domain.MarkerView),
		onReload: opts.OnReload,
		now:      time.Now,
	}
	m.vp.SetZoom(opts.Zoom)
	m.resize(80, 24)
	return m
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(func() tea.Msg { return startMsg{} }, tick())
}

func tick() tea.Cmd {
	return tea.Tick(tickEvery, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case startMsg:
		if m.onStart != nil {
			m.onStart()
		}
	case callbackMsg:
		if msg.fn != nil {
			msg.fn()
		}
	case tickMsg:
		m.pruneToasts(time.Time(msg))
		cmd = tick()
	case tea.KeyMsg:
		if d := m.dialog(); d != nil {
			cmd = m.handleDialogKey(d, msg)
		} else {
			m.handleKey(msg)
		}
	}
	if m.closing {
		return m, tea.Quit
	}
	return m, cmd
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.vp.Cols = max(10, w-sidebarWidth-1)
	m.vp.Rows = max(5, h-footerRows)
	m.cursorCol, m.cursorRow = m.vp.Cols/2, m.vp.Rows/2
}

func (m *Model) emit(ev domain.MapEvent) {
	if h := m.handlers[ev.Kind]; h != nil {
		h(ev)
	}
}

func (m *Model) cursor() domain.LatLng {
	return m.vp.Unproject(m.cursorCol, m.cursorRow)
}

// markerAtCursor returns the top-most marker drawn under the cursor.
func (m *Model) markerAtCursor() *domain.MarkerView {
	for i := len(m.order) - 1; i >= 0; i-- {
		mv := m.markers[m.order[i]]
		if c, r, ok := m.vp.Cell(mv.Position); ok && c == m.cursorCol && r == m.cursorRow {
			return mv
		}
	}
	return nil
}

func (m *Model) handleKey(msg tea.KeyMsg) {
	switch msg.String() {
	case "q", "ctrl+c":
		m.closing = true
	case "up", "k":
		m.moveCursor(0, -1)
	case "down", "j":
		m.moveCursor(0, 1)
	case "left", "h":
		m.moveCursor(-1, 0)
	case "right", "l":
		m.moveCursor(1, 0)
	case "shift+up", "K":
		m.pan(0, -m.vp.Rows/4)
	case "shift+down", "J":
		m.pan(0, m.vp.Rows/4)
	case "shift+left", "H":
		m.pan(-m.vp.Cols/4, 0)
	case "shift+right", "L":
		m.pan(m.vp.Cols/4, 0)
	case "+", "=":
		m.zoom(1)
	case "-":
		m.zoom(-1)
	case "tab":
		m.cycleSelection()
	case "enter", " ":
		m.activate()
	case "m":
		m.toggleDrag()
	case "esc":
		if m.drag != nil {
			m.cancelDrag()
		} else {
			m.selected = ""
		}
	case "n":
		m.emit(domain.MapEvent{Kind: domain.EventMarkerCreate, At: m.cursor()})
	case "e":
		if mv := m.markerAtCursor(); mv != nil && mv.Draggable {
			m.emit(domain.MapEvent{Kind: domain.EventMarkerEdit, MarkerID: mv.ID(), At: mv.Position})
		}
	case "x", "delete":
		if mv := m.markerAtCursor(); mv != nil && mv.Draggable {
			id, at := mv.ID(), mv.Position
			m.RemoveMarker(id)
			m.emit(domain.MapEvent{Kind: domain.EventMarkerRemove, MarkerID: id, At: at})
		}
	case "r":
		if m.onReload != nil {
			m.onReload()
		}
	}
}

func (m *Model) moveCursor(dc, dr int) {
	col, row := m.cursorCol+dc, m.cursorRow+dr
	if col < 0 || col >= m.vp.Cols || row < 0 || row >= m.vp.Rows {
		m.pan(dc*m.vp.Cols/4, dr*m.vp.Rows/4)
		col = min(max(col, 0), m.vp.Cols-1)
		row = min(max(row, 0), m.vp.Rows-1)
	}
	m.cursorCol, m.cursorRow = col, row
	if m.drag != nil {
		if mv := m.markers[m.drag.id]; mv != nil {
			mv.Position = m.cursor()
		}
	}
}

func (m *Model) pan(cols, rows int) {
	if cols == 0 && rows == 0 {
		return
	}
	m.vp.Pan(cols, rows)
	m.moveEnd()
}

func (m *Model) zoom(delta int) {
	before := m.vp.Zoom
	m.vp.SetZoom(before + delta)
	if m.vp.Zoom != before {
		m.moveEnd()
	}
}

func (m *Model) moveEnd() {
	m.emit(domain.MapEvent{Kind: domain.EventMoveEnd, At: m.vp.Center})
}

func (m *Model) cycleSelection() {
	var visible []string
	for _, id := range m.order {
		if _, _, ok := m.vp.Cell(m.markers[id].Position); ok {
			visible = append(visible, id)
		}
	}
	if len(visible) == 0 {
		return
	}
	next := visible[0]
	for i, id := range visible {
		if id == m.selected && i+1 < len(visible) {
			next = visible[i+1]
		}
	}
	m.selected = next
	m.cursorCol, m.cursorRow, _ = m.vp.Cell(m.markers[next].Position)
}

func (m *Model) activate() {
	if m.drag != nil {
		m.drop()
		return
	}
	if mv := m.markerAtCursor(); mv != nil {
		if m.selected == mv.ID() {
			m.selected = ""
		} else {
			m.selected = mv.ID()
		}
		return
	}
	m.emit(domain.MapEvent{Kind: domain.EventClick, At: m.cursor()})
}

func (m *Model) toggleDrag() {
	if m.drag != nil {
		m.drop()
		return
	}
	mv := m.markerAtCursor()
	if mv == nil || !mv.Draggable {
		return
	}
	m.drag = &dragState{id: mv.ID(), origin: mv.Position}
	m.selected = mv.ID()
}

func (m *Model) drop() {
	d := m.drag
	m.drag = nil
	mv := m.markers[d.id]
	if mv == nil {
		return
	}
	if mv.Position == d.origin {
		return
	}
	m.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: d.id, At: mv.Position})
}

func (m *Model) cancelDrag() {
	if mv := m.markers[m.drag.id]; mv != nil {
		mv.Position = m.drag.origin
	}
	m.drag = nil
}

func (m *Model) pruneToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.until) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// On registers h for kind, replacing any earlier handler.
func (m *Model) On(kind domain.EventKind, h ports.Handler) {
	m.handlers[kind] = h
}

func (m *Model) AddMarker(mv *domain.MarkerView) {
	id := mv.ID()
	if _, ok := m.markers[id]; !ok {
		m.order = append(m.order, id)
	}
	m.markers[id] = mv
}

// UpdateMarker is a no-op beyond bookkeeping; the next frame reads the
// marker's current state.
func (m *Model) UpdateMarker(mv *domain.MarkerView) {
	if _, ok := m.markers[mv.ID()]; !ok {
		slog.Debug("update of undrawn marker", "id", mv.ID())
	}
}

func (m *Model) RemoveMarker(id string) {
	if _, ok := m.markers[id]; !ok {
		return
	}
	delete(m.markers, id)
	for i, v := range m.order {
		if v == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	if m.selected == id {
		m.selected = ""
	}
	if m.drag != nil && m.drag.id == id {
		m.drag = nil
	}
}

func (m *Model) ClearMarkers() {
	m.markers = make(map[string]*domain.MarkerView)
	m.order = nil
	m.selected = ""
	m.drag = nil
}

// FitBounds centers b in the map. Padding is given in pixels and mapped to
// cells, capped at a quarter of each dimension.
func (m *Model) FitBounds(b domain.Bounds, padding int) {
	padCols := min(padding/cellWidth, m.vp.Cols/4)
	padRows := min(padding/cellHeight, m.vp.Rows/4)
	m.vp.Fit(b, padCols, padRows)
}

func (m *Model) Viewport() domain.Bounds {
	return m.vp.Bounds()
}

// Close quits the program after the current message.
func (m *Model) Close() error {
	m.closing = true
	return nil
}

func (m *Model) Notify(n domain.Notice) {
	m.toasts = append(m.toasts, toast{notice: n, until: m.now().Add(toastTTL)})
	if keep := footerRows - 1; len(m.toasts) > keep {
		m.toasts = m.toasts[len(m.toasts)-keep:]
	}
}

func (m *Model) ShowLegend(l domain.Legend) {
	m.legend = l
}

type textRegion struct{ dst *string }

func (r textRegion) SetText(s string) { *r.dst = s }

// StatusRegion is the status line of the sidebar.
func (m *Model) StatusRegion() ports.TextRegion { return textRegion{&m.status} }

// TotalRegion is the snippet counter of the sidebar.
func (m *Model) TotalRegion() ports.TextRegion { return textRegion{&m.total} }

var (
	_ ports.MapSurface   = (*Model)(nil)
	_ ports.Notifier     = (*Model)(nil)
	_ ports.Prompter     = (*Model)(nil)
	_ ports.LegendRegion = (*Model)(nil)
)
