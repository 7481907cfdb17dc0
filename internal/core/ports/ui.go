package ports

import "github.com/samirrijal/snippetmap/internal/core/domain"

// Handler reacts to a surface gesture.
type Handler func(ev domain.MapEvent)

// EventSource registers handlers for surface gestures. Registering a second
// handler for the same kind replaces the first.
type EventSource interface {
	On(kind domain.EventKind, h Handler)
}

// MapSurface is the map engine: viewport, base map and drawn markers.
type MapSurface interface {
	EventSource
	AddMarker(m *domain.MarkerView)
	// UpdateMarker redraws a marker after its position, style or popup changed.
	UpdateMarker(m *domain.MarkerView)
	RemoveMarker(id string)
	ClearMarkers()
	FitBounds(b domain.Bounds, padding int)
	Viewport() domain.Bounds
	Close() error
}

// Notifier shows transient notifications.
type Notifier interface {
	Notify(n domain.Notice)
}

// Prompter shows modal dialogs. Callbacks run on the UI loop.
type Prompter interface {
	Confirm(title, text string, answer func(ok bool))
	// EditCoordinates opens the inline coordinate form for m. Exactly one of
	// submit or cancel runs when the form closes.
	EditCoordinates(m *domain.MarkerView, submit func(lat, lng string), cancel func())
}

// TextRegion is a display region holding a line of text.
type TextRegion interface {
	SetText(s string)
}

// LegendRegion displays the legend.
type LegendRegion interface {
	ShowLegend(l domain.Legend)
}

// Navigator leaves the map for another page.
type Navigator interface {
	Navigate(url string) error
}

// Loop is the single UI task queue. Submit runs work off the queue and then
// runs the continuation it returns on the queue. Submit is safe to call from
// any goroutine.
type Loop interface {
	Submit(work func() func())
}
