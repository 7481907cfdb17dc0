package domain

// EventKind names a gesture emitted by the map surface.
type EventKind string

const (
	EventClick         EventKind = "click"
	EventMarkerDragEnd EventKind = "markerDragEnd"
	EventMarkerCreate  EventKind = "markerCreate"
	EventMarkerRemove  EventKind = "markerRemove"
	EventMarkerEdit    EventKind = "markerEdit"
	EventMoveEnd       EventKind = "moveEnd"
)

// MapEvent carries the payload of a surface gesture. MarkerID is empty for
// events not tied to a marker.
type MapEvent struct {
	Kind     EventKind
	MarkerID string
	At       LatLng
}

// EditState is the position of a marker in the coordinate-edit workflow.
type EditState int

const (
	EditIdle EditState = iota
	EditRequested
	EditAwaitingConfirmation
	EditSaving
	EditConfirmed
	EditRolledBack
)

func (s EditState) String() string {
	switch s {
	case EditRequested:
		return "edit_requested"
	case EditAwaitingConfirmation:
		return "awaiting_confirmation"
	case EditSaving:
		return "saving"
	case EditConfirmed:
		return "confirmed"
	case EditRolledBack:
		return "rolled_back"
	default:
		return "idle"
	}
}

// Severity grades a notification.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Notice is a transient notification.
type Notice struct {
	Severity Severity
	Title    string
	Text     string
}

// ChangeKind names a confirmed mutation broadcast to other widgets.
type ChangeKind string

const (
	ChangeLocationUpdated ChangeKind = "location_updated"
	ChangeSnippetDeleted  ChangeKind = "snippet_deleted"
)

// SnippetChange is a mutation made by another widget instance.
type SnippetChange struct {
	Kind     ChangeKind
	ID       string
	Position *LatLng
	Source   string
}
