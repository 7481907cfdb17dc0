package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidCoordinates is returned for non-numeric or out-of-range input.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
	// ErrMalformedFeed is returned when the feed lacks a features array.
	ErrMalformedFeed = errors.New("malformed feed")
	// ErrUnknownMarker is returned when an event references no rendered marker.
	ErrUnknownMarker = errors.New("unknown marker")
	// ErrSnippetNotFound and ErrSnippetLocked are returned by snippet stores.
	ErrSnippetNotFound = errors.New("snippet not found")
	ErrSnippetLocked   = errors.New("locked")
)

// RejectedError is a business failure reported by the server
// ({"success": false, "error": "..."}).
type RejectedError struct {
	Reason string
}

func (e *RejectedError) Error() string {
	if e.Reason == "" {
		return "rejected by server"
	}
	return "rejected by server: " + e.Reason
}

// TransportError is a network or HTTP-level failure.
type TransportError struct {
	Status int // 0 when no response was received
	Body   string
	Err    error
}

func (e *TransportError) Error() string {
	switch {
	case e.Status > 0 && e.Body != "":
		return fmt.Sprintf("Error %d: %s", e.Status, e.Body)
	case e.Status > 0:
		return fmt.Sprintf("Error %d", e.Status)
	case e.Err != nil:
		return "Error 0: " + e.Err.Error()
	default:
		return "Error 0: transport failure"
	}
}

func (e *TransportError) Unwrap() error { return e.Err }
