package natsadapter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

// Subjects. Both carry the snippet id as the last token.
const (
	SubjectPrefix          = "snippetmap."
	SubjectLocationUpdated = "snippetmap.location.updated"
	SubjectSnippetDeleted  = "snippetmap.snippet.deleted"
	streamName             = "SNIPPETMAP_EVENTS"
)

// Message is the JSON payload of every snippet event.
type Message struct {
	Kind   domain.ChangeKind `json:"kind"`
	ID     string            `json:"id"`
	Title  string            `json:"title,omitempty"`
	Lat    *float64          `json:"lat,omitempty"`
	Lng    *float64          `json:"lng,omitempty"`
	Source string            `json:"source"`
	At     time.Time         `json:"at"`
}

func locationUpdated(rec *domain.PointRecord, source string, at time.Time) (string, []byte, error) {
	lat, lng := rec.Position.Lat, rec.Position.Lng
	data, err := json.Marshal(Message{
		Kind:   domain.ChangeLocationUpdated,
		ID:     rec.ID,
		Title:  rec.Title,
		Lat:    &lat,
		Lng:    &lng,
		Source: source,
		At:     at.UTC(),
	})
	return SubjectLocationUpdated + "." + rec.ID, data, err
}

func snippetDeleted(id, source string, at time.Time) (string, []byte, error) {
	data, err := json.Marshal(Message{Kind: domain.ChangeSnippetDeleted, ID: id, Source: source, At: at.UTC()})
	return SubjectSnippetDeleted + "." + id, data, err
}

func decodeChange(subject string, data []byte) (domain.SnippetChange, error) {
	var m Message
	if err := json.Unmarshal(data, &m); err != nil {
		return domain.SnippetChange{}, fmt.Errorf("decode %s: %w", subject, err)
	}
	switch {
	case strings.HasPrefix(subject, SubjectLocationUpdated+"."):
		m.Kind = domain.ChangeLocationUpdated
	case strings.HasPrefix(subject, SubjectSnippetDeleted+"."):
		m.Kind = domain.ChangeSnippetDeleted
	default:
		return domain.SnippetChange{}, fmt.Errorf("unexpected subject %s", subject)
	}
	ch := domain.SnippetChange{Kind: m.Kind, ID: m.ID, Source: m.Source}
	if m.Lat != nil && m.Lng != nil {
		ch.Position = &domain.LatLng{Lat: *m.Lat, Lng: *m.Lng}
	}
	return ch, nil
}
