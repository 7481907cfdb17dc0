package usecases

import (
	"fmt"
	"strings"
	"time"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

var shortMonthsES = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// MarkerRenderer turns point records into marker views.
type MarkerRenderer struct {
	editable bool
}

// NewMarkerRenderer creates a renderer. editable adds the coordinate editor
// control to popups and makes markers draggable.
func NewMarkerRenderer(editable bool) *MarkerRenderer {
	return &MarkerRenderer{editable: editable}
}

// BaseStyle is the static style of every marker; only the fill varies.
func BaseStyle(fill string) domain.MarkerStyle {
	return domain.MarkerStyle{
		Radius:      8,
		FillColor:   fill,
		Color:       "#fff",
		Weight:      2,
		Opacity:     1,
		FillOpacity: 0.85,
	}
}

// PendingStyle dims a style while a save is in flight.
func PendingStyle(s domain.MarkerStyle) domain.MarkerStyle {
	s.Opacity = 0.5
	s.FillOpacity = 0.4
	s.Dashed = true
	return s
}

// ToMarker builds the marker view of rec at its current position.
func (r *MarkerRenderer) ToMarker(rec *domain.PointRecord) *domain.MarkerView {
	m := &domain.MarkerView{
		Record:    rec,
		Position:  rec.Position,
		Style:     BaseStyle(ColorFor(rec.Language)),
		Draggable: r.editable && !rec.LocalID,
	}
	r.Refresh(m)
	return m
}

// Restore resets the style of m to the saved state.
func (r *MarkerRenderer) Restore(m *domain.MarkerView) {
	m.Pending = false
	m.Style = BaseStyle(ColorFor(m.Record.Language))
}

// Refresh rebuilds the popup and tooltip of m from its record and position.
func (r *MarkerRenderer) Refresh(m *domain.MarkerView) {
	rec := m.Record
	m.Popup = domain.Popup{
		Title:       orDefault(rec.Title, "Untitled"),
		Language:    orDefault(rec.Language, "unknown"),
		BadgeColor:  ColorFor(rec.Language),
		Description: rec.Description,
		Author:      orDefault(rec.Author, "Anonymous"),
		PubDate:     FormatPubDate(rec.PubDate),
		Visits:      rec.VisitCount,
		Editable:    r.editable && !rec.LocalID,
	}
	m.Tooltip = fmt.Sprintf("%s (%s, %s)", m.Popup.Title, m.Position.LatString(), m.Position.LngString())
}

// FormatPubDate renders a publish timestamp as e.g. "15 feb 2024". Empty
// input yields "N/A"; unparsable input is returned unchanged.
func FormatPubDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "N/A"
	}
	var t time.Time
	var err error
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err = time.Parse(layout, s); err == nil {
			return fmt.Sprintf("%d %s %d", t.Day(), shortMonthsES[t.Month()-1], t.Year())
		}
	}
	return s
}

func orDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
