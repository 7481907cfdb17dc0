package usecases_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
)

func TestMarkerRenderer_ToMarker(t *testing.T) {
	r := usecases.NewMarkerRenderer(true)
	record := rec("7", "python", 40.4167, -3.7037)
	record.Description = "list comprehension"
	record.VisitCount = 12

	m := r.ToMarker(&record)

	if m.ID() != "7" {
		t.Errorf("expected id 7, got %s", m.ID())
	}
	if m.Position != record.Position {
		t.Errorf("expected marker at record position, got %+v", m.Position)
	}
	want := domain.MarkerStyle{Radius: 8, FillColor: "#3776ab", Color: "#fff", Weight: 2, Opacity: 1, FillOpacity: 0.85}
	if m.Style != want {
		t.Errorf("unexpected style %+v", m.Style)
	}
	if !m.Draggable || !m.Popup.Editable {
		t.Error("expected editable marker")
	}
	if m.Popup.PubDate != "15 feb 2024" {
		t.Errorf("expected formatted date, got %q", m.Popup.PubDate)
	}
	if m.Popup.Visits != 12 || m.Popup.Description != "list comprehension" {
		t.Errorf("unexpected popup %+v", m.Popup)
	}
	if m.Tooltip != "Snippet 7 (40.416700, -3.703700)" {
		t.Errorf("unexpected tooltip %q", m.Tooltip)
	}
}

func TestMarkerRenderer_LocalIDReadOnly(t *testing.T) {
	r := usecases.NewMarkerRenderer(true)
	record := rec("anon-3", "css", 1, 1)
	record.LocalID = true

	m := r.ToMarker(&record)

	if m.Draggable || m.Popup.Editable {
		t.Error("records without a server id must not be editable")
	}
}

func TestMarkerRenderer_Fallbacks(t *testing.T) {
	r := usecases.NewMarkerRenderer(false)
	m := r.ToMarker(&domain.PointRecord{ID: "1", HasPoint: true})

	if m.Popup.Title != "Untitled" {
		t.Errorf("expected Untitled, got %q", m.Popup.Title)
	}
	if m.Popup.Language != "unknown" || m.Popup.BadgeColor != usecases.DefaultColor {
		t.Errorf("unexpected badge %q %s", m.Popup.Language, m.Popup.BadgeColor)
	}
	if m.Popup.Author != "Anonymous" {
		t.Errorf("expected Anonymous, got %q", m.Popup.Author)
	}
	if m.Popup.PubDate != "N/A" {
		t.Errorf("expected N/A, got %q", m.Popup.PubDate)
	}
	if m.Draggable || m.Popup.Editable {
		t.Error("read-only marker must not be editable")
	}
}

func TestMarkerRenderer_PendingAndRestore(t *testing.T) {
	r := usecases.NewMarkerRenderer(true)
	record := rec("3", "go", 0, 0)
	m := r.ToMarker(&record)

	m.Style = usecases.PendingStyle(m.Style)
	m.Pending = true
	if m.Style.Opacity != 0.5 || m.Style.FillOpacity != 0.4 || !m.Style.Dashed {
		t.Errorf("unexpected pending style %+v", m.Style)
	}
	if m.Style.FillColor != usecases.DefaultColor {
		t.Errorf("pending style must keep fill color, got %s", m.Style.FillColor)
	}

	r.Restore(m)
	if m.Pending || m.Style != usecases.BaseStyle(usecases.DefaultColor) {
		t.Errorf("expected base style after restore, got %+v", m.Style)
	}
}

func TestFormatPubDate(t *testing.T) {
	tests := map[string]string{
		"":                          "N/A",
		"2024-02-15T10:00:00Z":      "15 feb 2024",
		"2024-09-03T08:30:00+02:00": "3 sept 2024",
		"2023-12-31":                "31 dic 2023",
		"2024-01-05T12:00:00":       "5 ene 2024",
		"yesterday":                 "yesterday",
	}
	for in, want := range tests {
		if got := usecases.FormatPubDate(in); got != want {
			t.Errorf("FormatPubDate(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMarkerRenderer_RefreshTooltip(t *testing.T) {
	r := usecases.NewMarkerRenderer(true)
	record := rec("9", "sql", 1, 2)
	m := r.ToMarker(&record)

	m.Position = domain.LatLng{Lat: 43.2630051, Lng: -2.9349852}
	r.Refresh(m)
	if !strings.Contains(m.Tooltip, "43.263005, -2.934985") {
		t.Errorf("tooltip not refreshed: %q", m.Tooltip)
	}
}
