package usecases_test

import (
	"context"
	"strings"
	"testing"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
)

func startEditable(t *testing.T, h *harness) *usecases.Widget {
	t.Helper()
	w := usecases.NewWidget(context.Background(), h.deps(syncLoop{}), usecases.Options{Editable: true})
	w.Start()
	return w
}

func TestLocationEditor_DragConfirmed(t *testing.T) {
	h := newHarness(rec("5", "python", 40.4167, -3.7037))
	w := startEditable(t, h)

	drop := domain.LatLng{Lat: 43.26300049, Lng: -2.93499951}
	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: "5", At: drop})

	if len(h.prompter.titles) != 1 {
		t.Fatalf("expected a confirmation prompt, got %d", len(h.prompter.titles))
	}
	if !strings.Contains(h.prompter.texts[0], "43.263000, -2.935000") {
		t.Errorf("prompt missing target coordinates: %q", h.prompter.texts[0])
	}
	if len(h.api.updates) != 1 {
		t.Fatalf("expected one update request, got %d", len(h.api.updates))
	}
	if sent := h.api.updates[0]; sent.LatString() != "43.263000" || sent.LngString() != "-2.935000" {
		t.Errorf("unexpected payload %+v", sent)
	}

	m := w.Layers().Get("5")
	if m.Record.Position != (domain.LatLng{Lat: 43.263, Lng: -2.935}) {
		t.Errorf("record not updated: %+v", m.Record.Position)
	}
	if m.Pending || m.Style.Dashed {
		t.Error("expected normal style after confirm")
	}
	if !strings.Contains(m.Tooltip, "43.263000") {
		t.Errorf("tooltip not refreshed: %q", m.Tooltip)
	}
	if w.Editor().State("5") != domain.EditConfirmed {
		t.Errorf("expected confirmed, got %s", w.Editor().State("5"))
	}
	if h.notifier.last().Severity != domain.SeveritySuccess {
		t.Errorf("expected success toast, got %+v", h.notifier.last())
	}
	if len(h.publisher.updated) != 1 || h.publisher.updated[0].ID != "5" {
		t.Errorf("expected location event, got %+v", h.publisher.updated)
	}
	if h.api.fetches != 1 {
		t.Errorf("success must not reload, got %d fetches", h.api.fetches)
	}
}

func TestLocationEditor_RejectedRollsBack(t *testing.T) {
	server := []domain.PointRecord{rec("42", "java", 40, -3)}
	h := newHarness()
	h.api.fetchFeedFn = serverFeed(func() []domain.PointRecord { return server })
	h.api.updateLocationFn = func(ctx context.Context, id string, at domain.LatLng) error {
		return &domain.RejectedError{Reason: "locked"}
	}
	w := startEditable(t, h)

	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: "42", At: domain.LatLng{Lat: 10, Lng: 10}})

	toast := h.notifier.last()
	if toast.Severity != domain.SeverityError || !strings.Contains(toast.Text, "locked") {
		t.Errorf("expected error toast containing locked, got %+v", toast)
	}
	if h.api.fetches != 2 {
		t.Errorf("expected a reload, got %d fetches", h.api.fetches)
	}
	m := w.Layers().Get("42")
	if m == nil || m.Position != server[0].Position {
		t.Errorf("expected server position restored, got %+v", m)
	}
	if m.Style.Dashed {
		t.Error("reloaded marker must not be pending")
	}
	if len(h.publisher.updated) != 0 {
		t.Error("no event expected on failure")
	}
}

func TestLocationEditor_DeclineReloads(t *testing.T) {
	h := newHarness(rec("1", "css", 40, -3))
	h.prompter.answer = false
	w := startEditable(t, h)

	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: "1", At: domain.LatLng{Lat: 0, Lng: 0}})

	if len(h.api.updates) != 0 {
		t.Error("declined edit must not send a request")
	}
	if h.api.fetches != 2 {
		t.Errorf("expected reload after decline, got %d fetches", h.api.fetches)
	}
	if got := w.Layers().Get("1").Position; got != (domain.LatLng{Lat: 40, Lng: -3}) {
		t.Errorf("expected original position, got %+v", got)
	}
}

func TestLocationEditor_FormEditConfirmed(t *testing.T) {
	h := newHarness(rec("8", "kotlin", 40, -3))
	h.prompter.formLat, h.prompter.formLng = "41.3851", "2.1734"
	w := startEditable(t, h)

	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerEdit, MarkerID: "8"})

	if len(h.prompter.editOpen) != 1 {
		t.Fatal("expected coordinate form opened")
	}
	if len(h.prompter.titles) != 1 {
		t.Error("form edits must be confirmed")
	}
	if len(h.api.updates) != 1 {
		t.Fatalf("expected update request, got %d", len(h.api.updates))
	}
	if got := w.Layers().Get("8").Record.Position; got != (domain.LatLng{Lat: 41.3851, Lng: 2.1734}) {
		t.Errorf("unexpected record position %+v", got)
	}
}

func TestLocationEditor_FormCancelledReturnsToIdle(t *testing.T) {
	h := newHarness(rec("8", "kotlin", 40, -3))
	h.prompter.formCancel = true
	w := startEditable(t, h)

	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerEdit, MarkerID: "8"})

	if got := w.Editor().State("8"); got != domain.EditIdle {
		t.Errorf("expected idle after cancel, got %v", got)
	}
	if len(h.api.updates) != 0 || len(h.prompter.titles) != 0 {
		t.Error("cancelled form must not confirm or save")
	}
}

func TestLocationEditor_InvalidFormNoRequest(t *testing.T) {
	for _, in := range [][2]string{{"91", "0"}, {"0", "-180.1"}, {"north", "0"}, {"", ""}} {
		h := newHarness(rec("8", "kotlin", 40, -3))
		h.prompter.formLat, h.prompter.formLng = in[0], in[1]
		w := startEditable(t, h)

		h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerEdit, MarkerID: "8"})

		if len(h.api.updates) != 0 {
			t.Errorf("%v: validation failure must not hit the network", in)
		}
		if len(h.prompter.titles) != 0 {
			t.Errorf("%v: no confirmation expected", in)
		}
		if h.notifier.last().Severity != domain.SeverityWarning {
			t.Errorf("%v: expected warning toast, got %+v", in, h.notifier.last())
		}
		if got := w.Layers().Get("8").Position; got != (domain.LatLng{Lat: 40, Lng: -3}) {
			t.Errorf("%v: marker moved to %+v", in, got)
		}
	}
}

func TestLocationEditor_SupersededSaveIgnored(t *testing.T) {
	h := newHarness()
	loop := &queuedLoop{}
	w := usecases.NewWidget(context.Background(), h.deps(loop), usecases.Options{Editable: true})
	h.api.fetchFeedFn = serverFeed(func() []domain.PointRecord { return []domain.PointRecord{rec("1", "css", 0, 0)} })
	w.Start()
	loop.run(0)

	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: "1", At: domain.LatLng{Lat: 1, Lng: 1}})
	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: "1", At: domain.LatLng{Lat: 2, Lng: 2}})
	if len(loop.pending) != 3 {
		t.Fatalf("expected two pending saves, got %d", len(loop.pending)-1)
	}

	loop.run(2)
	loop.run(1)

	if got := w.Layers().Get("1").Record.Position; got != (domain.LatLng{Lat: 2, Lng: 2}) {
		t.Errorf("older save overwrote newer: %+v", got)
	}
	successes := 0
	for _, n := range h.notifier.notices {
		if n.Severity == domain.SeveritySuccess {
			successes++
		}
	}
	if successes != 1 {
		t.Errorf("expected one success toast, got %d", successes)
	}
}

func TestLocationEditor_UnknownMarker(t *testing.T) {
	h := newHarness()
	w := startEditable(t, h)

	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerDragEnd, MarkerID: "nope"})
	if err := w.Editor().SubmitForm("nope", "1", "1"); err == nil {
		t.Error("expected error for unknown marker")
	}
	if len(h.api.updates) != 0 {
		t.Error("no request expected")
	}
}
