package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
)

func TestWidget_ClickRedirectsToCreate(t *testing.T) {
	h := newHarness()
	w := usecases.NewWidget(context.Background(), h.deps(syncLoop{}), usecases.Options{NewSnippetURL: "http://localhost:8000/snippets/new/"})
	w.Start()

	h.surface.emit(domain.MapEvent{Kind: domain.EventClick, At: domain.LatLng{Lat: 40.41670049, Lng: -3.7037}})
	h.surface.emit(domain.MapEvent{Kind: domain.EventMarkerCreate, At: domain.LatLng{Lat: -1.5, Lng: 120}})

	want := []string{
		"http://localhost:8000/snippets/new/?lat=40.416700&lng=-3.703700",
		"http://localhost:8000/snippets/new/?lat=-1.500000&lng=120.000000",
	}
	if len(h.navigator.urls) != len(want) {
		t.Fatalf("expected %d redirects, got %v", len(want), h.navigator.urls)
	}
	for i := range want {
		if h.navigator.urls[i] != want[i] {
			t.Errorf("redirect %d = %s, want %s", i, h.navigator.urls[i], want[i])
		}
	}
}

func TestWidget_NavigateFailureNotifies(t *testing.T) {
	h := newHarness()
	h.navigator.err = errors.New("no browser")
	w := usecases.NewWidget(context.Background(), h.deps(syncLoop{}), usecases.Options{NewSnippetURL: "/snippets/new/"})
	w.Start()

	h.surface.emit(domain.MapEvent{Kind: domain.EventClick})

	if h.notifier.last().Severity != domain.SeverityError {
		t.Errorf("expected error toast, got %+v", h.notifier.last())
	}
}

func TestWidget_EventTable(t *testing.T) {
	editable := newHarness()
	usecases.NewWidget(context.Background(), editable.deps(syncLoop{}), usecases.Options{Editable: true}).Start()
	for _, k := range []domain.EventKind{domain.EventClick, domain.EventMarkerCreate, domain.EventMarkerDragEnd, domain.EventMarkerEdit, domain.EventMarkerRemove} {
		if _, ok := editable.surface.handlers[k]; !ok {
			t.Errorf("editable widget missing %s handler", k)
		}
	}

	readOnly := newHarness()
	usecases.NewWidget(context.Background(), readOnly.deps(syncLoop{}), usecases.Options{}).Start()
	for _, k := range []domain.EventKind{domain.EventMarkerDragEnd, domain.EventMarkerEdit, domain.EventMarkerRemove, domain.EventMoveEnd} {
		if _, ok := readOnly.surface.handlers[k]; ok {
			t.Errorf("read-only widget must not register %s", k)
		}
	}
}

func TestWidget_CloseCancelsAndTearsDown(t *testing.T) {
	h := newHarness()
	var seen context.Context
	h.api.fetchFeedFn = func(ctx context.Context, _ *domain.Bounds) (*domain.Feed, error) {
		seen = ctx
		return &domain.Feed{}, nil
	}
	w := usecases.NewWidget(context.Background(), h.deps(syncLoop{}), usecases.Options{})
	w.Start()

	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !h.surface.closed {
		t.Error("expected surface closed")
	}
	if seen == nil || seen.Err() == nil {
		t.Error("expected request context cancelled")
	}
}

func TestCreateURL_ExistingQuery(t *testing.T) {
	got := usecases.CreateURL("/snippets/new/?from=map", domain.LatLng{Lat: 1, Lng: 2})
	if got != "/snippets/new/?from=map&lat=1.000000&lng=2.000000" {
		t.Errorf("unexpected url %s", got)
	}
}

type fakeChanges struct {
	handler func(ctx context.Context, ch domain.SnippetChange) error
}

func (f *fakeChanges) SubscribeChanges(ctx context.Context, handler func(ctx context.Context, ch domain.SnippetChange) error) error {
	f.handler = handler
	return nil
}

func TestWidget_RemoteChangeReloads(t *testing.T) {
	h := newHarness(rec("1", "css", 1, 1))
	changes := &fakeChanges{}
	deps := h.deps(syncLoop{})
	deps.Changes = changes
	w := usecases.NewWidget(context.Background(), deps, usecases.Options{})
	w.Start()

	if changes.handler == nil {
		t.Fatal("expected subscription")
	}
	if err := changes.handler(context.Background(), domain.SnippetChange{Kind: domain.ChangeSnippetDeleted, ID: "1", Source: "other"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.api.fetches != 2 {
		t.Errorf("expected reload on remote change, got %d fetches", h.api.fetches)
	}
	if w.Loader().Generation() != 2 {
		t.Errorf("expected generation 2, got %d", w.Loader().Generation())
	}
}
