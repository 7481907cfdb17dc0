package usecases_test

import (
	"context"
	"sync"

	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
	"github.com/samirrijal/snippetmap/internal/core/usecases"
)

// --- Loops ---

// syncLoop runs work and its continuation immediately.
type syncLoop struct{}

func (syncLoop) Submit(work func() func()) {
	if cont := work(); cont != nil {
		cont()
	}
}

// queuedLoop holds submitted work until a test runs it.
type queuedLoop struct {
	pending []func() func()
}

func (q *queuedLoop) Submit(work func() func()) { q.pending = append(q.pending, work) }

func (q *queuedLoop) run(i int) {
	if cont := q.pending[i](); cont != nil {
		cont()
	}
}

// work runs only the background half of pending item i and returns its
// continuation, so tests can interleave completions.
func (q *queuedLoop) work(i int) func() { return q.pending[i]() }

// --- Mock SnippetAPI ---

type mockAPI struct {
	mu               sync.Mutex
	fetchFeedFn      func(ctx context.Context, bbox *domain.Bounds) (*domain.Feed, error)
	updateLocationFn func(ctx context.Context, id string, at domain.LatLng) error
	deleteFn         func(ctx context.Context, id string) error

	fetches int
	updates []domain.LatLng
	deletes []string
}

func (m *mockAPI) FetchFeed(ctx context.Context, bbox *domain.Bounds) (*domain.Feed, error) {
	m.mu.Lock()
	m.fetches++
	m.mu.Unlock()
	if m.fetchFeedFn != nil {
		return m.fetchFeedFn(ctx, bbox)
	}
	return &domain.Feed{}, nil
}

func (m *mockAPI) UpdateLocation(ctx context.Context, id string, at domain.LatLng) error {
	m.mu.Lock()
	m.updates = append(m.updates, at)
	m.mu.Unlock()
	if m.updateLocationFn != nil {
		return m.updateLocationFn(ctx, id, at)
	}
	return nil
}

func (m *mockAPI) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	m.deletes = append(m.deletes, id)
	m.mu.Unlock()
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// serverFeed returns a fetch function serving a fresh copy of recs on each call.
func serverFeed(recs func() []domain.PointRecord) func(context.Context, *domain.Bounds) (*domain.Feed, error) {
	return func(context.Context, *domain.Bounds) (*domain.Feed, error) {
		src := recs()
		out := make([]domain.PointRecord, len(src))
		copy(out, src)
		return &domain.Feed{Records: out}, nil
	}
}

// --- Fake MapSurface ---

type fakeSurface struct {
	handlers map[domain.EventKind]ports.Handler
	markers  map[string]*domain.MarkerView
	viewport domain.Bounds
	fits     []domain.Bounds
	padding  int
	updates  int
	closed   bool
}

func newFakeSurface() *fakeSurface {
	return &fakeSurface{
		handlers: make(map[domain.EventKind]ports.Handler),
		markers:  make(map[string]*domain.MarkerView),
		viewport: domain.Bounds{South: 36, West: -9.5, North: 43.8, East: 3.3},
	}
}

func (s *fakeSurface) On(kind domain.EventKind, h ports.Handler) { s.handlers[kind] = h }
func (s *fakeSurface) AddMarker(m *domain.MarkerView)            { s.markers[m.ID()] = m }
func (s *fakeSurface) UpdateMarker(m *domain.MarkerView)         { s.updates++ }
func (s *fakeSurface) RemoveMarker(id string)                    { delete(s.markers, id) }
func (s *fakeSurface) ClearMarkers()                             { s.markers = make(map[string]*domain.MarkerView) }
func (s *fakeSurface) Viewport() domain.Bounds                   { return s.viewport }

func (s *fakeSurface) Close() error {
	s.closed = true
	return nil
}

func (s *fakeSurface) FitBounds(b domain.Bounds, padding int) {
	s.fits = append(s.fits, b)
	s.padding = padding
}

// emit delivers ev to the registered handler, reporting whether one existed.
func (s *fakeSurface) emit(ev domain.MapEvent) bool {
	h, ok := s.handlers[ev.Kind]
	if ok {
		h(ev)
	}
	return ok
}

// --- UI collaborators ---

type fakePrompter struct {
	answer     bool
	titles     []string
	texts      []string
	formLat    string
	formLng    string
	formCancel bool
	editOpen   []string
}

func (p *fakePrompter) Confirm(title, text string, answer func(bool)) {
	p.titles = append(p.titles, title)
	p.texts = append(p.texts, text)
	answer(p.answer)
}

func (p *fakePrompter) EditCoordinates(m *domain.MarkerView, submit func(lat, lng string), cancel func()) {
	p.editOpen = append(p.editOpen, m.ID())
	if p.formCancel {
		cancel()
		return
	}
	submit(p.formLat, p.formLng)
}

type recordingNotifier struct {
	notices []domain.Notice
}

func (n *recordingNotifier) Notify(notice domain.Notice) { n.notices = append(n.notices, notice) }

func (n *recordingNotifier) last() domain.Notice {
	if len(n.notices) == 0 {
		return domain.Notice{}
	}
	return n.notices[len(n.notices)-1]
}

type textRegion struct{ text string }

func (r *textRegion) SetText(s string) { r.text = s }

type legendRegion struct{ legend domain.Legend }

func (r *legendRegion) ShowLegend(l domain.Legend) { r.legend = l }

type fakeNavigator struct {
	urls []string
	err  error
}

func (n *fakeNavigator) Navigate(url string) error {
	n.urls = append(n.urls, url)
	return n.err
}

type mockPublisher struct {
	updated []domain.PointRecord
	deleted []string
}

func (p *mockPublisher) PublishLocationUpdated(ctx context.Context, rec *domain.PointRecord) error {
	p.updated = append(p.updated, *rec)
	return nil
}

func (p *mockPublisher) PublishSnippetDeleted(ctx context.Context, id string) error {
	p.deleted = append(p.deleted, id)
	return nil
}

// --- Fixtures ---

func rec(id, lang string, lat, lng float64) domain.PointRecord {
	return domain.PointRecord{
		ID:       id,
		Title:    "Snippet " + id,
		Language: lang,
		Author:   "ana",
		PubDate:  "2024-02-15T10:00:00Z",
		Position: domain.LatLng{Lat: lat, Lng: lng},
		HasPoint: true,
	}
}

type harness struct {
	api       *mockAPI
	surface   *fakeSurface
	prompter  *fakePrompter
	notifier  *recordingNotifier
	navigator *fakeNavigator
	publisher *mockPublisher
	status    *textRegion
	total     *textRegion
	legend    *legendRegion
}

func newHarness(records ...domain.PointRecord) *harness {
	h := &harness{
		api:       &mockAPI{},
		surface:   newFakeSurface(),
		prompter:  &fakePrompter{answer: true},
		notifier:  &recordingNotifier{},
		navigator: &fakeNavigator{},
		publisher: &mockPublisher{},
		status:    &textRegion{},
		total:     &textRegion{},
		legend:    &legendRegion{},
	}
	h.api.fetchFeedFn = serverFeed(func() []domain.PointRecord { return records })
	return h
}

func (h *harness) deps(loop ports.Loop) usecases.Dependencies {
	return usecases.Dependencies{
		API:       h.api,
		Surface:   h.surface,
		Notifier:  h.notifier,
		Prompter:  h.prompter,
		Navigator: h.navigator,
		Loop:      loop,
		Publisher: h.publisher,
		Status:    h.status,
		Total:     h.total,
		Legend:    h.legend,
	}
}
