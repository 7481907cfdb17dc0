package memstore

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/paulmach/orb"
	"github.com/samirrijal/snippetmap/internal/adapters/snippetapi"
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/pkg/geospatial"
)

var (
	ErrNotFound = domain.ErrSnippetNotFound
	ErrLocked   = domain.ErrSnippetLocked
)

// Store implements ports.SnippetStore in memory.
type Store struct {
	mu      sync.RWMutex
	records map[string]domain.PointRecord
	locked  map[string]bool
}

// New creates a store holding records.
func New(records []domain.PointRecord) *Store {
	s := &Store{
		records: make(map[string]domain.PointRecord, len(records)),
		locked:  make(map[string]bool),
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

// LoadFile creates a store seeded from a GeoJSON FeatureCollection file.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed: %w", err)
	}
	feed, err := snippetapi.DecodeFeed(data)
	if err != nil {
		return nil, fmt.Errorf("decode seed %s: %w", path, err)
	}
	return New(feed.Records), nil
}

// Lock makes every mutation of the given ids fail with ErrLocked.
func (s *Store) Lock(ids ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		s.locked[id] = true
	}
}

// List returns the records ordered by id, only those inside bbox when it is
// non-nil. Records without a point never match a bbox.
func (s *Store) List(ctx context.Context, bbox *domain.Bounds) ([]domain.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var box orb.Bound
	if bbox != nil {
		box = geospatial.ToOrb(*bbox)
	}
	out := make([]domain.PointRecord, 0, len(s.records))
	for _, r := range s.records {
		if bbox != nil && (!r.HasPoint || !box.Contains(orb.Point{r.Position.Lng, r.Position.Lat})) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return domain.LessID(out[i].ID, out[j].ID) })
	return out, nil
}

// Get returns one record.
func (s *Store) Get(ctx context.Context, id string) (*domain.PointRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &r, nil
}

// UpdateLocation moves a record.
func (s *Store) UpdateLocation(ctx context.Context, id string, at domain.LatLng) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	if s.locked[id] {
		return ErrLocked
	}
	r.Position = at
	r.HasPoint = true
	s.records[id] = r
	return nil
}

// Delete removes a record.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	if s.locked[id] {
		return ErrLocked
	}
	delete(s.records, id)
	return nil
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sample returns the demo data set used when no seed file is configured.
func Sample() []domain.PointRecord {
	mk := func(id int, title, lang, author, date string, visits int, lat, lng float64) domain.PointRecord {
		return domain.PointRecord{
			ID:         strconv.Itoa(id),
			Title:      title,
			Language:   lang,
			Author:     author,
			PubDate:    date,
			VisitCount: visits,
			Position:   domain.LatLng{Lat: lat, Lng: lng},
			HasPoint:   true,
		}
	}
	return []domain.PointRecord{
		mk(1, "Flatten nested lists", "python", "ana", "2024-02-15T10:00:00Z", 34, 40.4168, -3.7038),
		mk(2, "Debounce helper", "javascript", "luis", "2024-03-02T09:30:00Z", 12, 41.3874, 2.1686),
		mk(3, "Window functions", "sql", "marta", "2024-05-20T18:45:00Z", 7, 37.3891, -5.9845),
		mk(4, "Typed event emitter", "typescript", "jon", "2024-06-11T12:00:00Z", 21, 43.2630, -2.9350),
		mk(5, "Grid layout cheatsheet", "css", "irene", "2024-07-08T08:15:00Z", 5, 39.4699, -0.3763),
		mk(6, "Queryset annotations", "django", "pablo", "2024-09-03T16:20:00Z", 18, 42.8782, -8.5448),
		mk(42, "Coroutine scopes", "kotlin", "nerea", "2024-10-01T11:00:00Z", 3, 36.7213, -4.4214),
	}
}
