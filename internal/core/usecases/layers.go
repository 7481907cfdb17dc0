package usecases

import (
	"github.com/samirrijal/snippetmap/internal/core/domain"
	"github.com/samirrijal/snippetmap/internal/core/ports"
	"github.com/samirrijal/snippetmap/internal/pkg/geospatial"
)

// LayerGroup is the set of markers currently drawn on the surface, keyed by
// record id in insertion order. Every mutation is mirrored to the surface.
type LayerGroup struct {
	surface ports.MapSurface
	order   []string
	byID    map[string]*domain.MarkerView
}

// NewLayerGroup creates an empty group drawing on surface.
func NewLayerGroup(surface ports.MapSurface) *LayerGroup {
	return &LayerGroup{surface: surface, byID: make(map[string]*domain.MarkerView)}
}

// Add draws m, replacing any marker with the same id.
func (g *LayerGroup) Add(m *domain.MarkerView) {
	id := m.ID()
	if _, exists := g.byID[id]; exists {
		g.surface.RemoveMarker(id)
	} else {
		g.order = append(g.order, id)
	}
	g.byID[id] = m
	g.surface.AddMarker(m)
}

// Update redraws m if it is still part of the group.
func (g *LayerGroup) Update(m *domain.MarkerView) bool {
	if g.byID[m.ID()] != m {
		return false
	}
	g.surface.UpdateMarker(m)
	return true
}

// Remove erases the marker with id from the group and the surface.
func (g *LayerGroup) Remove(id string) *domain.MarkerView {
	m := g.Detach(id)
	if m != nil {
		g.surface.RemoveMarker(id)
	}
	return m
}

// Detach drops the marker from the group without touching the surface, for
// markers the surface has already erased itself.
func (g *LayerGroup) Detach(id string) *domain.MarkerView {
	m, ok := g.byID[id]
	if !ok {
		return nil
	}
	delete(g.byID, id)
	for i, oid := range g.order {
		if oid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
	return m
}

// Clear erases every marker.
func (g *LayerGroup) Clear() {
	g.order = nil
	g.byID = make(map[string]*domain.MarkerView)
	g.surface.ClearMarkers()
}

// Get returns the marker with id, or nil.
func (g *LayerGroup) Get(id string) *domain.MarkerView { return g.byID[id] }

// Len returns the number of markers.
func (g *LayerGroup) Len() int { return len(g.order) }

// Markers returns the markers in insertion order.
func (g *LayerGroup) Markers() []*domain.MarkerView {
	out := make([]*domain.MarkerView, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.byID[id])
	}
	return out
}

// Bounds returns the box around all markers; ok is false when empty.
func (g *LayerGroup) Bounds() (domain.Bounds, bool) {
	pts := make([]domain.LatLng, 0, len(g.order))
	for _, id := range g.order {
		pts = append(pts, g.byID[id].Position)
	}
	return geospatial.BoundsOf(pts)
}
