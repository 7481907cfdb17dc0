package tui

import (
	"math"
	"testing"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

var madrid = domain.LatLng{Lat: 40.4167, Lng: -3.7037}

func TestProjectCenter(t *testing.T) {
	v := Viewport{Center: madrid, Zoom: 6, Cols: 80, Rows: 20}
	col, row := v.Project(madrid)
	if math.Abs(col-40) > 1e-9 || math.Abs(row-10) > 1e-9 {
		t.Fatalf("center projected to %.3f,%.3f", col, row)
	}
	p := v.Unproject(40, 10)
	if math.Abs(p.Lat-madrid.Lat) > 0.5 || math.Abs(p.Lng-madrid.Lng) > 0.5 {
		t.Fatalf("unproject drifted to %+v", p)
	}
}

func TestUnprojectRoundTrip(t *testing.T) {
	v := Viewport{Center: madrid, Zoom: 8, Cols: 60, Rows: 20}
	for _, c := range [][2]int{{0, 0}, {59, 19}, {13, 7}} {
		col, row, ok := v.Cell(v.Unproject(c[0], c[1]))
		if !ok || col != c[0] || row != c[1] {
			t.Errorf("cell %v came back as %d,%d ok=%v", c, col, row, ok)
		}
	}
}

func TestCellOffScreen(t *testing.T) {
	v := Viewport{Center: madrid, Zoom: 8, Cols: 60, Rows: 20}
	if _, _, ok := v.Cell(domain.LatLng{Lat: -33.45, Lng: -70.66}); ok {
		t.Fatal("Santiago should be off screen at zoom 8 over Madrid")
	}
}

func TestBounds(t *testing.T) {
	v := Viewport{Center: madrid, Zoom: 6, Cols: 80, Rows: 20}
	b := v.Bounds()
	if !(b.South < b.North && b.West < b.East) {
		t.Fatalf("bounds not ordered: %+v", b)
	}
	if !b.Contains(madrid) {
		t.Fatalf("bounds %+v do not contain the center", b)
	}
}

func TestPan(t *testing.T) {
	v := Viewport{Center: madrid, Zoom: 6, Cols: 80, Rows: 20}
	v.Pan(10, 0)
	if v.Center.Lng <= madrid.Lng {
		t.Fatalf("panning east kept lng at %f", v.Center.Lng)
	}
	v.Pan(0, -5)
	if v.Center.Lat <= madrid.Lat {
		t.Fatalf("panning north kept lat at %f", v.Center.Lat)
	}
}

func TestSetZoomClamps(t *testing.T) {
	v := Viewport{}
	v.SetZoom(42)
	if v.Zoom != maxZoom {
		t.Errorf("zoom = %d, want %d", v.Zoom, maxZoom)
	}
	v.SetZoom(-3)
	if v.Zoom != minZoom {
		t.Errorf("zoom = %d, want %d", v.Zoom, minZoom)
	}
}

func TestFitKeepsPointsVisible(t *testing.T) {
	v := Viewport{Center: domain.LatLng{}, Zoom: 2, Cols: 80, Rows: 24}
	points := []domain.LatLng{
		{Lat: 40.4167, Lng: -3.7037},
		{Lat: 43.263, Lng: -2.935},
		{Lat: 36.7213, Lng: -4.4214},
		{Lat: 41.3874, Lng: 2.1686},
	}
	b := domain.Bounds{South: 36.7, West: -4.5, North: 43.3, East: 2.2}
	v.Fit(b, 2, 1)

	if v.Zoom <= 2 {
		t.Fatalf("fit did not zoom in, zoom %d", v.Zoom)
	}
	for _, p := range points {
		if _, _, ok := v.Cell(p); !ok {
			t.Errorf("%+v not visible after fit at zoom %d", p, v.Zoom)
		}
	}
}

func TestFitSinglePoint(t *testing.T) {
	v := Viewport{Cols: 80, Rows: 24}
	v.Fit(domain.Bounds{South: 43.263, West: -2.935, North: 43.263, East: -2.935}, 0, 0)
	if v.Zoom != maxFitZoom {
		t.Errorf("zoom = %d, want %d", v.Zoom, maxFitZoom)
	}
	if math.Abs(v.Center.Lat-43.263) > 1e-6 || math.Abs(v.Center.Lng+2.935) > 1e-6 {
		t.Errorf("center = %+v", v.Center)
	}
}

func TestGridStepShrinksWithZoom(t *testing.T) {
	if gridStep(12) >= gridStep(3) {
		t.Fatalf("step at zoom 12 (%g) should be finer than at zoom 3 (%g)", gridStep(12), gridStep(3))
	}
}
