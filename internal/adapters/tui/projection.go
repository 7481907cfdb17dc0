package tui

import (
	"math"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

const (
	tileSize = 256
	// World pixels covered by one terminal cell. Cells are about twice as
	// tall as they are wide.
	cellWidth  = 8.0
	cellHeight = 16.0

	minZoom    = 0
	maxZoom    = 19
	maxFitZoom = 15
	maxLat     = 85.05112878
)

// Viewport is a Web-Mercator window onto the world measured in cells.
type Viewport struct {
	Center domain.LatLng
	Zoom   int
	Cols   int
	Rows   int
}

// worldXY converts a coordinate to world pixel coordinates at zoom.
func worldXY(p domain.LatLng, zoom int) (float64, float64) {
	n := math.Pow(2, float64(zoom))
	lat := math.Max(-maxLat, math.Min(maxLat, p.Lat))
	latRad := lat * math.Pi / 180.0
	x := tileSize * n * (p.Lng + 180) / 360
	y := tileSize * n * (1 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2
	return x, y
}

// latLngAt converts world pixel coordinates back to a coordinate.
func latLngAt(x, y float64, zoom int) domain.LatLng {
	n := math.Pow(2, float64(zoom))
	lng := (x/(tileSize*n))*360 - 180
	latRad := math.Pi * (1 - 2*y/(tileSize*n))
	lat := 180 / math.Pi * math.Atan(math.Sinh(latRad))
	return domain.LatLng{Lat: lat, Lng: lng}
}

// Project returns the fractional cell position of p.
func (v Viewport) Project(p domain.LatLng) (col, row float64) {
	cx, cy := worldXY(v.Center, v.Zoom)
	x, y := worldXY(p, v.Zoom)
	return (x-cx)/cellWidth + float64(v.Cols)/2, (y-cy)/cellHeight + float64(v.Rows)/2
}

// Cell returns the cell containing p; ok is false when it is off screen.
func (v Viewport) Cell(p domain.LatLng) (col, row int, ok bool) {
	fc, fr := v.Project(p)
	col, row = int(math.Floor(fc)), int(math.Floor(fr))
	return col, row, col >= 0 && col < v.Cols && row >= 0 && row < v.Rows
}

// Unproject returns the coordinate at the center of a cell.
func (v Viewport) Unproject(col, row int) domain.LatLng {
	return v.at(float64(col)+0.5, float64(row)+0.5)
}

func (v Viewport) at(col, row float64) domain.LatLng {
	cx, cy := worldXY(v.Center, v.Zoom)
	x := cx + (col-float64(v.Cols)/2)*cellWidth
	y := cy + (row-float64(v.Rows)/2)*cellHeight
	p := latLngAt(x, y, v.Zoom)
	p.Lng = math.Max(-180, math.Min(180, p.Lng))
	return p
}

// Bounds returns the geographic box shown by the viewport.
func (v Viewport) Bounds() domain.Bounds {
	nw := v.at(0, 0)
	se := v.at(float64(v.Cols), float64(v.Rows))
	return domain.Bounds{South: se.Lat, West: nw.Lng, North: nw.Lat, East: se.Lng}
}

// Pan moves the center by whole cells.
func (v *Viewport) Pan(cols, rows int) {
	v.Center = v.at(float64(v.Cols)/2+float64(cols), float64(v.Rows)/2+float64(rows))
}

// SetZoom changes the zoom level within the supported range.
func (v *Viewport) SetZoom(z int) {
	v.Zoom = max(minZoom, min(maxZoom, z))
}

// Fit centers b and picks the highest zoom at which it fits inside the
// viewport minus the padding.
func (v *Viewport) Fit(b domain.Bounds, padCols, padRows int) {
	availCols := float64(max(1, v.Cols-2*padCols))
	availRows := float64(max(1, v.Rows-2*padRows))

	zoom := minZoom
	for z := maxFitZoom; z >= minZoom; z-- {
		x0, y0 := worldXY(domain.LatLng{Lat: b.North, Lng: b.West}, z)
		x1, y1 := worldXY(domain.LatLng{Lat: b.South, Lng: b.East}, z)
		if (x1-x0)/cellWidth <= availCols && (y1-y0)/cellHeight <= availRows {
			zoom = z
			break
		}
	}

	x0, y0 := worldXY(domain.LatLng{Lat: b.North, Lng: b.West}, zoom)
	x1, y1 := worldXY(domain.LatLng{Lat: b.South, Lng: b.East}, zoom)
	v.Zoom = zoom
	v.Center = latLngAt((x0+x1)/2, (y0+y1)/2, zoom)
}

// gridStep picks a graticule spacing in degrees that keeps meridians at
// least eight columns apart.
func gridStep(zoom int) float64 {
	degPerCol := 360 / (tileSize * math.Pow(2, float64(zoom)) / cellWidth)
	for _, step := range []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30} {
		if step/degPerCol >= 8 {
			return step
		}
	}
	return 60
}
