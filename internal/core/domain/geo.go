package domain

import "strconv"

// LatLng represents a geographic coordinate (WGS 84).
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Valid reports whether the coordinate lies within the WGS 84 ranges.
func (p LatLng) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// LatString formats the latitude with six decimals.
func (p LatLng) LatString() string { return FormatCoord(p.Lat) }

// LngString formats the longitude with six decimals.
func (p LatLng) LngString() string { return FormatCoord(p.Lng) }

// FormatCoord formats a coordinate component with the fixed six-decimal
// precision used on the wire and in query strings.
func FormatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

// Bounds represents a geographic bounding box.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// BBoxParam renders the bounds as "west,south,east,north".
func (b Bounds) BBoxParam() string {
	return FormatCoord(b.West) + "," + FormatCoord(b.South) + "," +
		FormatCoord(b.East) + "," + FormatCoord(b.North)
}

// Contains reports whether p is inside the bounds (edges included).
func (b Bounds) Contains(p LatLng) bool {
	return p.Lat >= b.South && p.Lat <= b.North && p.Lng >= b.West && p.Lng <= b.East
}

// Center returns the midpoint of the bounds.
func (b Bounds) Center() LatLng {
	return LatLng{Lat: (b.South + b.North) / 2, Lng: (b.West + b.East) / 2}
}
