package geospatial

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/samirrijal/snippetmap/internal/core/domain"
)

const earthRadiusKm = 6371.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(a, b domain.LatLng) float64 {
	dLat := toRad(b.Lat - a.Lat)
	dLon := toRad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(a.Lat))*math.Cos(toRad(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c * 1000 // meters
}

// BoundsOf returns the smallest box containing all points. ok is false for
// an empty input.
func BoundsOf(points []domain.LatLng) (b domain.Bounds, ok bool) {
	if len(points) == 0 {
		return domain.Bounds{}, false
	}
	mp := make(orb.MultiPoint, 0, len(points))
	for _, p := range points {
		mp = append(mp, orb.Point{p.Lng, p.Lat})
	}
	return FromOrb(mp.Bound()), true
}

// FromOrb converts an orb bound (lon/lat ordered) into domain bounds.
func FromOrb(b orb.Bound) domain.Bounds {
	return domain.Bounds{South: b.Min.Lat(), West: b.Min.Lon(), North: b.Max.Lat(), East: b.Max.Lon()}
}

// ToOrb converts domain bounds into an orb bound.
func ToOrb(b domain.Bounds) orb.Bound {
	return orb.Bound{Min: orb.Point{b.West, b.South}, Max: orb.Point{b.East, b.North}}
}

// Round6 rounds both components to the six decimals sent on the wire.
func Round6(p domain.LatLng) domain.LatLng {
	return domain.LatLng{Lat: round(p.Lat, 6), Lng: round(p.Lng, 6)}
}

func round(v float64, digits int) float64 {
	f := math.Pow(10, float64(digits))
	return math.Round(v*f) / f
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
