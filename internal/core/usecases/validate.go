package usecases

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samirrijal/snippetmap/internal/core/domain"
)

// ParseCoordinates parses form input into a coordinate. It accepts the pair
// iff both parse as finite numbers with -90 ≤ lat ≤ 90 and -180 ≤ lng ≤ 180.
func ParseCoordinates(latText, lngText string) (domain.LatLng, error) {
	lat, err := parseComponent("latitude", latText)
	if err != nil {
		return domain.LatLng{}, err
	}
	lng, err := parseComponent("longitude", lngText)
	if err != nil {
		return domain.LatLng{}, err
	}
	return ValidateCoordinates(domain.LatLng{Lat: lat, Lng: lng})
}

// ValidateCoordinates checks the WGS 84 ranges.
func ValidateCoordinates(p domain.LatLng) (domain.LatLng, error) {
	if p.Lat < -90 || p.Lat > 90 {
		return domain.LatLng{}, fmt.Errorf("%w: latitude must be between -90 and 90", domain.ErrInvalidCoordinates)
	}
	if p.Lng < -180 || p.Lng > 180 {
		return domain.LatLng{}, fmt.Errorf("%w: longitude must be between -180 and 180", domain.ErrInvalidCoordinates)
	}
	return p, nil
}

func parseComponent(name, s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: %s is required", domain.ErrInvalidCoordinates, name)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a number", domain.ErrInvalidCoordinates, name)
	}
	return v, nil
}
