// Package geo picks the next postcode to probe, spreading coverage across
// the country with a greedy farthest-point strategy.
package geo

import (
	"math"
	"regexp"
	"strings"
)

const (
	// earthRadiusKm is the mean Earth radius used by the haversine formula.
	earthRadiusKm = 6371
	// unknownDistanceKm stands in when either endpoint has no known
	// centroid. Large on purpose: unmapped areas should look attractive to
	// the maximin pick, never be skipped.
	unknownDistanceKm = 1000
)

var outwardArea = regexp.MustCompile(`^([A-Z]+\d+[A-Z]?)`)

// Selector chooses postcodes from a fixed catalog. The zero value is not
// usable; construct with NewSelector.
type Selector struct {
	catalog []string
	coords  map[string]Coordinate
}

// NewSelector returns a selector over the built-in UK catalog.
func NewSelector() *Selector {
	return &Selector{catalog: Catalog, coords: Coordinates}
}

// NewSelectorWithCatalog returns a selector over a custom catalog, used by
// tests and by callers that restrict the probe region.
func NewSelectorWithCatalog(catalog []string, coords map[string]Coordinate) *Selector {
	return &Selector{catalog: catalog, coords: coords}
}

// Count reports the catalog size.
func (s *Selector) Count() int {
	return len(s.catalog)
}

// SelectNext returns the unused postcode whose minimum haversine distance to
// every used postcode is largest. An empty used set yields the first catalog
// entry so runs start from a repeatable seed. Ties break toward catalog
// order. The second return is false once every entry has been used.
func (s *Selector) SelectNext(used map[string]struct{}) (string, bool) {
	if len(used) == 0 {
		if len(s.catalog) == 0 {
			return "", false
		}
		return s.catalog[0], true
	}

	best := ""
	bestMin := -1.0
	for _, candidate := range s.catalog {
		if _, ok := used[candidate]; ok {
			continue
		}
		minDist := math.Inf(1)
		for u := range used {
			if d := s.Distance(candidate, u); d < minDist {
				minDist = d
			}
		}
		// Strict > keeps the first-encountered winner on ties.
		if minDist > bestMin {
			bestMin = minDist
			best = candidate
		}
	}
	if best == "" {
		return "", false
	}
	return best, true
}

// Distance returns the approximate great-circle distance in kilometres
// between two postcodes, matching on their outward areas. Unknown endpoints
// yield unknownDistanceKm rather than an error.
func (s *Selector) Distance(a, b string) float64 {
	ca, okA := s.coords[postcodeArea(a)]
	cb, okB := s.coords[postcodeArea(b)]
	if !okA || !okB {
		return unknownDistanceKm
	}
	return haversine(ca, cb)
}

func haversine(a, b Coordinate) float64 {
	dLat := toRadians(b.Lat - a.Lat)
	dLon := toRadians(b.Lon - a.Lon)
	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(a.Lat))*math.Cos(toRadians(b.Lat))*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return earthRadiusKm * 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// postcodeArea extracts the outward area from a full postcode, e.g.
// "SW1A 1AA" -> "SW1A".
func postcodeArea(postcode string) string {
	parts := strings.Fields(strings.TrimSpace(strings.ToUpper(postcode)))
	if len(parts) == 0 {
		return ""
	}
	if m := outwardArea.FindString(parts[0]); m != "" {
		return m
	}
	return parts[0]
}
