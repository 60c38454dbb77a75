// Package geometry holds the pure functions behind zone editing and queries:
// ring normalization, point-in-polygon containment and measurements.
package geometry

import (
	"fmt"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// MinRingVertices is the smallest vertex count that still encloses an area.
const MinRingVertices = 3

// NormalizeRing drops consecutive duplicate points, including a closing point
// that repeats the first vertex, and returns the result as a new Ring. It fails
// with domain.ErrInvalidGeometry when a coordinate is out of range or fewer
// than three points remain.
func NormalizeRing(points []domain.Coordinate) (domain.Ring, error) {
	out := make(domain.Ring, 0, len(points))
	for i, p := range points {
		if !p.Valid() {
			return nil, fmt.Errorf("%w: vertex %d (%v, %v) out of range", domain.ErrInvalidGeometry, i, p.Lat, p.Lng)
		}
		if len(out) > 0 && out[len(out)-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	if len(out) < MinRingVertices {
		return nil, fmt.Errorf("%w: ring needs at least %d distinct vertices, got %d",
			domain.ErrInvalidGeometry, MinRingVertices, len(out))
	}
	return out, nil
}

// Bounds returns the lat/lng bounding box of the ring.
func Bounds(ring domain.Ring) domain.Bounds {
	if len(ring) == 0 {
		return domain.Bounds{}
	}
	b := domain.Bounds{MinLat: ring[0].Lat, MaxLat: ring[0].Lat, MinLng: ring[0].Lng, MaxLng: ring[0].Lng}
	for _, c := range ring[1:] {
		b.MinLat = min(b.MinLat, c.Lat)
		b.MaxLat = max(b.MaxLat, c.Lat)
		b.MinLng = min(b.MinLng, c.Lng)
		b.MaxLng = max(b.MaxLng, c.Lng)
	}
	return b
}
