package geometry

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// ContainsPoint reports whether point lies inside ring.
//
// The test is planar: lng is x, lat is y, and edges are straight lines in that
// plane rather than great-circle arcs. This matches what browser map SDKs do
// for small zones and drifts for zones spanning several degrees or the
// antimeridian. Points exactly on an edge or vertex count as inside, for every
// rotation of the ring.
func ContainsPoint(ring domain.Ring, point domain.Coordinate) bool {
	if len(ring) < MinRingVertices {
		return false
	}
	return planar.RingContains(ToOrbRing(ring, false), orb.Point{point.Lng, point.Lat})
}

// ContainingZone returns the first zone, in the given order, whose ring
// contains point. Overlapping zones are not ranked: store order decides.
func ContainingZone(zones []domain.Zone, point domain.Coordinate) (domain.Zone, bool) {
	for _, z := range zones {
		if ContainsPoint(z.Ring, point) {
			return z, true
		}
	}
	return domain.Zone{}, false
}

// ToOrbRing converts a ring to orb's [lng, lat] order. With closed set the
// first vertex is repeated at the end, as GeoJSON and WKT require.
func ToOrbRing(ring domain.Ring, closed bool) orb.Ring {
	out := make(orb.Ring, 0, len(ring)+1)
	for _, c := range ring {
		out = append(out, orb.Point{c.Lng, c.Lat})
	}
	if closed && len(ring) > 0 {
		out = append(out, out[0])
	}
	return out
}

// ToOrbPolygon converts a ring to a single-ring closed polygon.
func ToOrbPolygon(ring domain.Ring) orb.Polygon {
	return orb.Polygon{ToOrbRing(ring, true)}
}

// FromOrbRing converts an orb ring back to coordinates. The result is not
// normalized.
func FromOrbRing(r orb.Ring) []domain.Coordinate {
	out := make([]domain.Coordinate, len(r))
	for i, p := range r {
		out[i] = domain.Coordinate{Lat: p.Lat(), Lng: p.Lon()}
	}
	return out
}
