package geospatial

import (
	"math"

	"github.com/golang/geo/s2"
)

const earthRadiusM = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLon := toRad(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// RingPerimeter returns the length in meters of the closed ring through the
// given [lat, lng] vertices, including the closing edge.
func RingPerimeter(ring [][2]float64) float64 {
	n := len(ring)
	if n < 2 {
		return 0
	}
	var total float64
	for i := 0; i < n; i++ {
		a, b := ring[i], ring[(i+1)%n]
		total += Haversine(a[0], a[1], b[0], b[1])
	}
	return total
}

// RingArea returns the spherical area in square meters enclosed by the ring
// of [lat, lng] vertices. Orientation does not matter: the smaller of the two
// regions the loop separates is measured.
func RingArea(ring [][2]float64) float64 {
	if len(ring) < 3 {
		return 0
	}
	pts := make([]s2.Point, len(ring))
	for i, c := range ring {
		pts[i] = s2.PointFromLatLng(s2.LatLngFromDegrees(c[0], c[1]))
	}
	loop := s2.LoopFromPoints(pts)
	loop.Normalize()
	return loop.Area() * earthRadiusM * earthRadiusM
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
