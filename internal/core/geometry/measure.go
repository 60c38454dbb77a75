package geometry

import (
	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/pkg/geospatial"
)

// Summarize builds the list view of a zone, with geodesic measurements.
func Summarize(z domain.Zone) domain.ZoneSummary {
	pts := make([][2]float64, len(z.Ring))
	for i, c := range z.Ring {
		pts[i] = [2]float64{c.Lat, c.Lng}
	}
	return domain.ZoneSummary{
		ID:          z.ID,
		Name:        z.Name,
		Color:       z.Color,
		VertexCount: len(z.Ring),
		PerimeterM:  geospatial.RingPerimeter(pts),
		AreaM2:      geospatial.RingArea(pts),
		Bounds:      Bounds(z.Ring),
	}
}
