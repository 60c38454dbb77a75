// Package geojson converts zones to and from GeoJSON FeatureCollections.
// Each zone is one Polygon feature whose id is the zone id; name and color
// travel as properties, with simplestyle fill/stroke hints for viewers.
package geojson

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
)

// Feature is a zone read from GeoJSON. Ring is not normalized yet; ID is
// empty when the feature carried none.
type Feature struct {
	ID    domain.ZoneID
	Name  string
	Color domain.Color
	Ring  []domain.Coordinate
}

// Encode renders zones as a FeatureCollection, in the given order.
func Encode(zones []domain.Zone) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, z := range zones {
		f := geojson.NewFeature(geometry.ToOrbPolygon(z.Ring))
		f.ID = string(z.ID)
		f.Properties["name"] = z.Name
		f.Properties["color"] = z.Color.Hex()
		f.Properties["revision"] = z.Revision
		f.Properties["fill"] = z.Color.Hex()
		f.Properties["fill-opacity"] = domain.FillOpacity
		f.Properties["stroke"] = z.Color.Hex()
		f.Properties["stroke-width"] = domain.StrokeWeight
		fc.Append(f)
	}
	return fc.MarshalJSON()
}

// Decode reads Polygon features from a FeatureCollection. Only the outer
// ring of each polygon is kept. Features without a color get fallback.
func Decode(data []byte, fallback domain.Color) ([]Feature, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("parse geojson: %w", err)
	}

	out := make([]Feature, 0, len(fc.Features))
	for i, f := range fc.Features {
		poly, ok := f.Geometry.(orb.Polygon)
		if !ok || len(poly) == 0 {
			return nil, fmt.Errorf("feature %d: %w: expected a Polygon, got %T", i, domain.ErrInvalidGeometry, f.Geometry)
		}

		color := fallback
		hex := f.Properties.MustString("color", f.Properties.MustString("fill", ""))
		if hex != "" {
			if color, err = domain.ParseColor(hex); err != nil {
				return nil, fmt.Errorf("feature %d: %w", i, err)
			}
		}

		var id domain.ZoneID
		if s, ok := f.ID.(string); ok {
			id = domain.ZoneID(s)
		}

		out = append(out, Feature{
			ID:    id,
			Name:  f.Properties.MustString("name", ""),
			Color: color,
			Ring:  geometry.FromOrbRing(poly[0]),
		})
	}
	return out, nil
}
