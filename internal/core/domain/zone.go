package domain

import "time"

// ZoneID is the opaque identity of a zone. It never changes over the zone's
// lifetime and is independent of the zone's position in the store.
type ZoneID string

// Zone is a named, colored polygonal region.
type Zone struct {
	ID        ZoneID    `json:"id"`
	Name      string    `json:"name"`
	Color     Color     `json:"color"`
	Ring      Ring      `json:"ring"`
	Revision  uint64    `json:"revision"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Clone returns a deep copy of z.
func (z Zone) Clone() Zone {
	z.Ring = z.Ring.Clone()
	return z
}

// ZoneSummary is the list-dialog view of a zone.
type ZoneSummary struct {
	ID          ZoneID  `json:"id"`
	Name        string  `json:"name"`
	Color       Color   `json:"color"`
	VertexCount int     `json:"vertex_count"`
	PerimeterM  float64 `json:"perimeter_m"`
	AreaM2      float64 `json:"area_m2"`
	Bounds      Bounds  `json:"bounds"`
}

// Rendering defaults for zone polygons on the map.
const (
	FillOpacity  = 0.4
	StrokeWeight = 2
)

// ZoneRender is what the map adapter needs to draw one zone.
type ZoneRender struct {
	ID           ZoneID  `json:"id"`
	Index        int     `json:"index"`
	Name         string  `json:"name"`
	Ring         Ring    `json:"ring"`
	FillColor    Color   `json:"fill_color"`
	StrokeColor  Color   `json:"stroke_color"`
	FillOpacity  float64 `json:"fill_opacity"`
	StrokeWeight int     `json:"stroke_weight"`
	Editable     bool    `json:"editable"`
}
