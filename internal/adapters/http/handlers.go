package http

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/zonemap/internal/adapters/geojson"
	"github.com/samirrijal/zonemap/internal/core/domain"
	"github.com/samirrijal/zonemap/internal/core/geometry"
)

// ListZonesHandler returns zone summaries in creation order.
func ListZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		summaries := deps.Queries.Summaries()
		pg := pageFromQuery(c, len(summaries))
		SetLinkHeaders(c, pg)
		return c.JSON(PaginatedResponse{Data: paginate(summaries, pg), Pagination: pg})
	}
}

// GetZoneHandler returns a single zone with its ring.
func GetZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		z, err := deps.Queries.Get(domain.ZoneID(c.Params("id")))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// CreateZoneHandler creates a zone without going through a drawing session.
func CreateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req drawRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		color, err := colorOr(req.Color, deps.Session.PenColor())
		if err != nil {
			return errDomain(c, err)
		}

		z, err := deps.Store.Create(req.Name, color, toCoordinates(req.Points))
		if err != nil {
			return errDomain(c, err)
		}
		c.Location("/v1/zones/" + string(z.ID))
		return c.Status(fiber.StatusCreated).JSON(z)
	}
}

// UpdateZoneHandler renames and/or recolors a zone.
func UpdateZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req updateZoneRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		if req.Name == nil && req.Color == nil {
			return errBadRequest(c, "name or color is required")
		}

		var color *domain.Color
		if req.Color != nil {
			parsed, err := domain.ParseColor(*req.Color)
			if err != nil {
				return errDomain(c, err)
			}
			color = &parsed
		}

		z, err := deps.Store.Update(domain.ZoneID(c.Params("id")), req.Name, color)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// ReplaceRingHandler replaces a zone's geometry.
func ReplaceRingHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req replaceRingRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		z, err := deps.Store.ReplaceGeometry(domain.ZoneID(c.Params("id")), toCoordinates(req.Points))
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// DeleteZoneHandler removes a zone.
func DeleteZoneHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Store.Delete(domain.ZoneID(c.Params("id"))); err != nil {
			return errDomain(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ContainsResponse answers a point query.
type ContainsResponse struct {
	Point   domain.Coordinate `json:"point"`
	Inside  bool              `json:"inside"`
	Zone    *domain.Zone      `json:"zone,omitempty"`
	Message string            `json:"message"`
}

// ContainsHandler reports the first zone containing ?lat=&lng=. Without
// both parameters the configured check point is used.
func ContainsHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		point := deps.Queries.CheckPoint()
		latQ, lngQ := c.Query("lat"), c.Query("lng")
		switch {
		case latQ == "" && lngQ == "":
		case latQ == "" || lngQ == "":
			return errBadRequest(c, "lat and lng must be given together")
		default:
			lat, err := strconv.ParseFloat(latQ, 64)
			if err != nil {
				return errBadRequest(c, "lat must be a number")
			}
			lng, err := strconv.ParseFloat(lngQ, 64)
			if err != nil {
				return errBadRequest(c, "lng must be a number")
			}
			point = domain.Coordinate{Lat: lat, Lng: lng}
		}

		z, err := deps.Queries.ContainingZone(c.UserContext(), point)
		if err != nil {
			return errDomain(c, err)
		}

		resp := ContainsResponse{Point: point, Zone: z, Inside: z != nil}
		if z != nil {
			resp.Message = fmt.Sprintf("Coordinate is inside zone: %s", z.Name)
		} else {
			resp.Message = "Coordinate is not inside any zone"
		}
		return c.JSON(resp)
	}
}

// ExportZonesHandler returns all zones as a GeoJSON FeatureCollection.
func ExportZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		data, err := geojson.Encode(deps.Queries.List())
		if err != nil {
			return errInternal(c, err.Error())
		}
		c.Set(fiber.HeaderContentType, "application/geo+json")
		return c.Send(data)
	}
}

// ImportZonesHandler creates one zone per Polygon feature of a GeoJSON
// FeatureCollection. Every feature is checked before any zone is created.
func ImportZonesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		features, err := geojson.Decode(c.Body(), deps.Session.PenColor())
		if err != nil {
			if isDomainErr(err) {
				return errDomain(c, err)
			}
			return errBadRequest(c, err.Error())
		}

		for i, f := range features {
			if strings.TrimSpace(f.Name) == "" {
				features[i].Name = fmt.Sprintf("Zone %d", i+1)
			}
			if _, err := geometry.NormalizeRing(f.Ring); err != nil {
				return errDomain(c, fmt.Errorf("feature %d: %w", i, err))
			}
		}

		created := make([]domain.Zone, 0, len(features))
		for _, f := range features {
			z, err := deps.Store.Create(f.Name, f.Color, f.Ring)
			if err != nil {
				return errDomain(c, err)
			}
			created = append(created, z)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"created": created})
	}
}

// RenderHandler returns the map frame: every zone with its styling and
// whether it is the one being edited.
func RenderHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(renderFrame(deps))
	}
}
