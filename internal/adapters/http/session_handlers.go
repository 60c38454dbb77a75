package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// SessionStateHandler returns the edit session state.
func SessionStateHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Session.State())
	}
}

// StartDrawHandler enters drawing mode.
func StartDrawHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Session.StartDraw(); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(deps.Session.State())
	}
}

// CancelDrawHandler leaves drawing mode without creating a zone.
func CancelDrawHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := deps.Session.CancelDraw(); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(deps.Session.State())
	}
}

// CompleteDrawHandler turns the finished drawing into a zone. An empty name
// is a dismissed prompt: no zone is created and 204 is returned.
func CompleteDrawHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req drawRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		color, err := colorOr(req.Color, deps.Session.PenColor())
		if err != nil {
			return errDomain(c, err)
		}

		z, err := deps.Session.CompleteDraw(toCoordinates(req.Points), req.Name, color)
		if err != nil {
			return errDomain(c, err)
		}
		if z == nil {
			return c.SendStatus(fiber.StatusNoContent)
		}
		c.Location("/v1/zones/" + string(z.ID))
		return c.Status(fiber.StatusCreated).JSON(z)
	}
}

// BeginEditHandler makes a zone the edit target.
func BeginEditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req beginEditRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		if err := deps.Session.BeginEdit(domain.ZoneID(req.ZoneID)); err != nil {
			return errDomain(c, err)
		}
		return c.JSON(deps.Session.State())
	}
}

// EndEditHandler leaves edit mode. Calling it outside edit mode is harmless.
func EndEditHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		deps.Session.EndEdit()
		return c.JSON(deps.Session.State())
	}
}

// MoveVertexHandler moves vertex :index of the edit target.
func MoveVertexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		var req pointRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		z, err := deps.Session.ApplyVertexMove(i, req.Point.toDomain())
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// InsertVertexHandler splits edge :index of the edit target.
func InsertVertexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		var req pointRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		z, err := deps.Session.ApplyEdgeInsert(i, req.Point.toDomain())
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// DeleteVertexHandler removes vertex :index of the edit target.
func DeleteVertexHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		i, err := c.ParamsInt("index")
		if err != nil {
			return errBadRequest(c, "index must be an integer")
		}
		z, err := deps.Session.ApplyVertexDelete(i)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// VertexEventHandler accepts a raw edit event as reported by the map, with
// the zone addressed by its render index.
func VertexEventHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req vertexEventRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		kind, err := domain.ParseVertexEventKind(req.Kind)
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		ev := domain.VertexEvent{ZoneIndex: *req.ZoneIndex, Kind: kind, Position: *req.Position}
		if kind != domain.VertexDelete {
			if req.Point.Lat == nil || req.Point.Lng == nil {
				return errBadRequest(c, "point is required for move and insert")
			}
			ev.Point = req.Point.toDomain()
		}

		z, err := deps.Session.HandleVertexEvent(ev)
		if err != nil {
			return errDomain(c, err)
		}
		return c.JSON(z)
	}
}

// SetPenHandler changes the color new drawings get by default.
func SetPenHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req penRequest
		if ok, err := bind(c, &req); !ok {
			return err
		}
		color, err := domain.ParseColor(req.Color)
		if err != nil {
			return errDomain(c, err)
		}
		deps.Session.SetPenColor(color)
		return c.JSON(deps.Session.State())
	}
}
