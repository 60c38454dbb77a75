package http

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// coordinateDTO uses pointers so a missing lat or lng is a bad request while
// an out-of-range value is left to the core.
type coordinateDTO struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lng *float64 `json:"lng" validate:"required"`
}

func (d coordinateDTO) toDomain() domain.Coordinate {
	return domain.Coordinate{Lat: *d.Lat, Lng: *d.Lng}
}

func toCoordinates(in []coordinateDTO) []domain.Coordinate {
	out := make([]domain.Coordinate, len(in))
	for i, p := range in {
		out[i] = p.toDomain()
	}
	return out
}

// drawRequest creates a zone, either directly or by completing a drawing.
type drawRequest struct {
	Name   string          `json:"name" validate:"max=200"`
	Color  string          `json:"color"`
	Points []coordinateDTO `json:"points" validate:"required,dive"`
}

type updateZoneRequest struct {
	Name  *string `json:"name" validate:"omitnil,max=200"`
	Color *string `json:"color"`
}

type replaceRingRequest struct {
	Points []coordinateDTO `json:"points" validate:"required,dive"`
}

type beginEditRequest struct {
	ZoneID string `json:"zone_id" validate:"required"`
}

type pointRequest struct {
	Point coordinateDTO `json:"point"`
}

type vertexEventRequest struct {
	ZoneIndex *int          `json:"zone_index" validate:"required"`
	Kind      string        `json:"kind" validate:"required,oneof=move insert delete"`
	Position  *int          `json:"position" validate:"required"`
	Point     coordinateDTO `json:"point" validate:"-"`
}

type penRequest struct {
	Color string `json:"color" validate:"required"`
}

// bind parses the JSON body into dst and validates it. When ok is false the
// 400 response has already been written and err is what the handler returns.
func bind(c *fiber.Ctx, dst any) (ok bool, err error) {
	if err := c.BodyParser(dst); err != nil {
		return false, errBadRequest(c, "invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return false, errBadRequest(c, describeValidation(err))
	}
	return true, nil
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Namespace(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// colorOr parses s, or returns fallback when s is empty.
func colorOr(s string, fallback domain.Color) (domain.Color, error) {
	if strings.TrimSpace(s) == "" {
		return fallback, nil
	}
	return domain.ParseColor(s)
}
