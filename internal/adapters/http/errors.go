package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/zonemap/internal/core/domain"
)

// APIError is a structured error response.
type APIError struct {
	Status    int    `json:"status"`
	Code      string `json:"code"`    // Error code: bad_request, not_found, invalid_geometry, etc.
	Message   string `json:"message"` // Human-readable message
	RequestID string `json:"request_id,omitempty"`
}

// newError builds a JSON error response with a request ID.
func newError(c *fiber.Ctx, status int, code string, message string) error {
	reqID, _ := c.Locals("requestid").(string)
	return c.Status(status).JSON(APIError{
		Status:    status,
		Code:      code,
		Message:   message,
		RequestID: reqID,
	})
}

// errBadRequest returns a 400 error.
func errBadRequest(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusBadRequest, "bad_request", msg)
}

// errInternal returns a 500 error.
func errInternal(c *fiber.Ctx, msg string) error {
	return newError(c, fiber.StatusInternalServerError, "internal_error", msg)
}

// domainErrors maps core error kinds to HTTP status and code, checked in order.
var domainErrors = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrNotFound, fiber.StatusNotFound, "not_found"},
	{domain.ErrInvalidTransition, fiber.StatusConflict, "invalid_transition"},
	{domain.ErrInvalidGeometry, fiber.StatusUnprocessableEntity, "invalid_geometry"},
	{domain.ErrInvalidName, fiber.StatusUnprocessableEntity, "invalid_name"},
	{domain.ErrIndexOutOfRange, fiber.StatusUnprocessableEntity, "index_out_of_range"},
	{domain.ErrInvalidColor, fiber.StatusUnprocessableEntity, "invalid_color"},
}

// errDomain turns an error from the core into an API error. Unknown errors
// are logged and reported as 500 without their text.
func errDomain(c *fiber.Ctx, err error) error {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return newError(c, m.status, m.code, err.Error())
		}
	}
	LoggerFromCtx(c.UserContext()).Error("unhandled error", "path", c.Path(), "error", err)
	return errInternal(c, "internal error")
}

func isDomainErr(err error) bool {
	for _, m := range domainErrors {
		if errors.Is(err, m.err) {
			return true
		}
	}
	return false
}
