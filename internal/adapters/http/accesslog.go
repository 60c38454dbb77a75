package http

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

func levelForStatus(status int, err error) slog.Level {
	switch {
	case err != nil || status >= fiber.StatusInternalServerError:
		return slog.LevelError
	case status >= fiber.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// AccessLogMiddleware writes one structured line per request. Zone and vertex
// route parameters are attached when present.
func AccessLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		method, path := c.Method(), c.Path()

		err := c.Next()

		status := c.Response().StatusCode()
		requestID, _ := c.Locals("requestid").(string)
		attrs := make([]slog.Attr, 0, 9)
		attrs = append(attrs,
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int("bytes_out", len(c.Response().Body())),
			slog.String("request_id", requestID),
		)
		if id := c.Params("id"); id != "" {
			attrs = append(attrs, slog.String("zone_id", id))
		}
		if idx := c.Params("index"); idx != "" {
			attrs = append(attrs, slog.String("vertex", idx))
		}
		if err != nil {
			attrs = append(attrs, slog.String("error", err.Error()))
		}

		slog.LogAttrs(c.UserContext(), levelForStatus(status, err), method+" "+path, attrs...)
		return err
	}
}
