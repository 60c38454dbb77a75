package http

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/zonemap/internal/core/usecases"
)

// ETagMiddleware answers conditional GETs. Zone reads are tagged with the
// store snapshot they were served from, so a matching If-None-Match is
// answered with 304 before the handler runs. Other GETs get a weak ETag from
// the response body.
func ETagMiddleware(store *usecases.ZoneStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() != fiber.MethodGet {
			return c.Next()
		}

		if store != nil && strings.HasPrefix(c.Path(), "/v1/zones") {
			snap := store.Snapshot()
			etag := fmt.Sprintf(`"%s-%d"`, snap.Epoch, snap.Version)
			if c.Get(fiber.HeaderIfNoneMatch) == etag {
				c.Set(fiber.HeaderETag, etag)
				return c.SendStatus(fiber.StatusNotModified)
			}
			if err := c.Next(); err != nil {
				return err
			}
			if c.Response().StatusCode() == fiber.StatusOK {
				c.Set(fiber.HeaderETag, etag)
			}
			return nil
		}

		// Process request first
		if err := c.Next(); err != nil {
			return err
		}

		// Only apply to successful responses with a body
		if c.Response().StatusCode() != fiber.StatusOK {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		// Compute weak ETag from SHA-256 of body (first 16 hex chars)
		h := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(h[:8]) + `"`
		c.Set(fiber.HeaderETag, etag)

		if c.Get(fiber.HeaderIfNoneMatch) == etag {
			c.Status(fiber.StatusNotModified)
			c.Response().ResetBody()
		}
		return nil
	}
}
