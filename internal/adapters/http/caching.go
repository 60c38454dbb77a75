package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

type cacheRule struct {
	prefix string
	exact  bool
	value  string
}

// Ordered: first match wins.
var cacheRules = []cacheRule{
	{prefix: "/v1/health", exact: true, value: "public, max-age=10"},
	{prefix: "/v1/ready", exact: true, value: "public, max-age=10"},
	{prefix: "/metrics", exact: true, value: "no-cache"},
	{prefix: "/graphql", exact: true, value: "private, max-age=0"},
	{prefix: "/v1/render", exact: true, value: "no-store"},
	{prefix: "/v1/session", value: "no-store"},
	// Zone reads revalidate against the snapshot ETag.
	{prefix: "/v1/zones", value: "no-cache"},
	{prefix: "/docs", value: "public, max-age=3600"},
}

func cacheControlFor(path string) string {
	for _, r := range cacheRules {
		if (r.exact && path == r.prefix) || (!r.exact && strings.HasPrefix(path, r.prefix)) {
			return r.value
		}
	}
	return ""
}

// CachingMiddleware fills in Cache-Control on GET responses that the handler
// left without one.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()
		if c.Method() != fiber.MethodGet || c.GetRespHeader(fiber.HeaderCacheControl) != "" {
			return err
		}
		if v := cacheControlFor(c.Path()); v != "" {
			c.Set(fiber.HeaderCacheControl, v)
		}
		return err
	}
}
