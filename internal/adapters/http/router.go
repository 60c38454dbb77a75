package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/zonemap/internal/pkg/metrics"
)

const requestTimeout = 15 * time.Second

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed, // Balance speed vs compression ratio
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: vertex drags fire many requests, so the budget is generous.
	app.Use(limiter.New(limiter.Config{
		Max:        600,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Conditional GETs keyed on the zone snapshot
	app.Use(ETagMiddleware(deps.Store))

	// Default Cache-Control headers
	app.Use(CachingMiddleware())

	// Health & readiness (no timeout, fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")

	// Zones. Static segments go before /:id.
	v1.Get("/zones", ListZonesHandler(deps))
	v1.Post("/zones", CreateZoneHandler(deps))
	v1.Get("/zones/contains", timeout.NewWithContext(ContainsHandler(deps), requestTimeout))
	v1.Get("/zones/export", ExportZonesHandler(deps))
	v1.Post("/zones/import", ImportZonesHandler(deps))
	v1.Get("/zones/:id", GetZoneHandler(deps))
	v1.Patch("/zones/:id", UpdateZoneHandler(deps))
	v1.Put("/zones/:id/ring", ReplaceRingHandler(deps))
	v1.Delete("/zones/:id", DeleteZoneHandler(deps))

	// Edit session
	v1.Get("/session", SessionStateHandler(deps))
	v1.Put("/session/pen", SetPenHandler(deps))
	v1.Post("/session/draw", StartDrawHandler(deps))
	v1.Delete("/session/draw", CancelDrawHandler(deps))
	v1.Post("/session/draw/complete", CompleteDrawHandler(deps))
	v1.Post("/session/edit", BeginEditHandler(deps))
	v1.Delete("/session/edit", EndEditHandler(deps))
	v1.Put("/session/edit/vertices/:index", MoveVertexHandler(deps))
	v1.Delete("/session/edit/vertices/:index", DeleteVertexHandler(deps))
	v1.Post("/session/edit/edges/:index", InsertVertexHandler(deps))
	v1.Post("/session/vertex-events", VertexEventHandler(deps))

	// Map frame
	v1.Get("/render", RenderHandler(deps))

	// GraphQL
	app.Post("/graphql", timeout.NewWithContext(GraphQLHandler(deps), requestTimeout))

	// API documentation (Swagger UI)
	SetupDocs(app, DefaultSpecPath)

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
