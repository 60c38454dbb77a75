package http

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>Zonemap API · Swagger UI</title>
  <link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
  <style>html{box-sizing:border-box}*,*::before,*::after{box-sizing:inherit}body{margin:0;background:#fafafa}</style>
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    SwaggerUIBundle({
      url: '/docs/openapi.yaml',
      dom_id: '#swagger-ui',
      deepLinking: true,
      presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      layout: 'BaseLayout',
    });
  </script>
</body>
</html>`

// DefaultSpecPath is where the OpenAPI document lives relative to the repo root.
const DefaultSpecPath = "api/openapi.yaml"

// SetupDocs registers Swagger UI at /docs plus the OpenAPI document at
// /docs/openapi.yaml and /docs/openapi.json. The document is loaded once; a
// missing or invalid file leaves only the UI mounted and the document routes
// answer 404.
func SetupDocs(app *fiber.App, specPath string) {
	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set("Content-Type", "text/html; charset=utf-8")
		return c.SendString(swaggerUIHTML)
	})

	raw, err := os.ReadFile(specPath)
	var asJSON []byte
	if err == nil {
		doc, lerr := openapi3.NewLoader().LoadFromData(raw)
		if lerr == nil {
			asJSON, lerr = json.Marshal(doc)
		}
		if lerr != nil {
			slog.Warn("openapi document unusable", "path", specPath, "error", lerr)
			raw = nil
		}
	} else {
		slog.Warn("openapi document not found", "path", specPath, "error", err)
	}

	app.Get("/docs/openapi.yaml", func(c *fiber.Ctx) error {
		if raw == nil {
			return newError(c, fiber.StatusNotFound, "not_found", "openapi.yaml not found")
		}
		c.Set("Content-Type", "application/yaml")
		return c.Send(raw)
	})
	app.Get("/docs/openapi.json", func(c *fiber.Ctx) error {
		if asJSON == nil {
			return newError(c, fiber.StatusNotFound, "not_found", "openapi.json not found")
		}
		c.Set("Content-Type", fiber.MIMEApplicationJSON)
		return c.Send(asJSON)
	})
}
