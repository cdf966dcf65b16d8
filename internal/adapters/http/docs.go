package http

import (
	"log/slog"
	"os"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/gofiber/fiber/v2"
)

const defaultDocsPath = "api/openapi.yaml"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>GeoOffset API</title>
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

// SetupDocs registers Swagger UI at /docs and the OpenAPI document at
// /docs/openapi.yaml and /docs/openapi.json. The document is read once; when it is
// missing or invalid the document routes answer 404 and the UI still loads.
func SetupDocs(app *fiber.App, path string) {
	if path == "" {
		path = defaultDocsPath
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		slog.Warn("openapi document unavailable", "path", path, "error", err)
	}
	var asJSON []byte
	if raw != nil {
		doc, err := openapi3.NewLoader().LoadFromData(raw)
		if err == nil {
			asJSON, err = doc.MarshalJSON()
		}
		if err != nil {
			slog.Warn("openapi document not convertible to JSON", "path", path, "error", err)
		}
	}

	app.Get("/docs", func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
		return c.SendString(swaggerUIHTML)
	})
	app.Get("/docs/openapi.yaml", serveDoc(raw, "application/yaml"))
	app.Get("/docs/openapi.json", serveDoc(asJSON, fiber.MIMEApplicationJSON))
}

func serveDoc(data []byte, contentType string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if data == nil {
			return newError(c, fiber.StatusNotFound, "not_found", "openapi document not found")
		}
		c.Set(fiber.HeaderContentType, contentType)
		return c.Send(data)
	}
}
