package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// CachingMiddleware sets Cache-Control on responses the handler left alone.
// Offset results are cached server-side, so POST responses are never stored by clients.
func CachingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		err := c.Next()

		if existing := c.GetRespHeader(fiber.HeaderCacheControl); existing != "" {
			return err
		}

		path := c.Path()
		var ttl string

		switch {
		case c.Method() != fiber.MethodGet:
			ttl = "no-store"

		case path == "/v1/health" || path == "/v1/ready":
			ttl = "public, max-age=10"

		case path == "/metrics":
			ttl = "no-cache"

		case path == "/v1/offset/defaults":
			ttl = "public, max-age=300"

		case path == "/v1/zones":
			ttl = "private, max-age=0, must-revalidate"

		case strings.HasPrefix(path, "/v1/zones/"):
			ttl = "public, max-age=3600"

		case strings.HasPrefix(path, "/docs"):
			ttl = "public, max-age=86400"
		}

		if ttl != "" {
			c.Set(fiber.HeaderCacheControl, ttl)
		}

		return err
	}
}
