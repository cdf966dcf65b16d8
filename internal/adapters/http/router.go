package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/samirrijal/geooffset/internal/pkg/metrics"
)

const (
	requestTimeout = 15 * time.Second

	// Per-IP budget for REST and GraphQL calls. Offsets are CPU bound, so the budget is
	// lower than a typical read API.
	rateLimitMax    = 120
	rateLimitWindow = time.Minute
)

// SetupRoutes registers middleware plus the REST, GraphQL, docs and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	app.Get("/metrics", metrics.Handler())
	useMiddleware(app)

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	v1 := app.Group("/v1")
	v1.Get("/offset/defaults", OffsetDefaultsHandler(deps))
	v1.Post("/offset", withTimeout(OffsetHandler(deps)))
	v1.Post("/zones", withTimeout(CreateZoneHandler(deps)))
	v1.Post("/zones/batch", withTimeout(BatchZonesHandler(deps)))
	v1.Get("/zones", withTimeout(ListZonesHandler(deps)))
	v1.Get("/zones/:id", withTimeout(GetZoneHandler(deps)))
	v1.Delete("/zones/:id", withTimeout(DeleteZoneHandler(deps)))

	app.Post("/graphql", withTimeout(GraphQLHandler(deps)))

	SetupDocs(app, deps.DocsPath)

	ws := app.Group("/ws", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	ws.Get("/offset", websocket.New(OffsetWebSocketHandler(deps)))
	ws.Get("/zones", websocket.New(ZoneEventsWebSocketHandler(deps.NATS)))
}

func withTimeout(h fiber.Handler) fiber.Handler {
	return timeout.NewWithContext(h, requestTimeout)
}

// useMiddleware installs the shared chain. Order matters: the request ID must exist
// before the logger middlewares read it.
func useMiddleware(app *fiber.App) {
	app.Use(metrics.Middleware())
	app.Use(compress.New(compress.Config{Level: compress.LevelBestSpeed}))
	app.Use(requestid.New())
	app.Use(RequestIDLogMiddleware())
	app.Use(AccessLogMiddleware())

	app.Use(limiter.New(limiter.Config{
		Max:          rateLimitMax,
		Expiration:   rateLimitWindow,
		KeyGenerator: func(c *fiber.Ctx) string { return c.IP() },
		LimitReached: func(c *fiber.Ctx) error {
			return newError(c, fiber.StatusTooManyRequests, "rate_limited", "too many requests, please try again later")
		},
		// WebSocket frames have their own per-connection limiter.
		Next: websocket.IsWebSocketUpgrade,
	}))

	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	app.Use(ETagMiddleware())
	app.Use(CachingMiddleware())
}
