package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	readyTimeout  = 3 * time.Second
	notConfigured = "not configured"
)

// probe is one readiness check. A failing required probe makes the service not ready.
type probe struct {
	name     string
	required bool
	check    func(ctx context.Context) string
}

func pingProbe(name string, p Pinger, required bool) probe {
	return probe{name: name, required: required, check: func(ctx context.Context) string {
		if p == nil {
			return notConfigured
		}
		if err := p.Ping(ctx); err != nil {
			return "error: " + err.Error()
		}
		return "ok"
	}}
}

func probesFor(deps *Dependencies) []probe {
	return []probe{
		pingProbe("database", deps.DB, true),
		pingProbe("cache", deps.Cache, false),
		{name: "nats", check: func(context.Context) string {
			switch {
			case deps.NATS == nil:
				return notConfigured
			case deps.NATS.IsConnected():
				return "ok"
			default:
				return "disconnected"
			}
		}},
		{name: "batches", check: func(context.Context) string {
			if deps.Batches == nil {
				return notConfigured
			}
			return "ok"
		}},
	}
}

// HealthHandler reports liveness only; it never touches a backend.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).Round(time.Second).String(),
			"version": "dev",
			"engine":  "geos",
		})
	}
}

// ReadyHandler runs every probe. Only the database is required; the cache, NATS and
// the batch workflow starter degrade gracefully.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := probesFor(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), readyTimeout)
		defer cancel()

		checks := make(map[string]string, len(probes))
		ready := true
		for _, p := range probes {
			res := p.check(ctx)
			checks[p.name] = res
			if p.required && res != "ok" {
				ready = false
			}
		}

		if !ready {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
