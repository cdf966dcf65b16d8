package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/samirrijal/geooffset/internal/adapters/geos"
	"github.com/samirrijal/geooffset/internal/adapters/http"
	natsadapter "github.com/samirrijal/geooffset/internal/adapters/nats"
	"github.com/samirrijal/geooffset/internal/adapters/postgres"
	temporaladapter "github.com/samirrijal/geooffset/internal/adapters/temporal"
	"github.com/samirrijal/geooffset/internal/adapters/valkey"
	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/ports"
	"github.com/samirrijal/geooffset/internal/core/usecases"
	"github.com/samirrijal/geooffset/internal/pkg/config"
	"github.com/samirrijal/geooffset/internal/pkg/logging"
	"github.com/samirrijal/geooffset/internal/pkg/telemetry"
)

func main() {
	cfg, err := config.Load("geooffset-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Database
	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	deps := &http.Dependencies{DB: db}

	// Cache
	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
		deps.Cache = vc
	}

	// NATS
	var events ports.EventPublisher
	if pub, err := natsadapter.NewPublisher(cfg.NATS.URL); err != nil {
		slog.Warn("nats unavailable", "error", err)
	} else {
		defer pub.Close()
		events = pub
		deps.NATS = pub.Conn()
	}

	// Temporal
	if starter, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue); err != nil {
		slog.Warn("temporal unavailable, batch endpoint disabled", "error", err)
	} else {
		defer starter.Close()
		deps.Batches = starter
	}

	// Use cases
	newOffsetter := func(opts domain.OffsetOptions) ports.PlanarOffsetter { return geos.New(opts) }
	deps.Offsets = usecases.NewOffsetService(newOffsetter, cfg.Offset.Options(), cache, events, cfg.Valkey.CacheTTL)
	deps.Zones = usecases.NewZoneService(deps.Offsets, postgres.NewZoneRepo(db), events)

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "GeoOffset API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, If-None-Match",
		ExposeHeaders:    "ETag, Link, Location, X-Total-Count",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
