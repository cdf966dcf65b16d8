package main

import (
	"context"
	"log"
	"log/slog"
	"time"

	"go.temporal.io/sdk/worker"

	"github.com/samirrijal/geooffset/internal/adapters/geos"
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
	"github.com/samirrijal/geooffset/internal/workflows"
)

// The worker runs the batch zone workflow and serves offset.compute over NATS.
func main() {
	cfg, err := config.Load("geooffset-worker")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.TempoAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	db, err := postgres.New(ctx, cfg.Database.DSN(), cfg.Database.MaxConns)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	var cache ports.CacheService
	if vc, err := valkey.New(cfg.Valkey.Addr); err != nil {
		slog.Warn("valkey unavailable", "error", err)
	} else {
		defer vc.Close()
		cache = vc
	}

	pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("nats: %v", err)
	}
	defer pub.Close()

	newOffsetter := func(opts domain.OffsetOptions) ports.PlanarOffsetter { return geos.New(opts) }
	offsets := usecases.NewOffsetService(newOffsetter, cfg.Offset.Options(), cache, pub, cfg.Valkey.CacheTTL)
	zones := usecases.NewZoneService(offsets, postgres.NewZoneRepo(db), pub)

	// NATS request/reply
	responder := natsadapter.NewResponder(pub.Conn(), offsets, time.Duration(cfg.Server.RequestTimeout)*time.Second)
	if err := responder.Start(ctx); err != nil {
		log.Fatalf("responder: %v", err)
	}
	defer responder.Close()
	slog.Info("nats responder started", "subject", natsadapter.SubjectCompute, "queue", natsadapter.QueueWorkers)

	// Temporal
	starter, err := temporaladapter.Dial(cfg.Temporal.HostPort, cfg.Temporal.Namespace, cfg.Temporal.TaskQueue)
	if err != nil {
		log.Fatalf("temporal: %v", err)
	}
	defer starter.Close()

	w := worker.New(starter.Client(), cfg.Temporal.TaskQueue, worker.Options{})
	w.RegisterWorkflow(workflows.BatchZoneWorkflow)
	w.RegisterActivity(&workflows.ZoneActivities{Zones: zones, Events: pub})

	slog.Info("batch zone worker started", "task_queue", cfg.Temporal.TaskQueue)
	if err := w.Run(worker.InterruptCh()); err != nil {
		log.Fatalf("worker: %v", err)
	}
}
