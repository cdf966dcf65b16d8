package http

import (
	"context"

	"github.com/nats-io/nats.go"

	"github.com/samirrijal/geooffset/internal/core/usecases"
	"github.com/samirrijal/geooffset/internal/workflows"
)

// Pinger is implemented by backends checked by the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// BatchStarter launches batch zone workflows.
type BatchStarter interface {
	StartBatch(ctx context.Context, input workflows.BatchZoneInput) (workflowID, runID string, err error)
}

// Dependencies holds all services needed by HTTP handlers.
type Dependencies struct {
	Offsets *usecases.OffsetService
	Zones   *usecases.ZoneService
	Batches BatchStarter
	NATS    *nats.Conn
	DB      Pinger
	Cache   Pinger
	// DocsPath is the OpenAPI document served under /docs. Defaults to api/openapi.yaml.
	DocsPath string
}
