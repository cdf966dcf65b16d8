package ports

import (
	"context"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// PlanarOffsetter buffers a planar ring by a signed distance in planar units.
// Implementations close the ring themselves and return the outer result ring.
type PlanarOffsetter interface {
	Offset(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error)
}

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishOffsetComputed(ctx context.Context, event *domain.OffsetComputedEvent) error
	PublishZoneEvent(ctx context.Context, event *domain.ZoneEvent) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}
