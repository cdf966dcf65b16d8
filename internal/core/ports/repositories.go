package ports

import (
	"context"

	"github.com/samirrijal/geooffset/internal/core/domain"
)

// ZoneRepository persists offset zones.
type ZoneRepository interface {
	// Create stores zone and fills in its ID and CreatedAt. When zone.ID is preset,
	// storing the same ID again returns the existing row instead of a duplicate.
	Create(ctx context.Context, zone *domain.Zone) error
	GetByID(ctx context.Context, id string) (*domain.Zone, error)
	List(ctx context.Context, offset, limit int) ([]domain.Zone, int, error)
	Delete(ctx context.Context, id string) error
}
