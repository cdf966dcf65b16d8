package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/temporal"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/ports"
	"github.com/samirrijal/geooffset/internal/core/usecases"
)

// ZoneStore is the part of the zone service used by the activities.
type ZoneStore interface {
	CreateWithID(ctx context.Context, id, name string, req domain.OffsetRequest) (*domain.Zone, error)
	Delete(ctx context.Context, id string) error
}

// ZoneActivities holds the activity implementations for the batch zone workflow.
type ZoneActivities struct {
	Zones  ZoneStore
	Events ports.EventPublisher
}

// zoneIDSpace namespaces the name-based UUIDs of batch zones.
var zoneIDSpace = uuid.MustParse("6f1c2a8e-4b7d-4e0a-9c3f-5d2b8a1e7f40")

// BatchZoneID is the ID the zone named name gets inside workflow workflowID. It is
// the same on every attempt, so a retried insert finds the row a timed-out attempt
// already committed.
func BatchZoneID(workflowID, name string) string {
	return uuid.NewSHA1(zoneIDSpace, []byte(workflowID+"/"+name)).String()
}

// CreateZone offsets req and stores it, returning the zone ID. Errors caused by the
// request itself are not retried.
func (a *ZoneActivities) CreateZone(ctx context.Context, name string, req domain.OffsetRequest) (string, error) {
	id := BatchZoneID(activity.GetInfo(ctx).WorkflowExecution.ID, name)
	zone, err := a.Zones.CreateWithID(ctx, id, name, req)
	if err != nil {
		if usecases.IsClientError(err) {
			return "", temporal.NewNonRetryableApplicationError(err.Error(), domain.ErrorCode(err), err)
		}
		return "", fmt.Errorf("create zone %s: %w", name, err)
	}
	return zone.ID, nil
}

// PublishBatchCompleted announces a finished batch on the zone event stream.
func (a *ZoneActivities) PublishBatchCompleted(ctx context.Context, name string, zoneIDs []string) error {
	if a.Events == nil {
		slog.Info("batch completed (no publisher)", "name", name, "zones", len(zoneIDs))
		return nil
	}
	return a.Events.PublishZoneEvent(ctx, &domain.ZoneEvent{
		Type:    "batch_completed",
		Name:    name,
		ZoneIDs: zoneIDs,
		At:      time.Now().UTC(),
	})
}

// DeleteZone removes a zone (saga compensation / rollback). Missing zones count as deleted.
func (a *ZoneActivities) DeleteZone(ctx context.Context, id string) error {
	if err := a.Zones.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("delete zone %s: %w", id, err)
	}
	slog.Info("zone deleted (saga compensation)", "zone_id", id)
	return nil
}
