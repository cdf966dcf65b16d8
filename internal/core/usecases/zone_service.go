package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/ports"
	"github.com/samirrijal/geooffset/internal/pkg/metrics"
	"github.com/samirrijal/geooffset/internal/pkg/telemetry"
)

const (
	defaultZoneLimit = 50
	maxZoneLimit     = 200
)

// MaxZoneNameLen is the longest zone name accepted, in bytes after trimming.
const MaxZoneNameLen = 200

// ZoneService computes offset polygons and persists them as named zones.
type ZoneService struct {
	offsets *OffsetService
	zones   ports.ZoneRepository
	events  ports.EventPublisher
	now     func() time.Time
}

// NewZoneService creates a new ZoneService. events may be nil.
func NewZoneService(offsets *OffsetService, zones ports.ZoneRepository, events ports.EventPublisher) *ZoneService {
	return &ZoneService{offsets: offsets, zones: zones, events: events, now: time.Now}
}

// Create offsets req and stores the result under name.
func (s *ZoneService) Create(ctx context.Context, name string, req domain.OffsetRequest) (*domain.Zone, error) {
	return s.CreateWithID(ctx, "", name, req)
}

// CreateWithID is Create with a caller-chosen zone ID. Repeating a call with the same
// ID yields the zone stored by the first call, which makes retries safe.
func (s *ZoneService) CreateWithID(ctx context.Context, id, name string, req domain.OffsetRequest) (*domain.Zone, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "zone.create")
	defer span.End()

	zone, err := s.create(ctx, id, name, req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, domain.ErrorCode(err))
		return nil, err
	}
	span.SetAttributes(attribute.String("zone.id", zone.ID))
	return zone, nil
}

func (s *ZoneService) create(ctx context.Context, id, name string, req domain.OffsetRequest) (*domain.Zone, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: zone name must not be empty", domain.ErrInvalidRequest)
	}
	if len(name) > MaxZoneNameLen {
		return nil, fmt.Errorf("%w: zone name longer than %d characters", domain.ErrInvalidRequest, MaxZoneNameLen)
	}

	res, err := s.offsets.Compute(ctx, req)
	if err != nil {
		return nil, err
	}
	if len(res.Polygon) < 3 {
		return nil, domain.ErrEmptyResult
	}

	zone := &domain.Zone{
		ID:           id,
		Name:         name,
		Source:       req.Polygon,
		Boundary:     res.Polygon,
		OffsetMeters: req.OffsetMeters,
		Zoom:         req.Viewport.Zoom,
	}
	if err := s.zones.Create(ctx, zone); err != nil {
		return nil, fmt.Errorf("save zone: %w", err)
	}
	metrics.ZonesCreated.Inc()

	s.publish(ctx, &domain.ZoneEvent{Type: "created", ZoneID: zone.ID, Name: zone.Name})
	return zone, nil
}

// Get returns the zone with the given ID.
func (s *ZoneService) Get(ctx context.Context, id string) (*domain.Zone, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: zone id is required", domain.ErrInvalidRequest)
	}
	zone, err := s.zones.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if zone == nil {
		return nil, domain.ErrNotFound
	}
	return zone, nil
}

// List returns a page of zones, newest first, and the total count.
func (s *ZoneService) List(ctx context.Context, offset, limit int) ([]domain.Zone, int, error) {
	if limit <= 0 {
		limit = defaultZoneLimit
	}
	if limit > maxZoneLimit {
		limit = maxZoneLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.zones.List(ctx, offset, limit)
}

// Delete removes a zone.
func (s *ZoneService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: zone id is required", domain.ErrInvalidRequest)
	}
	if err := s.zones.Delete(ctx, id); err != nil {
		return err
	}
	s.publish(ctx, &domain.ZoneEvent{Type: "deleted", ZoneID: id})
	return nil
}

func (s *ZoneService) publish(ctx context.Context, event *domain.ZoneEvent) {
	if s.events == nil {
		return
	}
	event.At = s.now().UTC()
	if err := s.events.PublishZoneEvent(ctx, event); err != nil {
		slog.Warn("publish zone event", "type", event.Type, "zone_id", event.ZoneID, "error", err)
	}
}
