package usecases

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/offset"
	"github.com/samirrijal/geooffset/internal/core/ports"
	"github.com/samirrijal/geooffset/internal/pkg/geospatial"
	"github.com/samirrijal/geooffset/internal/pkg/metrics"
	"github.com/samirrijal/geooffset/internal/pkg/telemetry"
)

// OffsetterFactory builds a planar offset engine for one set of options.
type OffsetterFactory func(opts domain.OffsetOptions) ports.PlanarOffsetter

// OffsetService validates offset requests and runs them through the offset pipeline,
// with caching and event publication around it.
type OffsetService struct {
	newOffsetter OffsetterFactory
	defaults     domain.OffsetOptions
	cache        ports.CacheService
	events       ports.EventPublisher
	cacheTTL     int
	now          func() time.Time
}

// NewOffsetService creates an OffsetService. cache and events may be nil.
// cacheTTL is in seconds; 0 disables caching.
func NewOffsetService(newOffsetter OffsetterFactory, defaults domain.OffsetOptions, cache ports.CacheService, events ports.EventPublisher, cacheTTL int) *OffsetService {
	return &OffsetService{
		newOffsetter: newOffsetter,
		defaults:     defaults.WithDefaults(domain.DefaultOffsetOptions()),
		cache:        cache,
		events:       events,
		cacheTTL:     cacheTTL,
		now:          time.Now,
	}
}

// Defaults returns the options applied when a request leaves them unset.
func (s *OffsetService) Defaults() domain.OffsetOptions {
	return s.defaults
}

// Compute offsets req.Polygon by req.OffsetMeters in the Web-Mercator viewport described
// by req.Viewport.
func (s *OffsetService) Compute(ctx context.Context, req domain.OffsetRequest) (*domain.OffsetResult, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "offset.compute")
	defer span.End()
	span.SetAttributes(
		attribute.Int("offset.vertices", len(req.Polygon)),
		attribute.Float64("offset.meters", req.OffsetMeters),
		attribute.Float64("offset.zoom", req.Viewport.Zoom),
	)

	res, err := s.compute(ctx, req)
	if err != nil {
		code := domain.ErrorCode(err)
		metrics.OffsetComputations.WithLabelValues(code).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, code)
		return nil, err
	}

	if res.Cached {
		metrics.OffsetComputations.WithLabelValues("cached").Inc()
	} else {
		metrics.OffsetComputations.WithLabelValues("ok").Inc()
	}
	span.SetAttributes(
		attribute.Bool("offset.cached", res.Cached),
		attribute.Int("offset.result_vertices", len(res.Polygon)),
	)
	return res, nil
}

func (s *OffsetService) compute(ctx context.Context, req domain.OffsetRequest) (*domain.OffsetResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	opts := s.defaults
	if req.Options != nil {
		opts = req.Options.WithDefaults(s.defaults)
	}
	opts, err := opts.Normalize()
	if err != nil {
		return nil, err
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	req.Options = &opts

	// Degenerate input never reaches the cache or the engine.
	if len(req.Polygon) <= 2 {
		return &domain.OffsetResult{Polygon: domain.Polygon{}}, nil
	}

	key := cacheKey(req)
	if cached, ok := s.lookup(ctx, key); ok {
		return cached, nil
	}

	vc := domain.ViewportContext{
		Projection: geospatial.WebMercator,
		Bounds:     req.Viewport.Bounds(),
		Zoom:       req.Viewport.Zoom,
	}

	start := time.Now()
	res, err := offset.NewCalculator(s.newOffsetter(opts)).Compute(req.Polygon, vc, req.OffsetMeters)
	if err != nil {
		return nil, err
	}
	metrics.OffsetDuration.Observe(time.Since(start).Seconds())
	metrics.OffsetVertices.WithLabelValues("input").Observe(float64(len(req.Polygon)))
	metrics.OffsetVertices.WithLabelValues("output").Observe(float64(len(res.Polygon)))

	s.store(ctx, key, &res)
	s.publish(ctx, req, &res)

	return &res, nil
}

func (s *OffsetService) lookup(ctx context.Context, key string) (*domain.OffsetResult, bool) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		metrics.CacheMisses.WithLabelValues("offset").Inc()
		return nil, false
	}
	var res domain.OffsetResult
	if err := json.Unmarshal(data, &res); err != nil {
		metrics.CacheMisses.WithLabelValues("offset").Inc()
		return nil, false
	}
	metrics.CacheHits.WithLabelValues("offset").Inc()
	res.Cached = true
	return &res, true
}

func (s *OffsetService) store(ctx context.Context, key string, res *domain.OffsetResult) {
	if s.cache == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		slog.Warn("cache offset result", "error", err)
	}
}

func (s *OffsetService) publish(ctx context.Context, req domain.OffsetRequest, res *domain.OffsetResult) {
	if s.events == nil {
		return
	}
	event := &domain.OffsetComputedEvent{
		Vertices:       len(req.Polygon),
		ResultVertices: len(res.Polygon),
		OffsetMeters:   req.OffsetMeters,
		MetersPerUnit:  res.MetersPerUnit,
		Zoom:           req.Viewport.Zoom,
		ComputedAt:     s.now().UTC(),
	}
	if err := s.events.PublishOffsetComputed(ctx, event); err != nil {
		slog.Warn("publish offset computed", "error", err)
	}
}

// cacheKey digests the request after option defaults have been applied, so equal
// effective requests share one entry.
func cacheKey(req domain.OffsetRequest) string {
	data, _ := json.Marshal(req)
	sum := sha256.Sum256(data)
	return "offset:" + hex.EncodeToString(sum[:])
}

// IsClientError reports whether err stems from the request rather than the server.
func IsClientError(err error) bool {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest),
		errors.Is(err, domain.ErrUnavailableProjection),
		errors.Is(err, domain.ErrInvalidDirectionVector),
		errors.Is(err, domain.ErrGeometryOperationFailed),
		errors.Is(err, domain.ErrEmptyResult),
		errors.Is(err, domain.ErrNotFound):
		return true
	}
	return false
}
