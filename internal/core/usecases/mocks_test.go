package usecases_test

import (
	"context"
	"errors"
	"sync"

	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/ports"
)

// --- Mock PlanarOffsetter ---

type mockOffsetter struct {
	offsetFn func(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error)
}

func (m *mockOffsetter) Offset(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error) {
	if m.offsetFn != nil {
		return m.offsetFn(ring, distance)
	}
	return ring.Closed(), nil
}

// factory records every options value it is asked to build an offsetter for.
type factory struct {
	mu    sync.Mutex
	seen  []domain.OffsetOptions
	inner *mockOffsetter
}

func (f *factory) build(opts domain.OffsetOptions) ports.PlanarOffsetter {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, opts)
	if f.inner == nil {
		return &mockOffsetter{}
	}
	return f.inner
}

func (f *factory) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.seen)
}

// --- Mock CacheService ---

var errCacheMiss = errors.New("cache miss")

type mockCache struct {
	mu   sync.Mutex
	data map[string][]byte
	ttls map[string]int
}

func newMockCache() *mockCache {
	return &mockCache{data: map[string][]byte{}, ttls: map[string]int{}}
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, errCacheMiss
	}
	return v, nil
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttlSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	m.ttls[key] = ttlSeconds
	return nil
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// --- Mock EventPublisher ---

type mockPublisher struct {
	mu       sync.Mutex
	computed []domain.OffsetComputedEvent
	zones    []domain.ZoneEvent
	err      error
}

func (m *mockPublisher) PublishOffsetComputed(ctx context.Context, event *domain.OffsetComputedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.computed = append(m.computed, *event)
	return m.err
}

func (m *mockPublisher) PublishZoneEvent(ctx context.Context, event *domain.ZoneEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.zones = append(m.zones, *event)
	return m.err
}

// --- Mock ZoneRepository ---

type mockZoneRepo struct {
	createFn  func(ctx context.Context, zone *domain.Zone) error
	getByIDFn func(ctx context.Context, id string) (*domain.Zone, error)
	listFn    func(ctx context.Context, offset, limit int) ([]domain.Zone, int, error)
	deleteFn  func(ctx context.Context, id string) error
}

func (m *mockZoneRepo) Create(ctx context.Context, zone *domain.Zone) error {
	if m.createFn != nil {
		return m.createFn(ctx, zone)
	}
	zone.ID = "zone-1"
	return nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockZoneRepo) List(ctx context.Context, offset, limit int) ([]domain.Zone, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, offset, limit)
	}
	return nil, 0, nil
}

func (m *mockZoneRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// --- fixtures ---

var square = domain.Polygon{
	{Lat: 0, Lon: 0},
	{Lat: 0, Lon: 0.001},
	{Lat: 0.001, Lon: 0.001},
	{Lat: 0.001, Lon: 0},
}

func squareRequest() domain.OffsetRequest {
	return domain.OffsetRequest{
		Polygon: square,
		Viewport: domain.ViewportSpec{
			NorthEast: domain.GeoPoint{Lat: 0.0015, Lon: 0.0015},
			SouthWest: domain.GeoPoint{Lat: -0.0005, Lon: -0.0005},
			Zoom:      18,
		},
		OffsetMeters: 10,
	}
}
