package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	handler "github.com/samirrijal/geooffset/internal/adapters/http"
	"github.com/samirrijal/geooffset/internal/core/domain"
	"github.com/samirrijal/geooffset/internal/core/ports"
	"github.com/samirrijal/geooffset/internal/core/usecases"
	"github.com/samirrijal/geooffset/internal/workflows"
)

// ---- Mocks ----

type mockOffsetter struct {
	offsetFn func(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error)
}

func (m *mockOffsetter) Offset(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error) {
	if m.offsetFn != nil {
		return m.offsetFn(ring, distance)
	}
	return ring.Closed(), nil
}

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
	zone.ID = "z1"
	return nil
}

func (m *mockZoneRepo) GetByID(ctx context.Context, id string) (*domain.Zone, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, domain.ErrNotFound
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

type mockPinger struct{ err error }

func (m *mockPinger) Ping(ctx context.Context) error { return m.err }

// ---- Test helpers ----

func setupApp(deps *handler.Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})
	handler.SetupRoutes(app, deps)
	return app
}

type depsConfig struct {
	offsetter *mockOffsetter
	zones     *mockZoneRepo
}

func makeDeps(opts ...func(*depsConfig)) *handler.Dependencies {
	cfg := &depsConfig{offsetter: &mockOffsetter{}, zones: &mockZoneRepo{}}
	for _, o := range opts {
		o(cfg)
	}
	factory := func(domain.OffsetOptions) ports.PlanarOffsetter { return cfg.offsetter }
	offsets := usecases.NewOffsetService(factory, domain.DefaultOffsetOptions(), nil, nil, 0)
	return &handler.Dependencies{
		Offsets: offsets,
		Zones:   usecases.NewZoneService(offsets, cfg.zones, nil),
	}
}

func readBody(t *testing.T, body io.Reader) []byte {
	t.Helper()
	b, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return b
}

const squareBody = `{
	"polygon": [{"lat":0,"lon":0},{"lat":0,"lon":0.001},{"lat":0.001,"lon":0.001},{"lat":0.001,"lon":0}],
	"viewport": {"north_east":{"lat":0.0015,"lon":0.0015},"south_west":{"lat":-0.0005,"lon":-0.0005},"zoom":18},
	"offset_meters": 10
}`

func postJSON(t *testing.T, app *fiber.App, path, body string) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp.StatusCode, readBody(t, resp.Body)
}

func decodeError(t *testing.T, body []byte) handler.APIError {
	t.Helper()
	var apiErr handler.APIError
	if err := json.Unmarshal(body, &apiErr); err != nil {
		t.Fatalf("error body is not JSON: %s", body)
	}
	return apiErr
}

// ---- Offset handler tests ----

func TestOffset_Success(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/offset", squareBody)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, body)
	}

	var res domain.OffsetResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatal(err)
	}
	if len(res.Polygon) != 5 {
		t.Errorf("expected 5 vertices, got %d", len(res.Polygon))
	}
	if res.MetersPerUnit <= 0 {
		t.Errorf("expected positive meters_per_unit, got %v", res.MetersPerUnit)
	}
}

func TestOffset_GeoJSON(t *testing.T) {
	app := setupApp(makeDeps())

	req := httptest.NewRequest("POST", "/v1/offset?format=geojson", strings.NewReader(squareBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "application/geo+json") {
		t.Errorf("expected geo+json content type, got %q", ct)
	}

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&fc); err != nil {
		t.Fatal(err)
	}
	if fc.Type != "FeatureCollection" || len(fc.Features) != 2 {
		t.Fatalf("unexpected collection %+v", fc)
	}
	if fc.Features[0].Properties["role"] != "source" || fc.Features[1].Properties["role"] != "offset" {
		t.Errorf("unexpected roles %+v", fc.Features)
	}
	if fc.Features[1].Geometry.Type != "Polygon" {
		t.Errorf("expected Polygon geometry, got %s", fc.Features[1].Geometry.Type)
	}
}

func TestOffset_Degenerate(t *testing.T) {
	app := setupApp(makeDeps())

	body := `{"polygon":[{"lat":0,"lon":0},{"lat":1,"lon":1}],"viewport":{"zoom":3},"offset_meters":5}`
	status, resp := postJSON(t, app, "/v1/offset", body)
	if status != 200 {
		t.Fatalf("expected 200, got %d: %s", status, resp)
	}
	var res struct {
		Polygon []domain.GeoPoint `json:"polygon"`
	}
	json.Unmarshal(resp, &res)
	if res.Polygon == nil || len(res.Polygon) != 0 {
		t.Errorf("expected empty polygon array, got %s", resp)
	}
}

func TestOffset_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		offsetErr  error
		wantStatus int
		wantCode   string
	}{
		{"malformed body", `{"polygon":`, nil, 400, "bad_request"},
		{"zoom out of range", strings.Replace(squareBody, `"zoom":18`, `"zoom":40`, 1), nil, 400, "bad_request"},
		{"unknown join", strings.Replace(squareBody, `"offset_meters": 10`, `"offset_meters": 10, "options":{"join_style":"spiky"}`, 1), nil, 400, "bad_request"},
		{"coincident vertices", `{
			"polygon": [{"lat":0,"lon":0},{"lat":0,"lon":0},{"lat":0.001,"lon":0.001}],
			"viewport": {"north_east":{"lat":0.0015,"lon":0.0015},"south_west":{"lat":-0.0005,"lon":-0.0005},"zoom":18},
			"offset_meters": 10}`, nil, 422, "invalid_direction"},
		{"geometry failure", squareBody, domain.ErrGeometryOperationFailed, 422, "geometry_failed"},
		{"multi ring", squareBody, domain.ErrMultiRingResult, 422, "multi_ring_result"},
		{"projection unavailable", squareBody, domain.ErrUnavailableProjection, 409, "unavailable_projection"},
		{"unexpected", squareBody, errors.New("segfault-ish"), 500, "internal_error"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			deps := makeDeps(func(c *depsConfig) {
				if tc.offsetErr != nil {
					c.offsetter.offsetFn = func(domain.PlanarPolygon, float64) (domain.PlanarPolygon, error) {
						return nil, tc.offsetErr
					}
				}
			})
			app := setupApp(deps)

			status, body := postJSON(t, app, "/v1/offset", tc.body)
			if status != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, status, body)
			}
			apiErr := decodeError(t, body)
			if apiErr.Code != tc.wantCode {
				t.Errorf("expected code %s, got %s", tc.wantCode, apiErr.Code)
			}
			if apiErr.RequestID == "" {
				t.Error("expected request_id in error body")
			}
			if tc.wantStatus == 500 && strings.Contains(apiErr.Message, "segfault") {
				t.Error("internal error details must not leak")
			}
		})
	}
}

func TestOffsetDefaults(t *testing.T) {
	app := setupApp(makeDeps())

	resp, err := app.Test(httptest.NewRequest("GET", "/v1/offset/defaults", nil), -1)
	if err != nil {
		t.Fatal(err)
	}
	var opts domain.OffsetOptions
	json.NewDecoder(resp.Body).Decode(&opts)
	if opts != domain.DefaultOffsetOptions() {
		t.Errorf("unexpected defaults %+v", opts)
	}
}

// ---- Zone handler tests ----

func TestCreateZone_Success(t *testing.T) {
	var saved *domain.Zone
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.zones.createFn = func(ctx context.Context, zone *domain.Zone) error {
			zone.ID = "abc"
			saved = zone
			return nil
		}
	}))

	body := strings.Replace(squareBody, "{", `{"name":"warehouse",`, 1)
	req := httptest.NewRequest("POST", "/v1/zones", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 201 {
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, readBody(t, resp.Body))
	}
	if loc := resp.Header.Get("Location"); loc != "/v1/zones/abc" {
		t.Errorf("expected Location /v1/zones/abc, got %q", loc)
	}
	if saved == nil || saved.Name != "warehouse" || saved.OffsetMeters != 10 {
		t.Errorf("unexpected saved zone %+v", saved)
	}
}

func TestCreateZone_MissingName(t *testing.T) {
	app := setupApp(makeDeps())

	status, body := postJSON(t, app, "/v1/zones", squareBody)
	if status != 400 {
		t.Fatalf("expected 400, got %d: %s", status, body)
	}
}

func TestCreateZone_EmptyResult(t *testing.T) {
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.offsetter.offsetFn = func(domain.PlanarPolygon, float64) (domain.PlanarPolygon, error) {
			return domain.PlanarPolygon{}, nil
		}
	}))

	body := strings.Replace(squareBody, "{", `{"name":"gone",`, 1)
	status, resp := postJSON(t, app, "/v1/zones", body)
	if status != 422 {
		t.Fatalf("expected 422, got %d: %s", status, resp)
	}
	if code := decodeError(t, resp).Code; code != "empty_result" {
		t.Errorf("expected empty_result, got %s", code)
	}
}

func TestGetZone(t *testing.T) {
	zone := &domain.Zone{
		ID:       "abc",
		Name:     "warehouse",
		Source:   domain.Polygon{{Lat: 0, Lon: 0}, {Lat: 0, Lon: 1}, {Lat: 1, Lon: 1}},
		Boundary: domain.Polygon{{Lat: -0.1, Lon: -0.1}, {Lat: -0.1, Lon: 1.1}, {Lat: 1.1, Lon: 1.1}},
	}
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.zones.getByIDFn = func(ctx context.Context, id string) (*domain.Zone, error) {
			if id == "abc" {
				return zone, nil
			}
			return nil, domain.ErrNotFound
		}
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/zones/abc", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	etag := resp.Header.Get("ETag")
	if etag == "" {
		t.Fatal("expected ETag header")
	}
	if cc := resp.Header.Get("Cache-Control"); cc != "public, max-age=3600" {
		t.Errorf("unexpected Cache-Control %q", cc)
	}

	req := httptest.NewRequest("GET", "/v1/zones/abc", nil)
	req.Header.Set("If-None-Match", etag)
	resp, _ = app.Test(req, -1)
	if resp.StatusCode != 304 {
		t.Errorf("expected 304 for matching ETag, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/zones/abc?format=geojson", nil), -1)
	var fc struct {
		Features []struct {
			Properties map[string]interface{} `json:"properties"`
		} `json:"features"`
	}
	json.NewDecoder(resp.Body).Decode(&fc)
	if len(fc.Features) != 2 || fc.Features[0].Properties["zone_id"] != "abc" {
		t.Errorf("unexpected geojson %+v", fc)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/zones/missing", nil), -1)
	if resp.StatusCode != 404 {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
	if code := decodeError(t, readBody(t, resp.Body)).Code; code != "not_found" {
		t.Errorf("expected not_found, got %s", code)
	}
}

func TestListZones_Pagination(t *testing.T) {
	var gotOffset, gotLimit int
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.zones.listFn = func(ctx context.Context, offset, limit int) ([]domain.Zone, int, error) {
			gotOffset, gotLimit = offset, limit
			return []domain.Zone{{ID: "a"}, {ID: "b"}}, 7, nil
		}
	}))

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/zones?offset=2&limit=2", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if gotOffset != 2 || gotLimit != 2 {
		t.Errorf("repo got offset=%d limit=%d", gotOffset, gotLimit)
	}

	var result struct {
		Data       []domain.Zone      `json:"data"`
		Pagination handler.Pagination `json:"pagination"`
	}
	json.NewDecoder(resp.Body).Decode(&result)
	if len(result.Data) != 2 || result.Pagination.Total != 7 {
		t.Errorf("unexpected page %+v", result)
	}
	link := resp.Header.Get("Link")
	if !strings.Contains(link, `offset=4&limit=2>; rel="next"`) || !strings.Contains(link, `offset=0&limit=2>; rel="prev"`) {
		t.Errorf("unexpected Link header %q", link)
	}
	if resp.Header.Get("X-Total-Count") != "7" {
		t.Errorf("expected X-Total-Count 7, got %q", resp.Header.Get("X-Total-Count"))
	}
}

func TestDeleteZone(t *testing.T) {
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.zones.deleteFn = func(ctx context.Context, id string) error {
			if id == "abc" {
				return nil
			}
			return domain.ErrNotFound
		}
	}))

	resp, _ := app.Test(httptest.NewRequest("DELETE", "/v1/zones/abc", nil), -1)
	if resp.StatusCode != 204 {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	resp, _ = app.Test(httptest.NewRequest("DELETE", "/v1/zones/nope", nil), -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}

// ---- GraphQL ----

func graphQL(t *testing.T, app *fiber.App, query string) map[string]interface{} {
	t.Helper()
	payload, _ := json.Marshal(map[string]string{"query": query})
	req := httptest.NewRequest("POST", "/graphql", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestGraphQL_OffsetPolygon(t *testing.T) {
	var gotDistance float64
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.offsetter.offsetFn = func(ring domain.PlanarPolygon, distance float64) (domain.PlanarPolygon, error) {
			gotDistance = distance
			return ring.Closed(), nil
		}
	}))

	out := graphQL(t, app, `{
		offsetPolygon(
			polygon: [{lat: 0, lon: 0}, {lat: 0, lon: 0.001}, {lat: 0.001, lon: 0.001}, {lat: 0.001, lon: 0}],
			viewport: {north_east: {lat: 0.0015, lon: 0.0015}, south_west: {lat: -0.0005, lon: -0.0005}, zoom: 18},
			offsetMeters: 10,
			joinStyle: "mitre"
		) { polygon { lat lon } meters_per_unit cached }
	}`)

	if errs, ok := out["errors"]; ok {
		t.Fatalf("unexpected errors: %v", errs)
	}
	data := out["data"].(map[string]interface{})["offsetPolygon"].(map[string]interface{})
	if pts := data["polygon"].([]interface{}); len(pts) != 5 {
		t.Errorf("expected 5 vertices, got %d", len(pts))
	}
	mpu := data["meters_per_unit"].(float64)
	if mpu <= 0 || gotDistance <= 0 || gotDistance*mpu < 9.99 || gotDistance*mpu > 10.01 {
		t.Errorf("planar distance %v with %v m/unit does not give 10 m", gotDistance, mpu)
	}
}

func TestGraphQL_Zones(t *testing.T) {
	app := setupApp(makeDeps(func(c *depsConfig) {
		c.zones.listFn = func(ctx context.Context, offset, limit int) ([]domain.Zone, int, error) {
			return []domain.Zone{{ID: "a", Name: "north"}}, 1, nil
		}
	}))

	out := graphQL(t, app, `{ zones(limit: 5) { total data { id name } } }`)
	if errs, ok := out["errors"]; ok {
		t.Fatalf("unexpected errors: %v", errs)
	}
	page := out["data"].(map[string]interface{})["zones"].(map[string]interface{})
	if page["total"].(float64) != 1 {
		t.Errorf("expected total 1, got %v", page["total"])
	}
	zones := page["data"].([]interface{})
	if len(zones) != 1 || zones[0].(map[string]interface{})["name"] != "north" {
		t.Errorf("unexpected zones %v", zones)
	}
}

// ---- Operational endpoints ----

func TestHealth(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/health", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestReady(t *testing.T) {
	deps := makeDeps()
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 503 {
		t.Errorf("expected 503 without a database, got %d", resp.StatusCode)
	}

	deps = makeDeps()
	deps.DB = &mockPinger{}
	deps.Cache = &mockPinger{err: errors.New("connection refused")}
	app = setupApp(deps)

	resp, _ = app.Test(httptest.NewRequest("GET", "/v1/ready", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200 with a healthy database, got %d", resp.StatusCode)
	}
	var body struct {
		Checks map[string]string `json:"checks"`
	}
	json.NewDecoder(resp.Body).Decode(&body)
	if body.Checks["database"] != "ok" || !strings.HasPrefix(body.Checks["cache"], "error") {
		t.Errorf("unexpected checks %v", body.Checks)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	app := setupApp(makeDeps())
	postJSON(t, app, "/v1/offset", squareBody)

	resp, _ := app.Test(httptest.NewRequest("GET", "/metrics", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(readBody(t, resp.Body)), "geooffset_offset_computations_total") {
		t.Error("expected offset metrics to be exported")
	}
}

func TestWebSocket_RequiresUpgrade(t *testing.T) {
	app := setupApp(makeDeps())

	resp, _ := app.Test(httptest.NewRequest("GET", "/ws/offset", nil), -1)
	if resp.StatusCode != fiber.StatusUpgradeRequired {
		t.Errorf("expected 426, got %d", resp.StatusCode)
	}
}

// ---- Batch ----

type mockBatchStarter struct {
	got   workflows.BatchZoneInput
	calls int
	err   error
}

func (m *mockBatchStarter) StartBatch(ctx context.Context, input workflows.BatchZoneInput) (string, string, error) {
	m.got = input
	m.calls++
	return "batch-zone-1", "run-1", m.err
}

func TestBatchZones(t *testing.T) {
	starter := &mockBatchStarter{}
	deps := makeDeps()
	deps.Batches = starter
	app := setupApp(deps)

	body := `{"name":"depots","requests":[` + squareBody + `,` + squareBody + `]}`
	status, resp := postJSON(t, app, "/v1/zones/batch", body)
	if status != 202 {
		t.Fatalf("expected 202, got %d: %s", status, resp)
	}
	var out map[string]string
	json.Unmarshal(resp, &out)
	if out["workflow_id"] != "batch-zone-1" {
		t.Errorf("unexpected response %v", out)
	}
	if starter.got.Name != "depots" || len(starter.got.Requests) != 2 {
		t.Errorf("unexpected workflow input %+v", starter.got)
	}

	bad := strings.Replace(body, `"zoom":18`, `"zoom":-3`, 1)
	if status, _ := postJSON(t, app, "/v1/zones/batch", bad); status != 400 {
		t.Errorf("expected 400 for an invalid member, got %d", status)
	}
	if status, _ := postJSON(t, app, "/v1/zones/batch", `{"name":"x","requests":[]}`); status != 400 {
		t.Errorf("expected 400 for an empty batch, got %d", status)
	}
}

func TestBatchZones_NameMustLeaveRoomForSuffix(t *testing.T) {
	starter := &mockBatchStarter{}
	deps := makeDeps()
	deps.Batches = starter
	app := setupApp(deps)

	batchOf := func(name string, n int) string {
		members := make([]string, n)
		for i := range members {
			members[i] = squareBody
		}
		return `{"name":"` + name + `","requests":[` + strings.Join(members, ",") + `]}`
	}

	// 198 + "-1" is exactly 200 characters.
	if status, resp := postJSON(t, app, "/v1/zones/batch", batchOf(strings.Repeat("a", 198), 1)); status != 202 {
		t.Fatalf("expected 202 at the limit, got %d: %s", status, resp)
	}
	// 198 + "-10" is one over.
	if status, _ := postJSON(t, app, "/v1/zones/batch", batchOf(strings.Repeat("a", 198), 10)); status != 400 {
		t.Errorf("expected 400 when the last zone name exceeds the limit, got %d", status)
	}
	if status, _ := postJSON(t, app, "/v1/zones/batch", batchOf(strings.Repeat("a", 200), 1)); status != 400 {
		t.Errorf("expected 400 for a 200 character batch name, got %d", status)
	}
	if starter.calls != 1 {
		t.Errorf("expected only the valid batch to start a workflow, got %d starts", starter.calls)
	}
}

func TestBatchZones_NotConfigured(t *testing.T) {
	app := setupApp(makeDeps())

	status, _ := postJSON(t, app, "/v1/zones/batch", `{"name":"x","requests":[`+squareBody+`]}`)
	if status != 503 {
		t.Errorf("expected 503, got %d", status)
	}
}
