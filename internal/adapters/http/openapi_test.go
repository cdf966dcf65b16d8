package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
)

// loadOpenAPI finds api/openapi.yaml above the test directory, parses and validates it.
func loadOpenAPI(t *testing.T) *openapi3.T {
	t.Helper()

	dir, _ := os.Getwd()
	for i := 0; i < 5; i++ {
		candidate := filepath.Join(dir, "api", "openapi.yaml")
		if data, err := os.ReadFile(candidate); err == nil {
			loader := &openapi3.Loader{IsExternalRefsAllowed: false}
			doc, err := loader.LoadFromData(data)
			if err != nil {
				t.Fatalf("failed to parse %s: %v", candidate, err)
			}
			if err := doc.Validate(context.Background()); err != nil {
				t.Fatalf("OpenAPI validation failed: %v", err)
			}
			return doc
		}
		dir = filepath.Dir(dir)
	}

	t.Fatal("could not find api/openapi.yaml")
	return nil
}

func TestOpenAPI_Document(t *testing.T) {
	doc := loadOpenAPI(t)

	if doc.Info.Title != "GeoOffset API" || doc.Info.Version != "1.0.0" {
		t.Errorf("unexpected info %s %s", doc.Info.Title, doc.Info.Version)
	}
	if len(doc.Servers) == 0 {
		t.Error("expected at least one server")
	}

	for _, name := range []string{
		"GeoPoint", "Viewport", "OffsetOptions", "OffsetRequest", "OffsetResult",
		"CreateZoneRequest", "BatchZoneRequest", "Zone", "ZonePage", "Pagination", "APIError",
	} {
		if doc.Components.Schemas[name] == nil {
			t.Errorf("expected schema %s", name)
		}
	}
}

// Every REST route the router registers must be documented with the same method.
func TestOpenAPI_CoversRoutes(t *testing.T) {
	doc := loadOpenAPI(t)
	app := setupApp(makeDeps())

	checked := 0
	for _, r := range app.GetRoutes(true) {
		if r.Method == http.MethodHead || !(strings.HasPrefix(r.Path, "/v1/") || r.Path == "/graphql") {
			continue
		}
		path := strings.ReplaceAll(r.Path, ":id", "{id}")
		item := doc.Paths.Find(path)
		if item == nil {
			t.Errorf("route %s %s is not documented", r.Method, r.Path)
			continue
		}
		if item.GetOperation(r.Method) == nil {
			t.Errorf("route %s %s has no documented operation", r.Method, path)
		}
		checked++
	}
	if checked < 10 {
		t.Errorf("expected at least 10 documented routes, checked %d", checked)
	}
}

func TestDocs_ServesYAMLAndJSON(t *testing.T) {
	deps := makeDeps()
	deps.DocsPath = filepath.Join("..", "..", "..", "api", "openapi.yaml")
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.json", nil), -1)
	if resp.StatusCode != 200 {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	var doc map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		t.Fatalf("expected JSON document: %v", err)
	}
	if doc["openapi"] != "3.0.3" {
		t.Errorf("unexpected openapi version %v", doc["openapi"])
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/docs", nil), -1)
	if resp.StatusCode != 200 {
		t.Errorf("expected swagger UI, got %d", resp.StatusCode)
	}
}

func TestDocs_MissingDocument(t *testing.T) {
	deps := makeDeps()
	deps.DocsPath = filepath.Join(t.TempDir(), "missing.yaml")
	app := setupApp(deps)

	resp, _ := app.Test(httptest.NewRequest("GET", "/docs/openapi.yaml", nil), -1)
	if resp.StatusCode != 404 {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
}
