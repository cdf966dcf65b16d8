package logging_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/samirrijal/geooffset/internal/pkg/logging"
)

func TestNew_JSONRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l := logging.New("warn", "json", &buf)

	l.Info("dropped")
	l.Warn("kept", "zoom", 18)

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if entry["msg"] != "kept" {
		t.Errorf("expected msg kept, got %v", entry["msg"])
	}
}

func TestFromContext_FallsBackToDefault(t *testing.T) {
	if logging.FromContext(context.Background()) != slog.Default() {
		t.Error("expected default logger")
	}

	l := logging.New("debug", "text", &bytes.Buffer{})
	ctx := logging.WithLogger(context.Background(), l)
	if logging.FromContext(ctx) != l {
		t.Error("expected request-scoped logger")
	}
}
