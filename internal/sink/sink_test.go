package sink

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tinyvector/tinyvector/internal/event"
)

func logEvent(message string) event.Event {
	l := event.NewLogValue(message)
	return event.NewLog(l)
}

func TestBlackHoleDrainsEverything(t *testing.T) {
	b, err := BuildBlackHole(nil)
	if err != nil {
		t.Fatalf("BuildBlackHole: %v", err)
	}
	prepared, err := b.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ch := make(chan event.Event, 2)
	ch <- logEvent("one")
	ch <- logEvent("two")
	close(ch)

	if err := prepared.Execute(ch); err != nil {
		t.Fatalf("Execute: %v", err)
	}
}

func TestFileAppendsNDJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.ndjson")

	f, err := BuildFile(map[string]any{"path": path})
	if err != nil {
		t.Fatalf("BuildFile: %v", err)
	}
	prepared, err := f.Prepare(context.Background())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}

	ch := make(chan event.Event, 2)
	ch <- logEvent("hello")
	ch <- logEvent("world")
	close(ch)

	if err := prepared.Execute(ch); err != nil {
		t.Fatalf("Execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], `"message":"hello"`) {
		t.Errorf("unexpected first line: %s", lines[0])
	}
	if !strings.Contains(lines[1], `"message":"world"`) {
		t.Errorf("unexpected second line: %s", lines[1])
	}
}

func TestFileRequiresPath(t *testing.T) {
	if _, err := BuildFile(map[string]any{}); err == nil {
		t.Fatal("expected an error for a missing path")
	}
}

func TestBuildUnknownSinkType(t *testing.T) {
	if _, err := Build("nonexistent", map[string]any{}, nil); err == nil {
		t.Fatal("expected an error for an unknown sink type")
	}
}

func TestDatadogLogsRequiresAPIToken(t *testing.T) {
	if _, err := BuildDatadogLogs(map[string]any{}, nil); err == nil {
		t.Fatal("expected an error for a missing api_token")
	}
}

func TestDatadogLogsAcceptsLiteralToken(t *testing.T) {
	d, err := BuildDatadogLogs(map[string]any{"api_token": "secret"}, nil)
	if err != nil {
		t.Fatalf("BuildDatadogLogs: %v", err)
	}
	if d.apiToken != "secret" {
		t.Errorf("apiToken = %q, want secret", d.apiToken)
	}
	if d.url != datadogDefaultURL {
		t.Errorf("url = %q, want default", d.url)
	}
}

func TestPrometheusExporterRejectsBadAddress(t *testing.T) {
	if _, err := BuildPrometheusExporter(map[string]any{"address": "not-an-address"}, nil); err == nil {
		t.Fatal("expected an error for a malformed address")
	}
}
