package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

const sampleConfig = `
[settings]
log_level = "debug"
capacity = 500

[settings.debugtail]
enabled = true

[sources.in]
type = "random_logs"

[transforms.mid]
type = "filter"
inputs = ["in"]
condition = { type = "is_log" }

[sinks.out]
type = "console"
inputs = ["mid"]
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tinyvector.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadAppliesSettingsAndValidatesGraph(t *testing.T) {
	path := writeConfig(t, sampleConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.Settings.LogLevel)
	}
	if cfg.Settings.Capacity != 500 {
		t.Errorf("Capacity = %d, want 500", cfg.Settings.Capacity)
	}
	if !cfg.Settings.Debugtail.Enabled {
		t.Error("expected debugtail.enabled = true")
	}
	if cfg.Settings.Debugtail.Address != "127.0.0.1:9599" {
		t.Errorf("Debugtail.Address = %q, want the default", cfg.Settings.Debugtail.Address)
	}
	if len(cfg.Graph.Sources) != 1 || len(cfg.Graph.Transforms) != 1 || len(cfg.Graph.Sinks) != 1 {
		t.Errorf("unexpected graph shape: %+v", cfg.Graph)
	}
}

func TestLoadAppliesDefaultCapacityWhenAbsent(t *testing.T) {
	path := writeConfig(t, `
[sources.in]
type = "random_logs"

[sinks.out]
type = "console"
inputs = ["in"]
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Settings.Capacity != 1000 {
		t.Errorf("Capacity = %d, want the engine default of 1000", cfg.Settings.Capacity)
	}
}

func TestLoadRejectsInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
[settings]
log_level = "verbose"

[sources.in]
type = "random_logs"

[sinks.out]
type = "console"
inputs = ["in"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for an invalid log level")
	}
}

func TestLoadSurfacesGraphValidationErrors(t *testing.T) {
	path := writeConfig(t, `
[sinks.out]
type = "console"
inputs = ["missing"]
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected a graph validation error")
	}
}

func TestFindConfigRequiresExplicitPathToExist(t *testing.T) {
	if _, err := FindConfig("/nonexistent/path/tinyvector.toml"); err == nil {
		t.Fatal("expected an error for a missing explicit path")
	}
}

func TestFindConfigFindsExplicitPath(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	found, err := FindConfig(path)
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if found != path {
		t.Errorf("FindConfig = %q, want %q", found, path)
	}
}
