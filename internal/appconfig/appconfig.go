// Package appconfig loads the top-level configuration file: a
// [settings] table of engine-wide knobs alongside the declarative
// [sources.<name>]/[transforms.<name>]/[sinks.<name>] graph itself.
package appconfig

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/go-viper/mapstructure/v2"

	"github.com/tinyvector/tinyvector/internal/graph"
	"github.com/tinyvector/tinyvector/internal/loglevel"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// DebugtailSettings configures the optional live-tap WebSocket server.
type DebugtailSettings struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// Settings holds the engine-wide knobs that sit outside the graph
// itself.
type Settings struct {
	LogLevel  string            `mapstructure:"log_level"`
	Capacity  int               `mapstructure:"capacity"`
	Debugtail DebugtailSettings `mapstructure:"debugtail"`
}

// Config is a fully loaded, defaulted, and validated configuration.
type Config struct {
	Settings Settings
	Graph    *graph.Graph
}

// DefaultSearchPaths returns the config file search order: an explicit
// path (from a -config flag) is checked first by FindConfig; absent
// that, ./tinyvector.toml, ~/.config/tinyvector/config.toml, the
// container convention /config/config.toml, then
// /etc/tinyvector/config.toml.
func DefaultSearchPaths() []string {
	paths := []string{"tinyvector.toml"}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "tinyvector", "config.toml"))
	}

	paths = append(paths, "/config/config.toml")
	paths = append(paths, "/etc/tinyvector/config.toml")
	return paths
}

// FindConfig locates a config file. If explicit is non-empty, it must
// exist. Otherwise searches DefaultSearchPaths and returns the first
// that exists.
func FindConfig(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	for _, p := range DefaultSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	return "", fmt.Errorf("no config file found (searched: %v)", DefaultSearchPaths())
}

// Load reads, decodes, defaults, and validates the configuration file
// at path. It decodes the raw TOML twice over the same bytes: once
// through graph.Decode for the sources/transforms/sinks tables (which
// also eagerly builds every transform), and once into a generic table
// from which the [settings] table is lifted with mapstructure — the
// settings shape is a plain, non-discriminated struct, so a tag-driven
// decode fits it better than graph.Decode's manual dispatch.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("appconfig: %w", err)
	}

	var settings Settings
	if settingsRaw, ok := raw["settings"]; ok {
		if err := mapstructure.Decode(settingsRaw, &settings); err != nil {
			return nil, fmt.Errorf("appconfig: settings: %w", err)
		}
	}
	applyDefaults(&settings)

	g, err := graph.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("appconfig: %w", err)
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}

	cfg := &Config{Settings: settings, Graph: g}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("appconfig: %w", err)
	}
	return cfg, nil
}

// applyDefaults fills in zero-value settings with the engine's
// defaults. After this, callers can read any field without checking
// for empty strings or zero values.
func applyDefaults(s *Settings) {
	if s.Capacity == 0 {
		s.Capacity = topology.DefaultCapacity
	}
	if s.Debugtail.Address == "" {
		s.Debugtail.Address = "127.0.0.1:9599"
	}
}

// Validate checks that the settings are internally consistent. It
// runs after applyDefaults, so it can assume defaults are populated.
func (c *Config) Validate() error {
	if c.Settings.Capacity < 1 {
		return fmt.Errorf("settings.capacity %d must be positive", c.Settings.Capacity)
	}
	if c.Settings.LogLevel != "" {
		if _, err := loglevel.Parse(c.Settings.LogLevel); err != nil {
			return err
		}
	}
	return nil
}
