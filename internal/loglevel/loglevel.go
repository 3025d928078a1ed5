// Package loglevel defines the engine's log level taxonomy, including
// a Trace level finer than slog's built-in Debug. Trace is exercised
// by internal/collector and internal/topology for per-event
// wire-level forensics (every send a Collector makes, every event a
// transform task receives) — verbose enough that it earns its own level below
// Debug rather than crowding Debug with per-event noise.
package loglevel

import (
	"fmt"
	"log/slog"
	"strings"
)

// Trace sits below slog.LevelDebug.
const Trace = slog.Level(-8)

// Parse converts a string to a slog.Level. Supported values: trace,
// debug, info, warn, error (case-insensitive).
func Parse(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "trace":
		return Trace, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q (valid: trace, debug, info, warn, error)", s)
	}
}

// ReplaceAttr renders Trace as "TRACE" instead of slog's default
// "DEBUG-8"; pass it as slog.HandlerOptions.ReplaceAttr.
func ReplaceAttr(_ []string, a slog.Attr) slog.Attr {
	if a.Key == slog.LevelKey {
		if level, ok := a.Value.Any().(slog.Level); ok && level == Trace {
			a.Value = slog.StringValue("TRACE")
		}
	}
	return a
}
