package sink

import (
	"fmt"
	"log/slog"

	"github.com/tinyvector/tinyvector/internal/topology"
)

// Build dispatches on the sink flavor discriminator (spec.md §6 lists
// the driver contract; the flavor set itself is driver-specific:
// black_hole, console, file, datadog_logs, sqlite, prometheus_exporter).
func Build(typ string, raw map[string]any, logger *slog.Logger) (topology.Sink, error) {
	switch typ {
	case "black_hole":
		return BuildBlackHole(raw)
	case "console":
		return BuildConsole(raw, logger)
	case "file":
		return BuildFile(raw)
	case "datadog_logs":
		return BuildDatadogLogs(raw, logger)
	case "sqlite":
		return BuildSqlite(raw, logger)
	case "prometheus_exporter":
		return BuildPrometheusExporter(raw, logger)
	default:
		return nil, fmt.Errorf("sink: unknown type %q", typ)
	}
}
