package source

import (
	"fmt"
	"log/slog"

	"github.com/tinyvector/tinyvector/internal/topology"
)

// Build dispatches on the source flavor discriminator (spec.md §6 lists
// the driver contract; the flavor set itself is driver-specific:
// random_logs, tcp_server, hostmetrics).
func Build(typ string, raw map[string]any, logger *slog.Logger) (topology.Source, error) {
	switch typ {
	case "random_logs":
		return BuildRandomLogs(raw)
	case "tcp_server":
		return BuildTCPServer(raw, logger)
	case "hostmetrics":
		return BuildHostMetrics(raw)
	default:
		return nil, fmt.Errorf("source: unknown type %q", typ)
	}
}
