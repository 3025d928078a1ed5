package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// Console writes every received event to stdout as a single JSON line.
type Console struct {
	logger *slog.Logger
}

// BuildConsole never fails: the flavor has no configurable fields.
func BuildConsole(raw map[string]any, logger *slog.Logger) (*Console, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return &Console{logger: logger}, nil
}

func (c *Console) Prepare(context.Context) (topology.PreparedSink, error) {
	return &preparedConsole{logger: c.logger}, nil
}

type preparedConsole struct {
	logger *slog.Logger
}

func (p *preparedConsole) Execute(receiver <-chan event.Event) error {
	p.logger.Info("starting")
	for e := range receiver {
		line, err := json.Marshal(e)
		if err != nil {
			p.logger.Error("unable to encode event", "error", err)
			continue
		}
		fmt.Println(string(line))
	}
	p.logger.Info("stopping")
	return nil
}
