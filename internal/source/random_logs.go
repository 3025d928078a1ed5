package source

import (
	"context"
	"time"

	"github.com/tinyvector/tinyvector/internal/collector"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// RandomLogs generates a fixed "Hello World!" log on a fixed interval.
// It carries no Startable resources, so Prepare never fails.
type RandomLogs struct {
	interval time.Duration
}

// BuildRandomLogs decodes {interval?: milliseconds}, defaulting to
// 1000ms.
func BuildRandomLogs(raw map[string]any) (*RandomLogs, error) {
	ms, err := uintField(raw, "interval", 1000)
	if err != nil {
		return nil, err
	}
	return &RandomLogs{interval: time.Duration(ms) * time.Millisecond}, nil
}

func (r *RandomLogs) Prepare(context.Context) (topology.PreparedSource, error) {
	return &preparedRandomLogs{interval: r.interval}, nil
}

type preparedRandomLogs struct {
	interval time.Duration
}

func generateRandomLog() event.Event {
	l := event.NewLogValue("Hello World!")
	l.SetAttribute("hostname", event.TextValue("fake-server"))
	l.SetAttribute("ddsource", event.TextValue("tiny-vector"))
	l.SetAttribute("timestamp", event.UIntegerValue(uint64(time.Now().Unix())))
	return event.NewLog(l)
}

func (p *preparedRandomLogs) Execute(c *collector.Collector) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for range ticker.C {
		c.SendDefault(generateRandomLog())
	}
	return nil
}
