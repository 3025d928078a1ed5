package sink

import (
	"context"

	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// BlackHole discards every event it receives. It carries no resources
// and no configuration.
type BlackHole struct{}

// BuildBlackHole never fails: the flavor has no configurable fields.
func BuildBlackHole(map[string]any) (*BlackHole, error) {
	return &BlackHole{}, nil
}

func (b *BlackHole) Prepare(context.Context) (topology.PreparedSink, error) {
	return &preparedBlackHole{}, nil
}

type preparedBlackHole struct{}

func (p *preparedBlackHole) Execute(receiver <-chan event.Event) error {
	for range receiver {
	}
	return nil
}
