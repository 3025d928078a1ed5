package transform

import (
	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
)

// Broadcast has no configuration and declares every output name: it
// clones each event to the default sender and every named sender
// registered on its collector. Order across outputs is unspecified;
// order within a given output preserves input order.
type Broadcast struct{}

func BuildBroadcast(map[string]any) (Broadcast, error) {
	return Broadcast{}, nil
}

func (Broadcast) HasOutput(component.NamedOutput) bool { return true }

func (Broadcast) Handle(e event.Event) Action {
	return EmitAll(e)
}
