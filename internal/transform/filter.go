package transform

import (
	"fmt"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/condition"
	"github.com/tinyvector/tinyvector/internal/event"
)

// Filter emits to the default output when its condition matches, and
// to the fallback output (default "dropped") otherwise. Declared
// outputs are {default, fallback}.
type Filter struct {
	cond     condition.Condition
	fallback component.NamedOutput
}

func BuildFilter(raw map[string]any) (Filter, error) {
	condRaw, ok := raw["condition"].(map[string]any)
	if !ok {
		return Filter{}, fmt.Errorf("filter: 'condition' must be a table")
	}
	cond, err := condition.Build(condRaw)
	if err != nil {
		return Filter{}, fmt.Errorf("filter: %w", err)
	}

	fallback := droppedOutput()
	if rawFallback, present := raw["fallback"]; present {
		name, ok := rawFallback.(string)
		if !ok {
			return Filter{}, fmt.Errorf("filter: 'fallback' must be a string")
		}
		parsed, err := component.ParseNamedOutput(name)
		if err != nil {
			return Filter{}, fmt.Errorf("filter: %w", err)
		}
		fallback = parsed
	}

	return Filter{cond: cond, fallback: fallback}, nil
}

func (t Filter) HasOutput(output component.NamedOutput) bool {
	return output.IsDefault() || output.Equal(t.fallback)
}

func (t Filter) Handle(e event.Event) Action {
	if t.cond.Evaluate(e) {
		return EmitTo(component.DefaultOutput, e)
	}
	return EmitTo(t.fallback, e)
}
