package transform

import (
	"fmt"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
)

// RemoveFields deletes a fixed set of keys from every event's
// attribute or tag map. All other fields and the event variant are
// preserved.
type RemoveFields struct {
	fields map[string]struct{}
}

func BuildRemoveFields(raw map[string]any) (RemoveFields, error) {
	listRaw, ok := raw["fields"].([]any)
	if !ok {
		return RemoveFields{}, fmt.Errorf("remove_fields: 'fields' must be a list")
	}
	set := make(map[string]struct{}, len(listRaw))
	for i, item := range listRaw {
		name, ok := item.(string)
		if !ok {
			return RemoveFields{}, fmt.Errorf("remove_fields: fields[%d] must be a string", i)
		}
		set[name] = struct{}{}
	}
	return RemoveFields{fields: set}, nil
}

func (t RemoveFields) HasOutput(output component.NamedOutput) bool {
	return output.IsDefault()
}

func (t RemoveFields) Handle(e event.Event) Action {
	if l, ok := e.Log(); ok {
		out := l.Clone()
		for k := range t.fields {
			out.Attributes.Delete(k)
		}
		return EmitTo(component.DefaultOutput, event.NewLog(out))
	}
	if m, ok := e.Metric(); ok {
		out := m.Clone()
		for k := range t.fields {
			out.Tags.Delete(k)
		}
		return EmitTo(component.DefaultOutput, event.NewMetric(out))
	}
	return EmitTo(component.DefaultOutput, e)
}
