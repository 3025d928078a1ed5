package transform

import (
	"fmt"
	"sort"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/stringorenv"
)

// AddFields writes a fixed set of fields into every event's attribute
// or tag map. Values are resolved from StringOrEnv once at build time;
// an entry that fails to resolve (env var unset, no default) is
// silently dropped from the effective configuration.
//
// Config-table key order is not preserved across the TOML decode (Go's
// native map decode target has no order). Keys are applied in sorted
// order for deterministic behavior, so keys that are new to an event
// are appended to its attribute or tag map in alphabetical order, not
// in the order they are declared in the configuration. See
// DESIGN.md's Open Question decisions, #4.
type AddFields struct {
	keys   []string
	values map[string]string
}

func BuildAddFields(raw map[string]any) (AddFields, error) {
	fieldsRaw, ok := raw["fields"].(map[string]any)
	if !ok {
		return AddFields{}, fmt.Errorf("add_fields: 'fields' must be a table")
	}
	values := make(map[string]string, len(fieldsRaw))
	keys := make([]string, 0, len(fieldsRaw))
	for key, rawValue := range fieldsRaw {
		var v stringorenv.Value
		if err := v.UnmarshalTOML(rawValue); err != nil {
			return AddFields{}, fmt.Errorf("add_fields: field %q: %w", key, err)
		}
		resolved, ok := v.Resolve()
		if !ok {
			continue // unresolvable: dropped from the effective configuration
		}
		values[key] = resolved
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return AddFields{keys: keys, values: values}, nil
}

func (t AddFields) HasOutput(output component.NamedOutput) bool {
	return output.IsDefault()
}

func (t AddFields) Handle(e event.Event) Action {
	if l, ok := e.Log(); ok {
		out := l.Clone()
		for _, k := range t.keys {
			out.SetAttribute(k, event.TextValue(t.values[k]))
		}
		return EmitTo(component.DefaultOutput, event.NewLog(out))
	}
	if m, ok := e.Metric(); ok {
		out := m.Clone()
		for _, k := range t.keys {
			out.SetTag(k, t.values[k])
		}
		return EmitTo(component.DefaultOutput, event.NewMetric(out))
	}
	return EmitTo(component.DefaultOutput, e)
}
