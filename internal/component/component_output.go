package component

import (
	"fmt"
	"strings"
)

// Output is a reference to exactly one edge source on the graph: the
// component that produces it, and which of its outputs.
type Output struct {
	Component Name
	Port      NamedOutput
}

// NewOutput builds an Output for the default port of component.
func NewOutput(component Name) Output {
	return Output{Component: component, Port: DefaultOutput}
}

// NewNamedOutputRef builds an Output for a named port of component.
func NewNamedOutputRef(component Name, port NamedOutput) Output {
	return Output{Component: component, Port: port}
}

// String renders "<component>#<name>" for a named port, or
// "<component>" for the default port — the §3/§6 round-trip format.
func (o Output) String() string {
	if o.Port.IsDefault() {
		return o.Component.String()
	}
	return o.Component.String() + "#" + o.Port.String()
}

// ParseOutput parses the string round-trip form.
func ParseOutput(s string) (Output, error) {
	before, after, found := strings.Cut(s, "#")
	component, err := ParseName(before)
	if err != nil {
		return Output{}, fmt.Errorf("component: invalid input reference %q: %w", s, err)
	}
	if !found {
		return NewOutput(component), nil
	}
	port, err := ParseNamedOutput(after)
	if err != nil {
		return Output{}, fmt.Errorf("component: invalid input reference %q: %w", s, err)
	}
	return NewNamedOutputRef(component, port), nil
}

func (o Output) Equal(other Output) bool {
	return o.Component == other.Component && o.Port.Equal(other.Port)
}

// outputTable is the object form of a <ref>: {component = "...", output
// = "..."}. output defaults to "default" when absent.
type outputTable struct {
	Component string `toml:"component"`
	Output    string `toml:"output"`
}

// UnmarshalTOML implements toml.Unmarshaler, accepting either the bare
// string round-trip form or the {component, output} table form.
func (o *Output) UnmarshalTOML(data any) error {
	switch v := data.(type) {
	case string:
		parsed, err := ParseOutput(v)
		if err != nil {
			return err
		}
		*o = parsed
		return nil
	case map[string]any:
		var table outputTable
		if raw, ok := v["component"]; ok {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("component: input reference 'component' must be a string")
			}
			table.Component = s
		} else {
			return fmt.Errorf("component: input reference table is missing 'component'")
		}
		table.Output = defaultOutputName
		if raw, ok := v["output"]; ok {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("component: input reference 'output' must be a string")
			}
			table.Output = s
		}
		component, err := ParseName(table.Component)
		if err != nil {
			return err
		}
		port, err := ParseNamedOutput(table.Output)
		if err != nil {
			return err
		}
		*o = NewNamedOutputRef(component, port)
		return nil
	default:
		return fmt.Errorf("component: input reference must be a string or a table, got %T", data)
	}
}
