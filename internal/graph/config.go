// Package graph decodes the three top-level configuration tables
// (sources, transforms, sinks) into a typed graph and statically
// validates it before any component is built.
package graph

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/transform"
)

// SourceConfig is one [sources.<name>] table. Sources carry no inputs.
type SourceConfig struct {
	Name component.Name
	Type string
	Raw  map[string]any
}

// TransformConfig is one [transforms.<name>] table, built eagerly: a
// malformed condition or regex surfaces here as a configuration error,
// before validation ever runs.
type TransformConfig struct {
	Name      component.Name
	Type      string
	Inputs    []component.Output
	Raw       map[string]any
	Transform transform.Transform
}

// SinkConfig is one [sinks.<name>] table. Sinks declare no outputs.
type SinkConfig struct {
	Name   component.Name
	Type   string
	Inputs []component.Output
	Raw    map[string]any
}

// Graph is the decoded, type-checked (but not yet validated) dataflow
// configuration.
type Graph struct {
	Sources    map[component.Name]SourceConfig
	Transforms map[component.Name]TransformConfig
	Sinks      map[component.Name]SinkConfig
}

// Decode parses a TOML document into a Graph. Every component name is
// validated, every transform is built (surfacing its own configuration
// errors immediately), and every input reference is parsed. Graph-level
// validation (Validate) is a separate step.
func Decode(data []byte) (*Graph, error) {
	var raw map[string]any
	if _, err := toml.Decode(string(data), &raw); err != nil {
		return nil, fmt.Errorf("graph: parsing configuration: %w", err)
	}

	g := &Graph{
		Sources:    map[component.Name]SourceConfig{},
		Transforms: map[component.Name]TransformConfig{},
		Sinks:      map[component.Name]SinkConfig{},
	}

	sources, err := tableOf(raw, "sources")
	if err != nil {
		return nil, err
	}
	for rawName, rawEntry := range sources {
		name, entry, err := parseNamedTable(rawName, rawEntry)
		if err != nil {
			return nil, fmt.Errorf("graph: sources.%s: %w", rawName, err)
		}
		typ, err := stringField(entry, "type")
		if err != nil {
			return nil, fmt.Errorf("graph: sources.%s: %w", rawName, err)
		}
		g.Sources[name] = SourceConfig{Name: name, Type: typ, Raw: entry}
	}

	transforms, err := tableOf(raw, "transforms")
	if err != nil {
		return nil, err
	}
	for rawName, rawEntry := range transforms {
		name, entry, err := parseNamedTable(rawName, rawEntry)
		if err != nil {
			return nil, fmt.Errorf("graph: transforms.%s: %w", rawName, err)
		}
		typ, err := stringField(entry, "type")
		if err != nil {
			return nil, fmt.Errorf("graph: transforms.%s: %w", rawName, err)
		}
		inputs, err := inputsField(entry)
		if err != nil {
			return nil, fmt.Errorf("graph: transforms.%s: %w", rawName, err)
		}
		built, err := transform.Build(typ, entry)
		if err != nil {
			return nil, fmt.Errorf("graph: transforms.%s: %w", rawName, err)
		}
		g.Transforms[name] = TransformConfig{Name: name, Type: typ, Inputs: inputs, Raw: entry, Transform: built}
	}

	sinks, err := tableOf(raw, "sinks")
	if err != nil {
		return nil, err
	}
	for rawName, rawEntry := range sinks {
		name, entry, err := parseNamedTable(rawName, rawEntry)
		if err != nil {
			return nil, fmt.Errorf("graph: sinks.%s: %w", rawName, err)
		}
		typ, err := stringField(entry, "type")
		if err != nil {
			return nil, fmt.Errorf("graph: sinks.%s: %w", rawName, err)
		}
		inputs, err := inputsField(entry)
		if err != nil {
			return nil, fmt.Errorf("graph: sinks.%s: %w", rawName, err)
		}
		g.Sinks[name] = SinkConfig{Name: name, Type: typ, Inputs: inputs, Raw: entry}
	}

	return g, nil
}

func tableOf(raw map[string]any, key string) (map[string]any, error) {
	val, present := raw[key]
	if !present {
		return map[string]any{}, nil
	}
	table, ok := val.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("graph: %q must be a table", key)
	}
	return table, nil
}

func parseNamedTable(rawName string, rawEntry any) (component.Name, map[string]any, error) {
	name, err := component.ParseName(rawName)
	if err != nil {
		return "", nil, err
	}
	entry, ok := rawEntry.(map[string]any)
	if !ok {
		return "", nil, fmt.Errorf("must be a table")
	}
	return name, entry, nil
}

func stringField(entry map[string]any, key string) (string, error) {
	val, ok := entry[key].(string)
	if !ok {
		return "", fmt.Errorf("missing or non-string %q", key)
	}
	return val, nil
}

func inputsField(entry map[string]any) ([]component.Output, error) {
	rawList, present := entry["inputs"]
	if !present {
		return nil, nil
	}
	list, ok := rawList.([]any)
	if !ok {
		return nil, fmt.Errorf("'inputs' must be a list")
	}
	out := make([]component.Output, 0, len(list))
	for i, item := range list {
		var ref component.Output
		if err := ref.UnmarshalTOML(item); err != nil {
			return nil, fmt.Errorf("inputs[%d]: %w", i, err)
		}
		out = append(out, ref)
	}
	return out, nil
}
