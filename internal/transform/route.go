package transform

import (
	"fmt"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/condition"
	"github.com/tinyvector/tinyvector/internal/event"
)

type routeEntry struct {
	output component.NamedOutput
	cond   condition.Condition
}

// Route evaluates its routes in declaration order, dispatching to the
// first whose condition matches; if none matches, to the fallback
// (default "dropped"). Declared outputs are the route keys union
// {fallback}.
//
// Routes are configured as an ARRAY of {output, condition} tables
// (rather than a table keyed by output name) so that declaration order
// survives the TOML decode: Go's native table-to-map decode does not
// preserve key order, but array-of-tables decode into []any preserves
// file order exactly. See DESIGN.md's Open Question decisions, #3.
type Route struct {
	routes   []routeEntry
	fallback component.NamedOutput
}

func BuildRoute(raw map[string]any) (Route, error) {
	routesRaw, ok := raw["routes"].([]any)
	if !ok {
		return Route{}, fmt.Errorf("route: 'routes' must be a list of tables")
	}

	fallback := droppedOutput()
	if rawFallback, present := raw["fallback"]; present {
		name, ok := rawFallback.(string)
		if !ok {
			return Route{}, fmt.Errorf("route: 'fallback' must be a string")
		}
		parsed, err := component.ParseNamedOutput(name)
		if err != nil {
			return Route{}, fmt.Errorf("route: %w", err)
		}
		fallback = parsed
	}

	entries := make([]routeEntry, 0, len(routesRaw))
	for i, item := range routesRaw {
		table, ok := item.(map[string]any)
		if !ok {
			return Route{}, fmt.Errorf("route: routes[%d] must be a table", i)
		}
		outputRaw, ok := table["output"].(string)
		if !ok {
			return Route{}, fmt.Errorf("route: routes[%d] missing string 'output'", i)
		}
		output, err := component.ParseNamedOutput(outputRaw)
		if err != nil {
			return Route{}, fmt.Errorf("route: routes[%d]: %w", i, err)
		}
		if output.Equal(fallback) {
			return Route{}, fmt.Errorf("route: route name %q collides with the fallback output", outputRaw)
		}
		condRaw, ok := table["condition"].(map[string]any)
		if !ok {
			return Route{}, fmt.Errorf("route: routes[%d] missing table 'condition'", i)
		}
		cond, err := condition.Build(condRaw)
		if err != nil {
			return Route{}, fmt.Errorf("route: routes[%d]: %w", i, err)
		}
		entries = append(entries, routeEntry{output: output, cond: cond})
	}

	return Route{routes: entries, fallback: fallback}, nil
}

func (t Route) HasOutput(output component.NamedOutput) bool {
	if output.Equal(t.fallback) {
		return true
	}
	for _, r := range t.routes {
		if r.output.Equal(output) {
			return true
		}
	}
	return false
}

func (t Route) Handle(e event.Event) Action {
	for _, r := range t.routes {
		if r.cond.Evaluate(e) {
			return EmitTo(r.output, e)
		}
	}
	return EmitTo(t.fallback, e)
}
