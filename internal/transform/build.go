package transform

import "fmt"

// Build dispatches on the transform flavor discriminator (spec.md §6:
// add_fields, remove_fields, regex_parser, filter, route, broadcast)
// and compiles the corresponding Transform eagerly, surfacing any
// configuration or compile error (e.g. bad regex) as a build error.
func Build(typ string, raw map[string]any) (Transform, error) {
	switch typ {
	case "add_fields":
		return BuildAddFields(raw)
	case "remove_fields":
		return BuildRemoveFields(raw)
	case "regex_parser":
		return BuildRegexParser(raw)
	case "filter":
		return BuildFilter(raw)
	case "route":
		return BuildRoute(raw)
	case "broadcast":
		return BuildBroadcast(raw)
	default:
		return nil, fmt.Errorf("transform: unknown type %q", typ)
	}
}
