package sink

import "fmt"

// stringField reads an optional string TOML field, falling back to def
// when absent.
func stringField(raw map[string]any, key string, def string) (string, error) {
	val, present := raw[key]
	if !present {
		return def, nil
	}
	s, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%q must be a string", key)
	}
	return s, nil
}
