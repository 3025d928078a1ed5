// Package stringorenv implements the StringOrEnv config helper: a
// value that is either a literal string or an environment-variable
// lookup with an optional fallback, resolved once at build time.
package stringorenv

import (
	"fmt"
	"os"
)

// Value is either a literal or an env-var reference. Zero value is an
// empty literal.
type Value struct {
	literal      string
	isLiteral    bool
	envKey       string
	defaultValue *string
}

// Literal wraps a plain string value.
func Literal(s string) Value {
	return Value{literal: s, isLiteral: true}
}

// EnvRef builds an env-var reference. defaultValue is nil when absent.
func EnvRef(key string, defaultValue *string) Value {
	return Value{envKey: key, defaultValue: defaultValue}
}

// Resolve reads the process environment once. An env-var reference
// resolves to the environment's value if set, else to defaultValue if
// present; if neither exists, ok is false.
func (v Value) Resolve() (string, bool) {
	if v.isLiteral {
		return v.literal, true
	}
	if val, ok := os.LookupEnv(v.envKey); ok {
		return val, true
	}
	if v.defaultValue != nil {
		return *v.defaultValue, true
	}
	return "", false
}

type envTable struct {
	Key          string  `toml:"key"`
	DefaultValue *string `toml:"default_value"`
}

// UnmarshalTOML implements toml.Unmarshaler: accepts either a literal
// string or an {key, default_value?} table.
func (v *Value) UnmarshalTOML(data any) error {
	switch t := data.(type) {
	case string:
		*v = Literal(t)
		return nil
	case map[string]any:
		keyRaw, ok := t["key"]
		if !ok {
			return fmt.Errorf("stringorenv: table form is missing 'key'")
		}
		key, ok := keyRaw.(string)
		if !ok {
			return fmt.Errorf("stringorenv: 'key' must be a string")
		}
		var def *string
		if raw, ok := t["default_value"]; ok {
			s, ok := raw.(string)
			if !ok {
				return fmt.Errorf("stringorenv: 'default_value' must be a string")
			}
			def = &s
		}
		*v = EnvRef(key, def)
		return nil
	default:
		return fmt.Errorf("stringorenv: value must be a string or a table, got %T", data)
	}
}
