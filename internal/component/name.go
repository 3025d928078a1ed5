// Package component implements the validated identifiers that label
// every node and edge endpoint in the topology graph: ComponentName,
// NamedOutput, and ComponentOutput.
package component

import (
	"fmt"
	"regexp"
)

var nameRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9\-_]*$`)

// Name is a validated graph node identifier.
type Name string

// ParseName validates s against the component-name grammar.
func ParseName(s string) (Name, error) {
	if !nameRe.MatchString(s) {
		return "", fmt.Errorf("component: invalid name %q (must match %s)", s, nameRe.String())
	}
	return Name(s), nil
}

func (n Name) String() string { return string(n) }

func (n Name) MarshalText() ([]byte, error) {
	return []byte(n), nil
}

func (n *Name) UnmarshalText(text []byte) error {
	parsed, err := ParseName(string(text))
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
