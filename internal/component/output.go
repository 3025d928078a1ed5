package component

import "fmt"

// defaultOutputName is the literal string that decodes to the default
// output sentinel.
const defaultOutputName = "default"

// NamedOutput selects one of a component's emission ports: either the
// unique default port, or an arbitrary named one.
type NamedOutput struct {
	isDefault bool
	name      Name
}

// DefaultOutput is the default-port sentinel.
var DefaultOutput = NamedOutput{isDefault: true}

// NewNamedOutput validates name and returns the corresponding named
// (non-default) output. The literal "default" is rejected here: use
// DefaultOutput instead, or ParseNamedOutput to accept either form.
func NewNamedOutput(name string) (NamedOutput, error) {
	if name == defaultOutputName {
		return NamedOutput{}, fmt.Errorf("component: output name %q is reserved for the default sentinel", name)
	}
	n, err := ParseName(name)
	if err != nil {
		return NamedOutput{}, err
	}
	return NamedOutput{name: n}, nil
}

// ParseNamedOutput decodes the literal "default" to DefaultOutput, and
// any other valid component-name string to a named output.
func ParseNamedOutput(s string) (NamedOutput, error) {
	if s == defaultOutputName {
		return DefaultOutput, nil
	}
	n, err := ParseName(s)
	if err != nil {
		return NamedOutput{}, err
	}
	return NamedOutput{name: n}, nil
}

func (o NamedOutput) IsDefault() bool { return o.isDefault }

// Name returns the output's name and true, or ("", false) for the
// default sentinel.
func (o NamedOutput) Name() (Name, bool) {
	if o.isDefault {
		return "", false
	}
	return o.name, true
}

// String renders "default" for the sentinel, or the bare name
// otherwise.
func (o NamedOutput) String() string {
	if o.isDefault {
		return defaultOutputName
	}
	return string(o.name)
}

func (o NamedOutput) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *NamedOutput) UnmarshalText(text []byte) error {
	parsed, err := ParseNamedOutput(string(text))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

func (o NamedOutput) Equal(other NamedOutput) bool {
	return o.isDefault == other.isDefault && o.name == other.name
}
