package transform

import (
	"fmt"
	"regexp"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
)

// RegexParser matches a log's message against a single compiled
// pattern. Named capture groups become attributes; a group named
// "message" replaces the message instead. Non-log events and
// non-matching logs pass through unchanged.
type RegexParser struct {
	pattern *regexp.Regexp
}

func BuildRegexParser(raw map[string]any) (RegexParser, error) {
	pattern, ok := raw["pattern"].(string)
	if !ok {
		return RegexParser{}, fmt.Errorf("regex_parser: 'pattern' must be a string")
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return RegexParser{}, fmt.Errorf("regex_parser: invalid pattern %q: %w", pattern, err)
	}
	return RegexParser{pattern: re}, nil
}

func (t RegexParser) HasOutput(output component.NamedOutput) bool {
	return output.IsDefault()
}

func (t RegexParser) Handle(e event.Event) Action {
	l, ok := e.Log()
	if !ok {
		return EmitTo(component.DefaultOutput, e)
	}

	match := t.pattern.FindStringSubmatch(l.Message)
	if match == nil {
		return EmitTo(component.DefaultOutput, e)
	}

	out := l.Clone()
	for i, name := range t.pattern.SubexpNames() {
		if i == 0 || name == "" {
			continue
		}
		if name == "message" {
			out.Message = match[i]
		} else {
			out.SetAttribute(name, event.TextValue(match[i]))
		}
	}
	return EmitTo(component.DefaultOutput, event.NewLog(out))
}
