// Package condition implements the boolean predicate language used by
// filter and route: a tree of conditions compiled eagerly from
// configuration (regex errors become build errors) and evaluated
// purely, without mutating the event.
package condition

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/tinyvector/tinyvector/internal/event"
)

// Kind discriminates a Condition node.
type Kind int

const (
	KindIsLog Kind = iota
	KindIsMetric
	KindHasAttribute
	KindHasTag
	KindNot
	KindAnd
	KindOr
)

// CheckKind discriminates a has_tag comparison.
type CheckKind int

const (
	CheckExists CheckKind = iota
	CheckEquals
	CheckStartsWith
	CheckEndsWith
	CheckMatches
)

// Check is the compiled form of a has_tag comparison.
type Check struct {
	kind  CheckKind
	value string
	re    *regexp.Regexp
}

func existsCheck() Check { return Check{kind: CheckExists} }

// Matches reports whether tagValue satisfies the check.
func (c Check) Matches(tagValue string) bool {
	switch c.kind {
	case CheckExists:
		return true
	case CheckEquals:
		return tagValue == c.value
	case CheckStartsWith:
		return strings.HasPrefix(tagValue, c.value)
	case CheckEndsWith:
		return strings.HasSuffix(tagValue, c.value)
	case CheckMatches:
		return c.re.MatchString(tagValue)
	default:
		return false
	}
}

// Condition is a compiled predicate over a single event.
type Condition struct {
	kind     Kind
	attrName string
	tagName  string
	check    Check
	children []Condition
	child    *Condition
}

// Evaluate is pure and non-blocking; it never mutates e.
func (c Condition) Evaluate(e event.Event) bool {
	switch c.kind {
	case KindIsLog:
		return e.IsLog()
	case KindIsMetric:
		return e.IsMetric()
	case KindHasAttribute:
		l, ok := e.Log()
		if !ok {
			return false
		}
		return l.HasAttribute(c.attrName)
	case KindHasTag:
		m, ok := e.Metric()
		if !ok {
			return false
		}
		v, ok := m.Tag(c.tagName)
		if !ok {
			return false
		}
		return c.check.Matches(v)
	case KindNot:
		return !c.child.Evaluate(e)
	case KindAnd:
		for _, ch := range c.children {
			if !ch.Evaluate(e) {
				return false
			}
		}
		return true
	case KindOr:
		for _, ch := range c.children {
			if ch.Evaluate(e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// IsLog, IsMetric, Not, And, Or, HasAttribute, HasTag build already-
// compiled Condition values directly, for use by code (e.g. built-in
// transform construction) that does not go through configuration.

func IsLog() Condition    { return Condition{kind: KindIsLog} }
func IsMetric() Condition { return Condition{kind: KindIsMetric} }

func HasAttribute(name string) Condition {
	return Condition{kind: KindHasAttribute, attrName: name}
}

func HasTag(name string, check Check) Condition {
	return Condition{kind: KindHasTag, tagName: name, check: check}
}

func Not(inner Condition) Condition {
	return Condition{kind: KindNot, child: &inner}
}

func And(inner ...Condition) Condition {
	return Condition{kind: KindAnd, children: inner}
}

func Or(inner ...Condition) Condition {
	return Condition{kind: KindOr, children: inner}
}

// Build compiles a Condition from its generic decoded configuration
// (the shape produced by decoding a TOML table into map[string]any).
// Regex errors surface here, as build errors, never at evaluation
// time.
func Build(raw map[string]any) (Condition, error) {
	typ, ok := raw["type"].(string)
	if !ok {
		return Condition{}, fmt.Errorf("condition: missing or non-string 'type'")
	}
	switch typ {
	case "is_log":
		return IsLog(), nil
	case "is_metric":
		return IsMetric(), nil
	case "has_attribute":
		name, ok := raw["name"].(string)
		if !ok {
			return Condition{}, fmt.Errorf("condition: has_attribute requires a string 'name'")
		}
		return HasAttribute(name), nil
	case "has_tag":
		name, ok := raw["name"].(string)
		if !ok {
			return Condition{}, fmt.Errorf("condition: has_tag requires a string 'name'")
		}
		check := existsCheck()
		if rawCheck, present := raw["check"]; present {
			checkTable, ok := rawCheck.(map[string]any)
			if !ok {
				return Condition{}, fmt.Errorf("condition: has_tag 'check' must be a table")
			}
			built, err := buildCheck(checkTable)
			if err != nil {
				return Condition{}, err
			}
			check = built
		}
		return HasTag(name, check), nil
	case "not":
		inner, ok := raw["value"].(map[string]any)
		if !ok {
			return Condition{}, fmt.Errorf("condition: not requires a table 'value'")
		}
		child, err := Build(inner)
		if err != nil {
			return Condition{}, err
		}
		return Not(child), nil
	case "and":
		children, err := buildList(raw)
		if err != nil {
			return Condition{}, err
		}
		return And(children...), nil
	case "or":
		children, err := buildList(raw)
		if err != nil {
			return Condition{}, err
		}
		return Or(children...), nil
	default:
		return Condition{}, fmt.Errorf("condition: unknown type %q", typ)
	}
}

func buildList(raw map[string]any) ([]Condition, error) {
	rawList, ok := raw["value"].([]any)
	if !ok {
		return nil, fmt.Errorf("condition: %v requires a list 'value'", raw["type"])
	}
	out := make([]Condition, 0, len(rawList))
	for i, item := range rawList {
		table, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("condition: value[%d] must be a table", i)
		}
		built, err := Build(table)
		if err != nil {
			return nil, err
		}
		out = append(out, built)
	}
	return out, nil
}

func buildCheck(raw map[string]any) (Check, error) {
	typ, _ := raw["type"].(string)
	if typ == "" {
		typ = "exists"
	}
	switch typ {
	case "exists":
		return existsCheck(), nil
	case "equals", "starts_with", "ends_with":
		value, ok := raw["value"].(string)
		if !ok {
			return Check{}, fmt.Errorf("condition: check %q requires a string 'value'", typ)
		}
		kind := map[string]CheckKind{
			"equals":      CheckEquals,
			"starts_with": CheckStartsWith,
			"ends_with":   CheckEndsWith,
		}[typ]
		return Check{kind: kind, value: value}, nil
	case "matches":
		pattern, ok := raw["value"].(string)
		if !ok {
			return Check{}, fmt.Errorf("condition: check matches requires a string 'value'")
		}
		re, err := regexp.Compile(pattern)
		if err != nil {
			return Check{}, fmt.Errorf("condition: invalid regex %q: %w", pattern, err)
		}
		return Check{kind: CheckMatches, re: re}, nil
	default:
		return Check{}, fmt.Errorf("condition: unknown check type %q", typ)
	}
}
