package graph

import (
	"errors"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"
)

func errorsOf(t *testing.T, err error) []error {
	t.Helper()
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.Errors
	}
	return []error{err}
}

func TestDecodeAndValidateMinimalPipeline(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[transforms.mid]
type = "filter"
inputs = ["in"]
condition = { type = "is_log" }

[sinks.out]
type = "console"
inputs = ["mid"]
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if err := g.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidateMultipleUseOfInput(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[sinks.out1]
type = "console"
inputs = ["in"]

[sinks.out2]
type = "console"
inputs = ["in"]
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err = g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var found int
	for _, e := range errorsOf(t, err) {
		var mu MultipleUseOfInputError
		if errors.As(e, &mu) {
			found++
			if len(mu.Targets) != 2 {
				t.Errorf("expected both sinks named as targets, got %v", mu.Targets)
			}
		}
	}
	if found != 1 {
		t.Errorf("expected exactly one MultipleUseOfInput error, got %d", found)
	}
}

func TestValidateOrphanComponent(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[sources.unused]
type = "random_logs"

[sinks.out]
type = "console"
inputs = ["in"]
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err = g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var found bool
	for _, e := range errorsOf(t, err) {
		var orphan OrphanComponentError
		if errors.As(e, &orphan) && orphan.Name == "unused" {
			found = true
		}
	}
	if !found {
		t.Error("expected OrphanComponent naming 'unused'")
	}
}

func TestValidateInputNotFound(t *testing.T) {
	doc := `
[sinks.out]
type = "console"
inputs = ["missing"]
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err = g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var found bool
	for _, e := range errorsOf(t, err) {
		var notFound InputNotFoundError
		if errors.As(e, &notFound) {
			found = true
		}
	}
	if !found {
		t.Error("expected InputNotFound")
	}
}

func TestValidateOutputNotFoundOnNamedPort(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[sinks.out]
type = "console"
inputs = ["in#nonexistent"]
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err = g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var found bool
	for _, e := range errorsOf(t, err) {
		var notFound OutputNotFoundError
		if errors.As(e, &notFound) {
			found = true
		}
	}
	if !found {
		t.Error("expected OutputNotFound, since random_logs has no 'nonexistent' output")
	}
}

func TestValidateNoInput(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[sinks.out]
type = "console"
inputs = []
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err = g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var found bool
	for _, e := range errorsOf(t, err) {
		var noInput NoInputError
		if errors.As(e, &noInput) && noInput.Name == "out" {
			found = true
		}
	}
	if !found {
		t.Error("expected NoInput naming 'out'")
	}
}

func TestValidateCircularDependency(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[transforms.a]
type = "filter"
inputs = ["b"]
condition = { type = "is_log" }

[transforms.b]
type = "filter"
inputs = ["a"]
condition = { type = "is_log" }

[sinks.out]
type = "console"
inputs = ["a"]
`
	g, err := Decode([]byte(doc))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	err = g.Validate()
	if err == nil {
		t.Fatal("expected validation error")
	}
	var found bool
	for _, e := range errorsOf(t, err) {
		var circular CircularDependencyError
		if errors.As(e, &circular) {
			found = true
		}
	}
	if !found {
		t.Error("expected CircularDependency for the a -> b -> a cycle")
	}
}

func TestDecodeRejectsBadRegexAsConfigurationError(t *testing.T) {
	doc := `
[sources.in]
type = "random_logs"

[transforms.mid]
type = "regex_parser"
inputs = ["in"]
pattern = "(unterminated"

[sinks.out]
type = "console"
inputs = ["mid"]
`
	_, err := Decode([]byte(doc))
	if err == nil {
		t.Fatal("expected a configuration error from the invalid regex")
	}
	if !strings.Contains(err.Error(), "regex_parser") {
		t.Errorf("expected the error to mention regex_parser, got %v", err)
	}
}
