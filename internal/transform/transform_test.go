package transform

import (
	"testing"

	"github.com/tinyvector/tinyvector/internal/component"
	"github.com/tinyvector/tinyvector/internal/event"
)

func TestAddFieldsEmptyIsIdentity(t *testing.T) {
	tr, err := BuildAddFields(map[string]any{"fields": map[string]any{}})
	if err != nil {
		t.Fatalf("BuildAddFields: %v", err)
	}
	l := event.NewLogValue("hi")
	action := tr.Handle(event.NewLog(l))
	got, _ := action.Event.Log()
	if got.Message != "hi" || got.Attributes.Len() != 0 {
		t.Errorf("empty add_fields must be identity, got %+v", got)
	}
}

func TestAddFieldsLastWins(t *testing.T) {
	tr, err := BuildAddFields(map[string]any{"fields": map[string]any{"k": "v2"}})
	if err != nil {
		t.Fatalf("BuildAddFields: %v", err)
	}
	l := event.NewLogValue("hi")
	l.SetAttribute("k", event.TextValue("v1"))
	action := tr.Handle(event.NewLog(l))
	got, _ := action.Event.Log()
	v, _ := got.Attributes.Get("k")
	s, _ := v.Text()
	if s != "v2" {
		t.Errorf("last-writer-wins: got %q, want v2", s)
	}
}

func TestRemoveFieldsEmptyIsIdentity(t *testing.T) {
	tr, err := BuildRemoveFields(map[string]any{"fields": []any{}})
	if err != nil {
		t.Fatalf("BuildRemoveFields: %v", err)
	}
	l := event.NewLogValue("hi")
	l.SetAttribute("k", event.TextValue("v"))
	action := tr.Handle(event.NewLog(l))
	got, _ := action.Event.Log()
	if got.Attributes.Len() != 1 {
		t.Errorf("empty remove_fields must be identity")
	}
}

func TestRemoveThenAddIsNotIdentity(t *testing.T) {
	remove, _ := BuildRemoveFields(map[string]any{"fields": []any{"k"}})
	add, _ := BuildAddFields(map[string]any{"fields": map[string]any{"k": "v"}})

	l := event.NewLogValue("hi")
	l.SetAttribute("k", event.TextValue("original"))
	ev := event.NewLog(l)

	ev = remove.Handle(ev).Event
	ev = add.Handle(ev).Event

	got, _ := ev.Log()
	v, _ := got.Attributes.Get("k")
	s, _ := v.Text()
	if s != "v" {
		t.Errorf("remove-then-add must yield the added value, got %q", s)
	}
}

func TestRegexParserMatchScenario(t *testing.T) {
	tr, err := BuildRegexParser(map[string]any{
		"pattern": `^service=(?P<service>[a-z]+)\s+status=(?P<status>[a-z]+)\s+(?P<message>.*)$`,
	})
	if err != nil {
		t.Fatalf("BuildRegexParser: %v", err)
	}

	ev := event.NewLog(event.NewLogValue("service=something status=ok hello world"))
	action := tr.Handle(ev)
	got, _ := action.Event.Log()
	if got.Message != "hello world" {
		t.Errorf("message = %q, want %q", got.Message, "hello world")
	}
	svc, _ := got.Attributes.Get("service")
	s, _ := svc.Text()
	if s != "something" {
		t.Errorf("service = %q, want something", s)
	}
	status, _ := got.Attributes.Get("status")
	s2, _ := status.Text()
	if s2 != "ok" {
		t.Errorf("status = %q, want ok", s2)
	}
}

func TestRegexParserNoMatchPassesThrough(t *testing.T) {
	tr, _ := BuildRegexParser(map[string]any{
		"pattern": `^service=(?P<service>[a-z]+)\s+status=(?P<status>[a-z]+)\s+(?P<message>.*)$`,
	})
	ev := event.NewLog(event.NewLogValue("whatever status=ok hello world"))
	action := tr.Handle(ev)
	got, _ := action.Event.Log()
	if got.Message != "whatever status=ok hello world" {
		t.Errorf("unmatched log must pass through unchanged, got %q", got.Message)
	}
}

func TestRegexParserPassesMetricsThrough(t *testing.T) {
	tr, _ := BuildRegexParser(map[string]any{"pattern": ".*"})
	m := event.NewMetricValue(0, "ns", "name", event.GaugeValue(1))
	action := tr.Handle(event.NewMetric(m))
	if !action.Event.IsMetric() {
		t.Errorf("metric must pass through regex_parser unchanged")
	}
}

func TestFilterDefaultFallbackName(t *testing.T) {
	tr, err := BuildFilter(map[string]any{
		"condition": map[string]any{"type": "is_metric"},
	})
	if err != nil {
		t.Fatalf("BuildFilter: %v", err)
	}
	dropped, _ := component.ParseNamedOutput("dropped")

	logAction := tr.Handle(event.NewLog(event.NewLogValue("x")))
	if !logAction.Output.Equal(dropped) {
		t.Errorf("log should route to dropped, got %v", logAction.Output)
	}

	metricAction := tr.Handle(event.NewMetric(event.NewMetricValue(0, "n", "m", event.GaugeValue(1))))
	if !metricAction.Output.Equal(component.DefaultOutput) {
		t.Errorf("metric should route to default, got %v", metricAction.Output)
	}
}

func TestRouteFirstMatchWins(t *testing.T) {
	tr, err := BuildRoute(map[string]any{
		"routes": []any{
			map[string]any{"output": "metrics", "condition": map[string]any{"type": "is_metric"}},
		},
	})
	if err != nil {
		t.Fatalf("BuildRoute: %v", err)
	}

	metrics, _ := component.ParseNamedOutput("metrics")
	dropped, _ := component.ParseNamedOutput("dropped")

	m := tr.Handle(event.NewMetric(event.NewMetricValue(0, "n", "m", event.GaugeValue(1))))
	if !m.Output.Equal(metrics) {
		t.Errorf("metric should route to metrics output")
	}
	l := tr.Handle(event.NewLog(event.NewLogValue("x")))
	if !l.Output.Equal(dropped) {
		t.Errorf("log should fall back to dropped")
	}
}

func TestRouteFallbackCollisionIsBuildError(t *testing.T) {
	_, err := BuildRoute(map[string]any{
		"fallback": "dropped",
		"routes": []any{
			map[string]any{"output": "dropped", "condition": map[string]any{"type": "is_log"}},
		},
	})
	if err == nil {
		t.Errorf("route must fail to build when a route name collides with the fallback")
	}
}

func TestBroadcastDeclaresEveryOutput(t *testing.T) {
	b := Broadcast{}
	anyOutput, _ := component.ParseNamedOutput("whatever")
	if !b.HasOutput(anyOutput) || !b.HasOutput(component.DefaultOutput) {
		t.Errorf("broadcast must declare every output")
	}
	action := b.Handle(event.NewLog(event.NewLogValue("x")))
	if action.Kind != ActionEmitAll {
		t.Errorf("broadcast must emit to all outputs")
	}
}
