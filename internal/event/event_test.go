package event

import (
	"encoding/json"
	"testing"
)

func TestLogRoundTrip(t *testing.T) {
	l := NewLogValue("hello world")
	l.SetAttribute("hostname", TextValue("fake-server"))
	l.SetAttribute("count", UIntegerValue(3))
	l.SetAttribute("delta", IntegerValue(-2))
	l.SetAttribute("ratio", FloatValue(1.5))
	l.SetAttribute("ok", BooleanValue(true))
	original := NewLog(l)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, ok := decoded.Log()
	if !ok {
		t.Fatalf("decoded event is not a log")
	}
	if got.Message != "hello world" {
		t.Errorf("message = %q, want %q", got.Message, "hello world")
	}
	if v, ok := got.Attributes.Get("hostname"); !ok {
		t.Errorf("missing hostname attribute")
	} else if s, _ := v.Text(); s != "fake-server" {
		t.Errorf("hostname = %q, want fake-server", s)
	}
	if v, ok := got.Attributes.Get("count"); !ok {
		t.Errorf("missing count attribute")
	} else if u, ok := v.UInteger(); !ok || u != 3 {
		t.Errorf("count = %v, want 3", v)
	}

	// Reserved key "message" must never exist as an attribute.
	if got.HasAttribute("message") {
		t.Errorf("message must not appear as an attribute")
	}

	// Attribute order is preserved.
	var order []string
	for pair := got.Attributes.Oldest(); pair != nil; pair = pair.Next() {
		order = append(order, pair.Key)
	}
	want := []string{"hostname", "count", "delta", "ratio", "ok"}
	if len(order) != len(want) {
		t.Fatalf("attribute order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("attribute order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestMetricRoundTrip(t *testing.T) {
	m := NewMetricValue(1700000000, "foo", "bar", GaugeValue(12.34))
	m.SetTag("region", "us-east")
	original := NewMetric(m)

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got, ok := decoded.Metric()
	if !ok {
		t.Fatalf("decoded event is not a metric")
	}
	if got.Namespace != "foo" || got.Name != "bar" {
		t.Errorf("namespace/name = %s/%s, want foo/bar", got.Namespace, got.Name)
	}
	g, ok := got.Value.Gauge()
	if !ok || g != 12.34 {
		t.Errorf("value = %v, want gauge 12.34", got.Value)
	}
	if tag, ok := got.Tag("region"); !ok || tag != "us-east" {
		t.Errorf("tag region = %v, want us-east", tag)
	}
}

func TestCounterMetricRoundTrip(t *testing.T) {
	m := NewMetricValue(1700000000, "foo", "requests", CounterValue(42))
	data, err := json.Marshal(NewMetric(m))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Event
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got, _ := decoded.Metric()
	c, ok := got.Value.Counter()
	if !ok || c != 42 {
		t.Errorf("value = %v, want counter 42", got.Value)
	}
}

func TestAddFieldsEmptyIsIdentity(t *testing.T) {
	l := NewLogValue("unchanged")
	l.SetAttribute("a", TextValue("b"))
	before := l.Clone()

	// Applying zero fields must not alter the log.
	fields := map[string]AttrValue{}
	for k, v := range fields {
		l.SetAttribute(k, v)
	}

	if before.Message != l.Message || before.Attributes.Len() != l.Attributes.Len() {
		t.Errorf("empty add_fields must be identity")
	}
}

func TestCloneIsDeep(t *testing.T) {
	l := NewLogValue("m")
	l.SetAttribute("k", TextValue("v"))
	clone := l.Clone()
	clone.SetAttribute("k2", TextValue("v2"))

	if l.Attributes.Len() != 1 {
		t.Errorf("mutating clone must not affect original, original has %d attrs", l.Attributes.Len())
	}
}
