package event

import (
	"encoding/json"
	"fmt"
)

// MetricValueKind discriminates MetricValue's variants.
type MetricValueKind int

const (
	MetricCounter MetricValueKind = iota
	MetricGauge
)

// MetricValue is a metric sample value, serialized with an explicit
// kind discriminator (unlike AttrValue).
type MetricValue struct {
	kind    MetricValueKind
	counter uint64
	gauge   float64
}

func CounterValue(v uint64) MetricValue { return MetricValue{kind: MetricCounter, counter: v} }
func GaugeValue(v float64) MetricValue  { return MetricValue{kind: MetricGauge, gauge: v} }

func (v MetricValue) Kind() MetricValueKind { return v.kind }

func (v MetricValue) Counter() (uint64, bool) {
	if v.kind != MetricCounter {
		return 0, false
	}
	return v.counter, true
}

func (v MetricValue) Gauge() (float64, bool) {
	if v.kind != MetricGauge {
		return 0, false
	}
	return v.gauge, true
}

type metricValueWire struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

func (v MetricValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case MetricCounter:
		return json.Marshal(metricValueWire{Type: "counter", Value: float64(v.counter)})
	case MetricGauge:
		return json.Marshal(metricValueWire{Type: "gauge", Value: v.gauge})
	default:
		return nil, fmt.Errorf("event: metric value has unknown kind %d", v.kind)
	}
}

func (v *MetricValue) UnmarshalJSON(data []byte) error {
	var w metricValueWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	switch w.Type {
	case "counter":
		*v = CounterValue(uint64(w.Value))
	case "gauge":
		*v = GaugeValue(w.Value)
	default:
		return fmt.Errorf("event: metric value has unknown type %q", w.Type)
	}
	return nil
}
