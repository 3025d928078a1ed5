package event

import (
	"encoding/json"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Metric is the numeric-metric event variant.
type Metric struct {
	Timestamp uint64 // seconds since epoch
	Namespace string
	Name      string
	Tags      *orderedmap.OrderedMap[string, string]
	Value     MetricValue
}

// NewMetricValue returns a metric with an empty tag map.
func NewMetricValue(timestamp uint64, namespace, name string, value MetricValue) Metric {
	return Metric{
		Timestamp: timestamp,
		Namespace: namespace,
		Name:      name,
		Tags:      orderedmap.New[string, string](),
		Value:     value,
	}
}

// SetTag inserts or overwrites a tag, preserving insertion order for
// new keys.
func (m *Metric) SetTag(key, value string) {
	m.Tags.Set(key, value)
}

// HasTag reports whether the tag map contains key.
func (m Metric) HasTag(key string) bool {
	_, ok := m.Tags.Get(key)
	return ok
}

// Tag returns the value of key and whether it was present.
func (m Metric) Tag(key string) (string, bool) {
	return m.Tags.Get(key)
}

// Clone returns a deep copy: a new tag map with the same entries.
func (m Metric) Clone() Metric {
	out := NewMetricValue(m.Timestamp, m.Namespace, m.Name, m.Value)
	if m.Tags != nil {
		for pair := m.Tags.Oldest(); pair != nil; pair = pair.Next() {
			out.Tags.Set(pair.Key, pair.Value)
		}
	}
	return out
}

type metricWire struct {
	Timestamp uint64                                  `json:"timestamp"`
	Namespace string                                  `json:"namespace"`
	Name      string                                  `json:"name"`
	Tags      *orderedmap.OrderedMap[string, string] `json:"tags"`
	Value     MetricValue                             `json:"value"`
}

func (m Metric) MarshalJSON() ([]byte, error) {
	tags := m.Tags
	if tags == nil {
		tags = orderedmap.New[string, string]()
	}
	return json.Marshal(metricWire{
		Timestamp: m.Timestamp,
		Namespace: m.Namespace,
		Name:      m.Name,
		Tags:      tags,
		Value:     m.Value,
	})
}

func (m *Metric) UnmarshalJSON(data []byte) error {
	var w metricWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.Tags == nil {
		w.Tags = orderedmap.New[string, string]()
	}
	*m = Metric{
		Timestamp: w.Timestamp,
		Namespace: w.Namespace,
		Name:      w.Name,
		Tags:      w.Tags,
		Value:     w.Value,
	}
	return nil
}
