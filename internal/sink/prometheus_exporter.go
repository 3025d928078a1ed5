package sink

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	orderedmap "github.com/wk8/go-ordered-map/v2"

	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

// PrometheusExporter exposes every received metric event on an HTTP
// /metrics endpoint for Prometheus to scrape.
type PrometheusExporter struct {
	address string
	logger  *slog.Logger
}

// BuildPrometheusExporter decodes {address?}, defaulting to
// 127.0.0.1:9598.
func BuildPrometheusExporter(raw map[string]any, logger *slog.Logger) (*PrometheusExporter, error) {
	address, err := stringField(raw, "address", "127.0.0.1:9598")
	if err != nil {
		return nil, err
	}
	if _, _, err := net.SplitHostPort(address); err != nil {
		return nil, fmt.Errorf("prometheus_exporter: unable to parse address: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PrometheusExporter{address: address, logger: logger}, nil
}

func (p *PrometheusExporter) Prepare(context.Context) (topology.PreparedSink, error) {
	listener, err := net.Listen("tcp", p.address)
	if err != nil {
		return nil, fmt.Errorf("prometheus_exporter: unable to bind %s: %w", p.address, err)
	}

	registry := prometheus.NewRegistry()
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	server := &http.Server{Handler: mux}
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			p.logger.Error("exporter failed", "error", err)
		}
	}()

	return &preparedPrometheusExporter{
		registry: registry,
		server:   server,
		gauges:   make(map[string]prometheus.Gauge),
		counters: make(map[string]prometheus.Counter),
		logger:   p.logger,
	}, nil
}

type preparedPrometheusExporter struct {
	registry *prometheus.Registry
	server   *http.Server

	mu       sync.Mutex
	gauges   map[string]prometheus.Gauge
	counters map[string]prometheus.Counter

	logger *slog.Logger
}

var invalidMetricChar = regexp.MustCompile(`[^a-zA-Z0-9_:]`)

func sanitizeMetricName(s string) string {
	return invalidMetricChar.ReplaceAllString(s, "_")
}

// identity builds a cache key and constant label set from a metric's
// namespace, name and tags, so repeated samples of the same series
// reuse a single registered collector.
func identity(namespace, name string, tags *orderedmap.OrderedMap[string, string]) (string, prometheus.Labels) {
	fqName := sanitizeMetricName(namespace + "_" + name)
	labels := prometheus.Labels{}
	if tags != nil {
		for pair := tags.Oldest(); pair != nil; pair = pair.Next() {
			labels[sanitizeMetricName(pair.Key)] = pair.Value
		}
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(fqName)
	for _, k := range keys {
		fmt.Fprintf(&b, "|%s=%s", k, labels[k])
	}
	return b.String(), labels
}

func (p *preparedPrometheusExporter) gaugeFor(namespace, name string, tags *orderedmap.OrderedMap[string, string]) prometheus.Gauge {
	key, labels := identity(namespace, name, tags)
	p.mu.Lock()
	defer p.mu.Unlock()
	g, ok := p.gauges[key]
	if !ok {
		g = prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        sanitizeMetricName(namespace + "_" + name),
			ConstLabels: labels,
		})
		if err := p.registry.Register(g); err != nil {
			p.logger.Error("unable to register gauge", "error", err)
		}
		p.gauges[key] = g
	}
	return g
}

func (p *preparedPrometheusExporter) counterFor(namespace, name string, tags *orderedmap.OrderedMap[string, string]) prometheus.Counter {
	key, labels := identity(namespace, name, tags)
	p.mu.Lock()
	defer p.mu.Unlock()
	c, ok := p.counters[key]
	if !ok {
		c = prometheus.NewCounter(prometheus.CounterOpts{
			Name:        sanitizeMetricName(namespace + "_" + name),
			ConstLabels: labels,
		})
		if err := p.registry.Register(c); err != nil {
			p.logger.Error("unable to register counter", "error", err)
		}
		p.counters[key] = c
	}
	return c
}

func (p *preparedPrometheusExporter) handle(m event.Metric) {
	switch m.Value.Kind() {
	case event.MetricGauge:
		v, _ := m.Value.Gauge()
		p.gaugeFor(m.Namespace, m.Name, m.Tags).Set(v)
	case event.MetricCounter:
		v, _ := m.Value.Counter()
		p.counterFor(m.Namespace, m.Name, m.Tags).Add(float64(v))
	}
}

func (p *preparedPrometheusExporter) Execute(receiver <-chan event.Event) error {
	defer p.server.Close()
	p.logger.Info("starting")
	for e := range receiver {
		if m, ok := e.Metric(); ok {
			p.handle(*m)
		}
	}
	p.logger.Info("stopping")
	return nil
}
