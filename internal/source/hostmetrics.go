package source

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/cpu"
	"github.com/shirou/gopsutil/host"
	"github.com/shirou/gopsutil/mem"

	"github.com/tinyvector/tinyvector/internal/collector"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/topology"
)

const hostMetricsNamespace = "host.system"

// HostMetrics periodically samples CPU and memory statistics via
// gopsutil and emits them as gauge metrics tagged with the host name.
type HostMetrics struct {
	interval time.Duration
	cpuUsage bool
	cpuFreq  bool
	memRAM   bool
	memSwap  bool
}

// BuildHostMetrics decodes {interval?, cpu: {usage?, frequency?},
// memory: {ram?, swap?}}, every boolean defaulting to true.
func BuildHostMetrics(raw map[string]any) (*HostMetrics, error) {
	ms, err := uintField(raw, "interval", 1000)
	if err != nil {
		return nil, err
	}
	cpuTable, _ := raw["cpu"].(map[string]any)
	memTable, _ := raw["memory"].(map[string]any)

	usage, err := boolField(cpuTable, "usage", true)
	if err != nil {
		return nil, fmt.Errorf("cpu: %w", err)
	}
	freq, err := boolField(cpuTable, "frequency", true)
	if err != nil {
		return nil, fmt.Errorf("cpu: %w", err)
	}
	ram, err := boolField(memTable, "ram", true)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}
	swap, err := boolField(memTable, "swap", true)
	if err != nil {
		return nil, fmt.Errorf("memory: %w", err)
	}

	return &HostMetrics{
		interval: time.Duration(ms) * time.Millisecond,
		cpuUsage: usage,
		cpuFreq:  freq,
		memRAM:   ram,
		memSwap:  swap,
	}, nil
}

func (h *HostMetrics) Prepare(context.Context) (topology.PreparedSource, error) {
	hostname := ""
	if info, err := host.Info(); err == nil {
		hostname = info.Hostname
	}
	return &preparedHostMetrics{cfg: h, hostname: hostname}, nil
}

type preparedHostMetrics struct {
	cfg      *HostMetrics
	hostname string
}

func (p *preparedHostMetrics) metric(name string, value float64) event.Metric {
	m := event.NewMetricValue(uint64(time.Now().Unix()), hostMetricsNamespace, name, event.GaugeValue(value))
	if p.hostname != "" {
		m.SetTag("hostname", p.hostname)
	}
	return m
}

func (p *preparedHostMetrics) send(c *collector.Collector, m event.Metric) {
	c.SendDefault(event.NewMetric(m))
}

func (p *preparedHostMetrics) iterate(c *collector.Collector) {
	if p.cfg.cpuUsage {
		if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
			p.send(c, p.metric("global-cpu-usage", percents[0]))
		}
		if percents, err := cpu.Percent(0, true); err == nil {
			for i, pct := range percents {
				m := p.metric("cpu-usage", pct)
				m.SetTag("name", fmt.Sprintf("cpu%d", i))
				p.send(c, m)
			}
		}
	}
	if p.cfg.cpuFreq {
		if infos, err := cpu.Info(); err == nil {
			for i, info := range infos {
				m := p.metric("cpu-frequency", info.Mhz)
				m.SetTag("name", fmt.Sprintf("cpu%d", i))
				p.send(c, m)
			}
		}
	}
	if p.cfg.memSwap {
		if swap, err := mem.SwapMemory(); err == nil {
			p.send(c, p.metric("free-swap", float64(swap.Free)))
			p.send(c, p.metric("used-swap", float64(swap.Used)))
			p.send(c, p.metric("total-swap", float64(swap.Total)))
		}
	}
	if p.cfg.memRAM {
		if vm, err := mem.VirtualMemory(); err == nil {
			p.send(c, p.metric("available-memory", float64(vm.Available)))
			p.send(c, p.metric("free-memory", float64(vm.Free)))
			p.send(c, p.metric("used-memory", float64(vm.Used)))
			p.send(c, p.metric("total-memory", float64(vm.Total)))
		}
	}
}

func (p *preparedHostMetrics) Execute(c *collector.Collector) error {
	ticker := time.NewTicker(p.cfg.interval)
	defer ticker.Stop()
	for range ticker.C {
		p.iterate(c)
	}
	return nil
}
