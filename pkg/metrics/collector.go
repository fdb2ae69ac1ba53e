// Package metrics exposes timers and host snapshots as Prometheus metrics.
package metrics

import (
	"context"
	"io"
	"time"

	"github.com/WebTargetLtd/wolves-cli-helper/pkg/sysinfo"
	"github.com/WebTargetLtd/wolves-cli-helper/pkg/timers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "wolves"

// StatSource is anything that can list timer stats
type StatSource interface {
	Stats() []timers.Stat
}

// TimerCollector reports the duration and state of every timer
type TimerCollector struct {
	source   StatSource
	duration *prometheus.Desc
	running  *prometheus.Desc
}

// NewTimerCollector creates a collector over source
func NewTimerCollector(source StatSource) *TimerCollector {
	return &TimerCollector{
		source: source,
		duration: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "timer", "duration_milliseconds"),
			"Duration of the named timer; running timers report time elapsed so far",
			[]string{"timer"}, nil,
		),
		running: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "timer", "running"),
			"Whether the named timer is still running (1=yes, 0=no)",
			[]string{"timer"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *TimerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.duration
	ch <- c.running
}

// Collect implements prometheus.Collector
func (c *TimerCollector) Collect(ch chan<- prometheus.Metric) {
	for _, st := range c.source.Stats() {
		running := 0.0
		if st.Running {
			running = 1
		}
		ch <- prometheus.MustNewConstMetric(c.duration, prometheus.GaugeValue, float64(st.DurationMS), st.Name)
		ch <- prometheus.MustNewConstMetric(c.running, prometheus.GaugeValue, running, st.Name)
	}
}

// HostCollector takes a fresh snapshot on every scrape
type HostCollector struct {
	provider sysinfo.Provider
	timeout  time.Duration

	memory    *prometheus.Desc
	swap      *prometheus.Desc
	cores     *prometheus.Desc
	available *prometheus.Desc
}

// NewHostCollector creates a collector over provider. Each scrape is
// bounded by timeout.
func NewHostCollector(provider sysinfo.Provider, timeout time.Duration) *HostCollector {
	return &HostCollector{
		provider: provider,
		timeout:  timeout,
		memory: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "host", "memory_bytes"),
			"Host memory in bytes",
			[]string{"kind"}, nil,
		),
		swap: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "host", "swap_bytes"),
			"Host swap in bytes",
			[]string{"kind"}, nil,
		),
		cores: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "host", "cpu_cores"),
			"Host CPU core count",
			[]string{"kind"}, nil,
		),
		available: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "host", "disk_available_bytes"),
			"Available space on a mounted filesystem",
			[]string{"mountpoint", "fs", "kind"}, nil,
		),
	}
}

// Describe implements prometheus.Collector
func (c *HostCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.memory
	ch <- c.swap
	ch <- c.cores
	ch <- c.available
}

// Collect implements prometheus.Collector
func (c *HostCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	info, err := c.provider.Snapshot(ctx)
	if err != nil {
		ch <- prometheus.NewInvalidMetric(c.memory, err)
		return
	}

	gauge := func(desc *prometheus.Desc, v float64, labels ...string) {
		ch <- prometheus.MustNewConstMetric(desc, prometheus.GaugeValue, v, labels...)
	}
	gauge(c.memory, float64(info.TotalMemory), "total")
	gauge(c.memory, float64(info.UsedMemory), "used")
	gauge(c.swap, float64(info.TotalSwap), "total")
	gauge(c.swap, float64(info.UsedSwap), "used")
	gauge(c.cores, float64(info.CPUCores), "physical")
	gauge(c.cores, float64(info.CPUVirtualCores), "logical")

	seen := make(map[string]bool, len(info.Disks))
	for _, d := range info.Disks {
		// bind mounts can report the same mountpoint twice
		if seen[d.Mountpoint] {
			continue
		}
		seen[d.Mountpoint] = true
		gauge(c.available, float64(d.AvailableBytes), d.Mountpoint, d.FileSystem, d.Kind)
	}
}

// WriteText gathers g and writes it in the Prometheus text format
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
