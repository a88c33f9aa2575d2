// Package metric exposes pipeline and kernel host counters as
// prometheus metrics. All methods are safe to call on nil *Metric, in
// which case nothing is measured.
package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"pipelined.dev/vocoder/signal"
)

const namespace = "vocoder"

// Kernel build results.
const (
	BuildSucceeded = "success"
	BuildFailed    = "build_error"
	LoadFailed     = "load_error"
)

// Metric holds all collectors.
type Metric struct {
	messages *prometheus.CounterVec
	samples  *prometheus.CounterVec
	latency  *prometheus.GaugeVec
	duration *prometheus.CounterVec

	builds        *prometheus.CounterVec
	buildDuration prometheus.Histogram
	swaps         prometheus.Counter
	version       prometheus.Gauge
}

// New creates collectors and registers them.
func New(reg prometheus.Registerer) (*Metric, error) {
	m := Metric{
		messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stage",
			Name:      "messages_total",
			Help:      "Number of buffers processed by the stage.",
		}, []string{"stage"}),
		samples: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stage",
			Name:      "samples_total",
			Help:      "Number of samples per channel processed by the stage.",
		}, []string{"stage"}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stage",
			Name:      "latency_seconds",
			Help:      "Time between the last two processing calls of the stage.",
		}, []string{"stage"}),
		duration: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stage",
			Name:      "signal_seconds_total",
			Help:      "Duration of signal processed by the stage.",
		}, []string{"stage"}),
		builds: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kernel",
			Name:      "builds_total",
			Help:      "Number of kernel builds by result.",
		}, []string{"result"}),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "kernel",
			Name:      "build_seconds",
			Help:      "Duration of kernel builds.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		swaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "kernel",
			Name:      "swaps_total",
			Help:      "Number of kernels installed into running pipeline.",
		}),
		version: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "kernel",
			Name:      "active_version",
			Help:      "Version of the active kernel, zero for identity.",
		}),
	}
	for _, c := range []prometheus.Collector{
		m.messages, m.samples, m.latency, m.duration,
		m.builds, m.buildDuration, m.swaps, m.version,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return &m, nil
}

// MeasureFunc captures metrics when buffer is processed.
type MeasureFunc func(samples int64)

// Measure calls the function if it's not nil.
func (fn MeasureFunc) Measure(samples int) {
	if fn != nil {
		fn(int64(samples))
	}
}

// Meter returns a closure to capture stage counters. Latency is measured
// from the moment Meter is called.
func (m *Metric) Meter(stage string, sampleRate int) MeasureFunc {
	if m == nil {
		return nil
	}
	var (
		messages = m.messages.WithLabelValues(stage)
		samples  = m.samples.WithLabelValues(stage)
		latency  = m.latency.WithLabelValues(stage)
		duration = m.duration.WithLabelValues(stage)

		calledAt       = time.Now()
		bufferSize     int64
		bufferDuration time.Duration
	)
	return func(s int64) {
		latency.Set(time.Since(calledAt).Seconds())
		messages.Inc()
		samples.Add(float64(s))
		// recalculate buffer duration only when buffer size has changed
		if bufferSize != s {
			bufferSize = s
			bufferDuration = signal.DurationOf(sampleRate, s)
		}
		duration.Add(bufferDuration.Seconds())
		calledAt = time.Now()
	}
}

// KernelBuild records the result of a kernel build attempt.
func (m *Metric) KernelBuild(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.builds.WithLabelValues(result).Inc()
	m.buildDuration.Observe(d.Seconds())
}

// KernelSwap records installation of the kernel version.
func (m *Metric) KernelSwap(version int) {
	if m == nil {
		return
	}
	m.swaps.Inc()
	m.version.Set(float64(version))
}
