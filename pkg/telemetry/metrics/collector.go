package metrics

import (
	"time"

	"treblle-hq/relay/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels recorded for observed requests.
const (
	OutcomeDispatched  = "dispatched"
	OutcomeIgnored     = "ignored"
	OutcomeBuildFailed = "build_failed"
)

// ResultSent is the dispatch result recorded for a 2xx collector response.
// Failure results reuse the transport error kind labels.
const ResultSent = "sent"

// Collector owns the Prometheus registry and all metric families recorded
// by the SDK. A nil *Collector is valid and records nothing, which lets
// callers wire instrumentation unconditionally.
type Collector struct {
	config   *config.MetricsConfig
	registry *prometheus.Registry

	observationsTotal *prometheus.CounterVec
	dispatchesTotal   *prometheus.CounterVec
	dispatchDuration  *prometheus.HistogramVec
	payloadSizeBytes  prometheus.Histogram
}

// NewCollector creates a metrics collector backed by the given registry.
// If registry is nil a private registry is created. When cfg.Enabled is
// false the returned collector is nil, which disables all recording.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "treblle"
	}
	subsystem := cfg.Subsystem
	if subsystem == "" {
		subsystem = "relay"
	}

	c := &Collector{
		config:   cfg,
		registry: registry,

		observationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "observations_total",
				Help:      "Total number of observed HTTP requests by outcome",
			},
			[]string{"outcome"},
		),

		dispatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatches_total",
				Help:      "Total number of payload dispatch attempts by result",
			},
			[]string{"result"},
		),

		dispatchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "dispatch_duration_seconds",
				Help:      "Time from dispatch hand-off to transport completion",
				Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"result"},
		),

		payloadSizeBytes: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "payload_size_bytes",
				Help:      "Size of serialized telemetry payloads in bytes",
				Buckets:   prometheus.ExponentialBuckets(256, 4, 8), // 256B to 4MB
			},
		),
	}

	registry.MustRegister(
		c.observationsTotal,
		c.dispatchesTotal,
		c.dispatchDuration,
		c.payloadSizeBytes,
	)

	return c
}

// RecordObservation counts an observed request by outcome.
func (c *Collector) RecordObservation(outcome string) {
	if c == nil {
		return
	}
	c.observationsTotal.WithLabelValues(outcome).Inc()
}

// RecordDispatch counts a completed dispatch attempt and records its
// duration. result is ResultSent or a transport error kind label.
func (c *Collector) RecordDispatch(result string, duration time.Duration) {
	if c == nil {
		return
	}
	c.dispatchesTotal.WithLabelValues(result).Inc()
	c.dispatchDuration.WithLabelValues(result).Observe(duration.Seconds())
}

// RecordPayloadSize records the serialized size of a payload handed to
// the dispatcher.
func (c *Collector) RecordPayloadSize(bytes int) {
	if c == nil {
		return
	}
	c.payloadSizeBytes.Observe(float64(bytes))
}

// Registry returns the underlying Prometheus registry, allowing hosts to
// merge the SDK's metrics into their own exposition endpoint.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}
