// Package metrics provides Prometheus instrumentation for the telemetry
// pipeline.
//
// # Overview
//
// The package exposes a single Collector that owns a private Prometheus
// registry and the metric families recorded by the SDK:
//
//   - treblle_relay_observations_total: observed requests by outcome
//     (dispatched, ignored, build_failed)
//   - treblle_relay_dispatches_total: dispatch attempts by result
//     (sent, connect_failed, tls_validation, timeout, non_success_status)
//   - treblle_relay_dispatch_duration_seconds: time from hand-off to
//     transport completion
//   - treblle_relay_payload_size_bytes: serialized payload size
//
// All recording methods are safe for concurrent use and become no-ops when
// metrics are disabled in configuration, so callers never need to guard
// recording sites.
//
// # Usage
//
//	collector := metrics.NewCollector(&cfg.Metrics, nil)
//	collector.RecordDispatch("sent", elapsed)
//	http.Handle("/metrics", collector.Handler())
package metrics
