// Package telemetry groups the SDK's own observability: structured logging
// with sensitive-key redaction and Prometheus metrics.
//
// # Components
//
//   - logging: slog-based logger whose key/value arguments are redacted
//     against the same pattern set that masks payloads
//   - metrics: Prometheus collectors for observation and dispatch counters
//
// These cover the SDK's internal behavior only; observing the host
// application is the job of the payload pipeline.
package telemetry
