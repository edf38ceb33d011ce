// Package dispatch delivers assembled telemetry payloads to the collector
// endpoint without ever surfacing failures to the observed request path.
//
// # Overview
//
// The Dispatcher serializes a payload once, hands it to a transport, and
// tracks each delivery through a small state machine:
//
//	Idle -> Sending -> Sent
//	                -> Failed
//
// Dispatch never returns an error: connect failures, TLS rejections,
// timeouts, and non-2xx collector responses are logged, counted, and
// optionally written to an audit sink, but the caller is unaffected.
//
// # Delivery modes
//
// In asynchronous mode (the default, suited to native hosts) each delivery
// runs on its own goroutine with a context detached from the observed
// request, so request cancellation cannot abort an in-flight send. In
// synchronous mode (for constrained hosts that cannot background work)
// Dispatch blocks until the transport completes, bounded by the transport
// timeout.
//
// Flush waits for in-flight deliveries, which hosts should call on
// shutdown to avoid dropping the tail of the stream.
package dispatch
