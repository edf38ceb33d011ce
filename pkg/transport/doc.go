// Package transport sends assembled payloads to the ingestion API.
//
// Two strategies implement one narrow contract,
// Send(ctx, baseURL, body) (status, error), chosen at initialization time by
// host capability:
//
//   - Native: a pooled, TLS-verified net/http client, for hosts with a full
//     runtime. The dispatcher detaches these sends onto their own goroutine.
//   - Constrained: a synchronous HTTP/1.1-over-TLS client built directly on a
//     raw byte-stream connection, for sandboxed hosts that expose nothing but
//     a dial primitive. It performs the TCP connect, the TLS handshake
//     (verified against a configurable root set, fail-closed), a minimal
//     request write, and a buffered status read, all under one hard deadline.
//
// All failures are reported as *Error with a Kind the dispatcher can count;
// nothing here retries, and nothing here is reachable from the host's
// request path except through the dispatcher.
package transport
