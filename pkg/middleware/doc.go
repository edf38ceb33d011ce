// Package middleware adapts the telemetry core to net/http hosts.
//
// # Overview
//
// Middleware wraps an http.Handler and observes every request that passes
// through it: the request body is captured and restored before the host
// handler runs, the response is recorded through a tee writer, and after
// the handler returns a payload is assembled, masked, and handed to the
// dispatcher. The observed request is never delayed by delivery and never
// fails because of it.
//
// Requests whose path matches the ignored-route blacklist bypass
// observation entirely; the host handler still runs.
//
// # Usage
//
//	cfg := config.New(apiKey, projectID)
//	mw, err := middleware.New(cfg)
//	if err != nil { ... }
//	defer mw.Close()
//
//	http.Handle("/", mw.Handler(appHandler))
package middleware
