// Package audit persists dispatch outcomes to a local SQLite database for
// offline diagnostics.
//
// # Overview
//
// The Store implements dispatch.Sink: after every delivery resolves, one
// row is written recording the endpoint, HTTP status, error kind, payload
// size, and timing. The store is strictly write-behind: nothing in the
// dispatch path ever reads it, and a write failure is logged and dropped,
// never surfaced.
//
// A Scheduler prunes old rows on a cron schedule so the database stays
// bounded on long-running hosts.
//
// The store is optional; hosts that do not want a local database simply
// leave it out of the dispatcher options.
package audit
