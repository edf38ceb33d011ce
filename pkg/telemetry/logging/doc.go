// Package logging provides the SDK's structured logger: a thin wrapper over
// log/slog with level and format selection and sensitive-key redaction.
//
// Redaction reuses the same compiled pattern set that masks payloads, so a
// field name that never reaches the wire never reaches the SDK's own logs
// either.
package logging
