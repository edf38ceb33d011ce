// Package routes decides which request paths are exempt from observation.
//
// The blacklist is checked before any extraction, masking, or network work;
// a match short-circuits the entire telemetry pipeline for that request. The
// default set covers the usual health and metrics endpoints and is part of
// the public contract.
package routes
