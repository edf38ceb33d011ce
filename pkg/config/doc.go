// Package config holds the validated settings shared by every component of
// the SDK: credentials, compiled masked-field patterns, the compiled
// ignored-route blacklist, and the ordered API base URLs.
//
// # Lifecycle
//
// A Config is assembled once at host startup, either programmatically
// (New + the Add/Set methods), from a YAML file (Load / LoadWithEnv), from a
// JSON blob (FromJSON, for hosts that hand configuration over as a string),
// or purely from the environment (NewFromEnv). After it is handed to the
// middleware it must be treated as read-only; every request path reads it
// without locking. Pattern sets are compiled when the Config is built, never
// per request.
//
// Construction fails fast: missing credentials, an empty endpoint list, or a
// pattern that does not compile are surfaced to the integrator at startup,
// never at request time.
//
// # Hot reload
//
// Watcher observes the config file with fsnotify and delivers a freshly
// built, fully validated *Config through a callback. The previous Config is
// never mutated; swapping the new one in is the host's choice.
package config
