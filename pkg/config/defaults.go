package config

import "time"

// Default ingestion endpoints, in priority order. The first entry is the
// primary and the only one the dispatcher uses unless the integrator picks
// another.
var defaultAPIURLs = []string{
	"https://rocknrolla.treblle.com",
	"https://punisher.treblle.com",
	"https://sicario.treblle.com",
}

// DefaultAPIURLs returns a fresh copy of the default endpoint list.
func DefaultAPIURLs() []string {
	urls := make([]string, len(defaultAPIURLs))
	copy(urls, defaultAPIURLs)
	return urls
}

// DefaultTransportTimeout bounds one complete send attempt.
const DefaultTransportTimeout = 10 * time.Second

// applyDefaults fills the zero values of every section. It never overrides a
// value the integrator set.
func applyDefaults(cfg *Config) {
	if len(cfg.APIURLs) == 0 {
		cfg.APIURLs = DefaultAPIURLs()
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = "treblle"
	}
	if cfg.Metrics.Subsystem == "" {
		cfg.Metrics.Subsystem = "relay"
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "data/relay-audit.db"
	}
	if cfg.Audit.RetentionDays == 0 {
		cfg.Audit.RetentionDays = 7
	}
	if cfg.Audit.PruneSchedule == "" {
		cfg.Audit.PruneSchedule = "0 3 * * *"
	}

	if cfg.Transport.Timeout <= 0 {
		cfg.Transport.Timeout = DefaultTransportTimeout
	}
}
