package config

import (
	"fmt"
	"time"

	"treblle-hq/relay/pkg/masking"
	"treblle-hq/relay/pkg/routes"
)

// Config is the shared, read-only settings object. Exported fields are plain
// values; the compiled pattern sets are reached through MaskedFields and
// IgnoredRoutes so they can only be replaced wholesale, never mutated.
type Config struct {
	// APIKey authenticates against the ingestion API. Required.
	APIKey string

	// ProjectID identifies the project on the ingestion side. Required.
	ProjectID string

	// APIURLs is the ordered list of base URLs; the first entry is the
	// primary and the only one the dispatcher uses. Must be non-empty.
	APIURLs []string

	// MaxDepth caps the masking traversal. Zero selects the default.
	MaxDepth int

	// ForwardRawBodies forwards non-JSON bodies as a JSON string instead of
	// omitting them. Off by default: dropping the body is the safe choice
	// because non-JSON content is shipped without masking.
	ForwardRawBodies bool

	// Logging configures the SDK's own structured logging.
	Logging LoggingConfig

	// Metrics configures the Prometheus collector.
	Metrics MetricsConfig

	// Audit configures the optional SQLite dispatch-audit store.
	Audit AuditConfig

	// Transport configures both transport strategies.
	Transport TransportConfig

	masked  *masking.PatternSet
	ignored *routes.Blacklist
}

// LoggingConfig selects level and format for the SDK logger.
type LoggingConfig struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	// Default: "info"
	Level string `yaml:"level"`

	// Format is the output format ("json", "text").
	// Default: "json"
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus metrics collector.
type MetricsConfig struct {
	// Enabled controls whether metrics are recorded at all.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Namespace is the Prometheus metric namespace.
	// Default: "treblle"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus metric subsystem.
	// Default: "relay"
	Subsystem string `yaml:"subsystem"`
}

// AuditConfig configures the optional dispatch-audit store. The store is
// diagnostics only: rows are written after a send resolves and are never read
// back into the dispatch path.
type AuditConfig struct {
	// Enabled turns the audit store on.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	// Default: "data/relay-audit.db"
	Path string `yaml:"path"`

	// RetentionDays is how long audit rows are kept. Zero keeps them forever.
	// Default: 7
	RetentionDays int `yaml:"retention_days"`

	// PruneSchedule is a cron expression for scheduled pruning. Empty
	// disables the scheduler.
	// Default: "0 3 * * *"
	PruneSchedule string `yaml:"prune_schedule"`
}

// TransportConfig configures both transport strategies.
type TransportConfig struct {
	// Timeout bounds one complete send attempt: connect, TLS handshake,
	// write, and status read.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`

	// RootCAPath optionally points at a PEM bundle used by the constrained
	// transport instead of the system roots.
	RootCAPath string `yaml:"root_ca_path"`
}

// New creates a Config with the contract default pattern sets and API URLs.
// Validate must still pass before the Config is used.
func New(apiKey, projectID string) *Config {
	cfg := &Config{
		APIKey:    apiKey,
		ProjectID: projectID,
		APIURLs:   DefaultAPIURLs(),
		Metrics:   MetricsConfig{Enabled: true},
		masked:    masking.DefaultPatternSet(),
		ignored:   routes.DefaultBlacklist(),
	}
	applyDefaults(cfg)
	return cfg
}

// Validate checks the invariants that must hold before the Config is shared:
// non-empty credentials and at least one endpoint.
func (c *Config) Validate() error {
	if c.APIKey == "" || c.ProjectID == "" {
		return ErrInvalidCredential
	}
	if len(c.APIURLs) == 0 {
		return ErrNoEndpoints
	}
	return nil
}

// MaskedFields returns the compiled masked-field pattern set.
func (c *Config) MaskedFields() *masking.PatternSet {
	return c.masked
}

// IgnoredRoutes returns the compiled route blacklist.
func (c *Config) IgnoredRoutes() *routes.Blacklist {
	return c.ignored
}

// PrimaryURL returns the first configured base URL.
func (c *Config) PrimaryURL() string {
	return c.APIURLs[0]
}

// AddMaskedFields extends the masked-field set with additional patterns.
// The defaults stay in place.
func (c *Config) AddMaskedFields(patterns []string) error {
	extended, err := c.masked.Extend(patterns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	c.masked = extended
	return nil
}

// SetMaskedFields replaces the masked-field set, defaults included.
func (c *Config) SetMaskedFields(patterns []string) error {
	set, err := masking.Compile(patterns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	c.masked = set
	return nil
}

// AddIgnoredRoutes extends the route blacklist with additional patterns.
// The defaults stay in place.
func (c *Config) AddIgnoredRoutes(patterns []string) error {
	extended, err := c.ignored.Extend(patterns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	c.ignored = extended
	return nil
}

// SetIgnoredRoutes replaces the route blacklist, defaults included.
func (c *Config) SetIgnoredRoutes(patterns []string) error {
	bl, err := routes.Compile(patterns)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	c.ignored = bl
	return nil
}

// SetAPIURLs replaces the base URL list.
func (c *Config) SetAPIURLs(urls []string) error {
	if len(urls) == 0 {
		return ErrNoEndpoints
	}
	c.APIURLs = urls
	return nil
}
