package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Pattern lists are plain strings here and
// compiled into the Config during construction.
type fileConfig struct {
	APIKey           string        `yaml:"api_key" json:"api_key"`
	ProjectID        string        `yaml:"project_id" json:"project_id"`
	APIURLs          []string      `yaml:"api_urls" json:"api_urls"`
	MaskedFields     []string      `yaml:"masked_fields" json:"masked_fields"`
	IgnoredRoutes    []string      `yaml:"ignored_routes" json:"ignored_routes"`
	MaxDepth         int           `yaml:"max_depth" json:"max_depth"`
	ForwardRawBodies bool          `yaml:"forward_raw_bodies" json:"forward_raw_bodies"`
	Logging          LoggingConfig `yaml:"logging" json:"logging"`
	Metrics          *metricsFile  `yaml:"metrics" json:"metrics"`
	Audit            AuditConfig   `yaml:"audit" json:"audit"`
	Transport        transportFile `yaml:"transport" json:"transport"`
}

type metricsFile struct {
	Enabled   *bool  `yaml:"enabled" json:"enabled"`
	Namespace string `yaml:"namespace" json:"namespace"`
	Subsystem string `yaml:"subsystem" json:"subsystem"`
}

type transportFile struct {
	Timeout    string `yaml:"timeout" json:"timeout"`
	RootCAPath string `yaml:"root_ca_path" json:"root_ca_path"`
}

// Load reads a YAML config file, applies defaults, compiles patterns, and
// validates the result. Pattern lists in the file extend the defaults; use
// Set* afterwards to replace them.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}

	return fromFileConfig(&fc)
}

// LoadWithEnv is Load followed by environment variable overrides
// (TREBLLE_API_KEY, TREBLLE_PROJECT_ID, TREBLLE_API_URL and friends).
// Environment values always win over file values.
func LoadWithEnv(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %q: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: failed to parse %q: %w", path, err)
	}

	applyEnvOverrides(&fc)
	return fromFileConfig(&fc)
}

// FromJSON builds a Config from a JSON blob. Hosts that pass configuration
// across a process or sandbox boundary hand it over this way.
func FromJSON(data []byte) (*Config, error) {
	var fc fileConfig
	if err := json.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: invalid JSON configuration: %w", err)
	}
	return fromFileConfig(&fc)
}

// NewFromEnv builds a Config purely from the environment. Missing credentials
// fail construction, not the first request.
func NewFromEnv() (*Config, error) {
	var fc fileConfig
	applyEnvOverrides(&fc)
	return fromFileConfig(&fc)
}

func fromFileConfig(fc *fileConfig) (*Config, error) {
	cfg := New(fc.APIKey, fc.ProjectID)
	cfg.MaxDepth = fc.MaxDepth
	cfg.ForwardRawBodies = fc.ForwardRawBodies
	cfg.Logging = fc.Logging
	cfg.Audit = fc.Audit

	if fc.Metrics != nil {
		if fc.Metrics.Enabled != nil {
			cfg.Metrics.Enabled = *fc.Metrics.Enabled
		}
		if fc.Metrics.Namespace != "" {
			cfg.Metrics.Namespace = fc.Metrics.Namespace
		}
		if fc.Metrics.Subsystem != "" {
			cfg.Metrics.Subsystem = fc.Metrics.Subsystem
		}
	}

	if fc.Transport.Timeout != "" {
		d, err := time.ParseDuration(fc.Transport.Timeout)
		if err != nil {
			return nil, fmt.Errorf("config: invalid transport timeout %q: %w", fc.Transport.Timeout, err)
		}
		cfg.Transport.Timeout = d
	}
	cfg.Transport.RootCAPath = fc.Transport.RootCAPath

	if len(fc.APIURLs) > 0 {
		if err := cfg.SetAPIURLs(fc.APIURLs); err != nil {
			return nil, err
		}
	}
	if len(fc.MaskedFields) > 0 {
		if err := cfg.AddMaskedFields(fc.MaskedFields); err != nil {
			return nil, err
		}
	}
	if len(fc.IgnoredRoutes) > 0 {
		if err := cfg.AddIgnoredRoutes(fc.IgnoredRoutes); err != nil {
			return nil, err
		}
	}

	applyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides reads the TREBLLE_* environment variables into the file
// shape so the same construction path handles both sources.
func applyEnvOverrides(fc *fileConfig) {
	if v := os.Getenv("TREBLLE_API_KEY"); v != "" {
		fc.APIKey = v
	}
	if v := os.Getenv("TREBLLE_PROJECT_ID"); v != "" {
		fc.ProjectID = v
	}
	if v := os.Getenv("TREBLLE_API_URL"); v != "" {
		fc.APIURLs = splitList(v)
	}
	if v := os.Getenv("TREBLLE_MASKED_FIELDS"); v != "" {
		fc.MaskedFields = splitList(v)
	}
	if v := os.Getenv("TREBLLE_IGNORED_ROUTES"); v != "" {
		fc.IgnoredRoutes = splitList(v)
	}
	if v := os.Getenv("TREBLLE_MAX_DEPTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			fc.MaxDepth = n
		}
	}
	if v := os.Getenv("TREBLLE_LOG_LEVEL"); v != "" {
		fc.Logging.Level = v
	}
	if v := os.Getenv("TREBLLE_LOG_FORMAT"); v != "" {
		fc.Logging.Format = v
	}
	if v := os.Getenv("TREBLLE_TRANSPORT_TIMEOUT"); v != "" {
		fc.Transport.Timeout = v
	}
	if v := os.Getenv("TREBLLE_ROOT_CA_PATH"); v != "" {
		fc.Transport.RootCAPath = v
	}
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
