package transport

import (
	"crypto/x509"
	"fmt"
	"os"

	"treblle-hq/relay/pkg/telemetry/logging"
)

// RootCAs builds the trusted-root set for the constrained transport. When
// path names a PEM bundle it is loaded; a bundle that cannot be read or
// parsed falls back to the system roots with a logged warning, matching the
// behavior integrators expect from a misconfigured custom CA. With no path,
// the system roots are used directly.
//
// Failure to obtain any root set at all is a hard error: the constrained
// client refuses to start rather than skip verification.
func RootCAs(path string, logger *logging.Logger) (*x509.CertPool, error) {
	if logger == nil {
		logger = logging.Default()
	}

	if path != "" {
		pool, err := loadPEMBundle(path)
		if err == nil {
			logger.Debug("custom root CA bundle loaded", "path", path)
			return pool, nil
		}
		logger.Warn("failed to load custom root CA bundle, falling back to system roots",
			"path", path, "error", err)
	}

	pool, err := x509.SystemCertPool()
	if err != nil {
		return nil, fmt.Errorf("transport: no trusted roots available: %w", err)
	}
	return pool, nil
}

func loadPEMBundle(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("transport: failed to read root CA bundle %q: %w", path, err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("transport: no certificates found in %q", path)
	}
	return pool, nil
}
