package config

import "errors"

// Construction-time errors. All of them surface to the integrator at host
// startup; none can occur on a request path.
var (
	// ErrInvalidCredential is returned when the API key or project ID is empty.
	ErrInvalidCredential = errors.New("config: api key and project id are required")

	// ErrInvalidPattern is returned when a masked-field or ignored-route
	// regex fails to compile. The wrapped error names the offending pattern.
	ErrInvalidPattern = errors.New("config: invalid pattern")

	// ErrNoEndpoints is returned when the API base URL list is empty.
	ErrNoEndpoints = errors.New("config: at least one api base url is required")
)
