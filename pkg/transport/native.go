package transport

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"treblle-hq/relay/pkg/config"
)

// Native is the full-runtime strategy: one pooled, TLS-verified http.Client
// shared by every send. The client itself never runs on the host's request
// path; the dispatcher hands it detached work.
type Native struct {
	client *http.Client
	apiKey string
}

// NewNative creates the pooled client. The timeout bounds a complete
// attempt, connection setup included.
func NewNative(cfg config.TransportConfig, apiKey string) *Native {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTransportTimeout
	}
	return &Native{
		client: &http.Client{Timeout: timeout},
		apiKey: apiKey,
	}
}

// Send posts one payload and returns the observed status.
func (n *Native) Send(ctx context.Context, baseURL string, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return 0, &Error{Kind: KindConnectFailed, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, classify(err)
	}
	defer resp.Body.Close()

	// Drain so the pooled connection is reusable; the response body itself
	// is of no interest beyond the status.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

var _ Transport = (*Native)(nil)
