package transport

import (
	"bufio"
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"treblle-hq/relay/pkg/config"
	"treblle-hq/relay/pkg/telemetry/logging"
)

// Dialer is the one primitive the constrained transport needs from its host.
// Sandboxed environments that own name resolution satisfy it with whatever
// socket surface they expose; everywhere else the zero net.Dialer works.
type Dialer interface {
	DialContext(ctx context.Context, network, address string) (net.Conn, error)
}

// Constrained is the sandbox strategy: a synchronous HTTP/1.1-over-TLS
// client assembled from first principles on a raw connection. There is no
// background scheduler to lean on, so a send either completes inside the
// caller's hook invocation, bounded by the hard timeout, or is abandoned.
type Constrained struct {
	dialer    Dialer
	tlsConfig *tls.Config
	apiKey    string
	timeout   time.Duration
	logger    *logging.Logger
}

// NewConstrained builds the client. The trusted-root set is resolved once,
// here; a host without any usable roots fails construction rather than ever
// sending unverified.
func NewConstrained(cfg config.TransportConfig, apiKey string, dialer Dialer, logger *logging.Logger) (*Constrained, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if dialer == nil {
		dialer = &net.Dialer{}
	}

	roots, err := RootCAs(cfg.RootCAPath, logger)
	if err != nil {
		return nil, err
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultTransportTimeout
	}

	return &Constrained{
		dialer: dialer,
		tlsConfig: &tls.Config{
			RootCAs:    roots,
			MinVersion: tls.VersionTLS12,
		},
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger,
	}, nil
}

// Send performs one complete synchronous exchange: connect, handshake,
// request write, status read. One deadline covers all four phases. A
// certificate the verifier rejects aborts the send before a single plaintext
// HTTP byte is written.
func (c *Constrained) Send(ctx context.Context, baseURL string, body []byte) (int, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return 0, &Error{Kind: KindConnectFailed, Err: fmt.Errorf("invalid base url %q: %w", baseURL, err)}
	}
	if u.Scheme != "https" {
		return 0, &Error{Kind: KindConnectFailed, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "443"
	}
	path := u.Path
	if path == "" {
		path = "/"
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	dialCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	rawConn, err := c.dialer.DialContext(dialCtx, "tcp", net.JoinHostPort(host, port))
	if err != nil {
		return 0, classify(err)
	}
	defer rawConn.Close()

	// One deadline on the raw connection bounds handshake, write, and read.
	if err := rawConn.SetDeadline(deadline); err != nil {
		return 0, &Error{Kind: KindConnectFailed, Err: err}
	}

	tlsCfg := c.tlsConfig.Clone()
	tlsCfg.ServerName = host
	conn := tls.Client(rawConn, tlsCfg)

	if err := conn.HandshakeContext(dialCtx); err != nil {
		return 0, classify(err)
	}

	if err := c.writeRequest(conn, host, path, body); err != nil {
		return 0, classify(err)
	}

	status, err := readStatus(bufio.NewReader(conn))
	if err != nil {
		return 0, classify(err)
	}
	return status, nil
}

// writeRequest emits a minimal HTTP/1.1 POST. Connection: close keeps the
// exchange strictly one-shot; there is no pool to return the connection to
// in a single-call execution model.
func (c *Constrained) writeRequest(conn *tls.Conn, host, path string, body []byte) error {
	var b strings.Builder
	b.WriteString("POST " + path + " HTTP/1.1\r\n")
	b.WriteString("Host: " + host + "\r\n")
	b.WriteString("Content-Type: application/json\r\n")
	b.WriteString("X-Api-Key: " + c.apiKey + "\r\n")
	b.WriteString("Content-Length: " + strconv.Itoa(len(body)) + "\r\n")
	b.WriteString("Connection: close\r\n")
	b.WriteString("\r\n")

	if _, err := conn.Write([]byte(b.String())); err != nil {
		return err
	}
	_, err := conn.Write(body)
	return err
}

// readStatus consumes the status line and headers, enough to know whether
// the ingestion API accepted the payload. The response body is not read.
func readStatus(r *bufio.Reader) (int, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return 0, err
	}

	// "HTTP/1.1 201 Created"
	parts := strings.SplitN(strings.TrimSpace(line), " ", 3)
	if len(parts) < 2 || !strings.HasPrefix(parts[0], "HTTP/") {
		return 0, fmt.Errorf("malformed status line %q", strings.TrimSpace(line))
	}
	status, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("malformed status code in %q", strings.TrimSpace(line))
	}

	// Drain headers so the server sees a well-behaved client.
	for {
		h, err := r.ReadString('\n')
		if err != nil || strings.TrimSpace(h) == "" {
			break
		}
	}
	return status, nil
}

var _ Transport = (*Constrained)(nil)
