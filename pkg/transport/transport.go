package transport

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
)

// Kind classifies a send failure.
type Kind int

const (
	// KindConnectFailed covers resolution, dial, and mid-stream I/O failures.
	KindConnectFailed Kind = iota

	// KindTLSValidation marks a rejected certificate chain or hostname. The
	// send is aborted before any plaintext HTTP bytes are written; there is
	// no downgrade path.
	KindTLSValidation

	// KindTimeout marks a send that exceeded its deadline.
	KindTimeout

	// KindNonSuccessStatus marks a completed exchange the ingestion API
	// answered with a non-2xx status.
	KindNonSuccessStatus
)

// String returns the kind's wire/log label.
func (k Kind) String() string {
	switch k {
	case KindConnectFailed:
		return "connect_failed"
	case KindTLSValidation:
		return "tls_validation"
	case KindTimeout:
		return "timeout"
	case KindNonSuccessStatus:
		return "non_success_status"
	}
	return "unknown"
}

// Error is the transport failure the dispatcher counts and logs.
type Error struct {
	Kind   Kind
	Status int // set for KindNonSuccessStatus
	Err    error
}

func (e *Error) Error() string {
	if e.Kind == KindNonSuccessStatus {
		return fmt.Sprintf("transport: %s (%d)", e.Kind, e.Status)
	}
	if e.Err != nil {
		return fmt.Sprintf("transport: %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("transport: %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a transport Error of the given kind.
func IsKind(err error, kind Kind) bool {
	var te *Error
	return errors.As(err, &te) && te.Kind == kind
}

// Transport is the single send contract both strategies implement. Send
// performs exactly one attempt against the given base URL and returns the
// observed HTTP status. Callers own retry policy; neither implementation
// retries.
type Transport interface {
	Send(ctx context.Context, baseURL string, body []byte) (int, error)
}

// classify maps a raw network error onto the taxonomy. Certificate failures
// take precedence over timeouts: a chain the verifier rejected must never be
// reported as anything softer.
func classify(err error) *Error {
	if isTLSValidation(err) {
		return &Error{Kind: KindTLSValidation, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindConnectFailed, Err: err}
}

func isTLSValidation(err error) bool {
	var (
		verification *tls.CertificateVerificationError
		unknownAuth  x509.UnknownAuthorityError
		invalid      x509.CertificateInvalidError
		hostname     x509.HostnameError
	)
	return errors.As(err, &verification) ||
		errors.As(err, &unknownAuth) ||
		errors.As(err, &invalid) ||
		errors.As(err, &hostname)
}
