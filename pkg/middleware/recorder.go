package middleware

import (
	"bytes"
	"net/http"
)

// maxCapturedBody bounds how much request or response body is retained for
// telemetry. Bodies larger than this are truncated in the payload only; the
// bytes the client sees are unaffected.
const maxCapturedBody = 2 << 20 // 2 MiB

// responseRecorder tees the response while it is written to the client. It
// keeps the status code, the total size, and up to maxCapturedBody bytes of
// body for the payload.
type responseRecorder struct {
	http.ResponseWriter

	status int
	size   int64
	body   bytes.Buffer
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{ResponseWriter: w, status: http.StatusOK}
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *responseRecorder) Write(p []byte) (int, error) {
	if remaining := maxCapturedBody - r.body.Len(); remaining > 0 {
		if len(p) <= remaining {
			r.body.Write(p)
		} else {
			r.body.Write(p[:remaining])
		}
	}
	n, err := r.ResponseWriter.Write(p)
	r.size += int64(n)
	return n, err
}

// Flush passes through to the underlying writer when it supports streaming.
func (r *responseRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
