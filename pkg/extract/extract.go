package extract

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"treblle-hq/relay/pkg/schema"
)

// Extractor is implemented once per host framework. The core calls it with
// per-observation data the adapter captured from its pipeline; every method
// operates on copies owned by the telemetry path.
type Extractor interface {
	// ExtractRequest returns the observed request. Method and URL are
	// mandatory; the payload builder rejects an extraction without them.
	ExtractRequest() schema.RequestInfo

	// ExtractResponse returns the observed response with the measured
	// duration. A zero Code marks the extraction as incomplete.
	ExtractResponse(duration time.Duration) schema.ResponseInfo

	// ExtractErrors returns errors observed while serving the request,
	// in order. May be empty.
	ExtractErrors() []schema.ErrorInfo
}

// IsJSON reports whether a Content-Type names a JSON body.
func IsJSON(contentType string) bool {
	return strings.Contains(strings.ToLower(contentType), "application/json")
}

// ClientIP resolves the originating client address from forwarding headers,
// in standard precedence order. Returns "" when no forwarding header is set;
// adapters then fall back to the connection's remote address.
func ClientIP(headers http.Header) string {
	if fwd := headers.Get("Forwarded"); fwd != "" {
		if ip := parseForwarded(fwd); ip != "" {
			return ip
		}
	}
	if xff := headers.Get("X-Forwarded-For"); xff != "" {
		return strings.TrimSpace(strings.Split(xff, ",")[0])
	}
	if real := headers.Get("X-Real-IP"); real != "" {
		return strings.TrimSpace(real)
	}
	return ""
}

// parseForwarded pulls the for= element out of an RFC 7239 Forwarded header.
func parseForwarded(value string) string {
	first := strings.Split(value, ",")[0]
	for _, part := range strings.Split(first, ";") {
		kv := strings.SplitN(strings.TrimSpace(part), "=", 2)
		if len(kv) != 2 || !strings.EqualFold(kv[0], "for") {
			continue
		}
		ip := strings.Trim(kv[1], `"`)
		ip = strings.TrimPrefix(ip, "[")
		if i := strings.Index(ip, "]"); i >= 0 {
			ip = ip[:i]
		} else if i := strings.LastIndex(ip, ":"); i >= 0 && strings.Count(ip, ":") == 1 {
			ip = ip[:i]
		}
		return ip
	}
	return ""
}

// DecodeBody applies the body policy: JSON bodies are decoded into a value
// tree for masking; non-JSON bodies are dropped unless forwardRaw is set, in
// which case the raw text travels as a JSON string (metadata-only otherwise).
// Malformed JSON is treated as non-JSON.
func DecodeBody(raw []byte, contentType string, forwardRaw bool) any {
	if len(raw) == 0 {
		return nil
	}
	if IsJSON(contentType) {
		var v any
		if err := json.Unmarshal(raw, &v); err == nil {
			return v
		}
	}
	if forwardRaw {
		return string(raw)
	}
	return nil
}

// Flatten converts an http.Header into the single-valued map the wire schema
// uses. Repeated headers collapse to a comma-joined value.
func Flatten(headers http.Header) map[string]string {
	flat := make(map[string]string, len(headers))
	for name, values := range headers {
		flat[name] = strings.Join(values, ", ")
	}
	return flat
}
