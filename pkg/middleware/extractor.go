package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"time"

	"treblle-hq/relay/pkg/extract"
	"treblle-hq/relay/pkg/masking"
	"treblle-hq/relay/pkg/schema"
)

// httpExtractor implements extract.Extractor over captured net/http data.
// All fields are copies owned by the telemetry path; nothing aliases the
// live request or response.
type httpExtractor struct {
	method     string
	url        string
	ip         string
	userAgent  string
	reqHeaders map[string]string
	reqBody    []byte
	reqType    string
	timestamp  time.Time
	forwardRaw bool
	engine     *masking.Engine
	status     int
	size       int64
	resHeaders map[string]string
	resBody    []byte
	resType    string
}

func newHTTPExtractor(r *http.Request, reqBody []byte, forwardRaw bool, engine *masking.Engine) *httpExtractor {
	ip := extract.ClientIP(r.Header)
	if ip == "" {
		if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
			ip = host
		} else {
			ip = r.RemoteAddr
		}
	}

	return &httpExtractor{
		method:     r.Method,
		url:        fullURL(r),
		ip:         ip,
		userAgent:  r.UserAgent(),
		reqHeaders: extract.Flatten(r.Header),
		reqBody:    reqBody,
		reqType:    r.Header.Get("Content-Type"),
		timestamp:  time.Now().UTC(),
		forwardRaw: forwardRaw,
		engine:     engine,
	}
}

// finish records the response side once the host handler has returned.
func (x *httpExtractor) finish(rec *responseRecorder) {
	x.status = rec.status
	x.size = rec.size
	x.resHeaders = extract.Flatten(rec.Header())
	x.resBody = append([]byte(nil), rec.body.Bytes()...)
	x.resType = rec.Header().Get("Content-Type")
}

func (x *httpExtractor) ExtractRequest() schema.RequestInfo {
	return schema.RequestInfo{
		Timestamp: x.timestamp,
		IP:        x.ip,
		URL:       x.url,
		UserAgent: x.userAgent,
		Method:    x.method,
		Headers:   x.reqHeaders,
		Body:      extract.DecodeBody(x.reqBody, x.reqType, x.forwardRaw),
	}
}

func (x *httpExtractor) ExtractResponse(duration time.Duration) schema.ResponseInfo {
	return schema.ResponseInfo{
		Headers:  x.resHeaders,
		Code:     x.status,
		Size:     x.size,
		LoadTime: duration.Seconds(),
		Body:     extract.DecodeBody(x.resBody, x.resType, x.forwardRaw),
	}
}

// ExtractErrors surfaces a non-2xx response as a payload error. A JSON body
// carrying a message or error field supplies the message; otherwise the raw
// JSON body (capped) or the status text stands in.
func (x *httpExtractor) ExtractErrors() []schema.ErrorInfo {
	if x.status < http.StatusBadRequest {
		return nil
	}

	msg := http.StatusText(x.status)
	if extract.IsJSON(x.resType) && len(x.resBody) > 0 {
		var decoded map[string]any
		if err := json.Unmarshal(x.resBody, &decoded); err == nil {
			found := false
			for _, key := range []string{"message", "error"} {
				if s, ok := decoded[key].(string); ok && s != "" {
					msg = s
					found = true
					break
				}
			}
			if !found && x.engine != nil {
				// Fall back to the body itself, masked so the error
				// message cannot carry what the payload would not.
				if b, err := json.Marshal(x.engine.Mask(decoded)); err == nil {
					msg = truncate(string(b), 512)
				}
			}
		}
	}

	errType := "SERVER_ERROR"
	if x.status < http.StatusInternalServerError {
		errType = "CLIENT_ERROR"
	}

	return []schema.ErrorInfo{{
		Source:    "onError",
		ErrorType: errType,
		Message:   msg,
	}}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// fullURL reconstructs the request URL as the client sent it.
func fullURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	var b strings.Builder
	b.WriteString(scheme)
	b.WriteString("://")
	b.WriteString(r.Host)
	b.WriteString(r.URL.Path)
	if r.URL.RawQuery != "" {
		b.WriteString("?")
		b.WriteString(r.URL.RawQuery)
	}
	return b.String()
}
