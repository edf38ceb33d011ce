package schema

import (
	"encoding/json"
	"time"
)

// SDKVersion is the version reported in the payload sdk identifier.
const SDKVersion = "0.1.0"

// SDKName identifies this SDK on the wire.
const SDKName = "treblle-go-" + SDKVersion

// PayloadVersion is the payload schema version expected by the ingestion API.
const PayloadVersion = 0.1

// TrebllePayload is the canonical telemetry record sent to the ingestion API.
type TrebllePayload struct {
	APIKey    string      `json:"api_key"`
	ProjectID string      `json:"project_id"`
	Version   float64     `json:"version"`
	SDK       string      `json:"sdk"`
	Data      PayloadData `json:"data"`
}

// PayloadData carries the observation itself plus environment metadata.
type PayloadData struct {
	Server   ServerInfo   `json:"server"`
	Language LanguageInfo `json:"language"`
	Request  RequestInfo  `json:"request"`
	Response ResponseInfo `json:"response"`
	Errors   []ErrorInfo  `json:"errors"`
}

// ServerInfo describes the host the observed application runs on.
type ServerInfo struct {
	IP        string `json:"ip"`
	Timezone  string `json:"timezone"`
	Software  string `json:"software,omitempty"`
	Signature string `json:"signature,omitempty"`
	Protocol  string `json:"protocol"`
	Encoding  string `json:"encoding,omitempty"`
	OS        OsInfo `json:"os"`
}

// OsInfo describes the host operating system.
type OsInfo struct {
	Name         string `json:"name"`
	Release      string `json:"release"`
	Architecture string `json:"architecture"`
}

// LanguageInfo identifies the language runtime of the observed application.
type LanguageInfo struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// RequestInfo is the observed request half of a payload. Body holds the
// decoded (and masked) JSON body, or nil when the body was absent or not JSON.
type RequestInfo struct {
	Timestamp time.Time         `json:"timestamp"`
	IP        string            `json:"ip"`
	URL       string            `json:"url"`
	UserAgent string            `json:"user_agent"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers"`
	Body      any               `json:"body,omitempty"`
}

// ResponseInfo is the observed response half of a payload. LoadTime is the
// request duration in seconds.
type ResponseInfo struct {
	Headers  map[string]string `json:"headers"`
	Code     int               `json:"code"`
	Size     int64             `json:"size"`
	LoadTime float64           `json:"load_time"`
	Body     any               `json:"body,omitempty"`
}

// ErrorInfo describes one error observed while serving the request.
type ErrorInfo struct {
	Source    string `json:"source"`
	ErrorType string `json:"type"`
	Message   string `json:"message"`
	File      string `json:"file"`
	Line      int    `json:"line"`
}

// NewPayload returns a payload shell carrying the configured identity and the
// SDK/version constants, ready for the builder to fill in.
func NewPayload(apiKey, projectID string) *TrebllePayload {
	return &TrebllePayload{
		APIKey:    apiKey,
		ProjectID: projectID,
		Version:   PayloadVersion,
		SDK:       SDKName,
		Data: PayloadData{
			Errors: []ErrorInfo{},
		},
	}
}

// ToJSON serializes the payload for the wire.
func (p *TrebllePayload) ToJSON() ([]byte, error) {
	return json.Marshal(p)
}
