package transport

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"treblle-hq/relay/pkg/telemetry/logging"
)

const testCertPEM = `-----BEGIN CERTIFICATE-----
MIIBhTCCASugAwIBAgIQIRi6zePL6mKjOipn+dNuaTAKBggqhkjOPQQDAjASMRAw
DgYDVQQKEwdBY21lIENvMB4XDTE3MTAyMDE5NDMwNloXDTE4MTAyMDE5NDMwNlow
EjEQMA4GA1UEChMHQWNtZSBDbzBZMBMGByqGSM49AgEGCCqGSM49AwEHA0IABD0d
7VNhbWvZLWPuj/RtHFjvtJBEwOkhbN/BnnE8rnZR8+sbwnc/KhCk3FhnpHZnQz7B
5aETbbIgmuvewdjvSBSjYzBhMA4GA1UdDwEB/wQEAwICpDATBgNVHSUEDDAKBggr
BgEFBQcDATAPBgNVHRMBAf8EBTADAQH/MCkGA1UdEQQiMCCCDmxvY2FsaG9zdDo1
NDUzgg4xMjcuMC4wLjE6NTQ1MzAKBggqhkjOPQQDAgNIADBFAiEA2zpJEPQyz6/l
Wf86aX6PepsntZv2GYlA5UpabfT2EZICICpJ5h/iI+i341gBmLiAFQOyTDT+/wQc
6MF9+Yw1Yy0t
-----END CERTIFICATE-----`

func TestRootCAs_CustomBundle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roots.pem")
	if err := os.WriteFile(path, []byte(testCertPEM), 0o600); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	pool, err := RootCAs(path, nil)
	if err != nil {
		t.Fatalf("RootCAs() error = %v", err)
	}
	if pool == nil {
		t.Fatal("RootCAs() returned nil pool")
	}
}

func TestRootCAs_FallbackToSystem(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "missing file", path: "/does/not/exist.pem"},
		{name: "no path", path: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := RootCAs(tt.path, nil)
			if err != nil {
				t.Fatalf("RootCAs() error = %v", err)
			}
			if pool == nil {
				t.Fatal("RootCAs() returned nil pool")
			}
		})
	}
}

func TestRootCAs_FallbackWarnsThroughSDKLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := logging.New(logging.Config{Writer: &buf})
	if err != nil {
		t.Fatalf("logging.New() error = %v", err)
	}

	if _, err := RootCAs("/does/not/exist.pem", logger); err != nil {
		t.Fatalf("RootCAs() error = %v", err)
	}
	if !strings.Contains(buf.String(), "falling back to system roots") {
		t.Errorf("fallback warning not logged: %q", buf.String())
	}
}

func TestRootCAs_EmptyBundleFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pem")
	if err := os.WriteFile(path, []byte("not a certificate"), 0o600); err != nil {
		t.Fatalf("write bundle: %v", err)
	}

	pool, err := RootCAs(path, nil)
	if err != nil {
		t.Fatalf("RootCAs() error = %v", err)
	}
	if pool == nil {
		t.Fatal("RootCAs() returned nil pool")
	}
}
