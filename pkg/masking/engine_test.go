package masking

import (
	"encoding/json"
	"reflect"
	"testing"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("failed to decode fixture: %v", err)
	}
	return v
}

func TestEngine_Mask(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "flat object with sensitive keys",
			input: `{"password":"super_secret","credit_card":"4111-1111-1111-1111","regular_field":"visible_data"}`,
			want:  `{"password":"*****","credit_card":"*****","regular_field":"visible_data"}`,
		},
		{
			name:  "nested sensitive key",
			input: `{"user":{"name":"john","ssn":"123-45-6789"}}`,
			want:  `{"user":{"name":"john","ssn":"*****"}}`,
		},
		{
			name:  "whole object value replaced on key match",
			input: `{"secret":{"inner":"value","deep":{"more":"data"}}}`,
			want:  `{"secret":"*****"}`,
		},
		{
			name:  "whole array value replaced on key match",
			input: `{"api_key":["a","b","c"]}`,
			want:  `{"api_key":"*****"}`,
		},
		{
			name:  "number and null values replaced on key match",
			input: `{"cvv":123,"token":null}`,
			want:  `{"cvv":"*****","token":"*****"}`,
		},
		{
			name:  "objects inside arrays are masked",
			input: `{"items":[{"password":"x"},{"name":"ok"}]}`,
			want:  `{"items":[{"password":"*****"},{"name":"ok"}]}`,
		},
		{
			name:  "array elements carry no key context",
			input: `{"list":["password","secret"]}`,
			want:  `{"list":["password","secret"]}`,
		},
		{
			name:  "case insensitive key match",
			input: `{"PASSWORD":"x","Api_Key":"y"}`,
			want:  `{"PASSWORD":"*****","Api_Key":"*****"}`,
		},
		{
			name:  "scalar root passes through",
			input: `"just a string"`,
			want:  `"just a string"`,
		},
		{
			name:  "array root with nested objects",
			input: `[{"pwd":"x"},42]`,
			want:  `[{"pwd":"*****"},42]`,
		},
	}

	engine := NewEngine(DefaultPatternSet(), 0)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.Mask(decode(t, tt.input))
			if !reflect.DeepEqual(got, decode(t, tt.want)) {
				gotJSON, _ := json.Marshal(got)
				t.Errorf("Mask() = %s, want %s", gotJSON, tt.want)
			}
		})
	}
}

func TestEngine_MaskIdempotent(t *testing.T) {
	engine := NewEngine(DefaultPatternSet(), 0)

	input := `{"password":"x","nested":{"cc":"4111","keep":[{"token":1},"s"]},"n":3}`
	once := engine.Mask(decode(t, input))
	twice := engine.Mask(decode(t, input))
	twice = engine.Mask(twice)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("mask(mask(v)) != mask(v)")
	}
}

func TestEngine_DepthCap(t *testing.T) {
	// Build an object nested well past the cap. The walk must terminate and
	// keys above the cap must still be masked.
	const depth = 500
	leaf := map[string]any{"password": "deep"}
	node := any(leaf)
	for i := 0; i < depth; i++ {
		node = map[string]any{"level": node}
	}
	root := map[string]any{"password": "shallow", "tree": node}

	engine := NewEngine(DefaultPatternSet(), 16)
	got := engine.Mask(root).(map[string]any)

	if got["password"] != RedactionToken {
		t.Errorf("shallow key not masked: %v", got["password"])
	}
	// The leaf is past the cap and must be untouched.
	if leaf["password"] != "deep" {
		t.Errorf("over-depth subtree was modified: %v", leaf["password"])
	}
}

func TestEngine_DeeplyNestedArraysTerminate(t *testing.T) {
	node := any([]any{"x"})
	for i := 0; i < 10000; i++ {
		node = []any{node}
	}

	engine := NewEngine(DefaultPatternSet(), 0)
	// Must not panic or overflow.
	engine.Mask(node)
}

func TestEngine_MaskJSON(t *testing.T) {
	engine := NewEngine(DefaultPatternSet(), 0)

	tests := []struct {
		name   string
		raw    string
		wantOK bool
	}{
		{name: "valid object", raw: `{"password":"x"}`, wantOK: true},
		{name: "valid scalar", raw: `42`, wantOK: true},
		{name: "malformed", raw: `{"password":`, wantOK: false},
		{name: "empty", raw: ``, wantOK: false},
		{name: "not json at all", raw: `<html></html>`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, ok := engine.MaskJSON([]byte(tt.raw))
			if ok != tt.wantOK {
				t.Errorf("MaskJSON() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok && v != nil {
				t.Errorf("MaskJSON() returned value %v on failure", v)
			}
		})
	}

	v, ok := engine.MaskJSON([]byte(`{"secret":"x","plain":"y"}`))
	if !ok {
		t.Fatal("MaskJSON() failed on valid input")
	}
	m := v.(map[string]any)
	if m["secret"] != RedactionToken || m["plain"] != "y" {
		t.Errorf("MaskJSON() = %v", m)
	}
}

func TestEngine_MaskHeaders(t *testing.T) {
	engine := NewEngine(DefaultPatternSet(), 0)

	headers := map[string]string{
		"Content-Type": "application/json",
		"X-Api-Key":    "abc123",
		"User-Agent":   "curl/8.0",
	}
	masked := engine.MaskHeaders(headers)

	if masked["X-Api-Key"] != RedactionToken {
		t.Errorf("X-Api-Key not masked: %q", masked["X-Api-Key"])
	}
	if masked["Content-Type"] != "application/json" {
		t.Errorf("Content-Type changed: %q", masked["Content-Type"])
	}
	// Original map untouched.
	if headers["X-Api-Key"] != "abc123" {
		t.Errorf("input headers mutated")
	}
}
