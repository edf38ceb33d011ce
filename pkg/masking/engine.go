package masking

import (
	"encoding/json"
	"strings"
)

// RedactionToken replaces every masked value on the wire.
const RedactionToken = "*****"

// DefaultMaxDepth bounds the traversal. Typical API bodies nest a handful of
// levels; anything deeper is either generated or hostile.
const DefaultMaxDepth = 64

// Engine masks decoded JSON values against a PatternSet.
type Engine struct {
	set      *PatternSet
	maxDepth int
}

// NewEngine creates an Engine over the given pattern set. A maxDepth of zero
// or less selects DefaultMaxDepth.
func NewEngine(set *PatternSet, maxDepth int) *Engine {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Engine{set: set, maxDepth: maxDepth}
}

type frame struct {
	node  any
	depth int
}

// Mask redacts the value tree in place and returns it. The argument must be a
// value decoded by encoding/json (map[string]any, []any, scalars) that is
// owned by the telemetry path; the body handed to the application is never
// the one masked here.
//
// The walk is iterative: containers are pushed onto an explicit stack, so
// input depth can never overflow the goroutine stack. Containers nested past
// the depth cap are not entered; their contents pass through untouched.
func (e *Engine) Mask(v any) any {
	if v == nil {
		return nil
	}

	stack := make([]frame, 0, 8)
	if isContainer(v) {
		stack = append(stack, frame{node: v, depth: 0})
	}

	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch node := f.node.(type) {
		case map[string]any:
			for key, val := range node {
				if e.set.Match(key) {
					// Whole-value replacement, never recursion into the
					// matched subtree.
					node[key] = RedactionToken
					continue
				}
				if isContainer(val) && f.depth+1 < e.maxDepth {
					stack = append(stack, frame{node: val, depth: f.depth + 1})
				}
			}
		case []any:
			for _, item := range node {
				if isContainer(item) && f.depth+1 < e.maxDepth {
					stack = append(stack, frame{node: item, depth: f.depth + 1})
				}
			}
		}
	}
	return v
}

// MaskJSON decodes raw JSON, masks it, and returns the decoded tree. The
// second return is false when the input is not well-formed JSON; callers
// treat that as "no structured body".
func (e *Engine) MaskJSON(raw []byte) (any, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, false
	}
	return e.Mask(v), true
}

// MaskHeaders returns a copy of headers with matching header names redacted.
// Header names are matched both as sent and with dashes folded to
// underscores, so the api_key pattern catches X-Api-Key.
func (e *Engine) MaskHeaders(headers map[string]string) map[string]string {
	if headers == nil {
		return nil
	}
	masked := make(map[string]string, len(headers))
	for name, value := range headers {
		if e.set.Match(name) || e.set.Match(strings.ReplaceAll(name, "-", "_")) {
			masked[name] = RedactionToken
		} else {
			masked[name] = value
		}
	}
	return masked
}

func isContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	}
	return false
}
