package routes

import (
	"fmt"
	"regexp"
)

// DefaultIgnoredRoutes matches common health-check and metrics endpoints.
// The expression carries its own (?i); user-supplied patterns are compiled
// exactly as given, so matching is case-sensitive unless a pattern opts out.
const DefaultIgnoredRoutes = `(?i)^/(health|healthz|ping|metrics|ready|live|alive|status)/?$`

// Blacklist is a compiled, immutable set of ignored-route patterns.
type Blacklist struct {
	patterns []*regexp.Regexp
}

// Compile builds a Blacklist from regex strings.
func Compile(exprs []string) (*Blacklist, error) {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, fmt.Errorf("invalid ignored route pattern %q: %w", expr, err)
		}
		compiled = append(compiled, re)
	}
	return &Blacklist{patterns: compiled}, nil
}

// MustCompile is Compile for patterns known valid at build time.
func MustCompile(exprs []string) *Blacklist {
	bl, err := Compile(exprs)
	if err != nil {
		panic(err)
	}
	return bl
}

// DefaultBlacklist returns the contract default set.
func DefaultBlacklist() *Blacklist {
	return MustCompile([]string{DefaultIgnoredRoutes})
}

// Extend returns a new Blacklist holding this set's patterns plus the given
// expressions. The receiver is not modified.
func (b *Blacklist) Extend(exprs []string) (*Blacklist, error) {
	added, err := Compile(exprs)
	if err != nil {
		return nil, err
	}
	merged := make([]*regexp.Regexp, 0, len(b.patterns)+len(added.patterns))
	merged = append(merged, b.patterns...)
	merged = append(merged, added.patterns...)
	return &Blacklist{patterns: merged}, nil
}

// IsIgnored reports whether the request path matches any ignored-route
// pattern. The path is matched as given.
func (b *Blacklist) IsIgnored(path string) bool {
	for _, re := range b.patterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (b *Blacklist) Len() int {
	return len(b.patterns)
}

// Exprs returns the source expressions of the compiled patterns.
func (b *Blacklist) Exprs() []string {
	exprs := make([]string, len(b.patterns))
	for i, re := range b.patterns {
		exprs[i] = re.String()
	}
	return exprs
}
