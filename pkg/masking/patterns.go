package masking

import (
	"fmt"
	"regexp"
)

// DefaultSensitiveKeys is the default field-name pattern. It covers the
// password-, card-, cvv/cvc-, ssn-, secret-, key- and token-like names the
// ingestion contract requires and is part of the public contract.
const DefaultSensitiveKeys = `(?i)(password|pwd|secret|password_confirmation|cc|card_number|ccv|cvv|cvc|ssn|credit_score|credit_card|api_key|token)`

// PatternSet is a compiled, immutable set of field-name matchers. A key
// matches the set if any pattern finds a match anywhere in the key
// (substring semantics); all patterns are compiled case-insensitive.
type PatternSet struct {
	patterns []*regexp.Regexp
}

// Compile builds a PatternSet from regex strings. Each expression is wrapped
// in a case-insensitive group, so callers supply plain regexes without
// worrying about case.
func Compile(exprs []string) (*PatternSet, error) {
	compiled := make([]*regexp.Regexp, 0, len(exprs))
	for _, expr := range exprs {
		re, err := regexp.Compile(`(?i:` + expr + `)`)
		if err != nil {
			return nil, fmt.Errorf("invalid masked field pattern %q: %w", expr, err)
		}
		compiled = append(compiled, re)
	}
	return &PatternSet{patterns: compiled}, nil
}

// MustCompile is Compile for patterns known valid at build time.
func MustCompile(exprs []string) *PatternSet {
	set, err := Compile(exprs)
	if err != nil {
		panic(err)
	}
	return set
}

// DefaultPatternSet returns the contract default set.
func DefaultPatternSet() *PatternSet {
	return MustCompile([]string{DefaultSensitiveKeys})
}

// Extend returns a new PatternSet holding this set's patterns plus the given
// expressions. The receiver is not modified.
func (s *PatternSet) Extend(exprs []string) (*PatternSet, error) {
	added, err := Compile(exprs)
	if err != nil {
		return nil, err
	}
	merged := make([]*regexp.Regexp, 0, len(s.patterns)+len(added.patterns))
	merged = append(merged, s.patterns...)
	merged = append(merged, added.patterns...)
	return &PatternSet{patterns: merged}, nil
}

// Match reports whether the field name matches any pattern in the set.
func (s *PatternSet) Match(key string) bool {
	for _, re := range s.patterns {
		if re.MatchString(key) {
			return true
		}
	}
	return false
}

// Len returns the number of compiled patterns.
func (s *PatternSet) Len() int {
	return len(s.patterns)
}

// Exprs returns the source expressions of the compiled patterns, for
// diagnostics and config introspection.
func (s *PatternSet) Exprs() []string {
	exprs := make([]string, len(s.patterns))
	for i, re := range s.patterns {
		exprs[i] = re.String()
	}
	return exprs
}
