// Package redact replaces sensitive values in captured request/response
// structures before they are logged. Matching is by field name only; values
// are never inspected.
package redact

import (
	"strings"
)

// Marker is the literal written in place of a redacted value.
const Marker = "[REDACTED]"

// DepthMarker replaces subtrees deeper than MaxDepth so traversal always terminates.
const DepthMarker = "[TRUNCATED]"

// MaxDepth bounds recursion on pathological or self-referential structures.
const MaxDepth = 50

// defaultPatterns is the built-in set of sensitive field name patterns.
// Matching is case-insensitive and by substring, so "user_password" is
// caught by "password".
var defaultPatterns = []string{
	"password",
	"token",
	"api_key",
	"apikey",
	"secret",
	"ssn",
	"social_security_number",
	"credit_card",
	"creditcard",
	"authorization",
	"x-api-key",
}

// Redactor redacts sensitive fields from arbitrarily nested structures.
// The pattern set is fixed at construction and safe for concurrent use.
type Redactor struct {
	patterns []string
}

// NewRedactor builds a Redactor from the built-in pattern set plus any
// additional caller-supplied patterns.
func NewRedactor(additionalPatterns ...string) *Redactor {
	seen := make(map[string]struct{}, len(defaultPatterns)+len(additionalPatterns))
	patterns := make([]string, 0, len(defaultPatterns)+len(additionalPatterns))
	for _, p := range defaultPatterns {
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	for _, p := range additionalPatterns {
		p = strings.ToLower(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		patterns = append(patterns, p)
	}
	return &Redactor{patterns: patterns}
}

// ShouldRedact reports whether a field with the given name must be redacted.
// Matches case-insensitively, by equality or substring containment.
func (r *Redactor) ShouldRedact(fieldName string) bool {
	fieldLower := strings.ToLower(fieldName)
	for _, p := range r.patterns {
		if strings.Contains(fieldLower, p) {
			return true
		}
	}
	return false
}

// Redact returns a copy of v with every value under a sensitive key replaced
// by Marker. A redacted subtree is replaced whole, never partially. Scalars
// and types the traversal cannot classify pass through unchanged. The input
// is never mutated and Redact never fails; redacting already-redacted data
// is a fixed point.
func (r *Redactor) Redact(v any) any {
	return r.redact(v, 0)
}

func (r *Redactor) redact(v any, depth int) any {
	if depth > MaxDepth {
		return DepthMarker
	}

	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			if r.ShouldRedact(k) {
				out[k] = Marker
				continue
			}
			out[k] = r.redact(elem, depth+1)
		}
		return out
	case map[string]string:
		return r.RedactStringMap(val)
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = r.redact(elem, depth+1)
		}
		return out
	default:
		return v
	}
}

// RedactStringMap redacts a flat string map, such as captured headers or
// query parameters. Header names are matched as-is, so "authorization" is
// redacted even without a pattern-prefixed name.
func (r *Redactor) RedactStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		if r.ShouldRedact(k) {
			out[k] = Marker
			continue
		}
		out[k] = v
	}
	return out
}
