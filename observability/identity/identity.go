// Package identity performs best-effort extraction of a user identifier from
// whatever the upstream auth layer left behind: a typed principal, a claims
// map, or a bare id string.
package identity

import (
	"encoding/json"
	"strconv"
)

// IDer is implemented by auth principals that expose their own identifier.
type IDer interface {
	GetID() string
}

// UserIDer is implemented by principals that expose a user identifier under
// a distinct accessor.
type UserIDer interface {
	GetUserID() string
}

// Resolve evaluates the candidate sources and returns the first user id
// found, or empty string. Sources are probed in fixed priority order:
// principal GetID, principal GetUserID, then the "id", "user_id" and "sub"
// keys of claim maps, then bare string sources. A source that panics during
// probing counts as no match; resolution never fails.
func Resolve(sources ...any) string {
	probes := []func(any) string{
		probeID,
		probeUserID,
		mapProbe("id"),
		mapProbe("user_id"),
		mapProbe("sub"),
		probeString,
	}

	for _, probe := range probes {
		for _, source := range sources {
			if source == nil {
				continue
			}
			if id := safeProbe(probe, source); id != "" {
				return id
			}
		}
	}
	return ""
}

func safeProbe(probe func(any) string, source any) (id string) {
	defer func() {
		if recover() != nil {
			id = ""
		}
	}()
	return probe(source)
}

func probeID(source any) string {
	if v, ok := source.(IDer); ok {
		return v.GetID()
	}
	return ""
}

func probeUserID(source any) string {
	if v, ok := source.(UserIDer); ok {
		return v.GetUserID()
	}
	return ""
}

func mapProbe(key string) func(any) string {
	return func(source any) string {
		m, ok := source.(map[string]any)
		if !ok {
			return ""
		}
		return asString(m[key])
	}
}

func probeString(source any) string {
	if s, ok := source.(string); ok {
		return s
	}
	return ""
}

// asString formats the identifier values that commonly show up in decoded
// claim maps. Anything else is treated as no match.
func asString(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case json.Number:
		return val.String()
	default:
		return ""
	}
}
