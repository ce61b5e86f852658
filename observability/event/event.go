// Package event tags designated routes as analytics-relevant business events
// and extracts a small set of fields from the request path, request body, or
// response body.
package event

import (
	"sort"
	"strings"
)

// Rule configures a business event for one route.
type Rule struct {
	// EventType is the analytics event name, e.g. "workflow.created".
	EventType string `mapstructure:"event_type" json:"event_type"`

	// ExtractFromRequest lists top-level request body fields to copy into
	// the business context.
	ExtractFromRequest []string `mapstructure:"extract_from_request" json:"extract_from_request,omitempty"`

	// ExtractFromResponse lists top-level response body fields to copy into
	// the business context.
	ExtractFromResponse []string `mapstructure:"extract_from_response" json:"extract_from_response,omitempty"`

	// ExtractFromPath lists path parameter names to copy into the business
	// context, e.g. "workflow_id" for "/workflows/{workflow_id}".
	ExtractFromPath []string `mapstructure:"extract_from_path" json:"extract_from_path,omitempty"`
}

// Event is the extraction result attached to a log record.
type Event struct {
	EventType       string
	BusinessContext map[string]any
}

// Registry holds business event rules keyed by route key
// ("METHOD /path/{param}"). It is read-only after construction and safe to
// share across concurrent requests.
type Registry struct {
	rules map[string]Rule
	keys  []string // sorted, for deterministic matching
}

// NewRegistry builds a registry from a route-key → rule map.
func NewRegistry(rules map[string]Rule) *Registry {
	r := &Registry{rules: make(map[string]Rule, len(rules))}
	for key, rule := range rules {
		r.rules[normalizeRouteKey(key)] = rule
	}
	r.rebuildKeys()
	return r
}

// Add registers a rule under the given route key. Registering a second rule
// for the same key replaces the first; call sites that need duplicates
// rejected should check Has first. Add is not safe for use concurrently
// with matching; register all rules before serving.
func (r *Registry) Add(routeKey string, rule Rule) {
	r.rules[normalizeRouteKey(routeKey)] = rule
	r.rebuildKeys()
}

// Has reports whether a rule is registered under the route key.
func (r *Registry) Has(routeKey string) bool {
	_, ok := r.rules[normalizeRouteKey(routeKey)]
	return ok
}

// Len returns the number of registered rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

func (r *Registry) rebuildKeys() {
	r.keys = make([]string, 0, len(r.rules))
	for k := range r.rules {
		r.keys = append(r.keys, k)
	}
	sort.Strings(r.keys)
}

// Extract matches the request's method and runtime path against the
// registered rules and, on a match, builds the business context from path
// parameters and the top-level keys of the request and response bodies.
// Requested fields absent from their source are omitted. Rules are tried in
// sorted route-key order; the first match wins.
func (r *Registry) Extract(method, path string, requestBody, responseBody any) (Event, bool) {
	for _, key := range r.keys {
		template, ok := matchesMethod(key, method)
		if !ok {
			continue
		}
		pathParams, ok := matchTemplate(template, path)
		if !ok {
			continue
		}

		rule := r.rules[key]
		ctx := make(map[string]any)

		if reqMap, ok := requestBody.(map[string]any); ok {
			for _, field := range rule.ExtractFromRequest {
				if v, ok := reqMap[field]; ok {
					ctx[field] = v
				}
			}
		}
		if respMap, ok := responseBody.(map[string]any); ok {
			for _, field := range rule.ExtractFromResponse {
				if v, ok := respMap[field]; ok {
					ctx[field] = v
				}
			}
		}
		for _, param := range rule.ExtractFromPath {
			if v, ok := pathParams[param]; ok {
				ctx[param] = v
			}
		}

		return Event{EventType: rule.EventType, BusinessContext: ctx}, true
	}
	return Event{}, false
}

// matchesMethod splits a route key into method and template and checks the
// method part.
func matchesMethod(routeKey, method string) (template string, ok bool) {
	keyMethod, keyPath, found := strings.Cut(routeKey, " ")
	if !found || keyMethod != method {
		return "", false
	}
	return keyPath, true
}

// matchTemplate matches a runtime path against a "/a/{b}/c" template
// segment-wise, capturing parameter values. Template parameters match any
// single segment.
func matchTemplate(template, path string) (map[string]string, bool) {
	tSegs := strings.Split(strings.Trim(template, "/"), "/")
	pSegs := strings.Split(strings.Trim(path, "/"), "/")
	if len(tSegs) != len(pSegs) {
		return nil, false
	}

	params := make(map[string]string)
	for i, tSeg := range tSegs {
		if name, ok := paramName(tSeg); ok {
			if pSegs[i] == "" {
				return nil, false
			}
			params[name] = pSegs[i]
			continue
		}
		if tSeg != pSegs[i] {
			return nil, false
		}
	}
	return params, true
}

func paramName(segment string) (string, bool) {
	if len(segment) > 2 && strings.HasPrefix(segment, "{") && strings.HasSuffix(segment, "}") {
		return segment[1 : len(segment)-1], true
	}
	return "", false
}

// normalizeRouteKey converts gin-style ":param" path templates to the
// "{param}" form so rules can be written either way.
func normalizeRouteKey(routeKey string) string {
	method, path, found := strings.Cut(routeKey, " ")
	if !found {
		return routeKey
	}
	return method + " " + NormalizeTemplate(path)
}

// NormalizeTemplate rewrites gin-style ":param" segments as "{param}".
func NormalizeTemplate(path string) string {
	segs := strings.Split(path, "/")
	for i, seg := range segs {
		if strings.HasPrefix(seg, ":") && len(seg) > 1 {
			segs[i] = "{" + seg[1:] + "}"
		}
	}
	return strings.Join(segs, "/")
}
