// Package capture takes bounded snapshots of request and response data for
// logging. Capture decides what to keep; redaction of what was kept is a
// separate concern applied afterwards.
package capture

import (
	"encoding/json"
	"mime"
	"net/http"
	"net/url"
	"strings"
)

// Payload is a bounded snapshot of a body or metadata map.
// RawSize always reflects the pre-truncation byte length.
type Payload struct {
	RawSize   int  `json:"raw_size"`
	Truncated bool `json:"truncated"`
	Content   any  `json:"content"`
}

// Empty reports whether there was nothing to capture.
func (p Payload) Empty() bool {
	return p.RawSize == 0
}

// LogValue is what the payload contributes to a log record: nil when empty,
// a truncation note when the size limit was exceeded, otherwise the content.
func (p Payload) LogValue() any {
	if p.Empty() {
		return nil
	}
	if p.Truncated {
		return map[string]any{
			"truncated": true,
			"raw_size":  p.RawSize,
		}
	}
	return p.Content
}

// MarshalJSON encodes the payload the way it appears in log records.
func (p Payload) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.LogValue())
}

// WithContent returns a copy of the payload with its content replaced,
// used to swap in the redacted form after capture.
func (p Payload) WithContent(content any) Payload {
	p.Content = content
	return p
}

// Body captures a request or response body. Bodies over the size limit are
// never parsed, only counted. JSON-like bodies are parsed into structured
// content with a fallback to the raw string; other content types are kept as
// strings. Body never fails.
func Body(raw []byte, contentType string, sizeLimit int) Payload {
	p := Payload{RawSize: len(raw)}
	if len(raw) == 0 {
		return p
	}
	if len(raw) > sizeLimit {
		p.Truncated = true
		return p
	}

	if isStructured(contentType) {
		var parsed any
		if err := json.Unmarshal(raw, &parsed); err == nil {
			p.Content = parsed
			return p
		}
		// Malformed despite the content type; keep the raw text.
	}

	p.Content = string(raw)
	return p
}

// Headers captures an HTTP header map, flattened to single string values,
// subject to the same serialized-size limit as bodies.
func Headers(h http.Header, sizeLimit int) Payload {
	flat := make(map[string]string, len(h))
	for k, vals := range h {
		flat[strings.ToLower(k)] = strings.Join(vals, ", ")
	}
	return capturedMap(flat, sizeLimit)
}

// Query captures URL query parameters, flattened to single string values,
// subject to the same serialized-size limit as bodies.
func Query(q url.Values, sizeLimit int) Payload {
	flat := make(map[string]string, len(q))
	for k, vals := range q {
		flat[k] = strings.Join(vals, ", ")
	}
	return capturedMap(flat, sizeLimit)
}

func capturedMap(flat map[string]string, sizeLimit int) Payload {
	if len(flat) == 0 {
		return Payload{}
	}

	serialized, err := json.Marshal(flat)
	if err != nil {
		// string maps always marshal; kept to make capture total
		return Payload{}
	}

	p := Payload{RawSize: len(serialized)}
	if len(serialized) > sizeLimit {
		p.Truncated = true
		return p
	}
	p.Content = flat
	return p
}

// isStructured reports whether the content type indicates a JSON-like body.
// An absent content type is treated as structured so bare test requests and
// lazy clients still get parsed; the string fallback makes a wrong guess
// harmless.
func isStructured(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType == "application/json" ||
		mediaType == "text/json" ||
		strings.HasSuffix(mediaType, "+json")
}
