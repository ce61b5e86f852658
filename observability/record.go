package observability

// RequestRecord is the request half of an emitted log record. Header, query
// and body fields hold the redacted captured values, or nil when capture is
// disabled or there was nothing to capture.
type RequestRecord struct {
	Method      string `json:"method"`
	Path        string `json:"path"`
	QueryParams any    `json:"query_params"`
	Headers     any    `json:"headers"`
	Body        any    `json:"body"`
	UserID      string `json:"user_id,omitempty"`
}

// ResponseRecord is the response half of an emitted log record. Only present
// on the success path; handler failures produce records without it.
type ResponseRecord struct {
	StatusCode int     `json:"status_code"`
	Headers    any     `json:"headers,omitempty"`
	Body       any     `json:"body"`
	DurationMS float64 `json:"duration_ms"`
}
