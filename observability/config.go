package observability

import (
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/auditry/auditry-go/common/headers"
	"github.com/auditry/auditry-go/observability/event"
)

// DefaultPayloadSizeLimit bounds logged request/response bodies (10KB).
const DefaultPayloadSizeLimit = 10_240

// Config controls the observability pipeline for one service.
// The zero value is not usable; start from NewConfig and override fields,
// or load the struct from YAML with common/config.
type Config struct {
	// ServiceName identifies the service in every log record. Required.
	ServiceName string `mapstructure:"service_name"`

	// CorrelationIDHeader is the HTTP header carrying the correlation id,
	// read case-insensitively on requests and echoed on responses.
	// Defaults to headers.HeaderXCorrelationID.
	CorrelationIDHeader string `mapstructure:"correlation_id_header"`

	// PayloadSizeLimit is the maximum body size in bytes captured for
	// logging. Defaults to DefaultPayloadSizeLimit.
	PayloadSizeLimit int `mapstructure:"payload_size_limit"`

	// AdditionalRedactionPatterns extends the built-in sensitive field
	// name patterns.
	AdditionalRedactionPatterns []string `mapstructure:"additional_redaction_patterns"`

	// LogRequestHeaders includes redacted request headers in log records.
	LogRequestHeaders bool `mapstructure:"log_request_headers"`

	// LogResponseHeaders includes redacted response headers in log records.
	LogResponseHeaders bool `mapstructure:"log_response_headers"`

	// LogQueryParams includes query parameters in log records.
	LogQueryParams bool `mapstructure:"log_query_params"`

	// BusinessEvents maps route keys ("POST /workflows",
	// "DELETE /workflows/{workflow_id}") to business event rules.
	BusinessEvents map[string]event.Rule `mapstructure:"business_events"`
}

// NewConfig returns a config with the documented defaults: request headers
// and query params logged, response headers not.
func NewConfig(serviceName string) Config {
	return Config{
		ServiceName:         serviceName,
		CorrelationIDHeader: headers.HeaderXCorrelationID,
		PayloadSizeLimit:    DefaultPayloadSizeLimit,
		LogRequestHeaders:   true,
		LogResponseHeaders:  false,
		LogQueryParams:      true,
	}
}

// Validate checks required fields.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ServiceName) == "" {
		return errors.New("observability: service_name is required")
	}
	if c.PayloadSizeLimit < 0 {
		return errors.Newf("observability: payload_size_limit must be non-negative, got %d", c.PayloadSizeLimit)
	}
	return nil
}

// withDefaults fills unset optional fields. Boolean toggles are taken as
// given; use NewConfig for the documented boolean defaults.
func (c Config) withDefaults() Config {
	if c.CorrelationIDHeader == "" {
		c.CorrelationIDHeader = headers.HeaderXCorrelationID
	}
	if c.PayloadSizeLimit == 0 {
		c.PayloadSizeLimit = DefaultPayloadSizeLimit
	}
	return c
}
