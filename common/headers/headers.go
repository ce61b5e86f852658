package headers

// Request Identification Headers
const (
	// HeaderXRequestID is used to uniquely identify individual HTTP requests
	// for logging, debugging, and tracking purposes across the application
	HeaderXRequestID = "x-request-id"
)

// Tracing Headers
const (
	// HeaderXTraceID carries the distributed trace id on outbound requests so
	// peers that do not speak the tracer's native propagation format can still
	// join records on the trace.
	HeaderXTraceID = "x-trace-id"
)

// Correlation Headers
const (
	// HeaderXCorrelationID is used to correlate related requests across multiple
	// services in a distributed system, allowing you to track the complete flow
	// of a business transaction through various microservices.
	// This is the default header name; services can override it through the
	// observability configuration.
	HeaderXCorrelationID = "X-Correlation-ID"
)

// Authentication Headers
const (
	// HeaderAuthorization is the standard HTTP header used to carry authentication
	// credentials such as Bearer tokens, Basic auth, or API keys.
	// Always redacted before logging.
	// Format examples: "Bearer <token>", "Basic <base64-encoded-credentials>"
	HeaderAuthorization = "authorization"

	// HeaderXAPIKey carries raw API keys for services that authenticate
	// without the Authorization header. Always redacted before logging.
	HeaderXAPIKey = "x-api-key"
)
