package correlation

import (
	"context"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/google/uuid"

	"github.com/auditry/auditry-go/common/logger"
)

// IDKey is the log field name under which the correlation id is emitted.
const IDKey = "correlation_id"

// correlationContextKey is a private type for context keys to avoid collisions
type correlationContextKey struct{}

// ContextWithCorrelation binds the supplied correlation id to the context,
// generating a fresh one when the value is absent or empty. The id is also
// pushed into the context logger so any log call made downstream carries it
// without explicit threading.
func ContextWithCorrelation(ctx context.Context, val string) context.Context {
	if val == "" {
		val = uuid.NewString()
	}
	return SetID(ctx, val)
}

// SetID binds a correlation id to the context, returning a derived context.
// - Derives a new context; doesn't modify the input context.
// - Safe for concurrent calls on a shared context; each call is independent.
// - Concurrent requests each derive their own context, so an id bound while
//   handling one request is never observable from another.
func SetID(ctx context.Context, correlationID string) context.Context {
	if correlationID == "" {
		return ctx
	}

	// Set baggage item for distributed tracing
	if span, ok := tracer.SpanFromContext(ctx); ok {
		span.SetBaggageItem(IDKey, correlationID)
	}

	ctx = context.WithValue(ctx, correlationContextKey{}, correlationID)
	return logger.ContextWithFields(ctx, logger.String(IDKey, correlationID))
}

// ID returns the correlation id bound to the context.
// Returns empty string if none is bound.
func ID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(correlationContextKey{}).(string); ok {
		return v
	}
	return ""
}

// Has reports whether a correlation id is bound to the context.
func Has(ctx context.Context) bool {
	return ID(ctx) != ""
}

// Clear returns a context with no correlation id visible to downstream reads.
// Contexts are request-scoped and die with the request, so Clear is only
// needed when a long-lived context must be stripped explicitly.
func Clear(ctx context.Context) context.Context {
	if !Has(ctx) {
		return ctx
	}
	return context.WithValue(ctx, correlationContextKey{}, "")
}

// ToLogFields converts the correlation binding to log fields.
func ToLogFields(ctx context.Context) []logger.Field {
	id := ID(ctx)
	if id == "" {
		return nil
	}
	return []logger.Field{logger.String(IDKey, id)}
}
