package gin

import (
	"fmt"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/ext"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/gin-gonic/gin"

	"github.com/auditry/auditry-go/common/correlation"
	"github.com/auditry/auditry-go/common/logger"
)

// TracingMiddleware continues the trace found in the http headers, or starts a
// new one. The span is tagged with the http route, method, url and response
// code, and the trace/span ids are injected into the context log fields so the
// request record and the trace can be joined. When a correlation id is already
// bound it is attached to the span as baggage.
func TracingMiddleware(c *gin.Context) {
	spanOpts := []tracer.StartSpanOption{
		tracer.Tag(ext.Component, componentName),
		tracer.Tag(ext.SpanType, ext.SpanTypeWeb),
		tracer.Tag(ext.HTTPMethod, c.Request.Method),
		tracer.Tag(ext.HTTPURL, c.Request.URL.String()),
		tracer.Tag(ext.ResourceName, fmt.Sprintf("%s %s", c.Request.Method, c.FullPath())),
		tracer.Tag(ext.HTTPRoute, c.FullPath()),
	}
	ctx := c.Request.Context()

	// Try to capture an existing trace in the http headers
	sCtx, err := tracer.Extract(tracer.HTTPHeadersCarrier(c.Request.Header))
	if err == nil && sCtx != nil {
		spanOpts = append(spanOpts, func(cfg *tracer.StartSpanConfig) {
			cfg.Parent = sCtx
		})
	}

	span := tracer.StartSpan(httpHandlerOp, spanOpts...)
	defer span.Finish()

	if id := correlation.ID(ctx); id != "" {
		span.SetBaggageItem(correlation.IDKey, id)
	}

	ctx = tracer.ContextWithSpan(ctx, span)
	ctx = logger.ContextWithFields(ctx, logger.WithTrace(span.Context())...)
	c.Request = c.Request.WithContext(ctx)
	c.Next()

	span.SetTag(ext.HTTPCode, c.Writer.Status())
	if c.Writer.Status() >= 500 {
		span.SetTag(ext.Error, true)
	}
}
