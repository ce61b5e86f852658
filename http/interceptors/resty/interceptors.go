package resty

import (
	"fmt"
	"net/url"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/ext"
	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"github.com/auditry/auditry-go/common/correlation"
	"github.com/auditry/auditry-go/common/headers"
	"github.com/auditry/auditry-go/common/logger"
)

const (
	httpRequestOp      = "http.request"
	restyComponentName = "resty"
)

type interceptorCfg struct {
	TracingEnabled     bool
	CorrelationEnabled bool
	CorrelationHeader  string
	// no timeout specified, that is handled by the underlying http client config
}

type InterceptorOpt func(*interceptorCfg)

// WithCorrelationEnabled enables/disables correlation. Default is enabled.
func WithCorrelationEnabled(enabled bool) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.CorrelationEnabled = enabled
	}
}

// WithCorrelationHeader overrides the header the correlation id travels in.
func WithCorrelationHeader(header string) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.CorrelationHeader = header
	}
}

// WithTracingEnabled enables/disables tracing. Default is enabled.
func WithTracingEnabled(enabled bool) InterceptorOpt {
	return func(cfg *interceptorCfg) {
		cfg.TracingEnabled = enabled
	}
}

// InjectInterceptors injects all interceptors required to get Resty requests
// to propagate traces and correlation info to downstream services.
// Default behaviour can be changed by passing any of the WithXXX options.
func InjectInterceptors(client *resty.Client, opts ...InterceptorOpt) {
	cfg := &interceptorCfg{
		TracingEnabled:     true,
		CorrelationEnabled: true,
		CorrelationHeader:  headers.HeaderXCorrelationID,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.TracingEnabled {
		before, after := TracingMiddleware()
		client.OnBeforeRequest(before)
		client.OnAfterResponse(after)
	}
	if cfg.CorrelationEnabled {
		client.OnBeforeRequest(CorrelationMiddleware(cfg.CorrelationHeader))
	}
}

// TracingMiddleware propagates traces from context to http headers.
// Also, creates a new span and tags it with the http method, url, status code etc.
func TracingMiddleware() (resty.RequestMiddleware, resty.ResponseMiddleware) {
	beforeRequest := func(_ *resty.Client, req *resty.Request) error {
		opts := []tracer.StartSpanOption{
			tracer.SpanType(ext.SpanTypeHTTP),
			tracer.Tag(ext.HTTPMethod, req.Method),
			tracer.Tag(ext.HTTPURL, req.URL),
			tracer.Tag(ext.Component, restyComponentName),
			tracer.Tag(ext.SpanKind, ext.SpanKindClient),
		}
		if parsedURL, err := url.Parse(req.URL); err == nil {
			opts = append(opts, tracer.Tag(ext.NetworkDestinationName, parsedURL.Hostname()))
			opts = append(opts, tracer.Tag("http.host", parsedURL.Host))
			opts = append(opts, tracer.Tag("http.path", parsedURL.Path))
		}

		span, ctx := tracer.StartSpanFromContext(req.Context(), httpRequestOp, opts...)
		req.SetContext(ctx)

		req.SetHeader(headers.HeaderXTraceID, span.Context().TraceID())

		if err := tracer.Inject(span.Context(), tracer.HTTPHeadersCarrier(req.Header)); err != nil {
			// this should never happen
			logger.FromContext(ctx).Warn("failed to inject trace header", logger.Error(err))
		}
		return nil
	}

	afterResponse := func(_ *resty.Client, resp *resty.Response) error {
		span, ok := tracer.SpanFromContext(resp.Request.Context())
		if !ok {
			return nil // No span found, skip
		}
		span.SetTag(ext.HTTPCode, resp.StatusCode())
		span.SetTag("http.response_size", len(resp.Body()))

		if resp.StatusCode() >= 400 {
			span.SetTag(ext.Error, true)
			span.SetTag(ext.ErrorMsg, fmt.Sprintf("HTTP %d: %s", resp.StatusCode(), resp.Status()))
		}
		span.Finish()

		return nil
	}

	return beforeRequest, afterResponse
}

// CorrelationMiddleware forwards the correlation id bound to the request
// context, minting a fresh one when the call originates outside a handled
// request. The whole transaction stays joinable across service hops either way.
func CorrelationMiddleware(header string) resty.RequestMiddleware {
	return func(_ *resty.Client, req *resty.Request) error {
		id := correlation.ID(req.Context())
		if id == "" {
			id = uuid.NewString()
		}
		req.SetHeader(header, id)
		return nil
	}
}
