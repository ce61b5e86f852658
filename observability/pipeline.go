// Package observability implements the request/response observability
// pipeline: correlation id handling, bounded capture, redaction, business
// event extraction, and the emission of one structured log record per
// request.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/auditry/auditry-go/common/correlation"
	"github.com/auditry/auditry-go/common/logger"
	"github.com/auditry/auditry-go/observability/capture"
	"github.com/auditry/auditry-go/observability/event"
	"github.com/auditry/auditry-go/observability/identity"
	"github.com/auditry/auditry-go/observability/redact"
)

// Request describes one inbound HTTP request to the pipeline. Adapters
// (http/interceptors) build it from their framework's request object.
type Request struct {
	Method      string
	Path        string
	Header      http.Header
	Query       url.Values
	Body        []byte
	ContentType string

	// IdentitySources are probed in order by identity.Resolve to find the
	// authenticated user id: typed principals, claim maps, or a bare id
	// string left by upstream auth middleware.
	IdentitySources []any
}

// Response describes the outcome of a successfully handled request.
type Response struct {
	StatusCode  int
	Header      http.Header
	Body        []byte
	ContentType string
}

// Handler is the wrapped unit of work: the framework handler chain for one
// request. It either returns a response or fails.
type Handler func(ctx context.Context) (*Response, error)

// Pipeline orchestrates capture, redaction, event extraction and emission
// around a single handler invocation. A pipeline is immutable after New and
// shared across all concurrent requests.
type Pipeline struct {
	cfg      Config
	redactor *redact.Redactor
	events   *event.Registry
	log      *logger.Logger
	metrics  *Metrics
}

type Option func(*Pipeline)

// WithLogger sets the logger records are emitted through.
// Defaults to logger.Instance().
func WithLogger(l *logger.Logger) Option {
	return func(p *Pipeline) {
		p.log = l
	}
}

// WithMetrics attaches prometheus collectors to the pipeline.
func WithMetrics(m *Metrics) Option {
	return func(p *Pipeline) {
		p.metrics = m
	}
}

// New validates the config and builds a pipeline.
func New(cfg Config, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()

	p := &Pipeline{
		cfg:      cfg,
		redactor: redact.NewRedactor(cfg.AdditionalRedactionPatterns...),
		events:   event.NewRegistry(cfg.BusinessEvents),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Instance()
	}
	// Interceptor stacks are not useful in emitted records
	p.log = p.log.WithOptions(zap.AddStacktrace(zap.ErrorLevel + 1))

	return p, nil
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Process runs one request through the pipeline. The correlation id is
// resolved (inbound header value, or a generated one) and bound to the
// context before the handler runs, so any logging inside the handler carries
// it. On success an INFO record with request and response data is emitted;
// on handler failure an ERROR record with the failure details is emitted and
// the error is returned unchanged. A panicking handler produces the failure
// record and then re-panics.
func (p *Pipeline) Process(ctx context.Context, req *Request, handler Handler) (*Response, error) {
	if !correlation.Has(ctx) {
		ctx = correlation.ContextWithCorrelation(ctx, req.Header.Get(p.cfg.CorrelationIDHeader))
	}

	snapshot := p.captureRequest(req)
	start := time.Now()

	resp, err := p.invoke(ctx, req, snapshot, start, handler)
	elapsed := time.Since(start)

	if err != nil {
		p.metrics.observeFailure(req.Method, elapsed)
		p.emitFailure(ctx, req, snapshot, errorKind(err), err.Error(), elapsed)
		return nil, err
	}

	if resp == nil {
		resp = &Response{}
	}
	p.metrics.observeRequest(req.Method, resp.StatusCode, elapsed)
	p.emitSuccess(ctx, req, resp, snapshot, elapsed)
	return resp, nil
}

// invoke runs the handler, converting a panic into a failure record before
// letting it propagate.
func (p *Pipeline) invoke(
	ctx context.Context,
	req *Request,
	snapshot requestSnapshot,
	start time.Time,
	handler Handler,
) (*Response, error) {
	defer func() {
		if r := recover(); r != nil {
			elapsed := time.Since(start)
			p.metrics.observeFailure(req.Method, elapsed)
			p.emitFailure(ctx, req, snapshot, panicKind(r), fmt.Sprintf("%v", r), elapsed)
			panic(r)
		}
	}()
	return handler(ctx)
}

// requestSnapshot holds the unredacted captured request data. Redaction is a
// separate pass at emission time, keeping capture policy orthogonal to
// redaction policy.
type requestSnapshot struct {
	headers capture.Payload
	query   capture.Payload
	body    capture.Payload
	userID  string
}

func (p *Pipeline) captureRequest(req *Request) requestSnapshot {
	s := requestSnapshot{
		body:   capture.Body(req.Body, req.ContentType, p.cfg.PayloadSizeLimit),
		userID: identity.Resolve(req.IdentitySources...),
	}
	if p.cfg.LogRequestHeaders {
		s.headers = capture.Headers(req.Header, p.cfg.PayloadSizeLimit)
	}
	if p.cfg.LogQueryParams {
		s.query = capture.Query(req.Query, p.cfg.PayloadSizeLimit)
	}
	return s
}

func (p *Pipeline) requestRecord(req *Request, snapshot requestSnapshot) RequestRecord {
	rec := RequestRecord{
		Method: req.Method,
		Path:   req.Path,
		Body:   p.redactPayload(snapshot.body),
		UserID: snapshot.userID,
	}
	if p.cfg.LogRequestHeaders {
		rec.Headers = p.redactPayload(snapshot.headers)
	}
	if p.cfg.LogQueryParams {
		rec.QueryParams = p.redactPayload(snapshot.query)
	}
	return rec
}

// redactPayload applies the redaction pass to one captured structure and
// returns its log value.
func (p *Pipeline) redactPayload(payload capture.Payload) any {
	return payload.WithContent(p.redactor.Redact(payload.Content)).LogValue()
}

func (p *Pipeline) emitSuccess(
	ctx context.Context,
	req *Request,
	resp *Response,
	snapshot requestSnapshot,
	elapsed time.Duration,
) {
	defer p.recoverEmit(ctx)

	durationMS := durationMillis(elapsed)
	respBody := capture.Body(resp.Body, resp.ContentType, p.cfg.PayloadSizeLimit)

	respRecord := ResponseRecord{
		StatusCode: resp.StatusCode,
		Body:       p.redactPayload(respBody),
		DurationMS: durationMS,
	}
	if p.cfg.LogResponseHeaders {
		respRecord.Headers = p.redactPayload(capture.Headers(resp.Header, p.cfg.PayloadSizeLimit))
	}

	fields := []logger.Field{
		logger.String("service_name", p.cfg.ServiceName),
		logger.String(correlation.IDKey, correlation.ID(ctx)),
		logger.Any("request", p.requestRecord(req, snapshot)),
		logger.Any("response", respRecord),
		logger.Float64("execution_duration_ms", durationMS),
	}

	// Business events describe completed outcomes, so extraction runs on
	// the success path only. The redacted bodies are what extraction sees;
	// sensitive fields never leak through the business context either.
	reqBody := p.redactor.Redact(snapshot.body.Content)
	if evt, ok := p.events.Extract(req.Method, req.Path, reqBody, p.redactor.Redact(respBody.Content)); ok {
		fields = append(fields,
			logger.String("event_type", evt.EventType),
			logger.Any("business_context", evt.BusinessContext),
		)
	}

	p.log.Info(
		fmt.Sprintf("Request completed: %s %s - Status: %d - Duration: %.2fms",
			req.Method, req.Path, resp.StatusCode, durationMS),
		fields...,
	)
}

func (p *Pipeline) emitFailure(
	ctx context.Context,
	req *Request,
	snapshot requestSnapshot,
	exceptionType, exceptionMessage string,
	elapsed time.Duration,
) {
	defer p.recoverEmit(ctx)

	durationMS := durationMillis(elapsed)
	p.log.Error(
		fmt.Sprintf("Request failed: %s %s - Error: %s: %s - Duration: %.2fms",
			req.Method, req.Path, exceptionType, exceptionMessage, durationMS),
		logger.String("service_name", p.cfg.ServiceName),
		logger.String(correlation.IDKey, correlation.ID(ctx)),
		logger.Any("request", p.requestRecord(req, snapshot)),
		logger.String("exception_type", exceptionType),
		logger.String("exception_message", exceptionMessage),
		logger.Float64("execution_duration_ms", durationMS),
	)
}

// recoverEmit keeps a failing logging sink from disturbing the request
// outcome or context cleanup.
func (p *Pipeline) recoverEmit(ctx context.Context) {
	if r := recover(); r != nil {
		logger.FromContext(ctx).Warn("observability emit failed", logger.WithPanic(r)...)
	}
}

func errorKind(err error) string {
	return fmt.Sprintf("%T", err)
}

func panicKind(r any) string {
	if err, ok := r.(error); ok {
		return errorKind(err)
	}
	return "panic"
}
