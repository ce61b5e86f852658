package gin

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/auditry/auditry-go/common/correlation"
	"github.com/auditry/auditry-go/common/logger"
	"github.com/auditry/auditry-go/observability"
)

// identityContextKeys are the gin context keys probed for an authenticated
// principal, in priority order. Auth middleware populating one of these must
// run before ObservabilityMiddleware.
var identityContextKeys = []string{"user", "user_id", "claims"}

type responseWriterCapture struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriterCapture) Write(data []byte) (int, error) {
	w.body.Write(data)
	return w.ResponseWriter.Write(data)
}

func (w *responseWriterCapture) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// ObservabilityMiddleware runs every request through the observability
// pipeline: it reads and restores the request body, captures the response
// body through a writer wrapper, and hands both to the pipeline, which owns
// correlation binding, redaction, business event extraction and the final
// log record. The correlation id is echoed on the response header before the
// downstream handlers run.
//
// A handler failure is whatever gin accumulates in c.Errors; the pipeline
// emits the failure record and the error stays on the gin context for
// ErrorHandlingMiddleware to turn into a response.
func ObservabilityMiddleware(p *observability.Pipeline) gin.HandlerFunc {
	cfg := p.Config()
	return func(c *gin.Context) {
		var reqBody []byte
		if c.Request.Body != nil {
			if bodyBytes, err := io.ReadAll(c.Request.Body); err == nil {
				reqBody = bodyBytes
				// Restore the request body for downstream handlers
				c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}
		}

		capturer := &responseWriterCapture{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = capturer

		req := &observability.Request{
			Method:          c.Request.Method,
			Path:            c.Request.URL.Path,
			Header:          c.Request.Header,
			Query:           c.Request.URL.Query(),
			Body:            reqBody,
			ContentType:     c.ContentType(),
			IdentitySources: identitySources(c),
		}

		// The error has already been surfaced through c.Errors and the
		// failure record; nothing more to do with the return values here.
		_, _ = p.Process(c.Request.Context(), req, func(ctx context.Context) (*observability.Response, error) {
			c.Writer.Header().Set(cfg.CorrelationIDHeader, correlation.ID(ctx))
			c.Request = c.Request.WithContext(ctx)
			c.Next()

			if len(c.Errors) > 0 {
				return nil, c.Errors.Last().Err
			}
			return &observability.Response{
				StatusCode:  c.Writer.Status(),
				Header:      c.Writer.Header(),
				Body:        capturer.body.Bytes(),
				ContentType: c.Writer.Header().Get("Content-Type"),
			}, nil
		})
	}
}

func identitySources(c *gin.Context) []any {
	var sources []any
	for _, key := range identityContextKeys {
		if v, ok := c.Get(key); ok {
			sources = append(sources, v)
		}
	}
	return sources
}

type loggingCfg struct {
	debug bool
	trace bool
}

// RequestLogging is a lightweight per-request debug logger, independent of the
// observability pipeline. It logs method, path, status and duration for every
// request, plus raw bodies when trace is on. Nothing here is redacted, so it
// is only wired up when explicitly enabled.
func RequestLogging(cfg loggingCfg) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.debug {
			c.Next()
			return
		}

		var reqBody []byte
		if cfg.trace && c.Request.Body != nil {
			if bodyBytes, err := io.ReadAll(c.Request.Body); err == nil {
				reqBody = bodyBytes
				c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			}
		}

		var responseCapture *responseWriterCapture
		if cfg.trace {
			responseCapture = &responseWriterCapture{
				ResponseWriter: c.Writer,
				body:           &bytes.Buffer{},
			}
			c.Writer = responseCapture
		}

		start := time.Now()
		c.Next()
		duration := time.Since(start)

		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", c.Request.URL.Path),
			logger.Int("status", c.Writer.Status()),
			logger.Duration("duration", duration),
			logger.String("component", componentName),
		}
		if cfg.trace && responseCapture != nil {
			fields = append(fields,
				logger.ByteString("request_body", reqBody),
				logger.ByteString("response_body", responseCapture.body.Bytes()),
			)
		}

		logLevel := logger.DebugLevel
		if c.Writer.Status() >= 500 {
			logLevel = logger.ErrorLevel
		} else if c.Writer.Status() >= 400 {
			logLevel = logger.WarnLevel
		}
		logger.FromContext(c.Request.Context()).Log(logLevel, "HTTP request handled", fields...)
	}
}
