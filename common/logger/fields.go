package logger

import (
	"fmt"
	"runtime/debug"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
)

// WithPanic returns log fields describing a recovered panic value,
// including the stack at the point of recovery.
func WithPanic(recovered any) []Field {
	return []Field{
		String("panic", fmt.Sprintf("%v", recovered)),
		ByteString("stack", debug.Stack()),
	}
}

// WithTrace returns log fields correlating a record with the active span.
func WithTrace(sc *tracer.SpanContext) []Field {
	if sc == nil {
		return nil
	}
	return []Field{
		String("dd.trace_id", sc.TraceID()),
		Uint64("dd.span_id", sc.SpanID()),
	}
}
