package gin

import (
	"github.com/gin-gonic/gin"

	"github.com/auditry/auditry-go/common/correlation"
	"github.com/auditry/auditry-go/common/headers"
	"github.com/auditry/auditry-go/common/logger"
)

// CorrelationMiddleware extracts the correlation id from the given http
// header if found and propagates it as Go context. If no header is found, it
// will create a new correlation id. The id is echoed back on the response in
// the same header so callers can always reference a completed request.
// An empty header name selects headers.HeaderXCorrelationID.
func CorrelationMiddleware(header string) gin.HandlerFunc {
	if header == "" {
		header = headers.HeaderXCorrelationID
	}
	return func(c *gin.Context) {
		ctx := correlation.ContextWithCorrelation(c.Request.Context(), c.GetHeader(header))
		ctx = logger.ContextWithFields(ctx, correlation.ToLogFields(ctx)...)

		c.Writer.Header().Set(header, correlation.ID(ctx))
		c.Request = c.Request.WithContext(ctx)
	}
}
