package http

import (
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/auditry/auditry-go/common/logger"
	interceptors "github.com/auditry/auditry-go/http/interceptors/resty"
)

// NewRestyWithClient wraps an http.Client in a resty client that forwards the
// correlation id and trace context on every outbound request.
func NewRestyWithClient(client *http.Client, log *logger.Logger, opt ...interceptors.InterceptorOpt) *resty.Client {
	restyClient := resty.NewWithClient(client)
	interceptors.InjectInterceptors(restyClient, opt...)

	if log != nil {
		restyClient.SetLogger(log)
	}
	return restyClient
}
