package interceptors

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// NewTracingInterceptor starts a server span for every request. Spans opened further
// down, in the container and the store client, become its children.
func NewTracingInterceptor(service string, opts ...otelhttp.Option) func(http.Handler) http.Handler {
	opts = append([]otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	}, opts...)

	return func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, service, opts...)
	}
}
