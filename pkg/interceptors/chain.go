package interceptors

import "net/http"

// Chain wraps h so the first interceptor is the outermost. Nil interceptors are skipped.
func Chain(h http.Handler, interceptors ...func(http.Handler) http.Handler) http.Handler {
	for i := len(interceptors) - 1; i >= 0; i-- {
		if interceptors[i] != nil {
			h = interceptors[i](h)
		}
	}
	return h
}
