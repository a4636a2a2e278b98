package interceptors

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// statusRecorder captures the status code and response size written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

// NewLoggingInterceptor logs one line per request with its duration and response size.
func NewLoggingInterceptor(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ctx := r.Context()

			logger.DebugContext(ctx, "Request started", appendLoggerFields(ctx,
				"method", r.Method,
				"path", r.URL.Path,
				"peer", r.RemoteAddr,
			)...)

			rec := &statusRecorder{ResponseWriter: w}
			next.ServeHTTP(rec, r)
			if rec.status == 0 {
				rec.status = http.StatusOK
			}

			duration := time.Since(start)
			fields := appendLoggerFields(ctx,
				"method", r.Method,
				"path", r.URL.Path,
				"status", rec.status,
				"duration", duration.String(),
				"duration_ms", duration.Milliseconds(),
				"response_size_bytes", rec.size,
			)

			if rec.status >= http.StatusInternalServerError {
				logger.ErrorContext(ctx, "Request failed", fields...)
			} else {
				logger.InfoContext(ctx, "Request completed", fields...)
			}
		})
	}
}

func appendLoggerFields(ctx context.Context, base ...any) []any {
	if requestID, ok := RequestIDFromContext(ctx); ok && requestID != "" {
		base = append(base, "request_id", requestID)
	}
	return base
}
