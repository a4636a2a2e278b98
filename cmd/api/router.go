package main

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"

	"github.com/FACorreiaa/worldwise-api/internal/domain/city"
	"github.com/FACorreiaa/worldwise-api/internal/pages"
	"github.com/FACorreiaa/worldwise-api/pkg/interceptors"
)

// SetupRouter configures all routes and returns the HTTP handler
func SetupRouter(deps *Dependencies) http.Handler {
	mux := http.NewServeMux()

	// City views and static pages
	deps.CityHandler.RegisterRoutes(mux)
	pages.Register(mux, deps.Logger)

	// Register health and metrics routes
	registerUtilityRoutes(mux, deps)

	var rateLimiter func(http.Handler) http.Handler
	if deps.Config.Server.RateLimitPerSecond > 0 && deps.Config.Server.RateLimitBurst > 0 {
		rateLimiter = interceptors.NewRateLimitInterceptor(interceptors.NewRateLimiter(
			float64(deps.Config.Server.RateLimitPerSecond),
			deps.Config.Server.RateLimitBurst,
			10*time.Minute,
		))
	}

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: deps.Config.Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
		},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	return interceptors.Chain(mux,
		interceptors.NewRequestIDInterceptor("X-Request-ID"),
		interceptors.NewTracingInterceptor("worldwise-api"),
		interceptors.NewLoggingInterceptor(deps.Logger),
		interceptors.NewRecoveryInterceptor(deps.Logger),
		corsHandler.Handler,
		rateLimiter,
		city.Provide(deps.Cities),
	)
}

// registerUtilityRoutes registers health check, readiness and metrics routes
func registerUtilityRoutes(mux *http.ServeMux, deps *Dependencies) {
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	deps.Logger.Info("registered health check", "path", "/health")

	// Not ready while a container operation is in flight.
	mux.HandleFunc("GET /ready", func(w http.ResponseWriter, r *http.Request) {
		if deps.Cities.Snapshot().IsLoading {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("loading"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	deps.Logger.Info("registered readiness check", "path", "/ready")

	if deps.Config.Observability.MetricsEnabled {
		mux.Handle("GET /metrics", promhttp.Handler())
		deps.Logger.Info("registered metrics endpoint", "path", "/metrics")
	}
}
