package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "worldwise"

// Metrics groups the collectors used by the city store client and the state container.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	storeRequests *prometheus.CounterVec
	storeLatency  *prometheus.HistogramVec
	dispatches    *prometheus.CounterVec
	loading       prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// Pass prometheus.DefaultRegisterer to expose them through promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		storeRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "requests_total",
			Help:      "Requests sent to the remote city store, by operation and outcome.",
		}, []string{"operation", "outcome"}),
		storeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "store",
			Name:      "request_duration_seconds",
			Help:      "Round trip latency of remote city store requests.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		dispatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "dispatches_total",
			Help:      "Actions applied to the city state container.",
		}, []string{"action"}),
		loading: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "container",
			Name:      "loading",
			Help:      "1 while a container operation is in flight.",
		}),
	}

	if reg != nil {
		reg.MustRegister(m.storeRequests, m.storeLatency, m.dispatches, m.loading)
	}
	return m
}

// ObserveStoreRequest records one store round trip.
func (m *Metrics) ObserveStoreRequest(operation string, err error, elapsed time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.storeRequests.WithLabelValues(operation, outcome).Inc()
	m.storeLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveDispatch records an applied action and the resulting loading flag.
func (m *Metrics) ObserveDispatch(action string, isLoading bool) {
	if m == nil {
		return
	}
	m.dispatches.WithLabelValues(action).Inc()
	if isLoading {
		m.loading.Set(1)
	} else {
		m.loading.Set(0)
	}
}
