package observability

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveStoreRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveStoreRequest("get_all_cities", nil, 10*time.Millisecond)
	m.ObserveStoreRequest("get_all_cities", errors.New("boom"), 5*time.Millisecond)
	m.ObserveStoreRequest("get_all_cities", nil, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.storeRequests.WithLabelValues("get_all_cities", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeRequests.WithLabelValues("get_all_cities", "error")))
}

func TestMetrics_ObserveDispatch(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.ObserveDispatch("loading", true)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.loading))

	m.ObserveDispatch("cities/loaded", false)
	assert.Equal(t, 0.0, testutil.ToFloat64(m.loading))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("loading")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.dispatches.WithLabelValues("cities/loaded")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveStoreRequest("delete_city", nil, time.Second)
		m.ObserveDispatch("rejected", false)
	})
}
