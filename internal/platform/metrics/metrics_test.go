package metrics

import (
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestObserveRequest(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveRequest(http.MethodPost, "/admin/demo", http.StatusOK, time.Second)
	m.ObserveRequest(http.MethodPost, "/admin/demo", http.StatusConflict, time.Millisecond)

	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/admin/demo", "2xx")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests.WithLabelValues(http.MethodPost, "/admin/demo", "4xx")), 0)
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() { m.ObserveRequest(http.MethodGet, "/", http.StatusOK, 0) })
}
