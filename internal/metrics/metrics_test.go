package metrics

import (
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRPC(t *testing.T) {
	m := New("test", prometheus.NewRegistry())
	m.ObserveRPC("eth_call", time.Now(), nil)
	m.ObserveRPC("eth_call", time.Now(), errors.New("boom"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.RPCCallErrors.WithLabelValues("eth_call")))

	var nilMetrics *Metrics
	nilMetrics.ObserveRPC("eth_call", time.Now(), nil)
}

func TestHandlerExposesCounters(t *testing.T) {
	m := New("test", nil)
	m.EventsSkipped.WithLabelValues("swap", "pool not found").Inc()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `test_dispatch_skipped_total{event="swap",reason="pool not found"} 1`))
}
