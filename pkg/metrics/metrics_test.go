package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserve(t *testing.T) {
	r := New()
	r.Observe("scorecard", OutcomeOK, 20*time.Millisecond)
	r.Observe("scorecard", OutcomeOK, 30*time.Millisecond)
	r.Observe("scorecard", OutcomeNotFound, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(r.requests.WithLabelValues("scorecard", OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.requests.WithLabelValues("scorecard", OutcomeNotFound)))
	assert.Equal(t, 1, testutil.CollectAndCount(r.duration))
}

func TestSetBreakerState(t *testing.T) {
	r := New()
	r.SetBreakerState(1)
	assert.Equal(t, 1.0, testutil.ToFloat64(r.breaker))
}

func TestHandler(t *testing.T) {
	r := New()
	r.Observe("bills", OutcomeOK, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	out := string(body)
	assert.True(t, strings.Contains(out, `parlgraph_requests_total{op="bills",outcome="ok"} 1`), out)
	assert.Contains(t, out, "parlgraph_request_duration_seconds_bucket")
	assert.Contains(t, out, "parlgraph_breaker_state")
}
