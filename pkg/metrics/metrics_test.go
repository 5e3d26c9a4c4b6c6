package metrics

import (
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.TokensCreated.Inc()
	m.TokensCreated.Inc()
	m.TokensDeleted.Inc()
	m.CapturesTotal.Inc()

	assert.Equal(t, float64(2), testutil.ToFloat64(m.TokensCreated))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.TokensDeleted))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CapturesTotal))
}

func TestRequestVecs(t *testing.T) {
	m := New()

	m.RequestsTotal.WithLabelValues("POST", "/{token}", "200").Inc()
	m.RequestDuration.WithLabelValues("POST", "/{token}").Observe(0.05)

	assert.Equal(t, float64(1), testutil.ToFloat64(m.RequestsTotal.WithLabelValues("POST", "/{token}", "200")))
}

func TestHandlerServesExposition(t *testing.T) {
	m := New()
	m.CapturesTotal.Inc()

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/metrics", nil)
	m.Handler().ServeHTTP(rec, req)

	require.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "hookcatch_captures_total 1")
}

func TestIndependentRegistries(t *testing.T) {
	a := New()
	b := New()

	a.TokensCreated.Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(a.TokensCreated))
	assert.Equal(t, float64(0), testutil.ToFloat64(b.TokensCreated))
}
