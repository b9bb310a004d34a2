package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()

	m.IncrementUsersRegistered()
	m.ObserveLogin(true)
	m.ObserveLogin(false)
	m.ObserveLogin(false)
	m.IncrementIncidentsReported()
	m.ObserveVote(1)
	m.ObserveVote(-1)
	m.ObserveVote(-1)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.UsersRegistered))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Logins.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Logins.WithLabelValues("failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.IncidentsReported))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VotesCast.WithLabelValues("up")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.VotesCast.WithLabelValues("down")))
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncrementUsersRegistered()
		m.ObserveLogin(true)
		m.IncrementIncidentsReported()
		m.ObserveVote(1)
	})
}

func TestHandler_Exposition(t *testing.T) {
	m := New()
	m.IncrementIncidentsReported()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "trafine_incidents_reported_total 1")
}
