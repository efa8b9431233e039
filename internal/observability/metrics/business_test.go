package metrics

import (
	"database/sql"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sampleCount reads how many observations a histogram child has seen.
func sampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()
	m, ok := o.(prometheus.Metric)
	require.True(t, ok)
	var out dto.Metric
	require.NoError(t, m.Write(&out))
	return out.GetHistogram().GetSampleCount()
}

func TestRecordHTTPRequest(t *testing.T) {
	before := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/article/:id/", "200"))

	assert.NotPanics(t, func() {
		RecordHTTPRequest("GET", "/article/:id/", http.StatusOK, 20*time.Millisecond, 0, 512)
	})

	after := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/article/:id/", "200"))
	assert.Equal(t, before+1, after)
}

func TestRecordCommentCreated(t *testing.T) {
	before := testutil.ToFloat64(CommentsCreatedTotal)
	RecordCommentCreated()
	assert.Equal(t, before+1, testutil.ToFloat64(CommentsCreatedTotal))
}

func TestRecordCommentDiscarded(t *testing.T) {
	tests := []struct {
		name   string
		reason string
	}{
		{"empty content", DiscardEmpty},
		{"rate limited", DiscardRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := CommentsDiscardedTotal.WithLabelValues(tt.reason)
			before := testutil.ToFloat64(counter)
			RecordCommentDiscarded(tt.reason)
			assert.Equal(t, before+1, testutil.ToFloat64(counter))
		})
	}
}

func TestUpdateArticlesTotal(t *testing.T) {
	UpdateArticlesTotal(7)
	assert.Equal(t, 7.0, testutil.ToFloat64(ArticlesTotal))
}

func TestRecordDBStats(t *testing.T) {
	RecordDBStats(sql.DBStats{InUse: 3, Idle: 2, WaitCount: 9})
	assert.Equal(t, 3.0, testutil.ToFloat64(DBConnectionsActive))
	assert.Equal(t, 2.0, testutil.ToFloat64(DBConnectionsIdle))
	assert.Equal(t, 9.0, testutil.ToFloat64(DBConnectionsWaited))
}

func TestRecordBreaker(t *testing.T) {
	RecordBreakerState("metrics-test", 2)
	assert.Equal(t, 2.0, testutil.ToFloat64(CircuitBreakerState.WithLabelValues("metrics-test")))

	before := testutil.ToFloat64(CircuitBreakerRejectedTotal.WithLabelValues("metrics-test"))
	RecordBreakerRejected("metrics-test")
	assert.Equal(t, before+1, testutil.ToFloat64(CircuitBreakerRejectedTotal.WithLabelValues("metrics-test")))
}

func TestRecordAuthAttempt(t *testing.T) {
	AuthAttemptsTotal.Reset()
	AuthDuration.Reset()

	RecordAuthAttempt(AuthRouteLogin, "staff", true, 120*time.Millisecond)
	RecordAuthAttempt(AuthRouteLogin, "anonymous", false, 90*time.Millisecond)
	RecordAuthAttempt(AuthRouteToken, "anonymous", false, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues(AuthRouteLogin, "staff", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues(AuthRouteLogin, "anonymous", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(AuthAttemptsTotal.WithLabelValues(AuthRouteToken, "anonymous", "failure")))
	assert.Equal(t, 2, testutil.CollectAndCount(AuthDuration))
	assert.Equal(t, uint64(2), sampleCount(t, AuthDuration.WithLabelValues(AuthRouteLogin)))
}

func TestRecordAuthDenied(t *testing.T) {
	AuthDeniedTotal.Reset()
	RecordAuthDenied(DeniedForbidden, "user")
	RecordAuthDenied(DeniedForbidden, "user")
	assert.Equal(t, 2.0, testutil.ToFloat64(AuthDeniedTotal.WithLabelValues(DeniedForbidden, "user")))
}
