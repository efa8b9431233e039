package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"blog/internal/handler/http/pathutil"
	"blog/internal/observability/metrics"
)

func TestMetricsMiddleware_PathNormalization(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}))

	tests := []struct {
		name         string
		path         string
		expectedPath string
	}{
		{"article detail", "/article/123/", "/article/:id/"},
		{"comment endpoint", "/article/7/comment/", "/article/:id/comment/"},
		{"admin article", "/admin/articles/42", "/admin/articles/:id"},
		{"static endpoint", "/health", "/health"},
		{"unknown path", "/wp-login.php", pathutil.Unmatched},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, tt.expectedPath, "200")
			before := testutil.ToFloat64(counter)

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Errorf("Expected status 200, got %d", w.Code)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("counter for %s increased by %v, want 1", tt.expectedPath, got)
			}
		})
	}
}

func TestMetricsMiddleware_CardinalityReduction(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/article/:id/", "200")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"1", "2", "3", "999", "12345"} {
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/article/"+id+"/", nil))
	}

	if got := testutil.ToFloat64(counter) - before; got != 5 {
		t.Errorf("all five ids should share one series, got delta %v", got)
	}
}

func TestMetricsMiddleware_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		status int
		code   string
	}{
		{"found", http.StatusFound, "302"},
		{"not found", http.StatusNotFound, "404"},
		{"server error", http.StatusInternalServerError, "500"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))

			counter := metrics.HTTPRequestsTotal.WithLabelValues(http.MethodPost, "/article/:id/comment/", tt.code)
			before := testutil.ToFloat64(counter)

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/article/1/comment/", nil))

			if rec.Code != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, rec.Code)
			}
			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("counter delta = %v, want 1", got)
			}
		})
	}
}

func TestMetricsMiddleware_InFlightReturnsToZero(t *testing.T) {
	var during float64
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		during = testutil.ToFloat64(metrics.HTTPRequestsInFlight)
		w.WriteHeader(http.StatusOK)
	}))

	before := testutil.ToFloat64(metrics.HTTPRequestsInFlight)
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if during != before+1 {
		t.Errorf("in-flight during request = %v, want %v", during, before+1)
	}
	if after := testutil.ToFloat64(metrics.HTTPRequestsInFlight); after != before {
		t.Errorf("in-flight after request = %v, want %v", after, before)
	}
}

func TestMetricsMiddleware_RequestAndResponseSize(t *testing.T) {
	handler := MetricsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(strings.Repeat("x", 256)))
	}))

	before := testutil.CollectAndCount(metrics.HTTPRequestSize)
	req := httptest.NewRequest(http.MethodPost, "/accounts/login/", strings.NewReader("username=a&password=b"))
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got := testutil.CollectAndCount(metrics.HTTPRequestSize); got < before || got == 0 {
		t.Errorf("request size histogram series = %d (before %d)", got, before)
	}
	if testutil.CollectAndCount(metrics.HTTPResponseSize) == 0 {
		t.Error("response size histogram has no series")
	}
}

func TestMetricsHandler(t *testing.T) {
	// Touch one series so the exposition is guaranteed to include it.
	metrics.HTTPRequestsTotal.WithLabelValues(http.MethodGet, "/health", "200")

	rr := httptest.NewRecorder()
	MetricsHandler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected status OK; got %v", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "http_requests_total") {
		t.Error("metrics endpoint does not expose http_requests_total")
	}
}
