package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loader/metrics"
	"loader/queue"
	"loader/scheduler"
)

// blockedTransport accepts dispatches and never completes them, keeping the
// scheduler's counts stable for assertions.
type blockedTransport struct{}

func (blockedTransport) Start(req *queue.Request, done func(err error)) {}

func newTestServer(t *testing.T) (*Server, *scheduler.Scheduler) {
	t.Helper()
	collector := metrics.NewCollector()
	sched := scheduler.New(scheduler.Config{MaxConcurrentPerOrigin: 2}, blockedTransport{}, collector)
	return New(sched, collector), sched
}

func do(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Echo().ServeHTTP(rec, req)
	return rec
}

func TestGetStats(t *testing.T) {
	srv, sched := newTestServer(t)

	for i := 0; i < 3; i++ {
		_, err := sched.Register("https://img.example.com/a.jpg", queue.PriorityLow, nil, nil, nil)
		require.NoError(t, err)
	}

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/stats", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var stats scheduler.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 2, stats.TotalLoading)
	assert.Equal(t, 1, stats.TotalQueued)
	assert.Equal(t, 2, stats.LoadingByOrigin["https://img.example.com"])
}

func TestUpdateConfig(t *testing.T) {
	srv, sched := newTestServer(t)

	body := `{"max_concurrent_per_origin": 5, "medium_priority_threshold": 900}`
	req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, "application/json")
	rec := do(srv, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, 900.0, sched.MediumThreshold())
}

func TestUpdateConfig_RejectsInvalidValues(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "zero limit", body: `{"max_concurrent_per_origin": 0}`},
		{name: "negative threshold", body: `{"medium_priority_threshold": -10}`},
		{name: "malformed json", body: `{"max_concurrent_per_origin": `},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/config", strings.NewReader(tt.body))
			req.Header.Set(echo.HeaderContentType, "application/json")
			rec := do(srv, req)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestHealthz(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := do(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, sched := newTestServer(t)

	_, err := sched.Register("https://img.example.com/a.jpg", queue.PriorityLow, nil, nil, nil)
	require.NoError(t, err)

	rec := do(srv, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "loader_loading_requests")
	assert.Contains(t, rec.Body.String(), "loader_registrations_total")
}
