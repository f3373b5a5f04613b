package health

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func newTestServer(checks map[string]Checker) *Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewServer(Config{ServiceName: "sportsedge", Version: "test", Logger: log, Checks: checks})
}

func get(t *testing.T, h http.Handler, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestHealthAndLive(t *testing.T) {
	h := newTestServer(nil).Handler()

	for _, path := range []string{"/health", "/live"} {
		t.Run(path, func(t *testing.T) {
			rec, body := get(t, h, path)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, "ok", body["status"])
			assert.Equal(t, "sportsedge", body["service"])
		})
	}
}

func TestReady(t *testing.T) {
	healthy := CheckFunc(func(context.Context) error { return nil })
	failing := CheckFunc(func(context.Context) error { return errors.New("connection refused") })

	tests := []struct {
		name       string
		ready      bool
		checks     map[string]Checker
		wantStatus int
		wantChecks map[string]interface{}
	}{
		{
			name:       "not marked ready",
			checks:     map[string]Checker{"database": healthy},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]interface{}{"service": "not_ready", "database": "ok"},
		},
		{
			name:       "all checks pass",
			ready:      true,
			checks:     map[string]Checker{"database": healthy, "redis": healthy},
			wantStatus: http.StatusOK,
			wantChecks: map[string]interface{}{"service": "ok", "database": "ok", "redis": "ok"},
		},
		{
			name:       "dependency down",
			ready:      true,
			checks:     map[string]Checker{"database": healthy, "redis": failing},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]interface{}{"service": "ok", "database": "ok", "redis": "error: connection refused"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(tt.checks)
			s.SetReady(tt.ready)

			rec, body := get(t, s.Handler(), "/ready")
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantChecks, body["checks"])
		})
	}
}

func TestGRPCHealthFollowsReadiness(t *testing.T) {
	s := newTestServer(nil)
	ctx := context.Background()

	resp, err := s.GRPCHealth().Check(ctx, &healthpb.HealthCheckRequest{Service: "sportsedge"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.Status)

	s.SetReady(true)
	resp, err = s.GRPCHealth().Check(ctx, &healthpb.HealthCheckRequest{Service: "sportsedge"})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)

	resp, err = s.GRPCHealth().Check(ctx, &healthpb.HealthCheckRequest{})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestMount(t *testing.T) {
	s := newTestServer(nil)
	s.Mount("/metrics", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
