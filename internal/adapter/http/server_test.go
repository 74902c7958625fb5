package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	httpadapter "github.com/hangarbay/registry-etl/internal/adapter/http"
	"github.com/hangarbay/registry-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockPipeline struct {
	err    error
	status domain.RunStatus
}

func (m *mockPipeline) CheckReadiness(_ context.Context) error { return m.err }

func (m *mockPipeline) Status() domain.RunStatus { return m.status }

func newTestServer(p *mockPipeline) *httpadapter.Server {
	return httpadapter.NewServer(":0", p, slog.Default())
}

func get(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/healthz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/readyz")

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ready", body["status"])
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{err: fmt.Errorf("no successful run yet")}), "/readyz")

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not ready", body["status"])
	assert.Equal(t, "no successful run yet", body["error"])
}

func TestStatusReportsLastRun(t *testing.T) {
	last := time.Date(2025, 1, 15, 7, 0, 0, 0, time.UTC)
	srv := newTestServer(&mockPipeline{status: domain.RunStatus{
		SnapshotDate: "2025-01-15",
		LastSuccess:  &last,
	}})

	rec := get(srv, "/status")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"running": false,
		"snapshot_date": "2025-01-15",
		"last_success": "2025-01-15T07:00:00Z"
	}`, rec.Body.String())
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(newTestServer(&mockPipeline{}), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
