package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noah-isme/profitpro/internal/health"
	"github.com/noah-isme/profitpro/internal/storage"
)

type stubChecker struct {
	err error
}

func (s stubChecker) PingStorage(_ context.Context, _ time.Duration) error {
	return s.err
}

func decodeStatus(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var status map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	return status
}

func TestLive(t *testing.T) {
	rr := httptest.NewRecorder()
	health.Handler{}.Live(rr, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestReadySuccess(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{}, StorageTimeout: 50 * time.Millisecond}
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.Equal(t, "ok", decodeStatus(t, rr)["storage"])
}

func TestReadyFailure(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{err: errors.New("disk full")}}
	rr := httptest.NewRecorder()
	handler.Ready(rr, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)
	status := decodeStatus(t, rr)
	require.Equal(t, "degraded", status["status"])
	require.Equal(t, "disk full", status["storage"])
}

func TestReadinessAfterShutdown(t *testing.T) {
	handler := health.Handler{Checker: stubChecker{}}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	t.Cleanup(func() { health.SetReady(true) })

	health.SetReady(false)
	rr := httptest.NewRecorder()
	handler.Ready(rr, req)
	require.Equal(t, http.StatusServiceUnavailable, rr.Code)

	health.SetReady(true)
	rr = httptest.NewRecorder()
	handler.Ready(rr, req)
	require.Equal(t, http.StatusOK, rr.Code)
}

func TestStorageCheckerProbesFileStore(t *testing.T) {
	dir := t.TempDir()
	checker := health.StorageChecker{Storage: storage.NewFileStore(filepath.Join(dir, "data"))}
	require.NoError(t, checker.PingStorage(context.Background(), time.Second))

	blocked := filepath.Join(dir, "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o600))
	checker = health.StorageChecker{Storage: storage.NewFileStore(blocked)}
	require.Error(t, checker.PingStorage(context.Background(), time.Second))
}
