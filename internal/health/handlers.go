package health

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/noah-isme/profitpro/internal/common"
)

var ready atomic.Bool

func init() { ready.Store(true) }

// SetReady flips the readiness flag. The server clears it on shutdown so load
// balancers stop routing before connections drain.
func SetReady(v bool) { ready.Store(v) }

// Checker represents dependencies that can be probed for readiness.
type Checker interface {
	PingStorage(ctx context.Context, timeout time.Duration) error
}

// Pinger is the subset of a storage backend needed for probing.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StorageChecker adapts a storage backend to Checker.
type StorageChecker struct {
	Storage Pinger
}

// PingStorage probes the backend under its own timeout.
func (c StorageChecker) PingStorage(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Storage.Ping(ctx)
}

// Handler exposes HTTP handlers for health endpoints.
type Handler struct {
	Checker        Checker
	StorageTimeout time.Duration
}

// Live reports liveness status.
func (h Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Ready reports readiness based on dependency probes.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !ready.Load() {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	if h.Checker == nil {
		common.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unconfigured"})
		return
	}
	status := map[string]string{"status": "ok", "storage": "ok"}
	code := http.StatusOK
	if err := h.Checker.PingStorage(r.Context(), h.storageTimeout()); err != nil {
		status["status"] = "degraded"
		status["storage"] = err.Error()
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, status)
}

func (h Handler) storageTimeout() time.Duration {
	if h.StorageTimeout <= 0 {
		return 300 * time.Millisecond
	}
	return h.StorageTimeout
}
