package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestHandlerMiddlewareEnforcesLimit(t *testing.T) {
	_, client := newRedis(t)

	handler := Handler{
		Limiter: SlidingWindow{Client: client, Prefix: "profitpro:rl:"},
		Config:  Config{Key: ByClientIP, Window: time.Second, Max: 1},
	}.Middleware(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/calculations", nil)
	req.RemoteAddr = "192.0.2.10:4000"

	rr1 := httptest.NewRecorder()
	handler.ServeHTTP(rr1, req.Clone(req.Context()))
	require.Equal(t, http.StatusOK, rr1.Code)

	rr2 := httptest.NewRecorder()
	handler.ServeHTTP(rr2, req.Clone(req.Context()))
	require.Equal(t, http.StatusTooManyRequests, rr2.Code)
	require.Equal(t, "1", rr2.Header().Get("X-RateLimit-Limit"))
	require.NotEmpty(t, rr2.Header().Get("Retry-After"))
	require.Contains(t, rr2.Body.String(), "RATE_LIMITED")

	other := req.Clone(req.Context())
	other.RemoteAddr = "192.0.2.11:4000"
	rr3 := httptest.NewRecorder()
	handler.ServeHTTP(rr3, other)
	require.Equal(t, http.StatusOK, rr3.Code)
}

func TestHandlerMiddlewareWithMemoryLimiter(t *testing.T) {
	handler := Handler{
		Limiter: NewMemoryLimiter("mw"),
		Config:  Config{Key: ByClientIP, Window: time.Minute, Max: 2},
	}.Middleware(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
		codes = append(codes, rr.Code)
	}
	require.Equal(t, []int{200, 200, 429}, codes)
}

func TestHandlerMiddlewareOnError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	called := false
	handler := Handler{
		Limiter: SlidingWindow{Client: client, Prefix: "profitpro:rl:"},
		Config:  Config{Key: func(*http.Request) string { return "err" }, Window: time.Second, Max: 1},
		OnError: func(error) { called = true },
	}.Middleware(okHandler())

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	require.Equal(t, http.StatusOK, rr.Code)
	require.True(t, called)
}
