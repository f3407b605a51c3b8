package ratelimit

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/noah-isme/profitpro/internal/common"
)

// Allower decides whether another event for key fits in the window.
type Allower interface {
	Allow(ctx context.Context, key string, window time.Duration, limit int) (allowed bool, remaining int, reset time.Time, err error)
}

// Config describes how to derive a rate limit key and thresholds.
type Config struct {
	Key    func(*http.Request) string
	Window time.Duration
	Max    int
}

// ByClientIP keys requests by the caller address.
func ByClientIP(r *http.Request) string {
	return "ip:" + common.ClientIP(r)
}

// Handler enforces rate limits before delegating to the next handler.
type Handler struct {
	Limiter Allower
	Config  Config
	OnError func(error)
}

// Middleware implements the http.Handler middleware interface. Limiter
// failures fail open.
func (h Handler) Middleware(next http.Handler) http.Handler {
	if h.Limiter == nil || h.Config.Key == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, remaining, resetAt, err := h.Limiter.Allow(r.Context(), h.Config.Key(r), h.Config.Window, h.Config.Max)
		if err != nil {
			if h.OnError != nil {
				h.OnError(err)
			}
			next.ServeHTTP(w, r)
			return
		}

		headers := w.Header()
		headers.Set("X-RateLimit-Limit", strconv.Itoa(max(h.Config.Max, 0)))
		headers.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		headers.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		if !allowed {
			retryAfter := max(int(time.Until(resetAt).Seconds()), 0)
			headers.Set("Retry-After", strconv.Itoa(retryAfter))
			common.JSONError(w, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded", nil)
			return
		}

		next.ServeHTTP(w, r)
	})
}
