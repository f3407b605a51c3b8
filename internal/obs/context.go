package obs

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Ctx returns the request-scoped logger attached by RequestLogger, or
// fallback when ctx carries none.
func Ctx(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}

func withRequestLogger(r *http.Request, base zerolog.Logger) *http.Request {
	lc := base.With()
	if id := middleware.GetReqID(r.Context()); id != "" {
		lc = lc.Str("request_id", id)
	}
	l := lc.Logger()
	return r.WithContext(l.WithContext(r.Context()))
}
