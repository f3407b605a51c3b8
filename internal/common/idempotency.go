package common

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// CodeDuplicateRequest marks a write that reused an Idempotency-Key.
const CodeDuplicateRequest = "DUPLICATE_REQUEST"

// Idem provides an Idempotency-Key middleware backed by Redis. A nil client
// disables it.
type Idem struct {
	R      redis.UniversalClient
	Prefix string
	TTL    time.Duration
}

func (i Idem) key(r *http.Request, header string) string {
	sum := sha256.Sum256([]byte(r.Method + " " + r.URL.Path + " " + header))
	return i.Prefix + "idem:" + hex.EncodeToString(sum[:])
}

// Middleware rejects a repeated write carrying the same Idempotency-Key
// within TTL. Reads pass through untouched.
func (i Idem) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Idempotency-Key")
		if header == "" || i.R == nil || !isWrite(r.Method) {
			next.ServeHTTP(w, r)
			return
		}
		ttl := i.TTL
		if ttl <= 0 {
			ttl = 10 * time.Minute
		}
		key := i.key(r, header)
		ok, err := i.R.SetNX(r.Context(), key, "locked", ttl).Result()
		if err != nil {
			JSONError(w, http.StatusServiceUnavailable, CodeStorage, "idempotency store unavailable", err.Error())
			return
		}
		if !ok {
			JSONError(w, http.StatusConflict, CodeDuplicateRequest, "duplicate request", nil)
			return
		}
		defer func() {
			// keep the expiry even if the handler panics
			_ = i.R.Expire(context.Background(), key, ttl).Err()
		}()
		next.ServeHTTP(w, r)
	})
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}
