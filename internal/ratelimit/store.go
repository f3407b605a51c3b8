package ratelimit

import (
	"context"
	"sync"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// StoreLimiter is a fixed-window limiter over a ulule store. With the memory
// store it serves single-process deployments using file or memory storage.
type StoreLimiter struct {
	Store limiter.Store

	mu    sync.Mutex
	rates map[limiter.Rate]*limiter.Limiter
}

// NewMemoryLimiter builds a StoreLimiter over an in-process store.
func NewMemoryLimiter(prefix string) *StoreLimiter {
	return &StoreLimiter{Store: memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: time.Minute,
	})}
}

func (l *StoreLimiter) limiterFor(rate limiter.Rate) *limiter.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rates == nil {
		l.rates = make(map[limiter.Rate]*limiter.Limiter)
	}
	lim, ok := l.rates[rate]
	if !ok {
		lim = limiter.New(l.Store, rate)
		l.rates[rate] = lim
	}
	return lim
}

// Allow consumes one event for key.
func (l *StoreLimiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (bool, int, time.Time, error) {
	if l == nil || l.Store == nil || limit <= 0 || window <= 0 {
		return true, limit, time.Now().Add(window), nil
	}
	res, err := l.limiterFor(limiter.Rate{Period: window, Limit: int64(limit)}).Get(ctx, key)
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	return !res.Reached, int(res.Remaining), time.Unix(res.Reset, 0), nil
}
