package storage

import (
	"context"
	"errors"
	"time"

	"github.com/noah-isme/profitpro/internal/resilience"
)

// Guarded retries slot reads and writes with backoff and stops calling the
// backend while its breaker is open. Ping bypasses both so readiness always
// reflects the real backend.
type Guarded struct {
	Storage  Storage
	Breaker  *resilience.Breaker
	Attempts int
	Backoff  time.Duration
}

// Get implements Storage.
func (g Guarded) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := g.retry(ctx, func(ctx context.Context) error {
		var err error
		value, found, err = g.Storage.Get(ctx, key)
		return err
	})
	return value, found, err
}

// Set implements Storage.
func (g Guarded) Set(ctx context.Context, key string, value []byte) error {
	return g.retry(ctx, func(ctx context.Context) error {
		return g.Storage.Set(ctx, key, value)
	})
}

// Ping implements Storage.
func (g Guarded) Ping(ctx context.Context) error {
	return g.Storage.Ping(ctx)
}

func (g Guarded) retry(ctx context.Context, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	attempts := max(g.Attempts, 1)
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = g.call(ctx, fn)
		if err == nil || errors.Is(err, ErrInvalidKey) || errors.Is(err, resilience.ErrOpenCircuit) {
			return err
		}
		if attempt == attempts {
			break
		}
		timer := time.NewTimer(resilience.Backoff(g.Backoff, attempt, 0.2))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func (g Guarded) call(ctx context.Context, fn func(context.Context) error) error {
	if g.Breaker == nil {
		return fn(ctx)
	}
	// a bad slot name is the caller's fault, not the backend's
	var keyErr error
	err := g.Breaker.Do(ctx, func(ctx context.Context) error {
		keyErr = fn(ctx)
		if errors.Is(keyErr, ErrInvalidKey) {
			return nil
		}
		return keyErr
	})
	if err != nil {
		return err
	}
	return keyErr
}
