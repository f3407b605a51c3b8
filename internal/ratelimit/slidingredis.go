package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SlidingWindow implements a sliding window rate limiter backed by Redis
// sorted sets. Used when the ledger itself already lives in Redis so that
// every API replica shares one budget per client.
type SlidingWindow struct {
	Client *redis.Client
	Prefix string
}

// Allow registers an event for the given key and returns whether it is within the limit.
func (l SlidingWindow) Allow(ctx context.Context, key string, window time.Duration, limit int) (allowed bool, remaining int, reset time.Time, err error) {
	now := time.Now()
	until := now.Add(window)
	if l.Client == nil || limit <= 0 || window <= 0 {
		return true, limit, until, nil
	}

	redisKey := l.Prefix + key
	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", strconv.FormatInt(now.Add(-window).UnixNano(), 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err = pipe.Exec(ctx); err != nil {
		return false, 0, until, err
	}

	current := int(countCmd.Val())
	return current <= limit, max(0, limit-current), until, nil
}
