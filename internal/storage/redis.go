package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each slot as a plain string key, namespaced by Prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore constructs a Redis-backed store.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Get fetches the slot value.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := checkKey(key); err != nil {
		return nil, false, err
	}
	if s == nil || s.client == nil {
		return nil, false, errors.New("redis storage not configured")
	}
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("get slot %s: %w", key, err)
	}
	return data, true, nil
}

// Set stores the slot value without expiry.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if s == nil || s.client == nil {
		return errors.New("redis storage not configured")
	}
	if err := s.client.Set(ctx, s.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set slot %s: %w", key, err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return errors.New("redis storage not configured")
	}
	return s.client.Ping(ctx).Err()
}
