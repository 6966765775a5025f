package cache

import (
	"context"
	"time"
)

// Store represents a shared TTL key-value store. The throttle gate and the
// maintenance jobs are its consumers; entries expire server-side (Redis) or
// lazily on read (database fallback).
type Store interface {
	IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Delete(ctx context.Context, keys ...string) error
}
