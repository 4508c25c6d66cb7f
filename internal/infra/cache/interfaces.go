package cache

import (
	"context"
	"time"
)

type IdempotencyStoreInterface interface {
	// Claim reserves key for a new request. When the key already holds a
	// finished result it is returned with claimed=false; a key still being
	// processed yields ErrPending.
	Claim(ctx context.Context, key string) (stored []byte, claimed bool, err error)
	Complete(ctx context.Context, key string, value []byte) error
	Release(ctx context.Context, key string) error
}

type CacheInterface interface {
	// Get returns nil, nil on a miss.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var (
	_ IdempotencyStoreInterface = (*RedisCache)(nil)
	_ CacheInterface            = (*RedisCache)(nil)
)
