package cache

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrPending = errors.New("idempotency key is still being processed")

type RedisCache struct {
	rdb     *redis.Client
	idemTTL time.Duration
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		DB:           0,
		PoolSize:     50,
		MinIdleConns: 5,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
	})
}

func NewRedisCache(rdb *redis.Client, idemTTL time.Duration) *RedisCache {
	return &RedisCache{rdb: rdb, idemTTL: idemTTL}
}

func (c *RedisCache) Claim(ctx context.Context, key string) ([]byte, bool, error) {
	k := IdempotencyKey(key)
	ok, err := c.rdb.SetNX(ctx, k, pendingMarker, c.idemTTL).Result()
	if err != nil {
		return nil, false, err
	}
	if ok {
		return nil, true, nil
	}

	b, err := c.rdb.Get(ctx, k).Bytes()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; try once more
		ok, err = c.rdb.SetNX(ctx, k, pendingMarker, c.idemTTL).Result()
		if err != nil {
			return nil, false, err
		}
		if ok {
			return nil, true, nil
		}
		return nil, false, ErrPending
	}
	if err != nil {
		return nil, false, err
	}
	if string(b) == pendingMarker {
		return nil, false, ErrPending
	}
	return b, false, nil
}

func (c *RedisCache) Complete(ctx context.Context, key string, value []byte) error {
	return c.rdb.Set(ctx, IdempotencyKey(key), value, c.idemTTL).Err()
}

func (c *RedisCache) Release(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, IdempotencyKey(key)).Err()
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return b, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.rdb.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}
