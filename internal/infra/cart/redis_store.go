package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"storefront-service/internal/domain"

	"github.com/redis/go-redis/v9"
)

var ErrLineNotFound = errors.New("cart line not found")

// cart:{sid}:qty   line key -> quantity
// cart:{sid}:lines line key -> CartItem JSON (quantity ignored)
func qtyKey(sessionID string) string   { return fmt.Sprintf("cart:{%s}:qty", sessionID) }
func linesKey(sessionID string) string { return fmt.Sprintf("cart:{%s}:lines", sessionID) }

var setQuantityScript = redis.NewScript(`
	if redis.call('HEXISTS', KEYS[2], ARGV[1]) == 0 then
		return -1
	end
	if tonumber(ARGV[2]) <= 0 then
		redis.call('HDEL', KEYS[1], ARGV[1])
		redis.call('HDEL', KEYS[2], ARGV[1])
		return 0
	end
	redis.call('HSET', KEYS[1], ARGV[1], ARGV[2])
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
	redis.call('PEXPIRE', KEYS[2], ARGV[3])
	return 1
`)

type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
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

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Items(ctx context.Context, sessionID string) ([]domain.CartItem, error) {
	var qtyCmd, linesCmd *redis.MapStringStringCmd
	_, err := s.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		qtyCmd = p.HGetAll(ctx, qtyKey(sessionID))
		linesCmd = p.HGetAll(ctx, linesKey(sessionID))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	quantities := qtyCmd.Val()
	lines := linesCmd.Val()
	keys := make([]string, 0, len(lines))
	for k := range lines {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]domain.CartItem, 0, len(keys))
	for _, k := range keys {
		qty, err := strconv.Atoi(quantities[k])
		if err != nil || qty <= 0 {
			continue
		}
		var item domain.CartItem
		if err := json.Unmarshal([]byte(lines[k]), &item); err != nil {
			return nil, fmt.Errorf("invalid cart line %s: %w", k, err)
		}
		item.Quantity = qty
		out = append(out, item)
	}
	return out, nil
}

// Add merges item into the cart: an existing line has its quantity increased,
// otherwise a new line is appended.
func (s *RedisStore) Add(ctx context.Context, sessionID string, item domain.CartItem) error {
	line := item.LineKey()
	qty := item.Quantity
	item.Quantity = 0
	snapshot, err := json.Marshal(item)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HIncrBy(ctx, qtyKey(sessionID), line, int64(qty))
		p.HSet(ctx, linesKey(sessionID), line, snapshot)
		p.Expire(ctx, qtyKey(sessionID), s.ttl)
		p.Expire(ctx, linesKey(sessionID), s.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add cart line: %w", err)
	}
	return nil
}

func (s *RedisStore) SetQuantity(ctx context.Context, sessionID, lineKey string, quantity int) error {
	res, err := setQuantityScript.Run(ctx, s.rdb,
		[]string{qtyKey(sessionID), linesKey(sessionID)},
		lineKey, quantity, s.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return fmt.Errorf("failed to update cart line: %w", err)
	}
	if res == -1 {
		return ErrLineNotFound
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, sessionID, lineKey string) error {
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HDel(ctx, qtyKey(sessionID), lineKey)
		p.HDel(ctx, linesKey(sessionID), lineKey)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove cart line: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.rdb.Del(ctx, qtyKey(sessionID), linesKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
