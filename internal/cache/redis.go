package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces stats entries in a shared Redis.
const keyPrefix = "dietinsights:stats:"

// Interface defines the minimal Redis interface needed for caching.
type Interface interface {
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
	Ping(ctx context.Context) *redis.StatusCmd
}

// RedisBackend stores entries in Redis with a TTL.
type RedisBackend struct {
	client Interface
	ttl    time.Duration
}

// NewRedisBackend creates a RedisBackend. A zero ttl keeps entries until
// they are replaced.
func NewRedisBackend(client Interface, ttl time.Duration) *RedisBackend {
	return &RedisBackend{client: client, ttl: ttl}
}

// Get implements Backend.
func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := b.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}

	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	return val, true, nil
}

// Set implements Backend.
func (b *RedisBackend) Set(ctx context.Context, key string, val []byte) error {
	if err := b.client.Set(ctx, keyPrefix+key, val, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}

	return nil
}

// SetIfAbsent implements Backend.
func (b *RedisBackend) SetIfAbsent(ctx context.Context, key string, val []byte) error {
	if err := b.client.SetNX(ctx, keyPrefix+key, val, b.ttl).Err(); err != nil {
		return fmt.Errorf("redis setnx: %w", err)
	}

	return nil
}

// Del implements Backend.
func (b *RedisBackend) Del(ctx context.Context, key string) error {
	if err := b.client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}

	return nil
}

// Ping verifies Redis is reachable.
func (b *RedisBackend) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
