package cache

import (
	"context"
	"errors"
	"time"

	"github.com/mkorchagin/foodcart/internal/domain"
	"github.com/redis/go-redis/v9"
)

// RedisKV implements KV on a Redis client.
type RedisKV struct {
	client *redis.Client
}

// Compile-time check that RedisKV implements KV.
var _ KV = (*RedisKV)(nil)

// NewRedisKV creates a Redis-backed KV from a connection URL.
func NewRedisKV(url string) (*RedisKV, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}

	return &RedisKV{client: redis.NewClient(opts)}, nil
}

// Ping verifies the connection on startup.
func (r *RedisKV) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying client.
func (r *RedisKV) Close() error {
	return r.client.Close()
}

func (r *RedisKV) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", domain.ErrCartNotCached
		}
		return "", domain.Unavailable(err, "cache.get", "cart cache unreachable")
	}
	return val, nil
}

func (r *RedisKV) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if err := r.client.Set(ctx, key, value, ttl).Err(); err != nil {
		return domain.Unavailable(err, "cache.set", "cart cache unreachable")
	}
	return nil
}
