package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "minicheck:ratelimit:"

// RedisStore is a Limiter whose counters live in Redis, so every replica shares
// the same budget per client.
type RedisStore struct {
	client redis.Cmdable
	limit  int
	period time.Duration
}

// NewRedisStore returns a Redis-backed limiter allowing limit requests per key
// every period.
func NewRedisStore(client redis.Cmdable, limit int, period time.Duration) *RedisStore {
	if limit <= 0 {
		limit = 1
	}
	if period <= 0 {
		period = time.Hour
	}
	return &RedisStore{client: client, limit: limit, period: period}
}

// Allow increments the counter for key and starts its window on first use.
func (r *RedisStore) Allow(ctx context.Context, key string) (Decision, error) {
	k := keyPrefix + key

	var (
		incr *redis.IntCmd
		ttl  *redis.DurationCmd
	)
	_, err := r.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, k)
		ttl = p.PTTL(ctx, k)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("ratelimit: increment %q: %w", key, err)
	}

	retryAfter := ttl.Val()
	if retryAfter < 0 {
		if err := r.client.PExpire(ctx, k, r.period).Err(); err != nil {
			return Decision{}, fmt.Errorf("ratelimit: expire %q: %w", key, err)
		}
		retryAfter = r.period
	}

	return decide(r.limit, incr.Val(), retryAfter), nil
}

// Dial connects to the Redis instance at rawURL and verifies it answers.
func Dial(ctx context.Context, rawURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("ratelimit: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ratelimit: ping redis: %w", err)
	}
	return client, nil
}
