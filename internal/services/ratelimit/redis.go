package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"devwise/pkg/errors"
)

// Compile-time check
var _ Limiter = (*RedisLimiter)(nil)

// RedisLimiter is a fixed-window limiter backed by Redis INCR with a
// TTL stamped on the first hit of each window. Quota is shared across
// service instances.
type RedisLimiter struct {
	rdb *redis.Client
}

// NewRedisLimiter creates a Redis-backed limiter
func NewRedisLimiter(rdb *redis.Client) *RedisLimiter {
	return &RedisLimiter{rdb: rdb}
}

// Allow consumes one unit of quota within the current window
func (l *RedisLimiter) Allow(ctx context.Context, identifier string, limit int, window time.Duration) (*Result, error) {
	key := "ratelimit:" + identifier

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return nil, errors.Wrap(err, "failed to increment rate limit counter")
	}

	if count == 1 {
		if err := l.rdb.Expire(ctx, key, window).Err(); err != nil {
			return nil, errors.Wrap(err, "failed to set rate limit window")
		}
	}

	ttl, err := l.rdb.TTL(ctx, key).Result()
	if err != nil || ttl < 0 {
		ttl = window
	}
	resetAt := time.Now().Add(ttl)

	if count > int64(limit) {
		return &Result{
			Allowed:   false,
			Limit:     limit,
			Remaining: 0,
			ResetAt:   resetAt,
		}, nil
	}

	return &Result{
		Allowed:   true,
		Limit:     limit,
		Remaining: limit - int(count),
		ResetAt:   resetAt,
	}, nil
}
