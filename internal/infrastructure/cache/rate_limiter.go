package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter counts requests per key in fixed windows shared by all
// instances.
type RedisRateLimiter struct {
	client    redis.UniversalClient
	keyPrefix string
	limit     int
	window    time.Duration
}

// NewRedisRateLimiter allows limit requests per key in each window
func NewRedisRateLimiter(client redis.UniversalClient, name string, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		client:    client,
		keyPrefix: "portal:ratelimit:" + name + ":",
		limit:     limit,
		window:    window,
	}
}

// Limit returns the number of requests allowed per window
func (l *RedisRateLimiter) Limit() int {
	return l.limit
}

// Allow counts one request for key and reports whether it is within the
// limit along with the requests left in the current window.
func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, int, error) {
	redisKey := l.keyPrefix + key

	n, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, 0, fmt.Errorf("failed to count request: %w", err)
	}
	// The first request of a window starts its expiry.
	if n == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return false, 0, fmt.Errorf("failed to start rate limit window: %w", err)
		}
	}

	count := int(n)
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return count <= l.limit, remaining, nil
}
