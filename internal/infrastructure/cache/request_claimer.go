package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aquaportal/backend/internal/domain/shared"
	"github.com/redis/go-redis/v9"
)

// RedisRequestClaimer implements shared.RequestClaimer using SETNX so every
// instance behind the load balancer sees the same claims.
type RedisRequestClaimer struct {
	client    redis.UniversalClient
	keyPrefix string
}

// NewRedisRequestClaimer creates a claimer with an existing Redis client
func NewRedisRequestClaimer(client redis.UniversalClient, keyPrefix string) *RedisRequestClaimer {
	if keyPrefix == "" {
		keyPrefix = "portal:idempotency:"
	}
	return &RedisRequestClaimer{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// Claim sets the key if absent. It returns false when another request
// already holds it.
func (c *RedisRequestClaimer) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := c.client.SetNX(ctx, c.keyPrefix+key, time.Now().Unix(), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return ok, nil
}

// Release deletes the key
func (c *RedisRequestClaimer) Release(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, c.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

var _ shared.RequestClaimer = (*RedisRequestClaimer)(nil)
