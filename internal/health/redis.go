// Package health provides health check implementations for external dependencies.
package health

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisCheckTimeout bounds the PING round trip. Redis only backs rate
// limiting and the topic channel cache, so a slow probe should fail fast
// rather than block the readiness endpoint.
const redisCheckTimeout = 2 * time.Second

// RedisChecker reports whether the Redis instance backing rate limiting
// and the channel cache is reachable.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a health checker for Redis.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// HealthCheck sends a PING with a bounded timeout.
func (r *RedisChecker) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, redisCheckTimeout)
	defer cancel()

	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis unreachable: %w", err)
	}
	return nil
}
