package guard

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyGuard holds idempotency keys in Redis so every API replica
// sees the same keys. Each key is claimed with SETNX and expires after ttl.
// When Redis cannot be reached requests are let through.
type RedisIdempotencyGuard struct {
	client *redis.Client
	ttl    time.Duration
	prefix string
	logger *slog.Logger
}

// NewRedisIdempotencyGuard creates a guard over an existing client. The caller owns the client.
func NewRedisIdempotencyGuard(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisIdempotencyGuard {
	return &RedisIdempotencyGuard{
		client: client,
		ttl:    ttl,
		prefix: "quiniela:idempotency:",
		logger: logger,
	}
}

// Check claims key, or reports a duplicate if another request holds it.
func (g *RedisIdempotencyGuard) Check(ctx context.Context, key string) Result {
	if key == "" {
		return Result{Allowed: true}
	}

	claimed, err := g.client.SetNX(ctx, g.prefix+key, time.Now().UTC().Format(time.RFC3339), g.ttl).Result()
	if err != nil {
		g.logger.Warn("idempotency store unavailable, allowing request", "key", key, "error", err)
		return Result{Allowed: true}
	}
	if !claimed {
		return Result{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}
	return Result{Allowed: true}
}

// Remove releases key so a failed request can be retried.
func (g *RedisIdempotencyGuard) Remove(ctx context.Context, key string) {
	if err := g.client.Del(ctx, g.prefix+key).Err(); err != nil {
		g.logger.Warn("release idempotency key failed", "key", key, "error", err)
	}
}
