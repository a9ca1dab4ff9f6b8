package guard

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRateLimiter is a fixed window limiter shared by every API replica.
// When Redis cannot be reached it lets requests through.
type RedisRateLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
	logger *slog.Logger
	now    func() time.Time
}

// DialRedis connects to the Redis server at url and verifies it answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// NewRedisRateLimiter creates a limiter over an existing client. The caller owns the client.
func NewRedisRateLimiter(client *redis.Client, limit int, window time.Duration, logger *slog.Logger) *RedisRateLimiter {
	return &RedisRateLimiter{
		client: client,
		limit:  limit,
		window: window,
		prefix: "quiniela:ratelimit:",
		logger: logger,
		now:    time.Now,
	}
}

// Check counts the request in the current window.
func (rl *RedisRateLimiter) Check(ctx context.Context, key string) Result {
	bucket := rl.now().UnixNano() / int64(rl.window)
	redisKey := fmt.Sprintf("%s%s:%d", rl.prefix, key, bucket)

	var incr *redis.IntCmd
	_, err := rl.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.Incr(ctx, redisKey)
		p.Expire(ctx, redisKey, rl.window)
		return nil
	})
	if err != nil {
		rl.logger.Warn("rate limiter unavailable, allowing request", "key", key, "error", err)
		return Result{Allowed: true}
	}

	if incr.Val() > int64(rl.limit) {
		return Result{
			Allowed: false,
			Reason:  fmt.Sprintf("rate limit exceeded: %d/%s", rl.limit, rl.window),
			Guard:   "rate_limiter",
		}
	}
	return Result{Allowed: true}
}

// Ping reports whether Redis answers.
func (rl *RedisRateLimiter) Ping(ctx context.Context) error {
	return rl.client.Ping(ctx).Err()
}
