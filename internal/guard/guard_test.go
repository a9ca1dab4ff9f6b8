package guard

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUnderLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		result := rl.Check(ctx, "test-key")
		assert.True(t, result.Allowed, "request %d should be allowed", i+1)
	}
}

func TestRateLimiter_BlocksOverLimit(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	ctx := context.Background()

	rl.Check(ctx, "test-key")
	rl.Check(ctx, "test-key")
	result := rl.Check(ctx, "test-key")

	assert.False(t, result.Allowed)
	assert.Equal(t, "rate_limiter", result.Guard)
}

func TestRateLimiter_SeparateKeys(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	ctx := context.Background()

	r1 := rl.Check(ctx, "key-a")
	r2 := rl.Check(ctx, "key-b")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 20*time.Millisecond)
	ctx := context.Background()

	require.True(t, rl.Check(ctx, "k").Allowed)
	require.False(t, rl.Check(ctx, "k").Allowed)
	time.Sleep(30 * time.Millisecond)
	assert.True(t, rl.Check(ctx, "k").Allowed)
}

func TestRedisRateLimiter_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	rl := NewRedisRateLimiter(client, 1, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	assert.Error(t, rl.Ping(ctx))
	assert.True(t, rl.Check(ctx, "user-1").Allowed)
	assert.True(t, rl.Check(ctx, "user-1").Allowed)
}

func TestDialRedis_BadURL(t *testing.T) {
	_, err := DialRedis(context.Background(), "not a url")
	assert.Error(t, err)
}

func TestDialRedis_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := DialRedis(ctx, "redis://127.0.0.1:1/0")
	assert.Error(t, err)
}

func TestRedisIdempotencyGuard_FailsOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()
	var ig Deduplicator = NewRedisIdempotencyGuard(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	assert.True(t, ig.Check(ctx, "user-1:batch-1").Allowed)
	assert.True(t, ig.Check(ctx, "user-1:batch-1").Allowed)
	ig.Remove(ctx, "user-1:batch-1")
}

func TestRedisIdempotencyGuard_EmptyKeySkipsRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	defer client.Close()
	ig := NewRedisIdempotencyGuard(client, time.Minute, slog.New(slog.NewTextHandler(io.Discard, nil)))

	assert.True(t, ig.Check(context.Background(), "").Allowed)
}

func TestCircuitBreaker_ClosedByDefault(t *testing.T) {
	cb := NewCircuitBreaker(3, 5*time.Second)
	ctx := context.Background()

	result := cb.Check(ctx, "quiniela.bet.placed")
	assert.True(t, result.Allowed)
	assert.Equal(t, CircuitClosed, cb.State("quiniela.bet.placed"))
}

func TestCircuitBreaker_OpensOnThreshold(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "topic-a")
	cb.RecordFailure("topic-a")
	cb.RecordFailure("topic-a")

	result := cb.Check(ctx, "topic-a")
	assert.False(t, result.Allowed)
	assert.Equal(t, "circuit_breaker", result.Guard)
}

func TestCircuitBreaker_SuccessResets(t *testing.T) {
	cb := NewCircuitBreaker(2, 5*time.Second)
	ctx := context.Background()

	cb.Check(ctx, "topic-a")
	cb.RecordFailure("topic-a")
	cb.RecordSuccess("topic-a")
	cb.RecordFailure("topic-a")

	result := cb.Check(ctx, "topic-a")
	assert.True(t, result.Allowed)
}

func TestCircuitBreaker_HalfOpenTrialCall(t *testing.T) {
	cb := NewCircuitBreaker(1, 10*time.Millisecond)
	ctx := context.Background()

	cb.RecordFailure("topic-a")
	require.False(t, cb.Check(ctx, "topic-a").Allowed)

	time.Sleep(20 * time.Millisecond)
	require.True(t, cb.Check(ctx, "topic-a").Allowed)
	assert.Equal(t, CircuitHalfOpen, cb.State("topic-a"))

	cb.RecordFailure("topic-a")
	assert.Equal(t, CircuitOpen, cb.State("topic-a"))

	time.Sleep(20 * time.Millisecond)
	require.True(t, cb.Check(ctx, "topic-a").Allowed)
	cb.RecordSuccess("topic-a")
	assert.Equal(t, CircuitClosed, cb.State("topic-a"))
}

func TestIdempotencyGuard_AllowsFirst(t *testing.T) {
	ig := NewIdempotencyGuard(time.Minute)
	ctx := context.Background()

	result := ig.Check(ctx, "req-123")
	assert.True(t, result.Allowed)
}

func TestIdempotencyGuard_BlocksDuplicate(t *testing.T) {
	ig := NewIdempotencyGuard(time.Minute)
	ctx := context.Background()

	ig.Check(ctx, "req-123")
	result := ig.Check(ctx, "req-123")

	assert.False(t, result.Allowed)
	assert.Equal(t, "idempotency", result.Guard)
}

func TestIdempotencyGuard_EmptyKeyAllowed(t *testing.T) {
	ig := NewIdempotencyGuard(time.Minute)
	ctx := context.Background()

	r1 := ig.Check(ctx, "")
	r2 := ig.Check(ctx, "")

	assert.True(t, r1.Allowed)
	assert.True(t, r2.Allowed)
}

func TestIdempotencyGuard_RemoveAllowsRetry(t *testing.T) {
	ig := NewIdempotencyGuard(time.Minute)
	ctx := context.Background()

	ig.Check(ctx, "req-456")
	ig.Remove(ctx, "req-456")

	result := ig.Check(ctx, "req-456")
	require.True(t, result.Allowed)
}

func TestIdempotencyGuard_KeysExpire(t *testing.T) {
	ig := NewIdempotencyGuard(10 * time.Millisecond)
	ctx := context.Background()

	ig.Check(ctx, "req-789")
	time.Sleep(20 * time.Millisecond)
	assert.True(t, ig.Check(ctx, "req-789").Allowed)
}
