package guard

import (
	"context"
	"sync"
	"time"
)

// Deduplicator remembers idempotency keys. Check claims a key and reports a
// duplicate if it is already held; Remove releases it so the request can be retried.
type Deduplicator interface {
	Check(ctx context.Context, key string) Result
	Remove(ctx context.Context, key string)
}

// IdempotencyGuard rejects a repeated idempotency key while it is remembered.
// Keys expire after ttl so the map does not grow without bound.
type IdempotencyGuard struct {
	mu   sync.Mutex
	seen map[string]time.Time
	ttl  time.Duration
}

// NewIdempotencyGuard creates an in-memory idempotency guard.
func NewIdempotencyGuard(ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// Check returns whether the given key has already been seen.
func (ig *IdempotencyGuard) Check(_ context.Context, key string) Result {
	if key == "" {
		return Result{Allowed: true}
	}

	ig.mu.Lock()
	defer ig.mu.Unlock()

	now := time.Now()
	for k, at := range ig.seen {
		if now.Sub(at) > ig.ttl {
			delete(ig.seen, k)
		}
	}

	if _, dup := ig.seen[key]; dup {
		return Result{
			Allowed: false,
			Reason:  "duplicate request: idempotency key already processed",
			Guard:   "idempotency",
		}
	}

	ig.seen[key] = now
	return Result{Allowed: true}
}

// Remove forgets a key so a failed request can be retried.
func (ig *IdempotencyGuard) Remove(_ context.Context, key string) {
	ig.mu.Lock()
	defer ig.mu.Unlock()
	delete(ig.seen, key)
}
