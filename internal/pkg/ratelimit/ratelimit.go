package ratelimit

import (
	"context"
	"fmt"
	"time"
)

// Counter is an atomic increment-with-expiry primitive, typically Redis.
type Counter interface {
	// IncrementAndExpire atomically increments key and, when the key is
	// created by this call, sets its expiry to window. It returns the count
	// after the increment.
	IncrementAndExpire(ctx context.Context, key string, window time.Duration) (int64, error)
	// TTL returns the remaining time-to-live of key, zero when the key has
	// no expiry or does not exist.
	TTL(ctx context.Context, key string) (time.Duration, error)
}

// Result is the outcome of a quota check.
type Result struct {
	// Allowed reports whether the request fits within the quota.
	Allowed bool
	// Remaining is the number of requests left in the current window.
	Remaining int64
	// RetryAfter is the time until the window resets; set only when the
	// quota is exceeded.
	RetryAfter time.Duration
}

// FixedWindow is a fixed-window limiter over a Counter.
//
// Counts reset when the window key expires, so bursts across a window
// boundary can briefly exceed the quota. That is an accepted trade-off for
// a single atomic increment per check.
type FixedWindow struct {
	counter Counter
	prefix  string
}

// NewFixedWindow builds a limiter on top of the given counter.
func NewFixedWindow(counter Counter) *FixedWindow {
	return &FixedWindow{
		counter: counter,
		prefix:  "ratelimit:",
	}
}

// Check increments the counter for identifier and evaluates it against limit.
//
// A counter failure is returned as-is; callers on safety-critical paths must
// treat it as quota exceeded (fail closed).
func (l *FixedWindow) Check(ctx context.Context, identifier string, limit int64, window time.Duration) (Result, error) {
	key := l.prefix + identifier

	count, err := l.counter.IncrementAndExpire(ctx, key, window)
	if err != nil {
		return Result{}, fmt.Errorf("ratelimit: increment %q: %w", identifier, err)
	}

	remaining := limit - count
	if remaining < 0 {
		remaining = 0
	}

	if count <= limit {
		return Result{Allowed: true, Remaining: remaining}, nil
	}

	retryAfter, err := l.counter.TTL(ctx, key)
	if err != nil || retryAfter <= 0 {
		// The window key may have expired between the two calls; the full
		// window is the safest hint to report.
		retryAfter = window
	}

	return Result{Allowed: false, Remaining: 0, RetryAfter: retryAfter}, nil
}
