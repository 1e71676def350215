package ratelimit

import (
	"context"
	"errors"
	"testing"
	"time"
)

type fakeCounter struct {
	counts  map[string]int64
	windows map[string]time.Duration
	ttl     time.Duration
	incErr  error
	ttlErr  error
}

func newFakeCounter() *fakeCounter {
	return &fakeCounter{
		counts:  make(map[string]int64),
		windows: make(map[string]time.Duration),
	}
}

func (f *fakeCounter) IncrementAndExpire(_ context.Context, key string, window time.Duration) (int64, error) {
	if f.incErr != nil {
		return 0, f.incErr
	}
	f.counts[key]++
	if f.counts[key] == 1 {
		f.windows[key] = window
	}
	return f.counts[key], nil
}

func (f *fakeCounter) TTL(_ context.Context, _ string) (time.Duration, error) {
	if f.ttlErr != nil {
		return 0, f.ttlErr
	}
	return f.ttl, nil
}

func TestCheckAllowsUpToLimit(t *testing.T) {
	counter := newFakeCounter()
	limiter := NewFixedWindow(counter)

	for i := range 5 {
		res, err := limiter.Check(context.Background(), "ip:127.0.0.1", 5, 10*time.Minute)
		if err != nil {
			t.Fatalf("Check #%d returned error: %v", i+1, err)
		}
		if !res.Allowed {
			t.Fatalf("Check #%d not allowed, want allowed", i+1)
		}
		if want := int64(5 - i - 1); res.Remaining != want {
			t.Fatalf("Check #%d remaining = %d, want %d", i+1, res.Remaining, want)
		}
	}

	if got := counter.windows["ratelimit:ip:127.0.0.1"]; got != 10*time.Minute {
		t.Fatalf("window expiry = %v, want %v", got, 10*time.Minute)
	}
}

func TestCheckRejectsBeyondLimit(t *testing.T) {
	counter := newFakeCounter()
	counter.ttl = 42 * time.Second
	limiter := NewFixedWindow(counter)

	for range 5 {
		if _, err := limiter.Check(context.Background(), "phone:+12025550123", 5, 10*time.Minute); err != nil {
			t.Fatalf("Check returned error: %v", err)
		}
	}

	res, err := limiter.Check(context.Background(), "phone:+12025550123", 5, 10*time.Minute)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if res.Allowed {
		t.Fatal("6th check allowed, want rejected")
	}
	if res.Remaining != 0 {
		t.Fatalf("remaining = %d, want 0", res.Remaining)
	}
	if res.RetryAfter != 42*time.Second {
		t.Fatalf("retryAfter = %v, want 42s", res.RetryAfter)
	}
}

func TestCheckRetryAfterFallsBackToWindow(t *testing.T) {
	counter := newFakeCounter()
	counter.ttl = 0
	limiter := NewFixedWindow(counter)

	for range 3 {
		if _, err := limiter.Check(context.Background(), "k", 2, time.Minute); err != nil {
			t.Fatalf("Check returned error: %v", err)
		}
	}

	res, err := limiter.Check(context.Background(), "k", 2, time.Minute)
	if err != nil {
		t.Fatalf("Check returned error: %v", err)
	}
	if res.Allowed {
		t.Fatal("check allowed, want rejected")
	}
	if res.RetryAfter != time.Minute {
		t.Fatalf("retryAfter = %v, want window fallback %v", res.RetryAfter, time.Minute)
	}
}

func TestCheckPropagatesCounterError(t *testing.T) {
	counter := newFakeCounter()
	counter.incErr = errors.New("connection refused")
	limiter := NewFixedWindow(counter)

	if _, err := limiter.Check(context.Background(), "k", 5, time.Minute); err == nil {
		t.Fatal("Check returned nil error, want counter failure")
	}
}
