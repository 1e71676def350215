package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewCache(rdb, instrument.NewNoop()), mr
}

func TestIncrementAndExpire(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		count, err := c.IncrementAndExpire(ctx, "otp:ip:203.0.113.7", 10*time.Minute)
		if err != nil {
			t.Fatalf("IncrementAndExpire returned error: %v", err)
		}
		if count != want {
			t.Fatalf("count = %d, want %d", count, want)
		}
	}

	if ttl := mr.TTL("otp:ip:203.0.113.7"); ttl != 10*time.Minute {
		t.Fatalf("key ttl = %v, want 10m", ttl)
	}
}

func TestIncrementAndExpireKeepsOriginalWindow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := c.IncrementAndExpire(ctx, "otp:phone:+12025550123", 10*time.Minute); err != nil {
		t.Fatalf("IncrementAndExpire returned error: %v", err)
	}

	mr.FastForward(4 * time.Minute)

	// A later increment in the same window must not push the expiry out.
	if _, err := c.IncrementAndExpire(ctx, "otp:phone:+12025550123", 10*time.Minute); err != nil {
		t.Fatalf("IncrementAndExpire returned error: %v", err)
	}

	if ttl := mr.TTL("otp:phone:+12025550123"); ttl != 6*time.Minute {
		t.Fatalf("key ttl = %v, want 6m", ttl)
	}
}

func TestIncrementAndExpireResetsAfterWindow(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := c.IncrementAndExpire(ctx, "otp:ip:203.0.113.7", time.Minute); err != nil {
		t.Fatalf("IncrementAndExpire returned error: %v", err)
	}

	mr.FastForward(61 * time.Second)

	count, err := c.IncrementAndExpire(ctx, "otp:ip:203.0.113.7", time.Minute)
	if err != nil {
		t.Fatalf("IncrementAndExpire returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("count after window reset = %d, want 1", count)
	}
}

func TestTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	if _, err := c.IncrementAndExpire(ctx, "otp:ip:203.0.113.7", 10*time.Minute); err != nil {
		t.Fatalf("IncrementAndExpire returned error: %v", err)
	}

	ttl, err := c.TTL(ctx, "otp:ip:203.0.113.7")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl != 10*time.Minute {
		t.Fatalf("ttl = %v, want 10m", ttl)
	}

	mr.FastForward(3 * time.Minute)

	ttl, err = c.TTL(ctx, "otp:ip:203.0.113.7")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl != 7*time.Minute {
		t.Fatalf("ttl = %v, want 7m", ttl)
	}
}

func TestTTLMissingKey(t *testing.T) {
	c, _ := newTestCache(t)

	ttl, err := c.TTL(context.Background(), "otp:ip:198.51.100.9")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl != 0 {
		t.Fatalf("ttl = %v, want 0 for missing key", ttl)
	}
}

func TestTTLKeyWithoutExpiry(t *testing.T) {
	c, mr := newTestCache(t)

	if err := mr.Set("otp:ip:203.0.113.7", "3"); err != nil {
		t.Fatalf("seed key failed: %v", err)
	}

	ttl, err := c.TTL(context.Background(), "otp:ip:203.0.113.7")
	if err != nil {
		t.Fatalf("TTL returned error: %v", err)
	}
	if ttl != 0 {
		t.Fatalf("ttl = %v, want 0 for key without expiry", ttl)
	}
}
