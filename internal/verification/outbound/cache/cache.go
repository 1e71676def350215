package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shandysiswandi/goverify/internal/pkg/instrument"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Cache is the redis-backed counter used by the rate limiter.
type Cache struct {
	client *redis.Client
	ins    instrument.Instrumentation
}

func NewCache(client *redis.Client, ins instrument.Instrumentation) *Cache {
	return &Cache{client: client, ins: ins}
}

func (c *Cache) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("verification.outbound.cache").Start(ctx, name)
}

func (c *Cache) endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// IncrementAndExpire atomically increments key and sets its expiry only when
// this call created the key, so the window does not slide on later hits.
func (c *Cache) IncrementAndExpire(ctx context.Context, key string, window time.Duration) (count int64, err error) {
	ctx, span := c.startSpan(ctx, "IncrementAndExpire")
	defer func() { c.endSpan(span, err) }()

	pipe := c.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)

	if _, err = pipe.Exec(ctx); err != nil {
		return 0, err
	}

	return incr.Val(), nil
}

// TTL returns the remaining life of key, zero when it is absent or has no expiry.
func (c *Cache) TTL(ctx context.Context, key string) (ttl time.Duration, err error) {
	ctx, span := c.startSpan(ctx, "TTL")
	defer func() { c.endSpan(span, err) }()

	ttl, err = c.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}

	// Redis reports -1 (no expiry) and -2 (missing key) as negative durations.
	if ttl < 0 {
		return 0, nil
	}

	return ttl, nil
}
