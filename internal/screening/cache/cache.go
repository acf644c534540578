// Package cache is the advisory layer between the screening engine and a
// store backend. Backend failures never reach callers: reads degrade to a
// miss and writes to a logged no-op. A circuit breaker stops calls to a
// backend that keeps failing until its cooldown elapses.
package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"screener/internal/screening/domain"
	"screener/internal/screening/metrics"
	"screener/internal/screening/store"
	"screener/pkg/platform/circuit"
	"screener/pkg/platform/sentinel"
)

// DefaultTTL matches the deployment default of one hour.
const DefaultTTL = time.Hour

// Cache wraps a store.Store with breaker, logging and metrics.
type Cache struct {
	store   store.Store
	ttl     time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

type Option func(*Cache)

func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Cache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Cache) {
		c.metrics = m
	}
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(c *Cache) {
		if b != nil {
			c.breaker = b
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

func New(s store.Store, opts ...Option) (*Cache, error) {
	if s == nil {
		return nil, fmt.Errorf("cache store is required")
	}
	c := &Cache{
		store:   s,
		ttl:     DefaultTTL,
		breaker: circuit.New("cache"),
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL is the single deployment-wide entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Get returns the cached result for key. Any failure is reported as a miss.
func (c *Cache) Get(ctx context.Context, key domain.CacheKey) (*domain.AggregatedResult, bool) {
	if !c.breaker.Allow() {
		c.metrics.IncrementCache("get", metrics.CacheSkipped)
		return nil, false
	}

	entry, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		c.recordSuccess(ctx)
	case errors.Is(err, sentinel.ErrNotFound):
		c.recordSuccess(ctx)
		c.metrics.IncrementCache("get", metrics.CacheMiss)
		return nil, false
	case ctx.Err() != nil:
		// The caller gave up; that says nothing about the backend.
		c.metrics.IncrementCache("get", metrics.CacheMiss)
		return nil, false
	default:
		c.recordFailure(ctx, "get", err)
		return nil, false
	}

	// Stores enforce TTL themselves; this guards against clock skew between
	// a shared backend and this process.
	if entry.IsExpired(c.now()) {
		c.metrics.IncrementCache("get", metrics.CacheMiss)
		return nil, false
	}
	c.metrics.IncrementCache("get", metrics.CacheHit)
	result := entry.Value
	return &result, true
}

// Set stores result under key. Failures are logged and swallowed.
func (c *Cache) Set(ctx context.Context, key domain.CacheKey, result *domain.AggregatedResult) {
	if result == nil {
		return
	}
	if !c.breaker.Allow() {
		c.metrics.IncrementCache("set", metrics.CacheSkipped)
		return
	}
	entry := domain.CacheEntry{
		Value:      *result,
		FetchedAt:  c.now(),
		TTLSeconds: int64(c.ttl / time.Second),
	}
	if err := c.store.Set(ctx, key, entry, c.ttl); err != nil {
		c.recordFailure(ctx, "set", err)
		return
	}
	c.recordSuccess(ctx)
	c.metrics.IncrementCache("set", "ok")
}

// Delete evicts a single key. Unlike reads and writes, administrative
// operations report backend failures so operators can see them.
func (c *Cache) Delete(ctx context.Context, key domain.CacheKey) error {
	if err := c.store.Delete(ctx, key); err != nil {
		c.recordFailure(ctx, "delete", err)
		return err
	}
	c.recordSuccess(ctx)
	c.metrics.IncrementCache("delete", "ok")
	return nil
}

// Clear removes every screening entry and returns the count.
func (c *Cache) Clear(ctx context.Context) (int, error) {
	n, err := c.store.Clear(ctx)
	if err != nil {
		c.recordFailure(ctx, "clear", err)
		return n, err
	}
	c.recordSuccess(ctx)
	c.metrics.IncrementCache("clear", "ok")
	c.logger.InfoContext(ctx, "cache cleared", "removed", n)
	return n, nil
}

// Stats reports backend state. An unreachable backend yields Connected=false
// rather than an error.
func (c *Cache) Stats(ctx context.Context) store.Stats {
	stats, err := c.store.Stats(ctx)
	if err != nil {
		c.logger.WarnContext(ctx, "cache stats unavailable", "error", err)
		stats.Connected = false
	}
	return stats
}

// BreakerOpen reports whether the cache is currently bypassed.
func (c *Cache) BreakerOpen() bool {
	return c.breaker.IsOpen()
}

func (c *Cache) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.metrics.SetCacheBreakerOpen(false)
		c.logger.InfoContext(ctx, "cache backend recovered, circuit closed")
	}
}

func (c *Cache) recordFailure(ctx context.Context, op string, err error) {
	c.metrics.IncrementCache(op, metrics.CacheError)
	_, change := c.breaker.RecordFailure()
	if change.Opened {
		c.metrics.SetCacheBreakerOpen(true)
		c.logger.ErrorContext(ctx, "cache backend failing, circuit opened", "op", op, "error", err)
		return
	}
	c.logger.WarnContext(ctx, "cache operation failed", "op", op, "error", err)
}
