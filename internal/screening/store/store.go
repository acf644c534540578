// Package store provides the cache backends for screening results.
//
// Backends report infrastructure facts with sentinel errors: a miss or an
// expired entry is sentinel.ErrNotFound; an unreachable backend is
// sentinel.ErrUnavailable. Deciding what to do about either is the cache
// adapter's job.
package store

import (
	"context"
	"time"

	"screener/internal/screening/domain"
)

// Store is the contract both backends implement.
type Store interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error)
	Set(ctx context.Context, key domain.CacheKey, entry domain.CacheEntry, ttl time.Duration) error
	Delete(ctx context.Context, key domain.CacheKey) error
	// Clear removes every screening entry and returns how many were removed.
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context) (Stats, error)
}

// Stats describes the backend for health reporting.
type Stats struct {
	Backend     string `json:"backend"`
	Connected   bool   `json:"connected"`
	TotalKeys   int    `json:"total_keys"`
	MemoryUsage string `json:"memory_usage"`
}

var (
	_ Store = (*InMemoryStore)(nil)
	_ Store = (*RedisStore)(nil)
)
