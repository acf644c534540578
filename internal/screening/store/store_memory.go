package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"screener/internal/screening/domain"
	"screener/pkg/platform/sentinel"
)

// InMemoryStore keeps entries in a map with per-entry expiry. Expired entries
// are dropped lazily on read and on Stats.
type InMemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.CacheKey]domain.CacheEntry
	now     func() time.Time
}

type MemoryOption func(*InMemoryStore)

// WithClock overrides time.Now, for TTL tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *InMemoryStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewInMemoryStore(opts ...MemoryOption) *InMemoryStore {
	s := &InMemoryStore{
		entries: make(map[domain.CacheKey]domain.CacheEntry),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns sentinel.ErrNotFound for missing or expired keys.
func (s *InMemoryStore) Get(_ context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	if entry.IsExpired(s.now()) {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.IsExpired(s.now()) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, sentinel.ErrNotFound
	}
	return &entry, nil
}

// Set stores entry with ttl. The entry's own TTLSeconds is overwritten so the
// expiry used for reads always matches the one requested here.
func (s *InMemoryStore) Set(_ context.Context, key domain.CacheKey, entry domain.CacheEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s", ttl)
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = s.now()
	}
	entry.TTLSeconds = int64(ttl / time.Second)
	if entry.TTLSeconds == 0 {
		entry.TTLSeconds = 1
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, key domain.CacheKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Clear removes entries under the screening prefix.
func (s *InMemoryStore) Clear(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(string(key), domain.CacheKeyPrefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

// Stats reports live keys and an approximate JSON footprint.
func (s *InMemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	size := 0
	for key, entry := range s.entries {
		if entry.IsExpired(now) {
			delete(s.entries, key)
			continue
		}
		if data, err := json.Marshal(entry); err == nil {
			size += len(key) + len(data)
		}
	}
	return Stats{
		Backend:     "memory",
		Connected:   true,
		TotalKeys:   len(s.entries),
		MemoryUsage: humanBytes(size),
	}, nil
}

func humanBytes(n int) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%dB", n)
	}
	div, exp := unit, 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.2f%c", float64(n)/float64(div), "KMGTPE"[exp])
}
