package store

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"screener/internal/screening/domain"
	"screener/pkg/platform/sentinel"
)

const scanBatch = 500

// RedisStore keeps entries as JSON strings with native Redis expiry.
type RedisStore struct {
	client *redis.Client
	now    func() time.Time
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client, now: time.Now}
}

func (s *RedisStore) Get(ctx context.Context, key domain.CacheKey) (*domain.CacheEntry, error) {
	raw, err := s.client.Get(ctx, key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w: %w", sentinel.ErrUnavailable, err)
	}
	var entry domain.CacheEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		// A value we cannot read is as good as absent; drop it.
		_ = s.client.Del(ctx, key.String()).Err()
		return nil, sentinel.ErrNotFound
	}
	return &entry, nil
}

func (s *RedisStore) Set(ctx context.Context, key domain.CacheKey, entry domain.CacheEntry, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("invalid ttl %s", ttl)
	}
	if entry.FetchedAt.IsZero() {
		entry.FetchedAt = s.now()
	}
	entry.TTLSeconds = int64(ttl / time.Second)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encode cache entry: %w", err)
	}
	if err := s.client.Set(ctx, key.String(), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, key domain.CacheKey) error {
	if err := s.client.Del(ctx, key.String()).Err(); err != nil {
		return fmt.Errorf("redis del: %w: %w", sentinel.ErrUnavailable, err)
	}
	return nil
}

// Clear walks the prefix with SCAN and deletes in pipelined batches, so it
// never blocks the server the way KEYS would.
func (s *RedisStore) Clear(ctx context.Context) (int, error) {
	removed := 0
	iter := s.client.Scan(ctx, 0, domain.CacheKeyPrefix+"*", scanBatch).Iterator()
	batch := make([]string, 0, scanBatch)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		pipe := s.client.Pipeline()
		for _, k := range batch {
			pipe.Unlink(ctx, k)
		}
		cmds, err := pipe.Exec(ctx)
		if err != nil {
			return err
		}
		for _, cmd := range cmds {
			if n, err := cmd.(*redis.IntCmd).Result(); err == nil {
				removed += int(n)
			}
		}
		batch = batch[:0]
		return nil
	}

	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatch {
			if err := flush(); err != nil {
				return removed, fmt.Errorf("redis clear: %w: %w", sentinel.ErrUnavailable, err)
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, fmt.Errorf("redis scan: %w: %w", sentinel.ErrUnavailable, err)
	}
	if err := flush(); err != nil {
		return removed, fmt.Errorf("redis clear: %w: %w", sentinel.ErrUnavailable, err)
	}
	return removed, nil
}

// Stats counts screening keys and reads used_memory_human from INFO.
func (s *RedisStore) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: "redis", MemoryUsage: "unknown"}
	if err := s.client.Ping(ctx).Err(); err != nil {
		return stats, fmt.Errorf("redis ping: %w: %w", sentinel.ErrUnavailable, err)
	}
	stats.Connected = true

	iter := s.client.Scan(ctx, 0, domain.CacheKeyPrefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		stats.TotalKeys++
	}
	if err := iter.Err(); err != nil {
		return stats, fmt.Errorf("redis scan: %w: %w", sentinel.ErrUnavailable, err)
	}

	if info, err := s.client.Info(ctx, "memory").Result(); err == nil {
		if v := infoField(info, "used_memory_human"); v != "" {
			stats.MemoryUsage = v
		}
	}
	return stats, nil
}

func infoField(info, field string) string {
	sc := bufio.NewScanner(strings.NewReader(info))
	for sc.Scan() {
		name, value, ok := strings.Cut(strings.TrimSpace(sc.Text()), ":")
		if ok && name == field {
			return value
		}
	}
	return ""
}
