// Package service is the application layer of the screening context. It
// assigns batch identifiers, reports health and exposes cache administration
// on top of the orchestrator.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"screener/internal/screening/domain"
	"screener/internal/screening/orchestrator"
	"screener/internal/screening/providers"
	"screener/internal/screening/store"
	dErrors "screener/pkg/domain-errors"
)

// BatchProcessor runs a batch of raw inputs. *orchestrator.Batch implements it.
type BatchProcessor interface {
	Process(ctx context.Context, inputs []domain.RawInput) ([]orchestrator.Item, error)
	MaxBatchSize() int
}

// CacheAdmin is the administrative surface of the result cache.
type CacheAdmin interface {
	Delete(ctx context.Context, key domain.CacheKey) error
	Clear(ctx context.Context) (int, error)
	Stats(ctx context.Context) store.Stats
	BreakerOpen() bool
}

// ProviderStatus reports whether an upstream has credentials.
type ProviderStatus interface {
	IsConfigured() bool
}

// Health status values.
const (
	StatusHealthy  = "healthy"
	StatusDegraded = "degraded"
)

// CheckResult is one processed batch.
type CheckResult struct {
	BatchID uuid.UUID
	Items   []orchestrator.Item
}

// Succeeded counts the items that produced a result.
func (r *CheckResult) Succeeded() int {
	n := 0
	for _, it := range r.Items {
		if it.Err == nil {
			n++
		}
	}
	return n
}

// HealthReport describes cache connectivity and provider configuration.
type HealthReport struct {
	Status           string
	Cache            store.Stats
	CacheBreakerOpen bool
	Providers        map[string]bool
	TrustedDomains   []string
	CheckedAt        time.Time
}

// Service orchestrates screening requests.
type Service struct {
	batch          BatchProcessor
	cache          CacheAdmin
	sanctions      ProviderStatus
	search         ProviderStatus
	trustedDomains []string
	logger         *slog.Logger
	newID          func() uuid.UUID
	now            func() time.Time
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTrustedDomains records the search allow-list for health output.
func WithTrustedDomains(domains []string) Option {
	return func(s *Service) {
		s.trustedDomains = append([]string(nil), domains...)
	}
}

// WithIDGenerator overrides batch id generation.
func WithIDGenerator(fn func() uuid.UUID) Option {
	return func(s *Service) {
		if fn != nil {
			s.newID = fn
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service.
func New(batch BatchProcessor, cache CacheAdmin, sanctions, search ProviderStatus, opts ...Option) (*Service, error) {
	if batch == nil {
		return nil, errors.New("batch processor is required")
	}
	if cache == nil {
		return nil, errors.New("cache is required")
	}
	if sanctions == nil || search == nil {
		return nil, errors.New("provider status is required")
	}
	s := &Service{
		batch:     batch,
		cache:     cache,
		sanctions: sanctions,
		search:    search,
		logger:    slog.Default(),
		newID:     uuid.New,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// MaxBatchSize is the largest accepted batch.
func (s *Service) MaxBatchSize() int {
	return s.batch.MaxBatchSize()
}

// Check screens every input and returns one item per input, in order. Only a
// batch-level validation failure is returned as an error.
func (s *Service) Check(ctx context.Context, inputs []domain.RawInput) (*CheckResult, error) {
	batchID := s.newID()
	start := s.now()

	items, err := s.batch.Process(ctx, inputs)
	if err != nil {
		s.logger.WarnContext(ctx, "batch rejected",
			"batch_id", batchID,
			"entities", len(inputs),
			"error", err,
		)
		return nil, err
	}

	result := &CheckResult{BatchID: batchID, Items: items}
	s.logger.InfoContext(ctx, "batch screened",
		"batch_id", batchID,
		"entities", len(inputs),
		"succeeded", result.Succeeded(),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return result, nil
}

// Health reports degraded when the sanctions provider has no credentials;
// search and cache problems are surfaced but do not degrade the status.
func (s *Service) Health(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:           StatusHealthy,
		Cache:            s.cache.Stats(ctx),
		CacheBreakerOpen: s.cache.BreakerOpen(),
		Providers: map[string]bool{
			providers.SanctionsProviderID: s.sanctions.IsConfigured(),
			providers.SearchProviderID:    s.search.IsConfigured(),
		},
		TrustedDomains: append([]string(nil), s.trustedDomains...),
		CheckedAt:      s.now().UTC(),
	}
	if !report.Providers[providers.SanctionsProviderID] {
		report.Status = StatusDegraded
	}
	return report
}

// ClearCache removes every cached screening result.
func (s *Service) ClearCache(ctx context.Context) (int, error) {
	n, err := s.cache.Clear(ctx)
	if err != nil {
		return 0, dErrors.Wrap(err, dErrors.CodeUnavailable, "cache backend unavailable")
	}
	s.logger.InfoContext(ctx, "cache cleared by operator", "removed", n)
	return n, nil
}

// Invalidate evicts the cached result for one input and returns the key that
// was targeted.
func (s *Service) Invalidate(ctx context.Context, in domain.RawInput) (domain.CacheKey, error) {
	q, err := domain.Normalize(in)
	if err != nil {
		return "", err
	}
	key := domain.KeyFor(q)
	if err := s.cache.Delete(ctx, key); err != nil {
		return "", dErrors.Wrap(err, dErrors.CodeUnavailable, "cache backend unavailable")
	}
	s.logger.InfoContext(ctx, "cache entry invalidated", "entity", q.DisplayName())
	return key, nil
}
