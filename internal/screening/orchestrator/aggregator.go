// Package orchestrator resolves entities end to end: cache lookup, concurrent
// provider calls, scoring and cache write-back, for one entity or a batch.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"screener/internal/screening/domain"
	"screener/internal/screening/metrics"
	"screener/internal/screening/providers"
	dErrors "screener/pkg/domain-errors"
)

// Default per-call provider timeouts.
const (
	DefaultSanctionsTimeout = 10 * time.Second
	DefaultSearchTimeout    = 8 * time.Second
)

// ResultCache is the advisory cache handle the aggregator reads through and
// writes back to. Implementations absorb their own failures.
type ResultCache interface {
	Get(ctx context.Context, key domain.CacheKey) (*domain.AggregatedResult, bool)
	Set(ctx context.Context, key domain.CacheKey, result *domain.AggregatedResult)
}

// Aggregator resolves a single EntityQuery.
type Aggregator struct {
	sanctions        providers.SanctionsClient
	search           providers.SearchClient
	cache            ResultCache
	scorer           *domain.Scorer
	sanctionsTimeout time.Duration
	searchTimeout    time.Duration
	logger           *slog.Logger
	metrics          *metrics.Metrics
	tracer           trace.Tracer
	now              func() time.Time
	inflight         singleflight.Group
}

type AggregatorOption func(*Aggregator)

func WithScorer(s *domain.Scorer) AggregatorOption {
	return func(a *Aggregator) {
		if s != nil {
			a.scorer = s
		}
	}
}

// WithTimeouts sets the per-call provider deadlines. Zero keeps the default.
func WithTimeouts(sanctions, search time.Duration) AggregatorOption {
	return func(a *Aggregator) {
		if sanctions > 0 {
			a.sanctionsTimeout = sanctions
		}
		if search > 0 {
			a.searchTimeout = search
		}
	}
}

func WithLogger(logger *slog.Logger) AggregatorOption {
	return func(a *Aggregator) {
		if logger != nil {
			a.logger = logger
		}
	}
}

func WithMetrics(m *metrics.Metrics) AggregatorOption {
	return func(a *Aggregator) {
		a.metrics = m
	}
}

func WithClock(now func() time.Time) AggregatorOption {
	return func(a *Aggregator) {
		if now != nil {
			a.now = now
		}
	}
}

func NewAggregator(
	sanctions providers.SanctionsClient,
	search providers.SearchClient,
	cache ResultCache,
	opts ...AggregatorOption,
) (*Aggregator, error) {
	if sanctions == nil {
		return nil, fmt.Errorf("sanctions client is required")
	}
	if search == nil {
		return nil, fmt.Errorf("search client is required")
	}
	if cache == nil {
		return nil, fmt.Errorf("result cache is required")
	}
	a := &Aggregator{
		sanctions:        sanctions,
		search:           search,
		cache:            cache,
		scorer:           domain.NewScorer(nil),
		sanctionsTimeout: DefaultSanctionsTimeout,
		searchTimeout:    DefaultSearchTimeout,
		logger:           slog.Default(),
		tracer:           otel.Tracer("screener/orchestrator"),
		now:              time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Resolve returns the screening result for q, from cache when fresh.
// Provider and cache failures are folded into the result; only an invalid
// query produces an error.
func (a *Aggregator) Resolve(ctx context.Context, q domain.EntityQuery) (*domain.AggregatedResult, error) {
	if q.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "entity requires an id or a name")
	}
	start := time.Now()
	key := domain.KeyFor(q)

	ctx, span := a.tracer.Start(ctx, "screening.resolve",
		trace.WithAttributes(attribute.String("cache.key", key.String())),
	)
	defer span.End()

	if cached, ok := a.cache.Get(ctx, key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		a.metrics.ObserveResolve("hit", time.Since(start))
		a.logger.DebugContext(ctx, "screening cache hit", "cache_key", key.String())
		return cached, nil
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	// Identical in-flight resolves share one computation. The shared work is
	// detached from any single caller's cancellation; provider deadlines
	// bound it instead.
	work := context.WithoutCancel(ctx)
	v, _, shared := a.inflight.Do(key.String(), func() (any, error) {
		return a.compute(work, key, q), nil
	})
	if shared {
		a.metrics.IncrementInflightShared()
	}
	a.metrics.ObserveResolve("miss", time.Since(start))
	return v.(*domain.AggregatedResult), nil
}

func (a *Aggregator) compute(ctx context.Context, key domain.CacheKey, q domain.EntityQuery) *domain.AggregatedResult {
	var (
		sanctions domain.SanctionsOutcome
		search    domain.SearchOutcome
	)

	// Neither call returns an error to the group, so one provider failing
	// never cancels the other.
	var g errgroup.Group
	g.Go(func() error {
		sanctions = a.lookupSanctions(ctx, q)
		return nil
	})
	g.Go(func() error {
		search = a.runSearch(ctx, q)
		return nil
	})
	_ = g.Wait()

	risk := a.scorer.Score(sanctions, search)
	result := domain.Assemble(q, sanctions, search, risk, a.now().UTC())
	a.metrics.IncrementRiskLevel(string(risk.Level))

	a.logger.InfoContext(ctx, "entity screened",
		"cache_key", key.String(),
		"risk_level", risk.Level,
		"risk_score", risk.Score,
		"sanctions_failed", sanctions.Failure != nil,
		"search_failed", search.Failure != nil,
	)

	// Both providers failing says nothing about the entity; caching it would
	// pin an outage for a full TTL.
	if sanctions.Failure != nil && search.Failure != nil {
		return result
	}
	a.cache.Set(ctx, key, result)
	return result
}

func (a *Aggregator) lookupSanctions(ctx context.Context, q domain.EntityQuery) (outcome domain.SanctionsOutcome) {
	ctx, cancel := context.WithTimeout(ctx, a.sanctionsTimeout)
	defer cancel()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "sanctions provider panicked", "panic", fmt.Sprint(r))
			outcome = domain.SanctionsFailed(domain.ReasonUpstreamError, "provider panicked")
		}
		a.metrics.ObserveProvider(providers.SanctionsProviderID, outcomeLabel(outcome.Failure), time.Since(start))
	}()

	result, err := a.sanctions.Lookup(ctx, q)
	if err == nil && result == nil {
		err = providers.NewProviderError(providers.ErrorBadData, providers.SanctionsProviderID, "empty result", nil)
	}
	if err != nil {
		reason := providers.ReasonFor(err)
		a.logger.WarnContext(ctx, "sanctions lookup failed", "reason", reason, "error", err)
		return domain.SanctionsFailed(reason, err.Error())
	}
	return domain.SanctionsSucceeded(result)
}

func (a *Aggregator) runSearch(ctx context.Context, q domain.EntityQuery) (outcome domain.SearchOutcome) {
	ctx, cancel := context.WithTimeout(ctx, a.searchTimeout)
	defer cancel()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			a.logger.ErrorContext(ctx, "search provider panicked", "panic", fmt.Sprint(r))
			outcome = domain.SearchFailed(domain.ReasonUpstreamError, "provider panicked")
		}
		a.metrics.ObserveProvider(providers.SearchProviderID, outcomeLabel(outcome.Failure), time.Since(start))
	}()

	result, err := a.search.Search(ctx, q.SearchText())
	if err == nil && result == nil {
		err = providers.NewProviderError(providers.ErrorBadData, providers.SearchProviderID, "empty result", nil)
	}
	if err != nil {
		reason := providers.ReasonFor(err)
		a.logger.WarnContext(ctx, "web search failed", "reason", reason, "error", err)
		return domain.SearchFailed(reason, err.Error())
	}
	return domain.SearchSucceeded(result)
}

func outcomeLabel(f *domain.Failure) string {
	if f == nil {
		return "ok"
	}
	return string(f.Reason)
}
