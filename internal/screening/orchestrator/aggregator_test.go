package orchestrator

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"screener/internal/screening/cache"
	"screener/internal/screening/domain"
	"screener/internal/screening/metrics"
	"screener/internal/screening/providers"
	"screener/internal/screening/providers/mocks"
	"screener/internal/screening/store"
	dErrors "screener/pkg/domain-errors"
)

// =============================================================================
// Aggregator Test Suite
// =============================================================================
// Providers are mocked; the cache is the real advisory adapter over the
// in-memory store so round-trip and TTL behaviour are exercised end to end.

type AggregatorSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	sanctions  *mocks.MockSanctionsClient
	search     *mocks.MockSearchClient
	cache      *cache.Cache
	aggregator *Aggregator

	mu  sync.Mutex
	now time.Time
}

func TestAggregatorSuite(t *testing.T) {
	suite.Run(t, new(AggregatorSuite))
}

func (s *AggregatorSuite) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

func (s *AggregatorSuite) advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = s.now.Add(d)
}

func (s *AggregatorSuite) SetupTest() {
	s.now = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.ctrl = gomock.NewController(s.T())
	s.sanctions = mocks.NewMockSanctionsClient(s.ctrl)
	s.search = mocks.NewMockSearchClient(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.New(prometheus.NewRegistry())

	var err error
	s.cache, err = cache.New(store.NewInMemoryStore(store.WithClock(s.clock)),
		cache.WithTTL(time.Hour),
		cache.WithClock(s.clock),
		cache.WithLogger(logger),
	)
	s.Require().NoError(err)

	s.aggregator, err = NewAggregator(s.sanctions, s.search, s.cache,
		WithClock(s.clock),
		WithLogger(logger),
		WithMetrics(m),
		WithTimeouts(50*time.Millisecond, 50*time.Millisecond),
	)
	s.Require().NoError(err)
}

func (s *AggregatorSuite) TearDownTest() {
	s.ctrl.Finish()
}

func sanctionsHit() *domain.SanctionsResult {
	return &domain.SanctionsResult{
		Found:    true,
		Records:  []domain.SanctionsMatch{{ID: "Q7747", Caption: "Vladimir Putin"}},
		RawTotal: 1,
	}
}

func sanctionsMiss() *domain.SanctionsResult {
	return &domain.SanctionsResult{Records: []domain.SanctionsMatch{}}
}

func fraudHit() *domain.SearchResult {
	return &domain.SearchResult{
		Hits: []domain.SearchHit{{
			Title: "Acme charged with fraud", URL: "https://reuters.com/acme",
			Domain: "reuters.com", SourceName: "Reuters",
		}},
		QueryUsed: `"Acme"`,
	}
}

func blockUntilDeadline(ctx context.Context, _ domain.EntityQuery) (*domain.SanctionsResult, error) {
	<-ctx.Done()
	return nil, providers.FromTransport(providers.SanctionsProviderID, ctx.Err())
}

// =============================================================================
// Constructor Tests
// =============================================================================

func (s *AggregatorSuite) TestNewAggregatorRequiresCollaborators() {
	_, err := NewAggregator(nil, s.search, s.cache)
	s.Error(err)
	_, err = NewAggregator(s.sanctions, nil, s.cache)
	s.Error(err)
	_, err = NewAggregator(s.sanctions, s.search, nil)
	s.Error(err)
}

// =============================================================================
// Resolve Tests
// =============================================================================

func (s *AggregatorSuite) TestRejectsZeroQuery() {
	_, err := s.aggregator.Resolve(context.Background(), domain.EntityQuery{})
	s.Require().Error(err)
	s.True(dErrors.Is(err, dErrors.CodeValidation))
}

func (s *AggregatorSuite) TestMergesBothProviders() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), q).Return(sanctionsHit(), nil)
	s.search.EXPECT().Search(gomock.Any(), `"Acme"`).Return(fraudHit(), nil)

	result, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)

	s.Equal(q, result.Entity)
	s.True(result.Found)
	s.Equal(4, result.Risk.Score)
	s.Equal(domain.RiskHigh, result.Risk.Level)
	s.Equal(s.now, result.ComputedAt)
	s.Contains(result.Summary, "found in sanctions database (1 records) and web search (1 results)")
}

func (s *AggregatorSuite) TestCacheRoundTripSkipsProviders() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(sanctionsMiss(), nil).Times(1)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil).Times(1)

	first, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)

	s.advance(10 * time.Minute)
	second, err := s.aggregator.Resolve(context.Background(), domain.MustEntityQuery("", "ACME", nil, nil))
	s.Require().NoError(err)

	s.Equal(first.ComputedAt, second.ComputedAt)
	s.Equal(first.Risk, second.Risk)
}

func (s *AggregatorSuite) TestTTLExpiryRefreshes() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(sanctionsMiss(), nil).Times(2)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil).Times(2)

	first, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)

	s.advance(time.Hour + time.Second)
	second, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)

	s.True(second.ComputedAt.After(first.ComputedAt))
}

func (s *AggregatorSuite) TestSanctionsTimeoutKeepsSearchFactors() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDeadline)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil)

	result, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)

	s.Require().NotNil(result.Sanctions.Failure)
	s.Equal(domain.ReasonTimeout, result.Sanctions.Failure.Reason)
	s.NotNil(result.Search.Result)
	s.Equal(1, result.Risk.Score)
	s.NotContains(result.Risk.Factors, domain.FactorSanctionsMatch)
	s.Equal([]string{`Risk keyword "fraud" found in Reuters`}, result.Risk.Factors)
}

func (s *AggregatorSuite) TestSearchFailureKeepsSanctionsFactor() {
	q := domain.MustEntityQuery("Q7747", "", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(sanctionsHit(), nil)
	s.search.EXPECT().Search(gomock.Any(), `"Q7747"`).Return(nil, providers.NotConfigured(providers.SearchProviderID))

	result, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)

	s.Equal(domain.ReasonNotConfigured, result.Search.Failure.Reason)
	s.Equal([]string{domain.FactorSanctionsMatch}, result.Risk.Factors)
	s.Equal(domain.RiskHigh, result.Risk.Level)
}

func (s *AggregatorSuite) TestBothFailedIsNotCached() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	outage := providers.FromStatus(providers.SanctionsProviderID, 503)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, outage).Times(2)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, outage).Times(2)

	for range 2 {
		result, err := s.aggregator.Resolve(context.Background(), q)
		s.Require().NoError(err)
		s.Equal(0, result.Risk.Score)
		s.Equal(domain.RiskLow, result.Risk.Level)
		s.False(result.Found)
	}
}

func (s *AggregatorSuite) TestProviderPanicIsContained() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.EntityQuery) (*domain.SanctionsResult, error) {
			panic("boom")
		})
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil)

	result, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)
	s.Equal(domain.ReasonUpstreamError, result.Sanctions.Failure.Reason)
	s.Equal(1, result.Risk.Score)
}

func (s *AggregatorSuite) TestNilResultIsUpstreamError() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(nil, nil)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil)

	result, err := s.aggregator.Resolve(context.Background(), q)
	s.Require().NoError(err)
	s.Equal(domain.ReasonUpstreamError, result.Sanctions.Failure.Reason)
}

func (s *AggregatorSuite) TestCallerCancellationDoesNotCascade() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ domain.EntityQuery) (*domain.SanctionsResult, error) {
			s.NoError(ctx.Err(), "provider context carries only its own deadline")
			return sanctionsMiss(), nil
		})
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil)

	result, err := s.aggregator.Resolve(ctx, q)
	s.Require().NoError(err)
	s.Nil(result.Sanctions.Failure)
}

func (s *AggregatorSuite) TestConcurrentIdenticalResolvesShareWork() {
	q := domain.MustEntityQuery("", "Acme", nil, nil)
	release := make(chan struct{})
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, domain.EntityQuery) (*domain.SanctionsResult, error) {
			<-release
			return sanctionsMiss(), nil
		}).Times(1)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil).Times(1)

	agg, err := NewAggregator(s.sanctions, s.search, s.cache,
		WithClock(s.clock),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithTimeouts(5*time.Second, 5*time.Second),
	)
	s.Require().NoError(err)

	const callers = 5
	results := make([]*domain.AggregatedResult, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = agg.Resolve(context.Background(), q)
		}()
	}
	time.Sleep(100 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		s.Require().NotNil(r)
		s.Equal(results[0].ComputedAt, r.ComputedAt)
	}
}

// =============================================================================
// Batch + Aggregator Tests
// =============================================================================

func (s *AggregatorSuite) TestBatchPartialFailureIsolation() {
	s.sanctions.EXPECT().Lookup(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, q domain.EntityQuery) (*domain.SanctionsResult, error) {
			if q.Name() == "Slow Corp" {
				return blockUntilDeadline(ctx, q)
			}
			return sanctionsMiss(), nil
		}).Times(3)
	s.search.EXPECT().Search(gomock.Any(), gomock.Any()).Return(fraudHit(), nil).Times(3)

	batch, err := NewBatch(s.aggregator, WithWorkers(2))
	s.Require().NoError(err)

	items, err := batch.Process(context.Background(), []domain.RawInput{
		domain.NameInput("First Corp"),
		domain.NameInput("Slow Corp"),
		domain.NameInput("Third Corp"),
	})
	s.Require().NoError(err)
	s.Require().Len(items, 3)

	for i, item := range items {
		s.Require().NoError(item.Err)
		s.Equal(i, item.Index)
		s.Equal(1, item.Result.Risk.Score, "search factor present at %d", i)
	}
	s.Nil(items[0].Result.Sanctions.Failure)
	s.Equal(domain.ReasonTimeout, items[1].Result.Sanctions.Failure.Reason)
	s.Nil(items[2].Result.Sanctions.Failure)
	s.Equal("Slow Corp", items[1].Result.Entity.Name())
}
