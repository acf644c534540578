package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"screener/internal/screening/domain"
	"screener/internal/screening/metrics"
	dErrors "screener/pkg/domain-errors"
)

// DefaultWorkers bounds concurrent entity resolutions per batch.
const DefaultWorkers = 8

// Resolver resolves one normalized query. *Aggregator implements it.
type Resolver interface {
	Resolve(ctx context.Context, q domain.EntityQuery) (*domain.AggregatedResult, error)
}

// Item is the outcome for one batch position: exactly one of Result or Err.
type Item struct {
	Index  int
	Result *domain.AggregatedResult
	Err    error
}

// Batch runs a Resolver over many inputs with a fixed worker limit.
type Batch struct {
	resolver     Resolver
	maxBatchSize int
	workers      int
	logger       *slog.Logger
	metrics      *metrics.Metrics
}

type BatchOption func(*Batch)

func WithMaxBatchSize(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.maxBatchSize = n
		}
	}
}

func WithWorkers(n int) BatchOption {
	return func(b *Batch) {
		if n > 0 {
			b.workers = n
		}
	}
}

func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *Batch) {
		if logger != nil {
			b.logger = logger
		}
	}
}

func WithBatchMetrics(m *metrics.Metrics) BatchOption {
	return func(b *Batch) {
		b.metrics = m
	}
}

func NewBatch(resolver Resolver, opts ...BatchOption) (*Batch, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	b := &Batch{
		resolver:     resolver,
		maxBatchSize: domain.DefaultMaxBatchSize,
		workers:      DefaultWorkers,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// MaxBatchSize is the configured per-request entity limit.
func (b *Batch) MaxBatchSize() int {
	return b.maxBatchSize
}

// Process resolves every input and returns one Item per input, in input
// order. The only error is a validation error for an empty or oversized
// batch, raised before any work starts.
func (b *Batch) Process(ctx context.Context, inputs []domain.RawInput) ([]Item, error) {
	if err := domain.ValidateBatchSize(len(inputs), b.maxBatchSize); err != nil {
		return nil, err
	}
	b.metrics.ObserveBatchSize(len(inputs))

	items := make([]Item, len(inputs))
	var g errgroup.Group
	g.SetLimit(b.workers)
	for i, in := range inputs {
		g.Go(func() error {
			items[i] = b.processOne(ctx, i, in)
			return nil
		})
	}
	_ = g.Wait()
	return items, nil
}

func (b *Batch) processOne(ctx context.Context, index int, in domain.RawInput) (item Item) {
	item.Index = index
	defer func() {
		if r := recover(); r != nil {
			b.logger.ErrorContext(ctx, "batch item panicked",
				"index", index,
				"panic", fmt.Sprint(r),
				"stack", string(debug.Stack()),
			)
			b.metrics.IncrementBatchFailure("panic")
			item = Item{Index: index, Err: dErrors.New(dErrors.CodeInternal, "entity processing failed")}
		}
	}()

	q, err := domain.Normalize(in)
	if err != nil {
		b.metrics.IncrementBatchFailure("validation")
		return Item{Index: index, Err: err}
	}
	result, err := b.resolver.Resolve(ctx, q)
	if err != nil {
		b.metrics.IncrementBatchFailure("resolve")
		return Item{Index: index, Err: err}
	}
	return Item{Index: index, Result: result}
}
