package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"screener/internal/platform/config"
	"screener/internal/platform/httpserver"
	"screener/internal/platform/logger"
	platformmetrics "screener/internal/platform/metrics"
	"screener/internal/platform/redis"
	"screener/internal/screening/cache"
	"screener/internal/screening/domain"
	screeninghandler "screener/internal/screening/handler"
	screeningmetrics "screener/internal/screening/metrics"
	"screener/internal/screening/orchestrator"
	"screener/internal/screening/providers/opensanctions"
	"screener/internal/screening/providers/serper"
	"screener/internal/screening/service"
	"screener/internal/screening/store"
	httptransport "screener/internal/transport/http"
	"screener/pkg/platform/circuit"
	"screener/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal/screening.
func main() {
	cfg, err := config.FromEnv()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)
	slog.SetDefault(log)
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}

	if err := run(cfg, log); err != nil {
		log.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	screenMetrics := screeningmetrics.New(reg)
	httpMetrics := platformmetrics.New(reg)

	backend, closeBackend, err := buildStore(context.Background(), cfg.Redis, log)
	if err != nil {
		return err
	}
	defer closeBackend()

	resultCache, err := cache.New(backend,
		cache.WithTTL(cfg.CacheTTL),
		cache.WithLogger(log),
		cache.WithMetrics(screenMetrics),
		cache.WithBreaker(circuit.New("cache",
			circuit.WithFailureThreshold(5),
			circuit.WithCooldown(30*time.Second),
		)),
	)
	if err != nil {
		return err
	}

	sanctions := opensanctions.New(cfg.OpenSanctionsAPIKey,
		opensanctions.WithBaseURL(cfg.OpenSanctionsURL),
		opensanctions.WithRateLimit(cfg.RateLimitPerMinute),
		opensanctions.WithLogger(log),
	)
	search := serper.New(cfg.SerperAPIKey,
		serper.WithEndpoint(cfg.SerperURL),
		serper.WithTrustedDomains(cfg.Rules.TrustedDomains),
		serper.WithResultLimit(cfg.SearchResultsLimit),
		serper.WithRateLimit(cfg.RateLimitPerMinute),
		serper.WithLogger(log),
	)

	aggregator, err := orchestrator.NewAggregator(sanctions, search, resultCache,
		orchestrator.WithScorer(domain.NewScorer(cfg.Rules.RiskKeywords)),
		orchestrator.WithTimeouts(cfg.SanctionsTimeout, cfg.SearchTimeout),
		orchestrator.WithLogger(log),
		orchestrator.WithMetrics(screenMetrics),
	)
	if err != nil {
		return err
	}
	batch, err := orchestrator.NewBatch(aggregator,
		orchestrator.WithMaxBatchSize(cfg.MaxEntitiesPerRequest),
		orchestrator.WithWorkers(cfg.Workers),
		orchestrator.WithBatchLogger(log),
		orchestrator.WithBatchMetrics(screenMetrics),
	)
	if err != nil {
		return err
	}
	svc, err := service.New(batch, resultCache, sanctions, search,
		service.WithLogger(log),
		service.WithTrustedDomains(search.TrustedDomains()),
	)
	if err != nil {
		return err
	}

	slowest := max(cfg.SanctionsTimeout, cfg.SearchTimeout)
	writeTimeout := httpserver.BatchWriteTimeout(cfg.MaxEntitiesPerRequest, cfg.Workers, slowest)
	router := httptransport.NewRouter(httptransport.RouterConfig{
		Screening:      screeninghandler.New(svc, log),
		Logger:         log,
		Metrics:        httpMetrics,
		Gatherer:       reg,
		APIKeys:        auth.NewKeySet(cfg.APIKeys),
		AdminToken:     cfg.AdminToken,
		RequestTimeout: writeTimeout,
	})
	srv := httpserver.New(cfg.Addr, router, writeTimeout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting screener", "addr", cfg.Addr, "redis", cfg.Redis.URL != "", "max_entities", cfg.MaxEntitiesPerRequest)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// buildStore picks Redis when REDIS_URL is set and the in-process store
// otherwise. An unreachable Redis only logs a warning: the cache adapter
// turns the outage into misses until the server comes back.
func buildStore(ctx context.Context, cfg config.RedisConfig, log *slog.Logger) (store.Store, func(), error) {
	rc, err := redis.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	if rc == nil {
		return store.NewInMemoryStore(), func() {}, nil
	}
	if err := rc.Health(ctx); err != nil {
		log.Warn("redis unreachable at startup; serving without cache until it recovers", "error", err)
	}
	return store.NewRedisStore(rc.Client), func() {
		if err := rc.Close(); err != nil {
			log.Warn("closing redis client", "error", err)
		}
	}, nil
}
