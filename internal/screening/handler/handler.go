package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"screener/internal/screening/domain"
	"screener/internal/screening/providers"
	"screener/internal/screening/service"
	"screener/pkg/platform/httputil"
	"screener/pkg/requestcontext"
)

// Service defines the interface for screening operations.
type Service interface {
	Check(ctx context.Context, inputs []domain.RawInput) (*service.CheckResult, error)
	Health(ctx context.Context) service.HealthReport
	ClearCache(ctx context.Context) (int, error)
	Invalidate(ctx context.Context, in domain.RawInput) (domain.CacheKey, error)
}

// Handler wires screening endpoints to the screening service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a screening handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Register mounts the screening endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/check", h.HandleCheck)
}

// RegisterHealth mounts the unauthenticated health endpoint.
func (h *Handler) RegisterHealth(r chi.Router) {
	r.Get("/health", h.HandleHealth)
}

// RegisterAdmin mounts cache administration endpoints. Callers wrap r with
// the admin token middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/clear-cache", h.HandleClearCache)
	r.Delete("/cache", h.HandleInvalidate)
}

// HandleCheck handles POST /check requests.
func (h *Handler) HandleCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := requestcontext.Now(ctx)

	req, ok := httputil.DecodeAndPrepare[CheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Check(ctx, req.Inputs())
	if err != nil {
		h.logger.WarnContext(ctx, "screening batch rejected",
			"request_id", requestID,
			"caller", requestcontext.Caller(ctx),
			"entities", len(req.Inputs()),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "screening batch completed",
		"request_id", requestID,
		"caller", requestcontext.Caller(ctx),
		"batch_id", result.BatchID,
		"entities", len(result.Items),
		"succeeded", result.Succeeded(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromCheckResult(result, start))
}

// HandleHealth handles GET /health requests. A degraded service answers 503
// so load balancers stop routing to it.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	report := h.service.Health(r.Context())
	status := http.StatusOK
	if report.Status != service.StatusHealthy {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, FromHealthReport(report, providers.SanctionsProviderID, providers.SearchProviderID))
}

// HandleClearCache handles POST /clear-cache requests.
func (h *Handler) HandleClearCache(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	removed, err := h.service.ClearCache(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "cache clear failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "cache cleared",
		"request_id", requestID,
		"removed", removed,
	)
	httputil.WriteJSON(w, http.StatusOK, &ClearCacheResponse{
		Success:    true,
		Message:    "Cache cleared successfully",
		Removed:    removed,
		APIVersion: APIVersion,
	})
}

// HandleInvalidate handles DELETE /cache requests.
func (h *Handler) HandleInvalidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[InvalidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	key, err := h.service.Invalidate(ctx, req.Input())
	if err != nil {
		h.logger.WarnContext(ctx, "cache invalidation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, &InvalidateResponse{
		Success:    true,
		Key:        key.String(),
		APIVersion: APIVersion,
	})
}
