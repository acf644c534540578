package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"screener/internal/platform/metrics"
	screeninghandler "screener/internal/screening/handler"
	"screener/pkg/platform/httputil"
	"screener/pkg/platform/middleware/admin"
	"screener/pkg/platform/middleware/auth"
	"screener/pkg/platform/middleware/metadata"
	request "screener/pkg/platform/middleware/request"
	"screener/pkg/platform/middleware/requesttime"
)

// RouterConfig carries everything NewRouter mounts.
type RouterConfig struct {
	Screening      *screeninghandler.Handler
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
	Gatherer       prometheus.Gatherer
	APIKeys        *auth.KeySet
	AdminToken     string
	RequestTimeout time.Duration
}

// NewRouter wires all public endpoints behind the shared middleware chain.
// Health and metrics stay unauthenticated so probes and scrapers work
// without credentials.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(request.Recovery(cfg.Logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.ClientMetadata)
	r.Use(request.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		r.Use(cfg.Metrics.LatencyMiddleware)
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusNotFound, map[string]string{
			"error":       "not_found",
			"api_version": screeninghandler.APIVersion,
		})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, map[string]string{
			"error":       "method_not_allowed",
			"api_version": screeninghandler.APIVersion,
		})
	})

	if cfg.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{}))
	}

	cfg.Screening.RegisterHealth(r)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(request.Timeout(cfg.RequestTimeout))
		}
		r.Use(auth.RequireAPIKey(cfg.APIKeys, cfg.Logger))
		cfg.Screening.Register(r)
	})

	r.Group(func(r chi.Router) {
		r.Use(admin.RequireAdminToken(cfg.AdminToken, cfg.Logger))
		cfg.Screening.RegisterAdmin(r)
	})

	return r
}
