package httptransport

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	screeninghandler "screener/internal/screening/handler"
	"screener/pkg/platform/middleware/auth"
	"screener/pkg/testutil"
)

func TestRouterScaffold(t *testing.T) {
	testutil.Given(t, "a router without API keys or admin token", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		router := NewRouter(RouterConfig{
			Screening: screeninghandler.New(&fakeService{}, logger),
			Logger:    logger,
			APIKeys:   auth.NewKeySet(nil),
		})

		testutil.When(t, "calling POST /check without credentials", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/check", strings.NewReader(`{"name":"Acme"}`))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "the open deployment answers", func(t *testing.T) {
				if rec.Code != http.StatusOK {
					t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
				}
			})
		})

		testutil.When(t, "calling POST /clear-cache", func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/clear-cache", nil)
			req.Header.Set("Authorization", "Bearer anything")
			rec := httptest.NewRecorder()

			router.ServeHTTP(rec, req)

			testutil.Then(t, "administration stays disabled", func(t *testing.T) {
				if rec.Code != http.StatusForbidden {
					t.Fatalf("expected status %d, got %d", http.StatusForbidden, rec.Code)
				}
			})
		})

		testutil.When(t, "calling GET /metrics without a gatherer", func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

			testutil.Then(t, "the route is not mounted", func(t *testing.T) {
				if rec.Code != http.StatusNotFound {
					t.Fatalf("expected status %d, got %d", http.StatusNotFound, rec.Code)
				}
			})
		})
	})
}
