package admin

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "screener/pkg/platform/middleware/request"
)

// RequireAdminToken accepts the token as "Authorization: Bearer <token>" or
// "X-Admin-Token: <token>". An empty expected token disables the routes.
func RequireAdminToken(expectedToken string, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			if expectedToken == "" {
				logger.WarnContext(ctx, "admin endpoint called but no admin token is configured",
					"request_id", request.GetRequestID(ctx),
				)
				writeError(w, http.StatusForbidden, "forbidden", "admin endpoints are disabled")
				return
			}

			token := presentedToken(r)
			if token == "" {
				logger.WarnContext(ctx, "admin token missing",
					"request_id", request.GetRequestID(ctx),
				)
				writeError(w, http.StatusUnauthorized, "unauthorized", "authorization required")
				return
			}
			// Use constant-time comparison to prevent timing attacks
			if subtle.ConstantTimeCompare([]byte(token), []byte(expectedToken)) != 1 {
				logger.WarnContext(ctx, "admin token mismatch",
					"request_id", request.GetRequestID(ctx),
				)
				writeError(w, http.StatusForbidden, "forbidden", "invalid admin token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func presentedToken(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(r.Header.Get("X-Admin-Token"))
}

func writeError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, code, description))
}
