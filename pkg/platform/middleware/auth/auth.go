// Package auth guards screening routes with static API keys.
package auth

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	request "screener/pkg/platform/middleware/request"
	"screener/pkg/requestcontext"
)

// KeySet holds the accepted API keys. Keys are compared in constant time and
// never logged; callers are identified by a short hash label.
type KeySet struct {
	keys   [][]byte
	labels []string
}

// NewKeySet builds a KeySet, ignoring blank keys.
func NewKeySet(keys []string) *KeySet {
	ks := &KeySet{}
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		sum := sha256.Sum256([]byte(k))
		ks.keys = append(ks.keys, []byte(k))
		ks.labels = append(ks.labels, "key:"+hex.EncodeToString(sum[:4]))
	}
	return ks
}

// Enabled reports whether any key is configured.
func (ks *KeySet) Enabled() bool {
	return ks != nil && len(ks.keys) > 0
}

// Match returns the caller label for a presented key.
func (ks *KeySet) Match(presented string) (string, bool) {
	if presented == "" {
		return "", false
	}
	label, found := "", 0
	for i, k := range ks.keys {
		if subtle.ConstantTimeCompare([]byte(presented), k) == 1 {
			label = ks.labels[i]
			found = 1
		}
	}
	return label, found == 1
}

// writeJSONError writes a JSON error response with the given status code and error details.
func writeJSONError(w http.ResponseWriter, status int, errCode, errDesc string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(fmt.Appendf(nil, `{"error":"%s","error_description":"%s"}`, errCode, errDesc))
}

// presentedKey reads X-API-Key, then a Bearer token, then the api_key query
// parameter.
func presentedKey(r *http.Request) string {
	if k := strings.TrimSpace(r.Header.Get("X-API-Key")); k != "" {
		return k
	}
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(r.URL.Query().Get("api_key"))
}

// RequireAPIKey rejects requests without a configured key. With no keys
// configured every request passes as "anonymous".
func RequireAPIKey(keys *KeySet, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !keys.Enabled() {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			presented := presentedKey(r)
			if presented == "" {
				logger.WarnContext(ctx, "unauthorized access - missing api key",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "API key required")
				return
			}
			label, ok := keys.Match(presented)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - invalid api key",
					"request_id", request.GetRequestID(ctx),
				)
				writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key")
				return
			}

			ctx = requestcontext.WithCaller(ctx, label)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
