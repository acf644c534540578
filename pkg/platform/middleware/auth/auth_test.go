package auth

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"screener/pkg/requestcontext"
)

func guarded(keys *KeySet, seen *string) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return RequireAPIKey(keys, logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = requestcontext.Caller(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestKeySet(t *testing.T) {
	ks := NewKeySet([]string{"alpha", " ", "beta"})
	require.True(t, ks.Enabled())

	la, ok := ks.Match("alpha")
	require.True(t, ok)
	lb, ok := ks.Match("beta")
	require.True(t, ok)
	assert.NotEqual(t, la, lb)
	assert.True(t, strings.HasPrefix(la, "key:"))
	assert.NotContains(t, la, "alpha")

	_, ok = ks.Match("gamma")
	assert.False(t, ok)
	_, ok = ks.Match("")
	assert.False(t, ok)

	assert.False(t, NewKeySet(nil).Enabled())
}

func TestRequireAPIKey(t *testing.T) {
	keys := NewKeySet([]string{"alpha"})

	cases := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"header", func(r *http.Request) { r.Header.Set("X-API-Key", "alpha") }, http.StatusOK},
		{"bearer", func(r *http.Request) { r.Header.Set("Authorization", "Bearer alpha") }, http.StatusOK},
		{"query", func(r *http.Request) { r.URL.RawQuery = "api_key=alpha" }, http.StatusOK},
		{"missing", func(*http.Request) {}, http.StatusUnauthorized},
		{"wrong", func(r *http.Request) { r.Header.Set("X-API-Key", "beta") }, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var caller string
			req := httptest.NewRequest(http.MethodPost, "/check", nil)
			tc.setup(req)
			rec := httptest.NewRecorder()
			guarded(keys, &caller).ServeHTTP(rec, req)
			assert.Equal(t, tc.status, rec.Code)
			if tc.status == http.StatusOK {
				assert.True(t, strings.HasPrefix(caller, "key:"))
			}
		})
	}

	t.Run("open when no keys configured", func(t *testing.T) {
		var caller string
		rec := httptest.NewRecorder()
		guarded(NewKeySet(nil), &caller).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/check", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "anonymous", caller)
	})
}
