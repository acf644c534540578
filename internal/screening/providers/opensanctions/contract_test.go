package opensanctions

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"screener/internal/screening/domain"
	"screener/internal/screening/providers/contract"
)

func TestSanctionsContract(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/search/default", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("q") == "Vladimir Putin" {
			_, _ = io.WriteString(w, matchBody)
			return
		}
		_, _ = io.WriteString(w, emptyBody)
	})
	mux.HandleFunc("/search/sanctions", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, emptyBody)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	client := New("k", WithBaseURL(server.URL))

	t.Run("match", (&contract.SanctionsContract{
		Client:   client,
		Query:    domain.MustEntityQuery("", "Vladimir Putin", nil, nil),
		WantHits: true,
	}).Run)

	t.Run("no match", (&contract.SanctionsContract{
		Client:   client,
		Query:    domain.MustEntityQuery("", "Nobody", nil, nil),
		WantHits: false,
	}).Run)
}
