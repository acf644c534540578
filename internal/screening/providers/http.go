package providers

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// maxResponseBytes caps how much of an upstream body is read.
const maxResponseBytes = 4 << 20

// DefaultHTTPClient is shared by provider clients that are not given one.
// Per-call deadlines come from the request context; the client timeout is a
// backstop for callers that pass a context without one.
func DefaultHTTPClient() *http.Client {
	return &http.Client{
		Timeout: 30 * time.Second,
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// NewLimiter converts a per-minute budget into a token bucket. A
// non-positive budget disables limiting.
func NewLimiter(perMinute int) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	burst := max(perMinute/10, 1)
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst)
}

// DoJSON executes req and decodes a 2xx JSON body into out. Every failure is
// returned as a *ProviderError.
func DoJSON(client *http.Client, req *http.Request, providerID string, out any) error {
	resp, err := client.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return FromTransport(providerID, ctxErr)
		}
		return FromTransport(providerID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return FromStatus(providerID, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return FromTransport(providerID, ctxErr)
		}
		return NewProviderError(ErrorBadData, providerID, "invalid response body", err)
	}
	return nil
}
