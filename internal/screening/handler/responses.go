package handler

import (
	"time"

	"screener/internal/screening/domain"
	"screener/internal/screening/service"
	"screener/internal/screening/store"
	dErrors "screener/pkg/domain-errors"
)

// APIVersion is reported on every response body.
const APIVersion = "2.0.0"

// CheckResponse is the HTTP response for POST /check.
type CheckResponse struct {
	Success       bool           `json:"success"`
	BatchID       string         `json:"batch_id"`
	TotalEntities int            `json:"total_entities"`
	Succeeded     int            `json:"succeeded"`
	Results       []ItemResponse `json:"results"`
	ReceivedAt    time.Time      `json:"received_at"`
	APIVersion    string         `json:"api_version"`
}

// ItemResponse is the outcome for one request position.
type ItemResponse struct {
	Index   int                      `json:"index"`
	Success bool                     `json:"success"`
	Result  *domain.AggregatedResult `json:"result,omitempty"`
	Error   *ItemError               `json:"error,omitempty"`
}

// ItemError describes why one entity could not be screened.
type ItemError struct {
	Code    string `json:"code"`
	Message string `json:"message,omitempty"`
}

// FromCheckResult converts a service CheckResult to an HTTP response.
func FromCheckResult(result *service.CheckResult, receivedAt time.Time) *CheckResponse {
	resp := &CheckResponse{
		Success:       true,
		BatchID:       result.BatchID.String(),
		TotalEntities: len(result.Items),
		Succeeded:     result.Succeeded(),
		Results:       make([]ItemResponse, len(result.Items)),
		ReceivedAt:    receivedAt.UTC(),
		APIVersion:    APIVersion,
	}
	for i, item := range result.Items {
		if item.Err != nil {
			resp.Results[i] = ItemResponse{Index: item.Index, Error: itemError(item.Err)}
			continue
		}
		resp.Results[i] = ItemResponse{Index: item.Index, Success: true, Result: item.Result}
	}
	return resp
}

// itemError never exposes messages of internal errors.
func itemError(err error) *ItemError {
	de, ok := dErrors.As(err)
	if !ok || de.Code == dErrors.CodeInternal {
		return &ItemError{Code: string(dErrors.CodeInternal)}
	}
	return &ItemError{Code: string(de.Code), Message: de.Message}
}

// HealthResponse is the HTTP response for GET /health.
type HealthResponse struct {
	Status           string         `json:"status"`
	Services         HealthServices `json:"services"`
	Cache            store.Stats    `json:"cache"`
	CacheBreakerOpen bool           `json:"cache_breaker_open"`
	SearchProviders  []string       `json:"search_providers"`
	TrustedDomains   []string       `json:"trusted_domains"`
	CheckedAt        time.Time      `json:"checked_at"`
	APIVersion       string         `json:"api_version"`
}

// HealthServices summarizes each dependency as a single word.
type HealthServices struct {
	Cache         string `json:"cache"`
	OpenSanctions string `json:"opensanctions"`
	Search        string `json:"search"`
}

// FromHealthReport converts a service HealthReport to an HTTP response.
func FromHealthReport(r service.HealthReport, sanctionsID, searchID string) *HealthResponse {
	resp := &HealthResponse{
		Status: r.Status,
		Services: HealthServices{
			Cache:         connectedWord(r.Cache.Connected),
			OpenSanctions: configuredWord(r.Providers[sanctionsID]),
			Search:        configuredWord(r.Providers[searchID]),
		},
		Cache:            r.Cache,
		CacheBreakerOpen: r.CacheBreakerOpen,
		SearchProviders:  []string{},
		TrustedDomains:   r.TrustedDomains,
		CheckedAt:        r.CheckedAt,
		APIVersion:       APIVersion,
	}
	if r.Providers[searchID] {
		resp.SearchProviders = append(resp.SearchProviders, searchID)
	}
	if resp.TrustedDomains == nil {
		resp.TrustedDomains = []string{}
	}
	return resp
}

func connectedWord(ok bool) string {
	if ok {
		return "connected"
	}
	return "disconnected"
}

func configuredWord(ok bool) string {
	if ok {
		return "configured"
	}
	return "not_configured"
}

// ClearCacheResponse is the HTTP response for POST /clear-cache.
type ClearCacheResponse struct {
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Removed    int    `json:"removed"`
	APIVersion string `json:"api_version"`
}

// InvalidateResponse is the HTTP response for DELETE /cache.
type InvalidateResponse struct {
	Success    bool   `json:"success"`
	Key        string `json:"key"`
	APIVersion string `json:"api_version"`
}
