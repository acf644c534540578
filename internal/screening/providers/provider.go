package providers

//go:generate mockgen -source=provider.go -destination=mocks/mocks.go -package=mocks

import (
	"context"

	"screener/internal/screening/domain"
)

// Provider IDs used in errors, logs and metrics.
const (
	SanctionsProviderID = "opensanctions"
	SearchProviderID    = "serper"
)

// SanctionsClient looks an entity up in a sanctions registry.
//
// Implementations return a *ProviderError on failure and honour the context
// deadline; the caller owns the timeout.
type SanctionsClient interface {
	Lookup(ctx context.Context, q domain.EntityQuery) (*domain.SanctionsResult, error)
	IsConfigured() bool
}

// SearchClient runs a web search restricted to the client's trusted domains.
type SearchClient interface {
	Search(ctx context.Context, queryText string) (*domain.SearchResult, error)
	IsConfigured() bool
}
