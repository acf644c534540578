// Package contract holds reusable conformance checks for provider clients.
package contract

import (
	"context"
	"testing"

	"screener/internal/screening/domain"
	"screener/internal/screening/providers"
)

// SanctionsContract validates a SanctionsClient against expected behaviour.
type SanctionsContract struct {
	Client   providers.SanctionsClient
	Query    domain.EntityQuery
	WantHits bool
}

// Run checks result shape invariants: Found agrees with records and totals.
func (c *SanctionsContract) Run(t *testing.T) {
	t.Helper()
	result, err := c.Client.Lookup(context.Background(), c.Query)
	if err != nil {
		t.Fatalf("sanctions lookup failed: %v", err)
	}
	if result.Found != c.WantHits {
		t.Errorf("expected found=%v, got %v", c.WantHits, result.Found)
	}
	if result.Found && len(result.Records) == 0 {
		t.Error("found result has no records")
	}
	if result.RawTotal < len(result.Records) {
		t.Errorf("raw total %d below record count %d", result.RawTotal, len(result.Records))
	}
	for i, r := range result.Records {
		if r.ID == "" {
			t.Errorf("record %d has no id", i)
		}
	}
}

// SearchContract validates a SearchClient against its allow-list.
type SearchContract struct {
	Client    providers.SearchClient
	QueryText string
	MaxHits   int
	IsTrusted func(url string) bool
}

// Run checks that hits are unique, trusted and bounded.
func (c *SearchContract) Run(t *testing.T) {
	t.Helper()
	result, err := c.Client.Search(context.Background(), c.QueryText)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if result.QueryUsed == "" {
		t.Error("query_used not set")
	}
	if c.MaxHits > 0 && len(result.Hits) > c.MaxHits {
		t.Errorf("expected at most %d hits, got %d", c.MaxHits, len(result.Hits))
	}
	seen := make(map[string]struct{}, len(result.Hits))
	for _, h := range result.Hits {
		if _, dup := seen[h.URL]; dup {
			t.Errorf("duplicate hit %s", h.URL)
		}
		seen[h.URL] = struct{}{}
		if c.IsTrusted != nil && !c.IsTrusted(h.URL) {
			t.Errorf("untrusted hit %s", h.URL)
		}
		if h.SourceName == "" {
			t.Errorf("hit %s has no source name", h.URL)
		}
	}
}

// ErrorContractTest validates that provider errors follow the taxonomy
type ErrorContractTest struct {
	Name          string
	Call          func(ctx context.Context) error
	ExpectedError providers.ErrorCategory
	ExpectedRetry bool
	ExpectedCause domain.FailureReason
}

// Run executes an error contract test
func (ect *ErrorContractTest) Run(t *testing.T) {
	t.Helper()
	err := ect.Call(context.Background())
	if err == nil {
		t.Fatal("expected error but got none")
	}

	if category := providers.GetCategory(err); category != ect.ExpectedError {
		t.Errorf("expected error category %s, got %s", ect.ExpectedError, category)
	}
	if isRetryable := providers.IsRetryable(err); isRetryable != ect.ExpectedRetry {
		t.Errorf("expected retryable=%v, got %v", ect.ExpectedRetry, isRetryable)
	}
	if ect.ExpectedCause != "" {
		if reason := providers.ReasonFor(err); reason != ect.ExpectedCause {
			t.Errorf("expected reason %s, got %s", ect.ExpectedCause, reason)
		}
	}
}
