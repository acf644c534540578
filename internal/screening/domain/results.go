package domain

import "time"

// FailureReason is the normalized cause of a provider failure.
type FailureReason string

const (
	ReasonTimeout       FailureReason = "timeout"
	ReasonUpstreamError FailureReason = "upstream_error"
	ReasonNotConfigured FailureReason = "not_configured"
)

// Failure records why a provider produced no result.
type Failure struct {
	Reason  FailureReason `json:"reason"`
	Message string        `json:"message,omitempty"`
}

// SanctionsMatch is one registry record returned for a lookup.
type SanctionsMatch struct {
	ID        string   `json:"id"`
	Caption   string   `json:"caption"`
	Schema    string   `json:"schema,omitempty"`
	Datasets  []string `json:"datasets,omitempty"`
	Countries []string `json:"countries,omitempty"`
	Topics    []string `json:"topics,omitempty"`
	Score     float64  `json:"score,omitempty"`
}

// SanctionsResult is the registry answer for one entity.
type SanctionsResult struct {
	Found    bool             `json:"found"`
	Records  []SanctionsMatch `json:"records"`
	RawTotal int              `json:"raw_total"`
}

// SearchHit is one trusted-domain web search result.
type SearchHit struct {
	Title      string `json:"title"`
	URL        string `json:"url"`
	Snippet    string `json:"snippet"`
	Domain     string `json:"domain"`
	SourceName string `json:"source_name"`
}

// SearchResult is the filtered web search answer for one entity.
type SearchResult struct {
	Hits      []SearchHit `json:"hits"`
	QueryUsed string      `json:"query_used"`
}

// SanctionsOutcome holds exactly one of Result or Failure.
type SanctionsOutcome struct {
	Result  *SanctionsResult `json:"result,omitempty"`
	Failure *Failure         `json:"failure,omitempty"`
}

// SearchOutcome holds exactly one of Result or Failure.
type SearchOutcome struct {
	Result  *SearchResult `json:"result,omitempty"`
	Failure *Failure      `json:"failure,omitempty"`
}

// SanctionsSucceeded wraps a registry result.
func SanctionsSucceeded(r *SanctionsResult) SanctionsOutcome {
	return SanctionsOutcome{Result: r}
}

// SanctionsFailed wraps a registry failure.
func SanctionsFailed(reason FailureReason, msg string) SanctionsOutcome {
	return SanctionsOutcome{Failure: &Failure{Reason: reason, Message: msg}}
}

// SearchSucceeded wraps a search result.
func SearchSucceeded(r *SearchResult) SearchOutcome {
	return SearchOutcome{Result: r}
}

// SearchFailed wraps a search failure.
func SearchFailed(reason FailureReason, msg string) SearchOutcome {
	return SearchOutcome{Failure: &Failure{Reason: reason, Message: msg}}
}

// IsMatch reports a successful lookup with at least one record.
func (o SanctionsOutcome) IsMatch() bool {
	return o.Result != nil && o.Result.Found
}

// RecordCount is 0 on failure.
func (o SanctionsOutcome) RecordCount() int {
	if o.Result == nil {
		return 0
	}
	return len(o.Result.Records)
}

// HitCount is 0 on failure.
func (o SearchOutcome) HitCount() int {
	if o.Result == nil {
		return 0
	}
	return len(o.Result.Hits)
}

// AggregatedResult is the full screening answer for one entity.
type AggregatedResult struct {
	Entity     EntityQuery      `json:"entity"`
	Sanctions  SanctionsOutcome `json:"sanctions"`
	Search     SearchOutcome    `json:"web_search"`
	Risk       RiskAssessment   `json:"risk"`
	Found      bool             `json:"found"`
	Summary    string           `json:"summary"`
	ComputedAt time.Time        `json:"computed_at"`
}

// Assemble builds an AggregatedResult from both outcomes and the scorer's
// assessment. computedAt is supplied by the caller.
func Assemble(q EntityQuery, sanctions SanctionsOutcome, search SearchOutcome, risk RiskAssessment, computedAt time.Time) *AggregatedResult {
	return &AggregatedResult{
		Entity:     q,
		Sanctions:  sanctions,
		Search:     search,
		Risk:       risk,
		Found:      sanctions.IsMatch() || search.HitCount() > 0,
		Summary:    Summarize(q, sanctions, search),
		ComputedAt: computedAt,
	}
}

// CacheEntry is a stored AggregatedResult with its freshness metadata.
type CacheEntry struct {
	Value      AggregatedResult `json:"value"`
	FetchedAt  time.Time        `json:"fetched_at"`
	TTLSeconds int64            `json:"ttl_seconds"`
}

// ExpiresAt is the instant after which the entry is no longer served.
func (e CacheEntry) ExpiresAt() time.Time {
	return e.FetchedAt.Add(time.Duration(e.TTLSeconds) * time.Second)
}

// IsExpired reports whether the entry is stale at now.
func (e CacheEntry) IsExpired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}
