// Package domain contains the pure domain model for entity screening.
//
// # Screening Bounded Context
//
// Screening checks a person or organization against a sanctions registry and
// cross-references it with web search restricted to trusted domains. The two
// provider outcomes are merged into one AggregatedResult carrying a
// deterministic RiskAssessment.
//
// # Types
//
//	EntityQuery       canonical, immutable lookup request (id and/or name)
//	RawInput          tagged variant produced at the transport boundary
//	CacheKey          order- and case-independent key for an EntityQuery
//	SanctionsResult   registry matches for one lookup
//	SearchResult      trusted-domain hits for one search
//	RiskAssessment    score, level and human-readable factors
//	AggregatedResult  everything above plus computed_at
//
// Key Invariants:
//   - An EntityQuery always has an id or a name
//   - Semantically equal queries produce the same CacheKey
//   - Score maps to exactly one level for every non-negative score
//   - Provider failures never contribute risk factors
//
// # Domain Purity
//
//	✓ No I/O (no cache, HTTP or clock access)
//	✓ No context.Context in function signatures
//	✓ No time.Now() calls - timestamps are received as parameters
//
// The orchestrator package owns timing, caching and provider coordination.
package domain
