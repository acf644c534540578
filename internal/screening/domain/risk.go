package domain

import (
	"fmt"
	"strings"
)

// RiskLevel classifies a RiskAssessment score.
type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// Scoring weights.
const (
	SanctionsMatchWeight = 3
	KeywordHitWeight     = 1

	mediumThreshold = 1
	highThreshold   = 3
)

// FactorSanctionsMatch is the factor recorded for a confirmed registry match.
const FactorSanctionsMatch = "Found in sanctions database"

// DefaultRiskKeywords are matched against web search titles and snippets
// when no rules file overrides them. Order matters: the first matching
// keyword names the factor.
var DefaultRiskKeywords = []string{
	"sanction",
	"money laundering",
	"fraud",
	"terrorist",
	"embargo",
	"blacklist",
	"criminal",
	"indicted",
	"corruption",
	"bribery",
	"ofac",
	"compliance",
}

// RiskAssessment is the deterministic risk verdict for one entity.
type RiskAssessment struct {
	Score   int       `json:"score"`
	Level   RiskLevel `json:"level"`
	Factors []string  `json:"factors"`
}

// LevelFor maps a score to its level: 0 low, 1-2 medium, 3+ high.
// Negative scores cannot be produced by the Scorer and are treated as low.
func LevelFor(score int) RiskLevel {
	switch {
	case score >= highThreshold:
		return RiskHigh
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

// Scorer computes risk from provider outcomes. It holds only immutable
// configuration and is safe for concurrent use.
type Scorer struct {
	keywords []string
}

// NewScorer builds a Scorer from an ordered keyword list. Keywords are
// lower-cased and trimmed; blanks and duplicates are dropped. An empty list
// falls back to DefaultRiskKeywords.
func NewScorer(keywords []string) *Scorer {
	if len(keywords) == 0 {
		keywords = DefaultRiskKeywords
	}
	seen := make(map[string]struct{}, len(keywords))
	normalized := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		normalized = append(normalized, k)
	}
	return &Scorer{keywords: normalized}
}

// Keywords returns the configured keyword order.
func (s *Scorer) Keywords() []string {
	out := make([]string, len(s.keywords))
	copy(out, s.keywords)
	return out
}

// Score derives the assessment. Failed outcomes contribute nothing.
func (s *Scorer) Score(sanctions SanctionsOutcome, search SearchOutcome) RiskAssessment {
	score := 0
	factors := []string{}

	if sanctions.IsMatch() {
		score += SanctionsMatchWeight
		factors = append(factors, FactorSanctionsMatch)
	}

	if search.Result != nil {
		seen := make(map[string]struct{}, len(search.Result.Hits))
		for _, hit := range search.Result.Hits {
			if _, dup := seen[hit.URL]; dup {
				continue
			}
			seen[hit.URL] = struct{}{}

			keyword, ok := s.firstKeyword(hit)
			if !ok {
				continue
			}
			score += KeywordHitWeight
			factors = append(factors, fmt.Sprintf("Risk keyword %q found in %s", keyword, sourceLabel(hit)))
		}
	}

	return RiskAssessment{Score: score, Level: LevelFor(score), Factors: factors}
}

func (s *Scorer) firstKeyword(hit SearchHit) (string, bool) {
	text := strings.ToLower(hit.Title + "\n" + hit.Snippet)
	for _, k := range s.keywords {
		if strings.Contains(text, k) {
			return k, true
		}
	}
	return "", false
}

func sourceLabel(hit SearchHit) string {
	switch {
	case hit.SourceName != "":
		return hit.SourceName
	case hit.Domain != "":
		return hit.Domain
	default:
		return hit.URL
	}
}
