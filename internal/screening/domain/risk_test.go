package domain_test

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"screener/internal/screening/domain"
)

type ScorerSuite struct {
	suite.Suite
	scorer *domain.Scorer
}

func TestScorerSuite(t *testing.T) {
	suite.Run(t, new(ScorerSuite))
}

func (s *ScorerSuite) SetupTest() {
	s.scorer = domain.NewScorer(nil)
}

func matched(records int) domain.SanctionsOutcome {
	r := &domain.SanctionsResult{Found: records > 0, RawTotal: records}
	for range records {
		r.Records = append(r.Records, domain.SanctionsMatch{ID: "x", Caption: "x"})
	}
	return domain.SanctionsSucceeded(r)
}

func hits(h ...domain.SearchHit) domain.SearchOutcome {
	return domain.SearchSucceeded(&domain.SearchResult{Hits: h, QueryUsed: `"x"`})
}

func hit(url, title, snippet string) domain.SearchHit {
	return domain.SearchHit{URL: url, Title: title, Snippet: snippet, Domain: "reuters.com", SourceName: "Reuters"}
}

// =============================================================================
// Level boundaries
// =============================================================================

func (s *ScorerSuite) TestLevelFor() {
	s.Equal(domain.RiskLow, domain.LevelFor(0))
	s.Equal(domain.RiskMedium, domain.LevelFor(1))
	s.Equal(domain.RiskMedium, domain.LevelFor(2))
	s.Equal(domain.RiskHigh, domain.LevelFor(3))
	s.Equal(domain.RiskHigh, domain.LevelFor(10))
}

// =============================================================================
// Scoring
// =============================================================================

func (s *ScorerSuite) TestScore() {
	s.Run("no match no hits is low", func() {
		got := s.scorer.Score(matched(0), hits())
		s.Equal(0, got.Score)
		s.Equal(domain.RiskLow, got.Level)
		s.Empty(got.Factors)
		s.NotNil(got.Factors)
	})

	s.Run("sanctions match alone is high", func() {
		got := s.scorer.Score(matched(2), hits())
		s.Equal(3, got.Score)
		s.Equal(domain.RiskHigh, got.Level)
		s.Equal([]string{domain.FactorSanctionsMatch}, got.Factors)
	})

	s.Run("one keyword hit is medium", func() {
		got := s.scorer.Score(matched(0), hits(hit("https://reuters.com/a", "Acme fined for FRAUD", "")))
		s.Equal(1, got.Score)
		s.Equal(domain.RiskMedium, got.Level)
		s.Equal([]string{`Risk keyword "fraud" found in Reuters`}, got.Factors)
	})

	s.Run("hits without keywords score nothing", func() {
		got := s.scorer.Score(matched(0), hits(hit("https://reuters.com/a", "Acme opens office", "quarterly results")))
		s.Equal(0, got.Score)
	})

	s.Run("repeated keywords in one hit count once", func() {
		got := s.scorer.Score(matched(0), hits(hit("https://reuters.com/a", "fraud fraud", "sanction and fraud")))
		s.Equal(1, got.Score)
		s.Equal([]string{`Risk keyword "sanction" found in Reuters`}, got.Factors)
	})

	s.Run("duplicate urls count once", func() {
		h := hit("https://reuters.com/a", "fraud", "")
		got := s.scorer.Score(matched(0), hits(h, h))
		s.Equal(1, got.Score)
	})

	s.Run("ofac designation is a keyword hit", func() {
		got := s.scorer.Score(matched(0), hits(hit("https://reuters.com/a", "OFAC designates Acme Corp", "")))
		s.Equal(1, got.Score)
		s.Equal(domain.RiskMedium, got.Level)
		s.Equal([]string{`Risk keyword "ofac" found in Reuters`}, got.Factors)
	})

	s.Run("compliance findings are a keyword hit", func() {
		got := s.scorer.Score(matched(0), hits(hit("https://reuters.com/a", "Acme compliance failures exposed", "")))
		s.Equal(1, got.Score)
		s.Equal([]string{`Risk keyword "compliance" found in Reuters`}, got.Factors)
	})

	s.Run("phrase keywords match across words", func() {
		got := s.scorer.Score(matched(0), hits(hit("https://reuters.com/a", "", "accused of Money Laundering")))
		s.Equal(1, got.Score)
	})

	s.Run("match plus keyword hits accumulate", func() {
		got := s.scorer.Score(matched(1), hits(
			hit("https://reuters.com/a", "fraud", ""),
			hit("https://reuters.com/b", "embargo", ""),
		))
		s.Equal(5, got.Score)
		s.Equal(domain.RiskHigh, got.Level)
		s.Len(got.Factors, 3)
	})
}

func (s *ScorerSuite) TestFailuresContributeNothing() {
	s.Run("sanctions failure", func() {
		got := s.scorer.Score(domain.SanctionsFailed(domain.ReasonTimeout, "deadline"), hits(hit("https://reuters.com/a", "fraud", "")))
		s.Equal(1, got.Score)
		s.Equal(domain.RiskMedium, got.Level)
	})

	s.Run("search failure", func() {
		got := s.scorer.Score(matched(1), domain.SearchFailed(domain.ReasonUpstreamError, "500"))
		s.Equal(3, got.Score)
	})

	s.Run("both failed", func() {
		got := s.scorer.Score(
			domain.SanctionsFailed(domain.ReasonNotConfigured, ""),
			domain.SearchFailed(domain.ReasonTimeout, ""),
		)
		s.Equal(0, got.Score)
		s.Equal(domain.RiskLow, got.Level)
		s.Empty(got.Factors)
	})
}

func (s *ScorerSuite) TestCustomKeywords() {
	scorer := domain.NewScorer([]string{" Shell Company ", "shell company", "", "PEP"})
	s.Equal([]string{"shell company", "pep"}, scorer.Keywords())

	got := scorer.Score(matched(0), hits(hit("https://reuters.com/a", "fraud", "")))
	s.Equal(0, got.Score, "default keywords replaced")
}

func (s *ScorerSuite) TestDeterministic() {
	sanctions := matched(1)
	search := hits(hit("https://reuters.com/a", "fraud", ""), hit("https://bbc.com/b", "bribery", ""))
	first := s.scorer.Score(sanctions, search)
	for range 10 {
		s.Equal(first, s.scorer.Score(sanctions, search))
	}
}
