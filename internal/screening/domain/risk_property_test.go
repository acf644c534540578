//go:build property

package domain_test

import (
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"screener/internal/screening/domain"
)

func searchFrom(titles []string) domain.SearchOutcome {
	h := make([]domain.SearchHit, 0, len(titles))
	for i, title := range titles {
		h = append(h, domain.SearchHit{URL: fmt.Sprintf("https://reuters.com/%d", i), Title: title})
	}
	return domain.SearchSucceeded(&domain.SearchResult{Hits: h})
}

// Property: every score maps to exactly one level and never goes negative.
func TestScoreIsTotal(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())
	scorer := domain.NewScorer(nil)

	properties.Property("score is non-negative with a valid level", prop.ForAll(
		func(found bool, titles []string) bool {
			sanctions := domain.SanctionsSucceeded(&domain.SanctionsResult{Found: found})
			got := scorer.Score(sanctions, searchFrom(titles))
			if got.Score < 0 {
				return false
			}
			switch got.Level {
			case domain.RiskLow, domain.RiskMedium, domain.RiskHigh:
				return got.Level == domain.LevelFor(got.Score)
			default:
				return false
			}
		},
		gen.Bool(),
		gen.SliceOf(gen.AlphaString()),
	))

	properties.Property("score is bounded by hits plus match weight", prop.ForAll(
		func(titles []string) bool {
			sanctions := domain.SanctionsSucceeded(&domain.SanctionsResult{Found: true})
			got := scorer.Score(sanctions, searchFrom(titles))
			return got.Score <= domain.SanctionsMatchWeight+len(titles) && len(got.Factors) <= 1+len(titles)
		},
		gen.SliceOf(gen.OneConstOf("fraud alert", "weather", "EMBARGO lifted", "sanctioned bank", ""), reflect.TypeOf("")),
	))

	properties.TestingRun(t)
}

// Property: equal queries always hash to the same key.
func TestCacheKeyDeterminism(t *testing.T) {
	properties := gopter.NewProperties(gopter.DefaultTestParameters())

	properties.Property("key ignores case of name", prop.ForAll(
		func(name string) bool {
			if strings.TrimSpace(name) == "" {
				return true
			}
			upper := domain.MustEntityQuery("", strings.ToUpper(name), nil, nil)
			lower := domain.MustEntityQuery("", strings.ToLower(name), nil, nil)
			return domain.KeyFor(upper) == domain.KeyFor(lower)
		},
		gen.AlphaString().SuchThat(func(s string) bool { return len(s) <= 200 }),
	))

	properties.TestingRun(t)
}
