package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"

	"screener/internal/screening/domain"
	dErrors "screener/pkg/domain-errors"
)

type EntityQuerySuite struct {
	suite.Suite
}

func TestEntityQuerySuite(t *testing.T) {
	suite.Run(t, new(EntityQuerySuite))
}

func (s *EntityQuerySuite) TestConstruction() {
	s.Run("rejects missing id and name", func() {
		_, err := domain.NewEntityQuery("  ", "\t", []string{"alias"}, nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})

	s.Run("accepts id only", func() {
		q, err := domain.NewEntityQuery("Q7747", "", nil, nil)
		s.Require().NoError(err)
		s.Equal("Q7747", q.ID())
		s.True(q.HasID())
		s.Equal("Q7747", q.DisplayName())
	})

	s.Run("collapses whitespace in name", func() {
		q, err := domain.NewEntityQuery("", "  Vladimir   Putin ", nil, nil)
		s.Require().NoError(err)
		s.Equal("Vladimir Putin", q.Name())
	})

	s.Run("dedupes aliases and lower-cases attribute keys", func() {
		q, err := domain.NewEntityQuery("", "Acme", []string{" ACME Corp", "ACME Corp", ""}, map[string]string{
			" Country ": "RU",
			"gender":    " ",
		})
		s.Require().NoError(err)
		s.Equal([]string{"ACME Corp"}, q.Aliases())
		s.Equal(map[string]string{"country": "RU"}, q.Attributes())
		s.Equal("RU", q.Attribute("COUNTRY"))
	})

	s.Run("rejects oversized name", func() {
		_, err := domain.NewEntityQuery("", strings.Repeat("x", 300), nil, nil)
		s.Require().Error(err)
		s.True(dErrors.Is(err, dErrors.CodeValidation))
	})
}

func (s *EntityQuerySuite) TestImmutability() {
	q := domain.MustEntityQuery("", "Acme", []string{"A"}, map[string]string{"country": "us"})

	aliases := q.Aliases()
	aliases[0] = "mutated"
	attrs := q.Attributes()
	attrs["country"] = "mutated"

	s.Equal([]string{"A"}, q.Aliases())
	s.Equal("us", q.Attribute("country"))
}

func (s *EntityQuerySuite) TestSearchText() {
	s.Run("quotes name and appends country", func() {
		q := domain.MustEntityQuery("", "Acme Corp", nil, map[string]string{"country": "Iran"})
		s.Equal(`"Acme Corp" Iran`, q.SearchText())
	})

	s.Run("includes aliases", func() {
		q := domain.MustEntityQuery("", "Acme", []string{"Acme Ltd"}, nil)
		s.Equal(`"Acme" OR "Acme Ltd"`, q.SearchText())
	})

	s.Run("falls back to id", func() {
		q := domain.MustEntityQuery("Q42", "", nil, nil)
		s.Equal(`"Q42"`, q.SearchText())
	})
}

func (s *EntityQuerySuite) TestJSONRoundTrip() {
	q := domain.MustEntityQuery("ofac-123", "Acme", []string{"A"}, map[string]string{"country": "us"})

	data, err := json.Marshal(q)
	s.Require().NoError(err)

	var decoded domain.EntityQuery
	s.Require().NoError(json.Unmarshal(data, &decoded))
	s.Equal(q, decoded)
}

func (s *EntityQuerySuite) TestMustPanicsOnInvalid() {
	s.Panics(func() {
		domain.MustEntityQuery("", "", nil, nil)
	})
}
