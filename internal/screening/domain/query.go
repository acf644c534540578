package domain

import (
	"encoding/json"
	"maps"
	"slices"
	"strings"

	dErrors "screener/pkg/domain-errors"
	pstrings "screener/pkg/platform/strings"
)

// maxFieldLength bounds free-text fields so a single entity cannot blow up
// cache keys or upstream query strings.
const maxFieldLength = 256

// Well-known attribute keys. Attributes are free-form; these are the ones the
// providers understand.
const (
	AttrCountry   = "country"
	AttrBirthDate = "birth_date"
	AttrGender    = "gender"
	AttrSchema    = "schema"
)

// EntityQuery is the canonical representation of one lookup request.
//
// Invariants:
//   - At least one of id or name is non-empty
//   - Aliases are trimmed and de-duplicated
//   - Attribute keys are lower-cased; empty values are dropped
//
// Fields are unexported so a query cannot change after construction.
type EntityQuery struct {
	id         string
	name       string
	aliases    []string
	attributes map[string]string
}

// NewEntityQuery validates and builds an EntityQuery.
func NewEntityQuery(id, name string, aliases []string, attributes map[string]string) (EntityQuery, error) {
	id = strings.TrimSpace(id)
	name = strings.Join(strings.Fields(name), " ")

	if id == "" && name == "" {
		return EntityQuery{}, dErrors.New(dErrors.CodeValidation, "entity requires an id or a name")
	}
	if len(id) > maxFieldLength {
		return EntityQuery{}, dErrors.New(dErrors.CodeValidation, "entity id is too long")
	}
	if len(name) > maxFieldLength {
		return EntityQuery{}, dErrors.New(dErrors.CodeValidation, "entity name is too long")
	}

	q := EntityQuery{
		id:      id,
		name:    name,
		aliases: pstrings.DedupeFold(aliases),
	}
	if len(attributes) > 0 {
		q.attributes = make(map[string]string, len(attributes))
		for k, v := range attributes {
			k = strings.ToLower(strings.TrimSpace(k))
			v = strings.TrimSpace(v)
			if k == "" || v == "" {
				continue
			}
			if len(v) > maxFieldLength {
				return EntityQuery{}, dErrors.New(dErrors.CodeValidation, "attribute "+k+" is too long")
			}
			q.attributes[k] = v
		}
	}
	return q, nil
}

// MustEntityQuery builds an EntityQuery, panicking if invalid.
// Use only in tests or when the value is known to be valid.
func MustEntityQuery(id, name string, aliases []string, attributes map[string]string) EntityQuery {
	q, err := NewEntityQuery(id, name, aliases, attributes)
	if err != nil {
		panic(err)
	}
	return q
}

func (q EntityQuery) ID() string   { return q.id }
func (q EntityQuery) Name() string { return q.name }

// Aliases returns a copy of the alias set.
func (q EntityQuery) Aliases() []string {
	return slices.Clone(q.aliases)
}

// Attributes returns a copy of the secondary attributes.
func (q EntityQuery) Attributes() map[string]string {
	return maps.Clone(q.attributes)
}

// Attribute returns a single attribute value, or "" when absent.
func (q EntityQuery) Attribute(key string) string {
	return q.attributes[strings.ToLower(key)]
}

// IsZero returns true for the zero value, which is never a valid query.
func (q EntityQuery) IsZero() bool {
	return q.id == "" && q.name == ""
}

// HasID reports whether the query carries an external identifier.
func (q EntityQuery) HasID() bool {
	return q.id != ""
}

// DisplayName is the label used in summaries and logs.
func (q EntityQuery) DisplayName() string {
	if q.name != "" {
		return q.name
	}
	return q.id
}

// SearchText builds the web search query for this entity: the quoted name
// (or id), narrowed by country when known.
func (q EntityQuery) SearchText() string {
	var b strings.Builder
	b.WriteString(`"`)
	b.WriteString(q.DisplayName())
	b.WriteString(`"`)
	for _, alias := range q.aliases {
		b.WriteString(` OR "`)
		b.WriteString(alias)
		b.WriteString(`"`)
	}
	if country := q.Attribute(AttrCountry); country != "" {
		b.WriteString(" ")
		b.WriteString(country)
	}
	return b.String()
}

type entityQueryJSON struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Aliases    []string          `json:"aliases,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

func (q EntityQuery) MarshalJSON() ([]byte, error) {
	return json.Marshal(entityQueryJSON{
		ID:         q.id,
		Name:       q.name,
		Aliases:    q.aliases,
		Attributes: q.attributes,
	})
}

// UnmarshalJSON restores a query from its serialized form (cache entries),
// re-applying construction invariants.
func (q *EntityQuery) UnmarshalJSON(data []byte) error {
	var raw entityQueryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := NewEntityQuery(raw.ID, raw.Name, raw.Aliases, raw.Attributes)
	if err != nil {
		return err
	}
	*q = parsed
	return nil
}
