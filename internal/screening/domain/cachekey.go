package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"slices"
	"strings"

	"github.com/gowebpki/jcs"
)

// CacheKeyPrefix namespaces screening entries in a shared cache backend.
const CacheKeyPrefix = "entity_check:"

// CacheKey identifies a normalized query in the cache.
type CacheKey string

func (k CacheKey) String() string { return string(k) }

// canonicalQuery is the hashed form of an EntityQuery. Free text is folded
// and aliases sorted so that semantically equal queries serialize the same.
type canonicalQuery struct {
	ID         string            `json:"id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Aliases    []string          `json:"aliases,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// KeyFor derives the cache key of a query.
//
// When an id is present the key depends on the id alone: the registry entity
// is the same no matter which name was supplied with it.
func KeyFor(q EntityQuery) CacheKey {
	var c canonicalQuery
	if q.HasID() {
		c.ID = q.id
	} else {
		c.Name = fold(q.name)
		for _, a := range q.aliases {
			c.Aliases = append(c.Aliases, fold(a))
		}
		slices.Sort(c.Aliases)
		c.Aliases = slices.Compact(c.Aliases)
		if len(q.attributes) > 0 {
			c.Attributes = make(map[string]string, len(q.attributes))
			for k, v := range q.attributes {
				c.Attributes[k] = fold(v)
			}
		}
	}

	payload, err := json.Marshal(c)
	if err != nil {
		// canonicalQuery only holds strings; Marshal cannot fail.
		panic(err)
	}
	if canonical, err := jcs.Transform(payload); err == nil {
		payload = canonical
	}
	sum := sha256.Sum256(payload)
	return CacheKey(CacheKeyPrefix + hex.EncodeToString(sum[:]))
}

// fold lower-cases and collapses internal whitespace.
func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
