// Package strings provides string manipulation utilities.
package strings

import (
	"strings"
)

// DedupeFold trims values, collapses internal whitespace, drops blanks and
// removes case-insensitive duplicates. The first spelling of each value wins
// and order is preserved.
//
//	DedupeFold([]string{" ACME  Corp", "acme corp", "", "Acme Ltd"})
//	// []string{"ACME Corp", "Acme Ltd"}
func DedupeFold(values []string) []string {
	if len(values) == 0 {
		return values
	}

	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		cleaned := strings.Join(strings.Fields(v), " ")
		if cleaned == "" {
			continue
		}
		folded := strings.ToLower(cleaned)
		if _, dup := seen[folded]; dup {
			continue
		}
		seen[folded] = struct{}{}
		result = append(result, cleaned)
	}
	return result
}
