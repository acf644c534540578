package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupeFold(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []string
	}{
		{name: "nil slice", input: nil, expected: nil},
		{name: "empty slice", input: []string{}, expected: []string{}},
		{name: "trims and collapses whitespace", input: []string{"  Acme   Corp "}, expected: []string{"Acme Corp"}},
		{name: "drops blanks", input: []string{"", "  ", "\t"}, expected: []string{}},
		{
			name:     "case-insensitive duplicates keep first spelling",
			input:    []string{"ACME Corp", "acme corp", "Acme  CORP"},
			expected: []string{"ACME Corp"},
		},
		{
			name:     "order is preserved",
			input:    []string{"b", "a", "B", "c", "A"},
			expected: []string{"b", "a", "c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, DedupeFold(tt.input))
		})
	}
}
