package domain

import (
	"fmt"
	"regexp"
	"strings"

	dErrors "screener/pkg/domain-errors"
)

// DefaultMaxBatchSize is the batch limit used when none is configured.
const DefaultMaxBatchSize = 50

// InputKind tags which of the accepted request shapes a RawInput came from.
type InputKind string

const (
	KindID         InputKind = "id"
	KindName       InputKind = "name"
	KindStructured InputKind = "structured"
	// KindInvalid marks an element whose shape could not be read. It keeps
	// its batch position and fails on its own during normalization.
	KindInvalid InputKind = "invalid"
)

// RawInput is the tagged form of one entity as received at the transport
// boundary. Shape detection happens once, when the RawInput is built; the
// normalizer only sees tagged values.
type RawInput struct {
	Kind       InputKind
	ID         string
	Name       string
	Aliases    []string
	Attributes map[string]string
	// Problem describes why a KindInvalid input was rejected.
	Problem string
}

// IDInput tags a value that is known to be an external identifier.
func IDInput(id string) RawInput {
	return RawInput{Kind: KindID, ID: id}
}

// NameInput tags a value that is known to be a free-text name.
func NameInput(name string) RawInput {
	return RawInput{Kind: KindName, Name: name}
}

// StructuredInput tags an object with optional id, name, aliases and attributes.
func StructuredInput(id, name string, aliases []string, attributes map[string]string) RawInput {
	return RawInput{Kind: KindStructured, ID: id, Name: name, Aliases: aliases, Attributes: attributes}
}

// InvalidInput tags an element that is neither a string nor a readable
// entity object.
func InvalidInput(problem string) RawInput {
	return RawInput{Kind: KindInvalid, Problem: problem}
}

// identifierPatterns recognise registry identifiers passed as bare strings:
// Wikidata ids, prefixed numerics (NK12345), plain numerics, UUIDs, hex
// digests, dataset-scoped hashes and slugs (ofac-12345, eu-fsf-eu1234).
var identifierPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^Q\d+$`),
	regexp.MustCompile(`^[A-Z]{2,}\d+$`),
	regexp.MustCompile(`^\d+$`),
	regexp.MustCompile(`(?i)^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`),
	regexp.MustCompile(`(?i)^(?:[0-9a-f]{32}|[0-9a-f]{40}|[0-9a-f]{64})$`),
	regexp.MustCompile(`^[a-z]+-[0-9a-f]{16,}$`),
	regexp.MustCompile(`^[A-Za-z]+-\d+$`),
	regexp.MustCompile(`^[a-z][a-z0-9-]*-[A-Za-z0-9]*\d[A-Za-z0-9]*$`),
}

// LooksLikeID reports whether a bare string should be treated as an entity
// identifier instead of a name. Strings with whitespace are always names.
func LooksLikeID(value string) bool {
	value = strings.TrimSpace(value)
	if value == "" || strings.ContainsAny(value, " \t\n") {
		return false
	}
	for _, p := range identifierPatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// ParseBareString tags a bare string as an id or a name.
func ParseBareString(value string) RawInput {
	if LooksLikeID(value) {
		return IDInput(value)
	}
	return NameInput(value)
}

// Normalize converts a tagged raw input into a canonical EntityQuery.
// Returns a validation error when neither id nor name is present.
func Normalize(in RawInput) (EntityQuery, error) {
	switch in.Kind {
	case KindID:
		return NewEntityQuery(in.ID, "", nil, nil)
	case KindName:
		return NewEntityQuery("", in.Name, nil, nil)
	case KindStructured:
		return NewEntityQuery(in.ID, in.Name, in.Aliases, in.Attributes)
	case KindInvalid:
		return EntityQuery{}, dErrors.New(dErrors.CodeValidation, in.Problem)
	default:
		return EntityQuery{}, dErrors.New(dErrors.CodeValidation, fmt.Sprintf("unsupported input kind %q", in.Kind))
	}
}

// ValidateBatchSize rejects empty batches and batches above limit.
// A non-positive limit falls back to DefaultMaxBatchSize.
func ValidateBatchSize(n, limit int) error {
	if limit <= 0 {
		limit = DefaultMaxBatchSize
	}
	if n == 0 {
		return dErrors.New(dErrors.CodeValidation, "no entities provided")
	}
	if n > limit {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("maximum %d entities allowed per request, got %d", limit, n))
	}
	return nil
}
