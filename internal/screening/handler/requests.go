package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"screener/internal/screening/domain"
	dErrors "screener/pkg/domain-errors"
)

// singleKeys select the one-entity request shapes, in precedence order.
var singleKeys = []string{"name", "entity", "company", "organization", "id"}

// listKeys select the batch request shapes, in precedence order.
var listKeys = []string{"queries", "entities"}

// entityTypeSchemas maps the loose "type" field onto registry schema names.
var entityTypeSchemas = map[string]string{
	"person":       "Person",
	"individual":   "Person",
	"company":      "Company",
	"organization": "Organization",
	"organisation": "Organization",
	"vessel":       "Vessel",
}

// CheckRequest is the HTTP request body for POST /check. It accepts a bare
// JSON array or an object in any of these shapes:
//
//	{"name": "..."}  {"company": "..."}  {"organization": "..."}  {"id": "..."}
//	{"entity": "..."}  {"entity": {...}}
//	{"entities": [...]}  {"queries": [...]}
//
// List elements may be strings (classified as id or name) or entity objects.
type CheckRequest struct {
	// Parsed values (populated by UnmarshalJSON)
	inputs []domain.RawInput
}

// UnmarshalJSON detects the request shape and tags every entity.
func (r *CheckRequest) UnmarshalJSON(data []byte) error {
	inputs, err := parseInputs(data)
	if err != nil {
		return err
	}
	r.inputs = inputs
	return nil
}

// Validate implements the Validatable interface for httputil.DecodeAndPrepare.
// The batch size limit is enforced by the service.
func (r *CheckRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.inputs) == 0 {
		return dErrors.New(dErrors.CodeValidation, "no valid entities found in request")
	}
	return nil
}

// Inputs returns the tagged entities in request order.
func (r *CheckRequest) Inputs() []domain.RawInput {
	return r.inputs
}

// InvalidateRequest is the HTTP request body for DELETE /cache. It accepts the
// same shapes as CheckRequest but must name exactly one entity.
type InvalidateRequest struct {
	CheckRequest
}

func (r *InvalidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if len(r.inputs) != 1 {
		return dErrors.New(dErrors.CodeValidation, "exactly one entity is required")
	}
	return nil
}

// Input returns the single entity to evict.
func (r *InvalidateRequest) Input() domain.RawInput {
	return r.inputs[0]
}

// entityObject is the object form of one entity.
type entityObject struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Entity       string            `json:"entity"`
	Company      string            `json:"company"`
	Organization string            `json:"organization"`
	Aliases      []string          `json:"aliases"`
	Attributes   map[string]string `json:"attributes"`
	Country      string            `json:"country"`
	BirthDate    string            `json:"birth_date"`
	Gender       string            `json:"gender"`
	Schema       string            `json:"schema"`
	Type         string            `json:"type"`
}

func (e entityObject) toRawInput() domain.RawInput {
	name := firstNonEmpty(e.Name, e.Entity, e.Company, e.Organization)

	attrs := make(map[string]string, len(e.Attributes)+4)
	for k, v := range e.Attributes {
		attrs[k] = v
	}
	setIfEmpty(attrs, domain.AttrCountry, e.Country)
	setIfEmpty(attrs, domain.AttrBirthDate, e.BirthDate)
	setIfEmpty(attrs, domain.AttrGender, e.Gender)
	setIfEmpty(attrs, domain.AttrSchema, e.Schema)
	setIfEmpty(attrs, domain.AttrSchema, schemaForType(e.Type))
	switch {
	case strings.TrimSpace(e.Company) != "":
		setIfEmpty(attrs, domain.AttrSchema, "Company")
	case strings.TrimSpace(e.Organization) != "":
		setIfEmpty(attrs, domain.AttrSchema, "Organization")
	}

	id := strings.TrimSpace(e.ID)
	if len(e.Aliases) == 0 && len(attrs) == 0 {
		switch {
		case id != "" && name == "":
			return domain.IDInput(id)
		case id == "":
			return domain.NameInput(name)
		}
	}
	return domain.StructuredInput(id, name, e.Aliases, attrs)
}

func parseInputs(data []byte) ([]domain.RawInput, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body cannot be empty")
	}
	switch data[0] {
	case '[':
		return parseList(data, "")
	case '{':
		return parseObject(data)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "request body must be a JSON object or array")
	}
}

func parseObject(data []byte) ([]domain.RawInput, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
	}

	for _, key := range singleKeys {
		if _, ok := fields[key]; !ok {
			continue
		}
		// "entity" may itself be an object or a bare string.
		if key == "entity" {
			if raw := bytes.TrimSpace(fields[key]); len(raw) > 0 && raw[0] == '{' {
				in, err := parseItem(raw, "entity")
				if err != nil {
					return nil, err
				}
				return []domain.RawInput{in}, nil
			}
			var s string
			if err := json.Unmarshal(fields[key], &s); err != nil {
				return nil, dErrors.New(dErrors.CodeValidation, "entity must be a string or object")
			}
			return []domain.RawInput{domain.ParseBareString(strings.TrimSpace(s))}, nil
		}
		// The remaining single keys describe the top-level object itself.
		in, err := parseItem(data, "")
		if err != nil {
			return nil, err
		}
		return []domain.RawInput{in}, nil
	}

	for _, key := range listKeys {
		if raw, ok := fields[key]; ok {
			return parseList(raw, key)
		}
	}
	return nil, nil
}

func parseList(data []byte, field string) ([]domain.RawInput, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		if field == "" {
			return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "invalid JSON body")
		}
		return nil, dErrors.New(dErrors.CodeValidation, field+" must be an array")
	}
	inputs := make([]domain.RawInput, 0, len(items))
	for i, raw := range items {
		in, err := parseItem(raw, fmt.Sprintf("%s[%d]", field, i))
		if err != nil {
			// A malformed element fails only its own position.
			in = domain.InvalidInput(problemOf(err))
		}
		inputs = append(inputs, in)
	}
	return inputs, nil
}

// parseItem tags one list element or entity object. Empty strings are kept so
// that the response stays aligned with the request; they fail per item.
func parseItem(raw json.RawMessage, path string) (domain.RawInput, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return domain.RawInput{}, invalidItem(path)
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return domain.RawInput{}, invalidItem(path)
		}
		s = strings.TrimSpace(s)
		if s == "" {
			return domain.NameInput(""), nil
		}
		return domain.ParseBareString(s), nil
	case '{':
		var obj entityObject
		if err := json.Unmarshal(raw, &obj); err != nil {
			return domain.RawInput{}, dErrors.New(dErrors.CodeValidation, describe(path)+" is not a valid entity object")
		}
		return obj.toRawInput(), nil
	default:
		return domain.RawInput{}, invalidItem(path)
	}
}

func problemOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}

func invalidItem(path string) error {
	return dErrors.New(dErrors.CodeValidation, describe(path)+" must be a string or object")
}

func describe(path string) string {
	if path == "" {
		return "entity"
	}
	return path
}

func schemaForType(t string) string {
	t = strings.ToLower(strings.TrimSpace(t))
	if t == "" {
		return ""
	}
	if schema, ok := entityTypeSchemas[t]; ok {
		return schema
	}
	return ""
}

func setIfEmpty(attrs map[string]string, key, value string) {
	value = strings.TrimSpace(value)
	if value == "" || strings.TrimSpace(attrs[key]) != "" {
		return
	}
	attrs[key] = value
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
