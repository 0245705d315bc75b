package api

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
)

//go:embed schema.json
var resultSchemaJSON []byte

// resultSchema is the parsed form of the embedded result schema,
// reduced to the checks the validate endpoint performs: required
// top-level fields, their JSON types, and enum membership.
type resultSchema struct {
	required   []string
	properties map[string]propertyRule
}

type propertyRule struct {
	typeName string
	enum     []string
}

func loadResultSchema() (*resultSchema, error) {
	var raw struct {
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	if err := json.Unmarshal(resultSchemaJSON, &raw); err != nil {
		return nil, err
	}

	s := &resultSchema{
		required:   raw.Required,
		properties: make(map[string]propertyRule, len(raw.Properties)),
	}
	for name, rawProp := range raw.Properties {
		var prop struct {
			Type string   `json:"type"`
			Enum []string `json:"enum"`
		}
		if err := json.Unmarshal(rawProp, &prop); err != nil {
			return nil, fmt.Errorf("property %s: %w", name, err)
		}
		s.properties[name] = propertyRule{typeName: prop.Type, enum: prop.Enum}
	}
	return s, nil
}

// validate reports every top-level violation of the result schema.
// An empty slice means the document conforms.
func (s *resultSchema) validate(doc any) []string {
	obj, ok := doc.(map[string]any)
	if !ok {
		return []string{"result document must be a JSON object"}
	}

	var violations []string
	for _, field := range s.required {
		if _, present := obj[field]; !present {
			violations = append(violations, fmt.Sprintf("missing required field %q", field))
		}
	}

	// fixed order keeps the violation list stable across runs
	names := make([]string, 0, len(obj))
	for name := range obj {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		rule, known := s.properties[name]
		if !known {
			continue
		}
		value := obj[name]
		if !matchesType(value, rule.typeName) {
			violations = append(violations, fmt.Sprintf("field %q must be of type %s", name, rule.typeName))
			continue
		}
		if len(rule.enum) > 0 {
			str, _ := value.(string)
			if !slices.Contains(rule.enum, str) {
				violations = append(violations, fmt.Sprintf("field %q must be one of %v", name, rule.enum))
			}
		}
	}
	return violations
}

// matchesType checks a decoded JSON value against a schema type name.
// Schema types this validator does not model pass unchecked.
func matchesType(value any, typeName string) bool {
	switch typeName {
	case "string":
		_, ok := value.(string)
		return ok
	case "number":
		_, ok := value.(float64)
		return ok
	case "integer":
		f, ok := value.(float64)
		return ok && f == math.Trunc(f)
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	default:
		return true
	}
}
