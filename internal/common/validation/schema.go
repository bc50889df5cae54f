// Package validation checks inbound request payloads against JSON Schemas.
package validation

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// SearchRequestSchema validates the search submission payload. STREET2 is the
// only optional address component.
const SearchRequestSchema = `{
	"type": "object",
	"properties": {
		"first_name": {"type": "string", "minLength": 1},
		"last_name":  {"type": "string", "minLength": 1},
		"street1":    {"type": "string", "minLength": 1},
		"street2":    {"type": "string"},
		"city":       {"type": "string", "minLength": 1},
		"state":      {"type": "string", "minLength": 2, "maxLength": 2},
		"zip":        {"type": "string", "pattern": "^[0-9]{5}(-[0-9]{4})?$"}
	},
	"required": ["first_name", "last_name", "street1", "city", "state", "zip"],
	"additionalProperties": false
}`

// PhilanthropyRequestSchema validates the philanthropy lookup payload.
const PhilanthropyRequestSchema = `{
	"type": "object",
	"properties": {
		"first_name": {"type": "string", "minLength": 1},
		"last_name":  {"type": "string", "minLength": 1},
		"city":       {"type": "string"},
		"state":      {"type": "string"}
	},
	"required": ["first_name", "last_name"],
	"additionalProperties": false
}`

// InsightRequestSchema validates the AI insight generation payload.
const InsightRequestSchema = `{
	"type": "object",
	"properties": {
		"category":  {"type": "string", "minLength": 1},
		"full_name": {"type": "string", "minLength": 1},
		"city":      {"type": "string"},
		"state":     {"type": "string"}
	},
	"required": ["category", "full_name"],
	"additionalProperties": false
}`

type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles the request schemas once at startup.
func NewValidator() (*Validator, error) {
	raw := map[string]string{
		"search":       SearchRequestSchema,
		"philanthropy": PhilanthropyRequestSchema,
		"insight":      InsightRequestSchema,
	}

	compiled := make(map[string]*gojsonschema.Schema, len(raw))
	for name, src := range raw {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, fmt.Errorf("compile %s schema: %w", name, err)
		}
		compiled[name] = schema
	}

	return &Validator{schemas: compiled}, nil
}

// Validate checks a raw JSON document against the named schema and returns a
// single aggregated error message on failure.
func (v *Validator) Validate(name string, document []byte) error {
	schema, ok := v.schemas[name]
	if !ok {
		return fmt.Errorf("unknown schema: %s", name)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(document))
	if err != nil {
		return fmt.Errorf("validate against %s schema: %w", name, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return fmt.Errorf("%s", strings.Join(msgs, "; "))
}
