package classify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"prospect-lookup/internal/models"
)

var ErrNotAnObject = errors.New("RESULT_NOT_AN_OBJECT")

// Flatten reduces a nested JSON object to a single-level list of leaf pairs,
// preserving document order. Plain objects are recursed into and their leaves
// spliced in without the parent key prefix; sibling leaves that share a name
// across nested contexts therefore shadow each other downstream. That matches
// the behavior the rest of the pipeline was built against, so it is kept.
// Arrays and scalars are leaves. Null, "", empty arrays, and empty objects are
// dropped.
func Flatten(raw []byte) ([]models.FlatField, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("read result: %w", err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, ErrNotAnObject
	}

	return flattenObject(dec)
}

func flattenObject(dec *json.Decoder) ([]models.FlatField, error) {
	var fields []models.FlatField

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("read key: %w", err)
		}
		key, ok := keyTok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v in object position", keyTok)
		}

		var rawVal json.RawMessage
		if err := dec.Decode(&rawVal); err != nil {
			return nil, fmt.Errorf("read value for %q: %w", key, err)
		}

		trimmed := bytes.TrimSpace(rawVal)
		if len(trimmed) > 0 && trimmed[0] == '{' {
			nested, err := Flatten(trimmed)
			if err != nil {
				return nil, err
			}
			fields = append(fields, nested...)
			continue
		}

		var value interface{}
		valDec := json.NewDecoder(bytes.NewReader(trimmed))
		valDec.UseNumber()
		if err := valDec.Decode(&value); err != nil {
			return nil, fmt.Errorf("decode value for %q: %w", key, err)
		}
		if isEmptyValue(value) {
			continue
		}
		fields = append(fields, models.FlatField{Key: key, Value: value})
	}

	// closing brace
	if _, err := dec.Token(); err != nil {
		return nil, fmt.Errorf("read object end: %w", err)
	}

	return fields, nil
}

// isEmptyValue reports values the flattening pass drops entirely.
func isEmptyValue(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case []interface{}:
		return len(val) == 0
	case map[string]interface{}:
		return len(val) == 0
	default:
		return false
	}
}
