package strategy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/PaesslerAG/jsonpath"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidJSON rejects items that are not a single JSON document.
func ValidJSON() Validator[string] {
	return func(item string) error {
		if !json.Valid([]byte(item)) {
			return fmt.Errorf("%w: not valid JSON", ErrValidation)
		}
		return nil
	}
}

// CompileSchema compiles a JSON Schema document.
func CompileSchema(src string) (*jsonschema.Schema, error) {
	schema, err := jsonschema.CompileString("schema.json", src)
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return schema, nil
}

// MatchesSchema rejects items that are not JSON or that violate schema.
func MatchesSchema(schema *jsonschema.Schema) Validator[string] {
	return func(item string) error {
		var v interface{}
		if err := json.Unmarshal([]byte(item), &v); err != nil {
			return fmt.Errorf("%w: not valid JSON: %v", ErrValidation, err)
		}
		if err := schema.Validate(v); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
		return nil
	}
}

// JSONPath returns a transform that replaces a JSON item with the value at
// expr. String results are returned as is, anything else re-encoded as JSON.
func JSONPath(expr string) (TransformFunc[string], error) {
	eval, err := jsonpath.New(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jsonpath %q: %w", expr, err)
	}

	return func(ctx context.Context, item string) (string, error) {
		var data interface{}
		if err := json.Unmarshal([]byte(item), &data); err != nil {
			return "", fmt.Errorf("decode item: %w", err)
		}

		v, err := eval(ctx, data)
		if err != nil {
			return "", fmt.Errorf("jsonpath %s: %w", expr, err)
		}

		if s, ok := v.(string); ok {
			return s, nil
		}
		out, err := json.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("encode result: %w", err)
		}
		return string(out), nil
	}, nil
}
