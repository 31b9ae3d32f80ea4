package tools

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Schema is a JSON Schema object describing tool input, in the generic map form accepted by model SDKs
type Schema map[string]any

// Properties returns the schema's "properties" member, never nil
func (s Schema) Properties() map[string]any {
	if props, ok := s["properties"].(map[string]any); ok {
		return props
	}
	return map[string]any{}
}

// Required returns the names of the required properties
func (s Schema) Required() []string {
	var required []string
	switch v := s["required"].(type) {
	case []string:
		required = append(required, v...)
	case []any:
		for _, name := range v {
			if str, ok := name.(string); ok {
				required = append(required, str)
			}
		}
	}
	return required
}

var reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	AllowAdditionalProperties: false,
}

// SchemaFor reflects the JSON Schema of a tool input struct. Fields without `omitempty` are required; descriptions
// come from `jsonschema:"description=..."` tags
func SchemaFor[T any]() (Schema, error) {
	var v T
	reflected := reflector.Reflect(&v)
	b, err := json.Marshal(reflected)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema for %T: %w", v, err)
	}
	var schema Schema
	if err := json.Unmarshal(b, &schema); err != nil {
		return nil, fmt.Errorf("failed to unmarshal schema for %T: %w", v, err)
	}
	delete(schema, "$schema")
	delete(schema, "$id")
	delete(schema, "$defs")
	schema["type"] = "object"
	if _, ok := schema["properties"]; !ok {
		schema["properties"] = map[string]any{}
	}
	return schema, nil
}

// MustSchemaFor is SchemaFor for statically known input types
func MustSchemaFor[T any]() Schema {
	schema, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return schema
}
