package tools

import "github.com/google/jsonschema-go/jsonschema"

// str/boolean/integer/object/objectSchema build the small subset of JSON Schema this
// catalogue needs — hand-assembled rather than reflected from Go structs,
// since tool arguments arrive as a bare map[string]any off the wire, not as
// typed Go values (spec.md §4.5).
func str(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string", Description: description}
}

func boolean(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "boolean", Description: description}
}

func integer(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "integer", Description: description}
}

func object(description string) *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object", Description: description}
}

func objectSchema(props map[string]*jsonschema.Schema, required ...string) *jsonschema.Schema {
	return &jsonschema.Schema{
		Type:       "object",
		Properties: props,
		Required:   required,
	}
}

// validateArgs resolves schema and checks args against it, translating a
// validation failure into the InvalidArgs taxonomy member the rest of the
// gateway expects.
func validateArgs(schema *jsonschema.Schema, args map[string]any) error {
	resolved, err := schema.Resolve(nil)
	if err != nil {
		return err
	}
	if err := resolved.Validate(args); err != nil {
		return invalidArgsFrom(err)
	}
	return nil
}
