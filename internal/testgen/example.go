package testgen

import (
	"sort"

	"github.com/openclaw/swagger2pytest/internal/spec"
)

// exampleValue returns one representative literal for a parameter. An
// explicit example wins; otherwise the mapping by declared type is fixed
// so repeated runs synthesize identical values.
func exampleValue(p spec.Parameter) any {
	if p.Example != nil {
		return p.Example
	}
	switch p.SchemaType {
	case "string":
		return "test_" + p.Name
	case "integer":
		return 1
	case "number":
		return 1.0
	case "boolean":
		return true
	default:
		return "example"
	}
}

// payloadFromSchema synthesizes a request payload from an object schema.
// Synthesis is shallow: only top-level properties are visited, and nested
// objects or arrays get the generic placeholder instead of recursion.
func payloadFromSchema(schema map[string]any) any {
	props, ok := schema["properties"].(map[string]any)
	if !ok || len(props) == 0 {
		return genericPayload()
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]any, len(names))
	for _, name := range names {
		ps, _ := props[name].(map[string]any)
		typ, ok := ps["type"].(string)
		if !ok {
			// An undeclared property type is treated as string.
			typ = "string"
		}
		switch typ {
		case "string":
			out[name] = "test_" + name
		case "integer":
			out[name] = 1
		case "boolean":
			out[name] = true
		default:
			out[name] = "example"
		}
	}
	return out
}

func genericPayload() map[string]any {
	return map[string]any{"example": "data"}
}
