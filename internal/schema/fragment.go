package schema

import (
	"github.com/getkin/kin-openapi/openapi3"
)

// FragmentFromSchemaRef converts an OpenAPI schema into a plain JSON-schema
// fragment. The result is independently owned: no part of it aliases the
// source document, so later normalization never leaks between operations.
func FragmentFromSchemaRef(ref *openapi3.SchemaRef) Fragment {
	return fragmentFromSchema(ref, make(map[*openapi3.Schema]bool))
}

func fragmentFromSchema(ref *openapi3.SchemaRef, visited map[*openapi3.Schema]bool) Fragment {
	if ref == nil || ref.Value == nil {
		return Fragment{}
	}
	s := ref.Value
	if visited[s] {
		// Cycle in the source document; emit an opaque object instead of
		// recursing forever.
		return Fragment{"type": "object"}
	}
	visited[s] = true
	defer delete(visited, s)

	frag := Fragment{}
	if s.Type != nil && len(s.Type.Slice()) > 0 {
		frag["type"] = s.Type.Slice()[0]
	}
	if s.Format != "" {
		frag["format"] = s.Format
	}
	if s.Description != "" {
		frag["description"] = s.Description
	}
	if s.Default != nil {
		frag["default"] = s.Default
	}
	if s.Example != nil {
		frag["example"] = s.Example
	}
	if len(s.Enum) > 0 {
		enum := make([]any, len(s.Enum))
		copy(enum, s.Enum)
		frag["enum"] = enum
	}
	if len(s.Required) > 0 {
		required := make([]any, 0, len(s.Required))
		for _, name := range s.Required {
			required = append(required, name)
		}
		frag["required"] = required
	}

	if s.MinLength != 0 {
		frag["minLength"] = s.MinLength
	}
	if s.MaxLength != nil {
		frag["maxLength"] = *s.MaxLength
	}
	if s.Pattern != "" {
		frag["pattern"] = s.Pattern
	}
	if s.Min != nil {
		frag["minimum"] = *s.Min
	}
	if s.Max != nil {
		frag["maximum"] = *s.Max
	}

	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, propRef := range s.Properties {
			props[name] = fragmentFromSchema(propRef, visited)
		}
		frag["properties"] = props
	}
	if s.Items != nil {
		frag["items"] = fragmentFromSchema(s.Items, visited)
	}

	return frag
}

// cloneFragment deep-copies a fragment so normalization can return a fresh
// value without mutating its input.
func cloneFragment(frag Fragment) Fragment {
	out := make(Fragment, len(frag))
	for k, v := range frag {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}
