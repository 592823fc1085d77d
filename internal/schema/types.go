package schema

import (
	"fmt"
)

// Fragment is a single JSON-Schema-compatible schema fragment. Nested
// fragments live under "properties" (map[string]any per property) and
// "items".
type Fragment = map[string]any

// Location identifies where a tool property ends up in the outgoing HTTP
// request.
type Location string

const (
	LocationPath   Location = "path"
	LocationQuery  Location = "query"
	LocationHeader Location = "header"
	LocationCookie Location = "cookie"
	// LocationBody marks a property that carries the whole request payload.
	LocationBody Location = "body"
	// LocationBodyField marks a property that is one field of a structured
	// request payload (JSON object, multipart or form-urlencoded).
	LocationBodyField Location = "body_field"
)

// LocationExtension is the property annotation recording a property's
// origin. It is the single source of truth for routing at call time; the
// location is never re-derived from the property name.
const LocationExtension = "x-parameter-location"

// ObjectSchema is a flat object schema: one level of properties plus a
// required list. No nesting is introduced beyond what the body selector
// already flattened away.
type ObjectSchema struct {
	Properties map[string]Fragment
	Required   []string
}

// ToolDefinition is the protocol-facing schema and routing metadata for one
// API operation. It is built once when the spec is loaded and must not be
// mutated afterwards; rebuilding the whole tool set is the only update path.
type ToolDefinition struct {
	Name         string
	Description  string
	Method       string
	PathTemplate string
	InputSchema  ObjectSchema
	Locations    map[string]Location
	// MediaType is the request content type recorded at build time, empty
	// when the operation has no request body.
	MediaType string
}

// HasBody reports whether any property routes into the request payload.
func (d *ToolDefinition) HasBody() bool {
	for _, loc := range d.Locations {
		if loc == LocationBody || loc == LocationBodyField {
			return true
		}
	}
	return false
}

// PropertyFragment returns the schema fragment for a named property.
func (d *ToolDefinition) PropertyFragment(name string) (Fragment, bool) {
	frag, ok := d.InputSchema.Properties[name]
	return frag, ok
}

// DuplicatePropertyError reports two parameters or body fields that would
// collapse onto the same flattened property name.
type DuplicatePropertyError struct {
	Name   string
	First  Location
	Second Location
}

func (e *DuplicatePropertyError) Error() string {
	return fmt.Sprintf("duplicate property %q: declared in %s and %s", e.Name, e.First, e.Second)
}

// SchemaBuildError wraps any failure while building one operation's tool
// definition. The operation is not registered; other operations are
// unaffected.
type SchemaBuildError struct {
	Operation string
	Err       error
}

func (e *SchemaBuildError) Error() string {
	return fmt.Sprintf("building tool schema for %s: %v", e.Operation, e.Err)
}

func (e *SchemaBuildError) Unwrap() error { return e.Err }
