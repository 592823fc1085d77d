package schema

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Operation is the OpenAPI-derived description of one API operation the
// builder consumes.
type Operation struct {
	Name        string
	Description string
	Method      string
	Path        string
	Parameters  openapi3.Parameters
	RequestBody *openapi3.RequestBody
}

// Build composes the parameter classifier, request body selector and type
// normalizer into one flat tool definition. Merge order is path, query,
// header, cookie, then body fields; a later stage may never shadow an
// earlier one, so any name collision fails the build for this operation.
func Build(op Operation) (*ToolDefinition, error) {
	def := &ToolDefinition{
		Name:         op.Name,
		Description:  op.Description,
		Method:       op.Method,
		PathTemplate: op.Path,
		InputSchema: ObjectSchema{
			Properties: make(map[string]Fragment),
		},
		Locations: make(map[string]Location),
	}

	classified, err := classifyAll(op.Parameters)
	if err != nil {
		return nil, &SchemaBuildError{Operation: op.Name, Err: err}
	}

	for _, loc := range []Location{LocationPath, LocationQuery, LocationHeader, LocationCookie} {
		for _, param := range classified {
			if param.Location != loc {
				continue
			}
			if err := merge(def, param); err != nil {
				return nil, &SchemaBuildError{Operation: op.Name, Err: err}
			}
		}
	}

	body, err := selectRequestBody(op.RequestBody)
	if err != nil {
		return nil, &SchemaBuildError{Operation: op.Name, Err: err}
	}
	if body != nil {
		def.MediaType = body.MediaType
		for i := range body.Properties {
			if err := merge(def, &body.Properties[i]); err != nil {
				return nil, &SchemaBuildError{Operation: op.Name, Err: err}
			}
		}
	}

	return def, nil
}

func classifyAll(params openapi3.Parameters) ([]*classifiedParameter, error) {
	out := make([]*classifiedParameter, 0, len(params))
	for _, ref := range params {
		if ref == nil || ref.Value == nil {
			continue
		}
		cp, err := classifyParameter(ref.Value)
		if err != nil {
			return nil, err
		}
		out = append(out, cp)
	}
	return out, nil
}

func merge(def *ToolDefinition, param *classifiedParameter) error {
	if first, exists := def.Locations[param.Name]; exists {
		return &DuplicatePropertyError{
			Name:   param.Name,
			First:  first,
			Second: param.Location,
		}
	}
	def.InputSchema.Properties[param.Name] = param.Fragment
	def.Locations[param.Name] = param.Location
	if param.Required {
		def.InputSchema.Required = append(def.InputSchema.Required, param.Name)
	}
	return nil
}

// ValidateFlat checks the invariant the protocol surface relies on: the
// input schema is a single-level object whose required entries all name
// declared properties.
func ValidateFlat(def *ToolDefinition) error {
	for _, name := range def.InputSchema.Required {
		if _, ok := def.InputSchema.Properties[name]; !ok {
			return fmt.Errorf("required property %q is not declared", name)
		}
	}
	for name := range def.InputSchema.Properties {
		if _, ok := def.Locations[name]; !ok {
			return fmt.Errorf("property %q has no location mapping", name)
		}
	}
	return nil
}
