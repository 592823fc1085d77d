package schema

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// classifiedParameter is one OpenAPI parameter folded into a flat tool
// property.
type classifiedParameter struct {
	Name     string
	Fragment Fragment
	Location Location
	Required bool
}

// classifyParameter determines a parameter's request location and produces
// the flattened property for it. The location is recorded on the fragment
// via LocationExtension and carried forward from there; it is never inferred
// again at invocation time.
func classifyParameter(param *openapi3.Parameter) (*classifiedParameter, error) {
	loc, err := parameterLocation(param.In)
	if err != nil {
		return nil, err
	}

	frag := Normalize(FragmentFromSchemaRef(param.Schema))
	if param.Description != "" {
		if _, ok := frag["description"]; !ok {
			frag["description"] = param.Description
		}
	}
	frag[LocationExtension] = string(loc)

	// A path parameter is categorically mandatory, whatever the spec's
	// required flag says.
	required := param.Required || loc == LocationPath

	return &classifiedParameter{
		Name:     param.Name,
		Fragment: frag,
		Location: loc,
		Required: required,
	}, nil
}

func parameterLocation(in string) (Location, error) {
	switch in {
	case openapi3.ParameterInPath:
		return LocationPath, nil
	case openapi3.ParameterInQuery:
		return LocationQuery, nil
	case openapi3.ParameterInHeader:
		return LocationHeader, nil
	case openapi3.ParameterInCookie:
		return LocationCookie, nil
	default:
		return "", fmt.Errorf("unsupported parameter location %q", in)
	}
}
