package schema

import (
	"errors"
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func param(name, in string, required bool, schemaType string) *openapi3.ParameterRef {
	return &openapi3.ParameterRef{Value: &openapi3.Parameter{
		Name:     name,
		In:       in,
		Required: required,
		Schema: &openapi3.SchemaRef{
			Value: &openapi3.Schema{Type: &openapi3.Types{schemaType}},
		},
	}}
}

func TestBuild_ExampleScenario(t *testing.T) {
	// GET-ish operation with a path id, optional query flag and a JSON body.
	op := Operation{
		Name:   "update_item",
		Method: "POST",
		Path:   "/items/{id}",
		Parameters: openapi3.Parameters{
			param("id", "path", true, "string"),
			param("verbose", "query", false, "boolean"),
		},
		RequestBody: &openapi3.RequestBody{
			Required: true,
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{Schema: &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"name": {Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
						},
						Required: []string{"name"},
					},
				}},
			},
		},
	}

	def, err := Build(op)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"id", "verbose", "name"}, keys(def.InputSchema.Properties))
	assert.ElementsMatch(t, []string{"id", "name"}, def.InputSchema.Required)
	assert.Equal(t, LocationPath, def.Locations["id"])
	assert.Equal(t, LocationQuery, def.Locations["verbose"])
	assert.Equal(t, LocationBodyField, def.Locations["name"])
	assert.Equal(t, "application/json", def.MediaType)
	require.NoError(t, ValidateFlat(def))
}

func TestBuild_PathParameterAlwaysRequired(t *testing.T) {
	op := Operation{
		Name:   "get_item",
		Method: "GET",
		Path:   "/items/{id}",
		Parameters: openapi3.Parameters{
			// required:false must not make a path parameter optional
			param("id", "path", false, "string"),
		},
	}

	def, err := Build(op)
	require.NoError(t, err)
	assert.Contains(t, def.InputSchema.Required, "id")
}

func TestBuild_LocationAnnotation(t *testing.T) {
	op := Operation{
		Name:   "probe",
		Method: "GET",
		Path:   "/probe/{p}",
		Parameters: openapi3.Parameters{
			param("p", "path", true, "string"),
			param("q", "query", false, "string"),
			param("h", "header", false, "string"),
			param("c", "cookie", false, "string"),
		},
	}

	def, err := Build(op)
	require.NoError(t, err)

	for name, loc := range map[string]Location{
		"p": LocationPath, "q": LocationQuery, "h": LocationHeader, "c": LocationCookie,
	} {
		assert.Equal(t, loc, def.Locations[name], name)
		frag := def.InputSchema.Properties[name]
		assert.Equal(t, string(loc), frag[LocationExtension], name)
	}
}

func TestBuild_DuplicateParameterName(t *testing.T) {
	op := Operation{
		Name:   "dup",
		Method: "GET",
		Path:   "/dup",
		Parameters: openapi3.Parameters{
			param("token", "query", false, "string"),
			param("token", "header", false, "string"),
		},
	}

	_, err := Build(op)
	require.Error(t, err)

	var buildErr *SchemaBuildError
	require.ErrorAs(t, err, &buildErr)
	var dup *DuplicatePropertyError
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "token", dup.Name)
	assert.Equal(t, LocationQuery, dup.First)
	assert.Equal(t, LocationHeader, dup.Second)
}

func TestBuild_BodyFieldCollidesWithParameter(t *testing.T) {
	op := Operation{
		Name:   "collide",
		Method: "POST",
		Path:   "/collide",
		Parameters: openapi3.Parameters{
			param("name", "query", false, "string"),
		},
		RequestBody: &openapi3.RequestBody{
			Content: openapi3.Content{
				"application/json": &openapi3.MediaType{Schema: &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"name": {Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}},
						},
					},
				}},
			},
		},
	}

	_, err := Build(op)
	var dup *DuplicatePropertyError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, LocationQuery, dup.First)
	assert.Equal(t, LocationBodyField, dup.Second)
}

func TestBuild_NormalizesParameterSchemas(t *testing.T) {
	op := Operation{
		Name:   "enum_param",
		Method: "GET",
		Path:   "/things",
		Parameters: openapi3.Parameters{
			{Value: &openapi3.Parameter{
				Name: "kind",
				In:   "query",
				Schema: &openapi3.SchemaRef{
					Value: &openapi3.Schema{Enum: []any{"a", "b"}},
				},
			}},
		},
	}

	def, err := Build(op)
	require.NoError(t, err)

	frag := def.InputSchema.Properties["kind"]
	assert.Equal(t, "string", frag["type"])
	assert.Equal(t, []any{"a", "b"}, frag["enum"])
}

func keys(m map[string]Fragment) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
