package schema

import (
	"testing"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringSchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{Type: &openapi3.Types{"string"}}}
}

func binarySchema() *openapi3.SchemaRef {
	return &openapi3.SchemaRef{Value: &openapi3.Schema{
		Type:   &openapi3.Types{"string"},
		Format: "binary",
	}}
}

func TestSelectRequestBody_PrefersJSON(t *testing.T) {
	// Determinism: application/json wins whatever the declaration order.
	body := &openapi3.RequestBody{
		Content: openapi3.Content{
			"application/xml": &openapi3.MediaType{Schema: stringSchema()},
			"application/json": &openapi3.MediaType{Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"name": stringSchema(),
					},
				},
			}},
		},
	}

	for i := 0; i < 10; i++ {
		selected, err := selectRequestBody(body)
		require.NoError(t, err)
		require.NotNil(t, selected)
		assert.Equal(t, "application/json", selected.MediaType)
	}
}

func TestSelectRequestBody_JSONSuffixMediaType(t *testing.T) {
	body := &openapi3.RequestBody{
		Content: openapi3.Content{
			"application/xml":           &openapi3.MediaType{Schema: stringSchema()},
			"application/vnd.api+json":  &openapi3.MediaType{Schema: stringSchema()},
			"application/octet-stream2": &openapi3.MediaType{Schema: stringSchema()},
		},
	}

	selected, err := selectRequestBody(body)
	require.NoError(t, err)
	assert.Equal(t, "application/vnd.api+json", selected.MediaType)
}

func TestSelectRequestBody_FlattensJSONObject(t *testing.T) {
	body := &openapi3.RequestBody{
		Required: true,
		Content: openapi3.Content{
			"application/json": &openapi3.MediaType{Schema: &openapi3.SchemaRef{
				Value: &openapi3.Schema{
					Type: &openapi3.Types{"object"},
					Properties: openapi3.Schemas{
						"name": stringSchema(),
						"age":  {Value: &openapi3.Schema{Type: &openapi3.Types{"integer"}}},
					},
					Required: []string{"name"},
				},
			}},
		},
	}

	selected, err := selectRequestBody(body)
	require.NoError(t, err)
	require.Len(t, selected.Properties, 2)

	byName := make(map[string]classifiedParameter)
	for _, p := range selected.Properties {
		byName[p.Name] = p
	}

	assert.Equal(t, LocationBodyField, byName["name"].Location)
	assert.True(t, byName["name"].Required)
	assert.False(t, byName["age"].Required)
	assert.Equal(t, string(LocationBodyField), byName["name"].Fragment[LocationExtension])
}

func TestSelectRequestBody_MultipartEncoding(t *testing.T) {
	body := &openapi3.RequestBody{
		Content: openapi3.Content{
			"multipart/form-data": &openapi3.MediaType{
				Schema: &openapi3.SchemaRef{
					Value: &openapi3.Schema{
						Type: &openapi3.Types{"object"},
						Properties: openapi3.Schemas{
							"avatar":  binarySchema(),
							"comment": stringSchema(),
						},
						Required: []string{"avatar"},
					},
				},
				Encoding: map[string]*openapi3.Encoding{
					"avatar": {ContentType: "image/png"},
				},
			},
		},
	}

	selected, err := selectRequestBody(body)
	require.NoError(t, err)
	assert.Equal(t, "multipart/form-data", selected.MediaType)
	require.Len(t, selected.Properties, 2)

	byName := make(map[string]classifiedParameter)
	for _, p := range selected.Properties {
		byName[p.Name] = p
	}

	avatar := byName["avatar"].Fragment
	assert.Equal(t, "string", avatar["type"])
	assert.Equal(t, "base64", avatar["contentEncoding"])
	assert.Equal(t, "image/png", avatar["contentMediaType"])
	assert.True(t, byName["avatar"].Required)

	comment := byName["comment"].Fragment
	assert.Equal(t, "string", comment["type"])
	assert.NotContains(t, comment, "contentEncoding")
}

func TestSelectRequestBody_OpaquePayload(t *testing.T) {
	body := &openapi3.RequestBody{
		Required: true,
		Content: openapi3.Content{
			"application/octet-stream": &openapi3.MediaType{Schema: binarySchema()},
		},
	}

	selected, err := selectRequestBody(body)
	require.NoError(t, err)
	require.Len(t, selected.Properties, 1)

	prop := selected.Properties[0]
	assert.Equal(t, WholeBodyProperty, prop.Name)
	assert.Equal(t, LocationBody, prop.Location)
	assert.True(t, prop.Required)
	assert.Equal(t, "base64", prop.Fragment["contentEncoding"])
	assert.Equal(t, "application/octet-stream", prop.Fragment["contentMediaType"])
}

func TestSelectRequestBody_NoContent(t *testing.T) {
	selected, err := selectRequestBody(nil)
	require.NoError(t, err)
	assert.Nil(t, selected)

	selected, err = selectRequestBody(&openapi3.RequestBody{})
	require.NoError(t, err)
	assert.Nil(t, selected)
}
