package schema

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

const (
	mediaTypeJSON      = "application/json"
	mediaTypeForm      = "application/x-www-form-urlencoded"
	mediaTypeMultipart = "multipart/form-data"
)

// WholeBodyProperty is the property name used when a non-structured payload
// is represented as a single argument.
const WholeBodyProperty = "body"

// selectedBody is the request body reduced to one media type and a set of
// flattened properties.
type selectedBody struct {
	MediaType  string
	Properties []classifiedParameter
}

// selectRequestBody picks exactly one content type to represent in the tool
// schema and flattens it. application/json (or any +json type) wins when
// present; otherwise the first declared media type is used. kin-openapi
// models content as a map, so "first declared" is resolved by sorting the
// media type names, which keeps the choice stable across runs and machines.
func selectRequestBody(body *openapi3.RequestBody) (*selectedBody, error) {
	if body == nil || len(body.Content) == 0 {
		return nil, nil
	}

	mediaType := pickMediaType(body.Content)
	mt := body.Content[mediaType]

	switch {
	case isJSONMediaType(mediaType):
		return flattenJSONBody(mediaType, mt, body.Required), nil
	case mediaType == mediaTypeForm || strings.HasPrefix(mediaType, mediaTypeMultipart):
		return flattenFormBody(mediaType, mt), nil
	default:
		return opaqueBody(mediaType, mt, body.Required), nil
	}
}

func pickMediaType(content openapi3.Content) string {
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)

	if _, ok := content[mediaTypeJSON]; ok {
		return mediaTypeJSON
	}
	for _, name := range names {
		if isJSONMediaType(name) {
			return name
		}
	}
	return names[0]
}

func isJSONMediaType(mediaType string) bool {
	base := mediaType
	if i := strings.Index(base, ";"); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	return base == mediaTypeJSON || strings.HasSuffix(base, "+json")
}

// flattenJSONBody turns an object-shaped JSON body into one body_field
// property per top-level field. A non-object payload (array, scalar, or an
// unconstrained schema) stays a single body property.
func flattenJSONBody(mediaType string, mt *openapi3.MediaType, bodyRequired bool) *selectedBody {
	schema := mt.Schema
	if schema != nil && schema.Value != nil && len(schema.Value.Properties) > 0 {
		requiredFields := make(map[string]bool)
		for _, name := range schema.Value.Required {
			requiredFields[name] = true
		}

		props := make([]classifiedParameter, 0, len(schema.Value.Properties))
		for name, propRef := range schema.Value.Properties {
			frag := Normalize(FragmentFromSchemaRef(propRef))
			frag[LocationExtension] = string(LocationBodyField)
			props = append(props, classifiedParameter{
				Name:     name,
				Fragment: frag,
				Location: LocationBodyField,
				Required: requiredFields[name],
			})
		}
		sortProperties(props)
		return &selectedBody{MediaType: mediaType, Properties: props}
	}

	frag := Normalize(FragmentFromSchemaRef(schema))
	if _, ok := frag["type"]; !ok {
		frag["type"] = "object"
	}
	frag[LocationExtension] = string(LocationBody)
	return &selectedBody{
		MediaType: mediaType,
		Properties: []classifiedParameter{{
			Name:     WholeBodyProperty,
			Fragment: frag,
			Location: LocationBody,
			Required: bodyRequired,
		}},
	}
}

// flattenFormBody flattens multipart and urlencoded bodies field by field so
// they compose uniformly with path/query/header properties. Per-field
// encodings map to contentMediaType.
func flattenFormBody(mediaType string, mt *openapi3.MediaType) *selectedBody {
	schema := mt.Schema
	if schema == nil || schema.Value == nil {
		return &selectedBody{MediaType: mediaType}
	}

	requiredFields := make(map[string]bool)
	for _, name := range schema.Value.Required {
		requiredFields[name] = true
	}

	props := make([]classifiedParameter, 0, len(schema.Value.Properties))
	for name, propRef := range schema.Value.Properties {
		frag := FragmentFromSchemaRef(propRef)
		if enc, ok := mt.Encoding[name]; ok && enc.ContentType != "" {
			frag["contentMediaType"] = enc.ContentType
		}
		frag = Normalize(frag)
		frag[LocationExtension] = string(LocationBodyField)
		props = append(props, classifiedParameter{
			Name:     name,
			Fragment: frag,
			Location: LocationBodyField,
			Required: requiredFields[name],
		})
	}
	sortProperties(props)
	return &selectedBody{MediaType: mediaType, Properties: props}
}

// opaqueBody represents any other content type as a single body property
// carrying the declared media type, base64-encoded when the underlying
// schema is binary.
func opaqueBody(mediaType string, mt *openapi3.MediaType, bodyRequired bool) *selectedBody {
	frag := FragmentFromSchemaRef(mt.Schema)
	if _, ok := frag["type"]; !ok {
		frag["type"] = "string"
		frag["format"] = "binary"
	}
	frag["contentMediaType"] = mediaType
	frag = Normalize(frag)
	frag[LocationExtension] = string(LocationBody)

	return &selectedBody{
		MediaType: mediaType,
		Properties: []classifiedParameter{{
			Name:     WholeBodyProperty,
			Fragment: frag,
			Location: LocationBody,
			Required: bodyRequired,
		}},
	}
}

func sortProperties(props []classifiedParameter) {
	sort.Slice(props, func(i, j int) bool { return props[i].Name < props[j].Name })
}
