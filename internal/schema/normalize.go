package schema

import (
	"strconv"
)

// Normalize rewrites an OpenAPI-flavoured fragment into a JSON-Schema
// compatible one. It is total: unrecognized shapes pass through unchanged,
// and normalizing an already-normalized fragment is a no-op. The input is
// never mutated.
//
// Rules, first match wins per fragment:
//  1. file types (type "file", format "file", or string with binary/byte
//     format) become base64-encoded strings
//  2. the non-standard "float" type becomes number + format float
//  3. an enum without a declared type defaults to string
//  4. an example whose literal form does not match a declared numeric type
//     is coerced; coercion failure leaves the example untouched
//
// Rule application descends into "properties" and "items".
func Normalize(frag Fragment) Fragment {
	out := cloneFragment(frag)
	normalizeInPlace(out)
	return out
}

func normalizeInPlace(frag Fragment) {
	typ, _ := frag["type"].(string)
	format, _ := frag["format"].(string)

	switch {
	case isFileLike(typ, format):
		frag["type"] = "string"
		frag["contentEncoding"] = "base64"
		delete(frag, "format")

	case typ == "float":
		frag["type"] = "number"
		frag["format"] = "float"

	case typ == "" && frag["enum"] != nil:
		frag["type"] = "string"

	default:
		coerceExample(frag, typ)
	}

	if props, ok := frag["properties"].(map[string]any); ok {
		for _, v := range props {
			if child, ok := v.(map[string]any); ok {
				normalizeInPlace(child)
			}
		}
	}
	if items, ok := frag["items"].(map[string]any); ok {
		normalizeInPlace(items)
	}
}

func isFileLike(typ, format string) bool {
	if typ == "file" || format == "file" {
		return true
	}
	return typ == "string" && (format == "binary" || format == "byte")
}

// coerceExample rewrites a quoted numeral example under a numeric type. A
// non-numeric string is left as-is: failing a whole schema build over one
// bad example value would be disproportionate.
func coerceExample(frag Fragment, typ string) {
	example, ok := frag["example"].(string)
	if !ok {
		return
	}
	switch typ {
	case "integer":
		if n, err := strconv.ParseInt(example, 10, 64); err == nil {
			frag["example"] = n
		}
	case "number":
		if f, err := strconv.ParseFloat(example, 64); err == nil {
			frag["example"] = f
		}
	}
}
