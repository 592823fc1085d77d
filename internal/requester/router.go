package requester

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"sort"
	"strings"

	"github.com/oasbridge/oas-mcp/internal/config"
	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/reqctx"
	"github.com/oasbridge/oas-mcp/internal/schema"

	"go.uber.org/zap"
)

// RequestBuilder reconstructs an HTTP request from a tool definition and a
// flat argument map. It applies the exact inverse of the build-time
// flattening: every argument is routed by the definition's location map and
// nothing else.
type RequestBuilder struct {
	serviceCfg *config.EndpointConfig
	auth       AuthProvider
	tool       *schema.ToolDefinition
}

// NewRequestBuilder creates a builder bound to one tool definition.
func NewRequestBuilder(serviceCfg *config.EndpointConfig, auth AuthProvider, tool *schema.ToolDefinition) *RequestBuilder {
	return &RequestBuilder{
		serviceCfg: serviceCfg,
		auth:       auth,
		tool:       tool,
	}
}

// routedArguments is the argument map partitioned by request location.
type routedArguments struct {
	path       map[string]string
	query      url.Values
	headers    map[string]string
	cookies    map[string]string
	bodyFields map[string]any
	wholeBody  any
	hasBody    bool
}

// BuildRequest builds the outgoing HTTP request for one invocation.
func (b *RequestBuilder) BuildRequest(ctx context.Context, args map[string]interface{}) (*Request, error) {
	routed := b.routeArguments(args)

	requestURL, err := b.buildURL(routed)
	if err != nil {
		return nil, err
	}

	body, contentType, err := b.buildBody(routed)
	if err != nil {
		return nil, fmt.Errorf("failed to create request body: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, b.tool.Method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	headers := b.mergeHeaders(ctx, routed)
	for key, value := range headers {
		httpReq.Header.Set(key, value)
	}
	authHeaders, err := b.auth.AuthHeaders(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to apply authentication: %w", err)
	}
	// An explicit header-location argument beats the provider's header of
	// the same name. Observed legacy precedence, pinned by test.
	for key, value := range authHeaders {
		if _, explicit := routed.headers[http.CanonicalHeaderKey(key)]; !explicit {
			httpReq.Header.Set(key, value)
		}
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	if cookie := joinCookies(routed.cookies); cookie != "" {
		httpReq.Header.Set("Cookie", cookie)
	}

	return &Request{
		URL:         requestURL,
		Method:      b.tool.Method,
		Body:        body,
		Headers:     headers,
		ContentType: contentType,
		HttpRequest: httpReq,
	}, nil
}

// routeArguments distributes arguments by the location map. Unmapped keys
// are dropped, not rejected: arguments added by a newer spec revision must
// not break older callers. Nil values count as absent.
func (b *RequestBuilder) routeArguments(args map[string]interface{}) *routedArguments {
	routed := &routedArguments{
		path:       make(map[string]string),
		query:      url.Values{},
		headers:    make(map[string]string),
		cookies:    make(map[string]string),
		bodyFields: make(map[string]any),
	}

	for key, value := range args {
		loc, ok := b.tool.Locations[key]
		if !ok {
			logger.Debug("dropping unmapped argument",
				zap.String("tool", b.tool.Name),
				zap.String("argument", key))
			continue
		}
		if value == nil {
			continue
		}

		switch loc {
		case schema.LocationPath:
			routed.path[key] = formatValue(value)
		case schema.LocationQuery:
			if items, ok := value.([]any); ok {
				for _, item := range items {
					routed.query.Add(key, formatValue(item))
				}
			} else {
				routed.query.Add(key, formatValue(value))
			}
		case schema.LocationHeader:
			routed.headers[http.CanonicalHeaderKey(key)] = formatValue(value)
		case schema.LocationCookie:
			routed.cookies[key] = formatValue(value)
		case schema.LocationBodyField:
			routed.bodyFields[key] = value
		case schema.LocationBody:
			routed.wholeBody = value
			routed.hasBody = true
		}
	}

	return routed
}

func (b *RequestBuilder) buildURL(routed *routedArguments) (string, error) {
	path := b.tool.PathTemplate
	for name, loc := range b.tool.Locations {
		if loc != schema.LocationPath {
			continue
		}
		value, ok := routed.path[name]
		if !ok {
			return "", &MissingPathParameterError{Tool: b.tool.Name, Name: name}
		}
		path = strings.ReplaceAll(path, "{"+name+"}", url.PathEscape(value))
	}

	requestURL := strings.TrimSuffix(b.serviceCfg.BaseURL, "/") + path
	if encoded := routed.query.Encode(); encoded != "" {
		requestURL += "?" + encoded
	}
	return requestURL, nil
}

// mergeHeaders layers static endpoint headers, forwarded inbound headers and
// explicit header-location arguments, in increasing precedence.
func (b *RequestBuilder) mergeHeaders(ctx context.Context, routed *routedArguments) map[string]string {
	headers := make(map[string]string)
	for key, value := range b.serviceCfg.Headers {
		headers[http.CanonicalHeaderKey(key)] = value
	}
	if inbound, ok := reqctx.From(ctx); ok {
		for _, name := range b.serviceCfg.ForwardHeaders {
			if value := inbound.Headers.Get(name); value != "" {
				headers[http.CanonicalHeaderKey(name)] = value
			}
		}
		if inbound.SessionID != "" {
			headers[http.CanonicalHeaderKey(reqctx.SessionHeader)] = inbound.SessionID
		}
	}
	for key, value := range routed.headers {
		headers[key] = value
	}
	return headers
}

func (b *RequestBuilder) buildBody(routed *routedArguments) (io.Reader, string, error) {
	if !routed.hasBody && len(routed.bodyFields) == 0 {
		return nil, "", nil
	}

	mediaType := b.tool.MediaType
	switch {
	case routed.hasBody:
		return b.buildWholeBody(routed.wholeBody, mediaType)
	case mediaType == mediaTypeFormURLEncoded:
		return b.buildFormBody(routed.bodyFields)
	case strings.HasPrefix(mediaType, mediaTypeMultipart):
		return b.buildMultipartBody(routed.bodyFields)
	default:
		jsonData, err := json.Marshal(routed.bodyFields)
		if err != nil {
			return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
		}
		return bytes.NewReader(jsonData), mediaType, nil
	}
}

func (b *RequestBuilder) buildWholeBody(value any, mediaType string) (io.Reader, string, error) {
	frag, _ := b.tool.PropertyFragment(schema.WholeBodyProperty)
	if frag != nil && frag["contentEncoding"] == "base64" {
		encoded, ok := value.(string)
		if !ok {
			return nil, "", fmt.Errorf("binary body must be a base64 string, got %T", value)
		}
		raw, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return nil, "", fmt.Errorf("failed to decode base64 body: %w", err)
		}
		return bytes.NewReader(raw), mediaType, nil
	}

	jsonData, err := json.Marshal(value)
	if err != nil {
		return nil, "", fmt.Errorf("failed to marshal request body: %w", err)
	}
	return bytes.NewReader(jsonData), mediaType, nil
}

func (b *RequestBuilder) buildFormBody(fields map[string]any) (io.Reader, string, error) {
	form := url.Values{}
	for name, value := range fields {
		form.Set(name, formatValue(value))
	}
	return strings.NewReader(form.Encode()), mediaTypeFormURLEncoded, nil
}

func (b *RequestBuilder) buildMultipartBody(fields map[string]any) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	writer := multipart.NewWriter(buf)

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		frag, _ := b.tool.PropertyFragment(name)
		if frag != nil && frag["contentEncoding"] == "base64" {
			encoded, ok := fields[name].(string)
			if !ok {
				return nil, "", fmt.Errorf("field %q must be a base64 string, got %T", name, fields[name])
			}
			raw, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, "", fmt.Errorf("failed to decode base64 field %q: %w", name, err)
			}
			part, err := createFilePart(writer, name, frag)
			if err != nil {
				return nil, "", err
			}
			if _, err := part.Write(raw); err != nil {
				return nil, "", fmt.Errorf("failed to write file field %q: %w", name, err)
			}
			continue
		}
		if err := writer.WriteField(name, formatValue(fields[name])); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", name, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return buf, writer.FormDataContentType(), nil
}

func createFilePart(writer *multipart.Writer, name string, frag schema.Fragment) (io.Writer, error) {
	contentType, _ := frag["contentMediaType"].(string)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name=%q; filename=%q`, name, name))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file %q: %w", name, err)
	}
	return part, nil
}

func joinCookies(cookies map[string]string) string {
	if len(cookies) == 0 {
		return ""
	}
	names := make([]string, 0, len(cookies))
	for name := range cookies {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(names))
	for _, name := range names {
		pairs = append(pairs, name+"="+cookies[name])
	}
	return strings.Join(pairs, "; ")
}

func formatValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		// JSON numbers arrive as float64; keep integral values clean.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", v)
	}
}

const (
	mediaTypeFormURLEncoded = "application/x-www-form-urlencoded"
	mediaTypeMultipart      = "multipart/form-data"
)
