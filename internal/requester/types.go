package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// RouteExecutor executes one tool invocation with a flat argument map.
type RouteExecutor func(ctx context.Context, args map[string]interface{}) (*Response, error)

// Request represents a fully built HTTP request
type Request struct {
	URL         string
	Method      string
	Body        io.Reader
	Headers     map[string]string
	ContentType string
	HttpRequest *http.Request // The actual HTTP request
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// MissingPathParameterError reports an invocation that omitted a value for a
// path template placeholder. The call fails and is never retried.
type MissingPathParameterError struct {
	Tool string
	Name string
}

func (e *MissingPathParameterError) Error() string {
	return fmt.Sprintf("tool %s: missing required path parameter %q", e.Tool, e.Name)
}
