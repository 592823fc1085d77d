package requester

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/oasbridge/oas-mcp/internal/config"
	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/schema"

	"go.uber.org/fx"
	"go.uber.org/zap"
)

// HTTPRequester turns tool definitions into executable invocations.
type HTTPRequester struct {
	client     *http.Client
	serviceCfg *config.EndpointConfig
	auth       AuthProvider
}

type HTTPRequesterParams struct {
	fx.In

	ServiceConfig *config.EndpointConfig
	AuthProvider  AuthProvider
}

// NewHTTPRequester creates a new HTTPRequester with the configured timeout.
func NewHTTPRequester(params HTTPRequesterParams) *HTTPRequester {
	timeout := params.ServiceConfig.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &HTTPRequester{
		client: &http.Client{
			Timeout: timeout,
		},
		serviceCfg: params.ServiceConfig,
		auth:       params.AuthProvider,
	}
}

// SetTimeout sets the timeout for the HTTP client
func (r *HTTPRequester) SetTimeout(timeout time.Duration) {
	r.client.Timeout = timeout
}

// BuildToolExecutor creates a function that executes invocations of one
// tool. The definition is read-only here; concurrent executions share
// nothing besides it and the auth provider.
func (r *HTTPRequester) BuildToolExecutor(tool *schema.ToolDefinition) (RouteExecutor, error) {
	if tool == nil {
		return nil, fmt.Errorf("tool definition is nil")
	}
	builder := NewRequestBuilder(r.serviceCfg, r.auth, tool)

	return func(ctx context.Context, args map[string]interface{}) (*Response, error) {
		req, err := builder.BuildRequest(ctx, args)
		if err != nil {
			return nil, err
		}
		logger.Info("request route", zap.String("tool", tool.Name), zap.String("url", req.URL))

		resp, err := r.execute(req.HttpRequest)
		if err != nil {
			logger.Error("failed to execute request", zap.Error(err))
			return nil, err
		}

		if resp.StatusCode != http.StatusUnauthorized && resp.StatusCode != http.StatusForbidden {
			return resp, nil
		}

		// The auth provider owns the retry decision. One retry at most,
		// with refreshed headers; a declined retry surfaces the original
		// response untouched.
		retry, authErr := r.auth.HandleAuthError(resp)
		if authErr != nil {
			return nil, authErr
		}
		if !retry {
			return resp, nil
		}

		logger.Info("retrying after authentication refresh", zap.String("tool", tool.Name))
		retryReq, err := builder.BuildRequest(ctx, args)
		if err != nil {
			return nil, err
		}
		return r.execute(retryReq.HttpRequest)
	}, nil
}

// execute performs the actual HTTP request execution
func (r *HTTPRequester) execute(httpReq *http.Request) (*Response, error) {
	resp, err := r.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			logger.Warn("failed to close response body", zap.Error(closeErr))
		}
	}()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       bodyBytes,
		Headers:    resp.Header,
	}, nil
}
