// Package tool provides tool handling functionality for the MCP server.
package tool

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/requester"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// Handler manages tool execution.
type Handler struct{}

// NewHandler creates a new tool handler.
func NewHandler() *Handler {
	return &Handler{}
}

// CreateHandler creates a handler function for a specific tool.
func (h *Handler) CreateHandler(toolName string, executor requester.RouteExecutor) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := request.GetArguments()
		resp, err := executor(ctx, args)
		if err != nil {
			var missing *requester.MissingPathParameterError
			if errors.As(err, &missing) {
				return mcp.NewToolResultError(missing.Error()), nil
			}
			return nil, fmt.Errorf("failed to execute request for tool %s: %w", toolName, err)
		}

		if resp.StatusCode >= http.StatusBadRequest {
			errMessage := fmt.Sprintf("HTTP Error %d: %s", resp.StatusCode, string(resp.Body))
			logger.Error("HTTP Error",
				zap.String("tool", toolName),
				zap.Int("status", resp.StatusCode))
			return mcp.NewToolResultError(errMessage), nil
		}

		return mcp.NewToolResultText(string(resp.Body)), nil
	}
}
