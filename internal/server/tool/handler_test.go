package tool

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/oasbridge/oas-mcp/internal/requester"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func textContent(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.Len(t, result.Content, 1)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestCreateHandler_SuccessReturnsBody(t *testing.T) {
	executor := func(ctx context.Context, args map[string]interface{}) (*requester.Response, error) {
		return &requester.Response{StatusCode: 200, Body: []byte(`{"ok":true}`)}, nil
	}

	handler := NewHandler().CreateHandler("get_pet", executor)
	result, err := handler(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.JSONEq(t, `{"ok":true}`, textContent(t, result))
}

func TestCreateHandler_HTTPErrorBecomesToolError(t *testing.T) {
	executor := func(ctx context.Context, args map[string]interface{}) (*requester.Response, error) {
		return &requester.Response{StatusCode: 404, Body: []byte("not found")}, nil
	}

	handler := NewHandler().CreateHandler("get_pet", executor)
	result, err := handler(context.Background(), callRequest(nil))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "HTTP Error 404")
	assert.Contains(t, textContent(t, result), "not found")
}

func TestCreateHandler_MissingPathParameterIsToolError(t *testing.T) {
	executor := func(ctx context.Context, args map[string]interface{}) (*requester.Response, error) {
		return nil, &requester.MissingPathParameterError{Tool: "get_pet", Name: "petId"}
	}

	handler := NewHandler().CreateHandler("get_pet", executor)
	result, err := handler(context.Background(), callRequest(map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, result.IsError)
	assert.Contains(t, textContent(t, result), "petId")
}

func TestCreateHandler_TransportErrorPropagates(t *testing.T) {
	boom := errors.New("connection refused")
	executor := func(ctx context.Context, args map[string]interface{}) (*requester.Response, error) {
		return nil, fmt.Errorf("request failed: %w", boom)
	}

	handler := NewHandler().CreateHandler("get_pet", executor)
	_, err := handler(context.Background(), callRequest(nil))
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "get_pet")
}

func TestCreateHandler_ArgumentsReachExecutor(t *testing.T) {
	var got map[string]interface{}
	executor := func(ctx context.Context, args map[string]interface{}) (*requester.Response, error) {
		got = args
		return &requester.Response{StatusCode: 200, Body: []byte("ok")}, nil
	}

	handler := NewHandler().CreateHandler("get_pet", executor)
	_, err := handler(context.Background(), callRequest(map[string]interface{}{"petId": "7"}))
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"petId": "7"}, got)
}
