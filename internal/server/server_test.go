package server

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oasbridge/oas-mcp/internal/config"
	"github.com/oasbridge/oas-mcp/internal/parser"
	"github.com/oasbridge/oas-mcp/internal/requester"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const specPingOnly = `{
  "openapi": "3.0.0",
  "info": {"title": "Reloadable", "version": "1.0.0"},
  "paths": {
    "/ping": {
      "get": {
        "operationId": "ping",
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

const specPingAndEcho = `{
  "openapi": "3.0.0",
  "info": {"title": "Reloadable", "version": "1.0.0"},
  "paths": {
    "/ping": {
      "get": {
        "operationId": "ping",
        "responses": {"200": {"description": "ok"}}
      }
    },
    "/echo": {
      "post": {
        "operationId": "echo",
        "responses": {"200": {"description": "ok"}}
      }
    }
  }
}`

func writeSpecFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func newTestServer(t *testing.T, specFile string) *Server {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Name: "test-server", Version: "0.0.1"},
		EndpointConfig: config.EndpointConfig{
			BaseURL: "http://upstream.local",
		},
		SpecFile: specFile,
	}

	auth, err := requester.NewAuthProvider(&cfg.EndpointConfig)
	require.NoError(t, err)
	req := requester.NewHTTPRequester(requester.HTTPRequesterParams{
		ServiceConfig: &cfg.EndpointConfig,
		AuthProvider:  auth,
	})

	return NewServer(cfg, parser.NewSpecParser(parser.NewAdjuster()), req)
}

func TestNewServerRegistersTools(t *testing.T) {
	srv := newTestServer(t, writeSpecFile(t, specPingOnly))
	assert.Equal(t, []string{"ping"}, srv.registry.Names())
}

func TestReloadSwapsToolSet(t *testing.T) {
	specFile := writeSpecFile(t, specPingOnly)
	srv := newTestServer(t, specFile)
	require.Equal(t, []string{"ping"}, srv.registry.Names())

	require.NoError(t, os.WriteFile(specFile, []byte(specPingAndEcho), 0o644))
	require.NoError(t, srv.Reload())
	assert.ElementsMatch(t, []string{"ping", "echo"}, srv.registry.Names())
}

func TestReloadFailureKeepsCurrentSet(t *testing.T) {
	specFile := writeSpecFile(t, specPingOnly)
	srv := newTestServer(t, specFile)

	require.NoError(t, os.WriteFile(specFile, []byte("{broken"), 0o644))
	require.Error(t, srv.Reload())
	assert.Equal(t, []string{"ping"}, srv.registry.Names())
}
