// Package server provides the core MCP (Model Control Protocol) server implementation.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/oasbridge/oas-mcp/internal/config"
	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/parser"
	"github.com/oasbridge/oas-mcp/internal/requester"
	"github.com/oasbridge/oas-mcp/internal/server/handler"
	"github.com/oasbridge/oas-mcp/internal/server/tool"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// shutdownTimeout is the maximum time to wait for server shutdown
	shutdownTimeout = 5 * time.Second
)

// Server exposes the built tool set over stdio, SSE or streamable HTTP.
type Server struct {
	config    *config.Config
	parser    parser.Parser
	mcp       *mcpserver.MCPServer
	requester *requester.HTTPRequester
	registry  *Registry
	handler   *handler.Handler
	tool      *tool.Handler
}

// NewServer creates a new MCP server instance with the provided
// configuration, builds the tool set from the configured spec and registers
// every tool.
func NewServer(cfg *config.Config, p parser.Parser, requester *requester.HTTPRequester) *Server {
	if cfg == nil {
		logger.Fatal("Config cannot be nil")
	}
	if p == nil {
		logger.Fatal("Parser cannot be nil")
	}
	if requester == nil {
		logger.Fatal("Requester cannot be nil")
	}

	mcpServer := mcpserver.NewMCPServer(
		cfg.Server.Name,
		cfg.Server.Version,
	)

	srv := &Server{
		config:    cfg,
		parser:    p,
		mcp:       mcpServer,
		requester: requester,
		registry:  NewRegistry(),
		handler:   handler.NewHandler(),
		tool:      tool.NewHandler(),
	}

	if err := srv.setupTools(); err != nil {
		logger.Fatal("Failed to setup tools", zap.Error(err))
	}

	return srv
}

func (s *Server) setupTools() error {
	if err := s.parser.Init(s.config.SpecFile, s.config.AdjustmentsFile); err != nil {
		return fmt.Errorf("failed to initialize parser: %w", err)
	}

	routes := s.parser.GetRouteTools()
	s.registerRoutes(routes)
	s.registry.Replace(routes)
	return nil
}

// Reload rebuilds the whole tool set from the spec and swaps the registry
// atomically. A failed reload leaves the current set untouched.
func (s *Server) Reload() error {
	fresh := parser.NewSpecParser(parser.NewAdjuster())
	if err := fresh.Init(s.config.SpecFile, s.config.AdjustmentsFile); err != nil {
		return fmt.Errorf("failed to reload spec: %w", err)
	}
	routes := fresh.GetRouteTools()

	s.mcp.DeleteTools(s.registry.Names()...)
	s.registerRoutes(routes)
	s.registry.Replace(routes)

	logger.Info("Reloaded tool registry", zap.Int("tools", len(routes)))
	return nil
}

func (s *Server) registerRoutes(routes []*parser.RouteTool) {
	for _, route := range routes {
		executor, err := s.requester.BuildToolExecutor(route.Definition)
		if err != nil {
			logger.Error("Failed to build tool executor",
				zap.String("tool", route.Definition.Name), zap.Error(err))
			continue
		}
		s.mcp.AddTool(route.Tool, s.tool.CreateHandler(route.Definition.Name, executor))
	}
}

func (s *Server) ServeSSE(ctx context.Context) error {
	logger.Info("Starting SSE server")

	sseServer := mcpserver.NewSSEServer(
		s.mcp,
		mcpserver.WithBaseURL(fmt.Sprintf("http://%s:%d", s.config.Server.Host, s.config.Server.Port)),
	)

	return s.serveHTTP(ctx, sseServer, "SSE")
}

func (s *Server) ServeHTTP(ctx context.Context) error {
	logger.Info("Starting HTTP server")
	httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
	return s.serveHTTP(ctx, httpServer, "HTTP")
}

func (s *Server) serveHTTP(ctx context.Context, mcpHandler http.Handler, mode string) error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: s.handler.CreateHTTPHandler(mcpHandler),
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.String("mode", mode),
			zap.String("address", addr),
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for context cancellation or server error
	select {
	case <-ctx.Done():
		logger.Info("Shutting down server",
			zap.String("mode", mode),
			zap.Duration("timeout", shutdownTimeout),
		)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

func (s *Server) ServeSTDIO(ctx context.Context) error {
	logger.Info("Starting STDIO server")
	stdioServer := mcpserver.NewStdioServer(s.mcp)
	return stdioServer.Listen(ctx, os.Stdin, os.Stdout)
}

// Start starts the server in the configured mode (SSE, HTTP, or STDIO).
func (s *Server) Start(ctx context.Context) error {
	logger.Info("Starting server",
		zap.String("mode", string(s.config.Server.Mode)),
		zap.String("version", s.config.Server.Version),
	)

	switch s.config.Server.Mode {
	case config.ServerModeSSE:
		return s.ServeSSE(ctx)
	case config.ServerModeHTTP:
		return s.ServeHTTP(ctx)
	case config.ServerModeSTDIO:
		return s.ServeSTDIO(ctx)
	default:
		return fmt.Errorf("unsupported server mode: %s", s.config.Server.Mode)
	}
}

// Module provides the MCP server dependencies
var Module = fx.Module("mcp_server",
	fx.Provide(
		NewServer,
	),
)
