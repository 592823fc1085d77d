package parser

import (
	"io"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oasbridge/oas-mcp/internal/schema"
)

// RouteTool pairs a tool definition with its MCP protocol surface.
type RouteTool struct {
	Definition *schema.ToolDefinition
	Tool       mcp.Tool
}

// Parser handles parsing of Swagger/OpenAPI specifications
type Parser interface {
	// Init parses a Swagger/OpenAPI specification from a file
	Init(specFile string, adjustmentsFile string) error
	// ParseReader parses a Swagger/OpenAPI specification from a reader
	ParseReader(reader io.Reader) error
	// GetRouteTools returns the parsed route tools
	GetRouteTools() []*RouteTool
}

// SpecParser parses OpenAPI specifications and builds tool definitions
type SpecParser struct {
	doc        *openapi3.T
	routeTools []*RouteTool
	adjuster   *Adjuster
}
