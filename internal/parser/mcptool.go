package parser

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/oasbridge/oas-mcp/internal/schema"
)

// MCPTool converts a tool definition into its MCP representation. The input
// schema is always a single flat object schema; routing metadata stays on
// the definition and never leaks into the protocol surface beyond the
// per-property location annotation.
func MCPTool(def *schema.ToolDefinition) mcp.Tool {
	props := make(map[string]interface{}, len(def.InputSchema.Properties))
	for name, frag := range def.InputSchema.Properties {
		props[name] = map[string]any(frag)
	}

	required := make([]string, len(def.InputSchema.Required))
	copy(required, def.InputSchema.Required)

	return mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: props,
			Required:   required,
		},
	}
}
