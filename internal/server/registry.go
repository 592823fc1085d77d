package server

import (
	"sync/atomic"

	"github.com/oasbridge/oas-mcp/internal/parser"
)

// Registry holds the full set of route tools built from one spec load.
// Replace swaps the whole set atomically, so in-flight invocations keep
// reading the definitions they started with and never observe a partially
// rebuilt set.
type Registry struct {
	tools atomic.Pointer[[]*parser.RouteTool]
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	empty := make([]*parser.RouteTool, 0)
	r.tools.Store(&empty)
	return r
}

// Replace installs a freshly built tool set.
func (r *Registry) Replace(tools []*parser.RouteTool) {
	copied := make([]*parser.RouteTool, len(tools))
	copy(copied, tools)
	r.tools.Store(&copied)
}

// Tools returns the current tool set. The returned slice must be treated as
// read-only.
func (r *Registry) Tools() []*parser.RouteTool {
	return *r.tools.Load()
}

// Names returns the names of all registered tools.
func (r *Registry) Names() []string {
	tools := r.Tools()
	names := make([]string, 0, len(tools))
	for _, rt := range tools {
		names = append(names, rt.Definition.Name)
	}
	return names
}
