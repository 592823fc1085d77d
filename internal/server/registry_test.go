package server

import (
	"sync"
	"testing"

	"github.com/oasbridge/oas-mcp/internal/parser"
	"github.com/oasbridge/oas-mcp/internal/schema"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func routeTool(name string) *parser.RouteTool {
	return &parser.RouteTool{
		Definition: &schema.ToolDefinition{Name: name},
	}
}

func TestRegistryStartsEmpty(t *testing.T) {
	r := NewRegistry()
	assert.Empty(t, r.Tools())
	assert.Empty(t, r.Names())
}

func TestRegistryReplaceSwapsWholeSet(t *testing.T) {
	r := NewRegistry()

	r.Replace([]*parser.RouteTool{routeTool("a"), routeTool("b")})
	assert.Equal(t, []string{"a", "b"}, r.Names())

	r.Replace([]*parser.RouteTool{routeTool("c")})
	assert.Equal(t, []string{"c"}, r.Names())
}

func TestRegistryReplaceCopiesInput(t *testing.T) {
	r := NewRegistry()
	tools := []*parser.RouteTool{routeTool("a"), routeTool("b")}
	r.Replace(tools)

	// A caller mutating its own slice must not affect the registry.
	tools[0] = routeTool("mutated")
	assert.Equal(t, []string{"a", "b"}, r.Names())
}

func TestRegistrySnapshotSurvivesReplace(t *testing.T) {
	r := NewRegistry()
	r.Replace([]*parser.RouteTool{routeTool("old")})

	snapshot := r.Tools()
	r.Replace([]*parser.RouteTool{routeTool("new")})

	require.Len(t, snapshot, 1)
	assert.Equal(t, "old", snapshot[0].Definition.Name)
	assert.Equal(t, []string{"new"}, r.Names())
}

func TestRegistryConcurrentReplaceAndRead(t *testing.T) {
	r := NewRegistry()
	r.Replace([]*parser.RouteTool{routeTool("seed")})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				r.Replace([]*parser.RouteTool{routeTool("a"), routeTool("b")})
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				for _, rt := range r.Tools() {
					_ = rt.Definition.Name
				}
			}
		}()
	}
	wg.Wait()

	assert.Len(t, r.Tools(), 2)
}
