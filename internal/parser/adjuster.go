package parser

import (
	"os"

	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/models"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Adjuster applies an operator-supplied adjustments file to the parsed
// spec: selecting which routes become tools and rewriting descriptions.
// With no adjustments loaded it is a pass-through.
type Adjuster struct {
	adjustments *models.MCPAdjustments
}

func NewAdjuster() *Adjuster {
	return &Adjuster{adjustments: &models.MCPAdjustments{}}
}

// Load reads adjustments from a YAML file. An empty path or a missing file
// leaves the adjuster in pass-through mode.
func (a *Adjuster) Load(filePath string) error {
	if filePath == "" {
		logger.Info("No adjustments file provided")
		return nil
	}

	logger.Info("Loading adjustments from file", zap.String("file", filePath))
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		logger.Error("Adjustments file not found")
		return nil
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}

	var adjustments models.MCPAdjustments
	if err := yaml.Unmarshal(data, &adjustments); err != nil {
		return err
	}

	a.adjustments = &adjustments
	return nil
}

// ExistsInMCP reports whether the route/method pair should be exposed as a
// tool. An empty selection list selects everything; a non-empty list is an
// allow list keyed by path then method.
func (a *Adjuster) ExistsInMCP(route, method string) bool {
	if a.adjustments == nil || len(a.adjustments.Routes) == 0 {
		return true
	}

	for _, selection := range a.adjustments.Routes {
		if selection.Path != route {
			continue
		}
		for _, m := range selection.Methods {
			if m == method {
				return true
			}
		}
		return false
	}
	return false
}

// GetDescription returns the override for a route/method, or the original
// description when none is configured.
func (a *Adjuster) GetDescription(route, method, originalDesc string) string {
	if a.adjustments == nil {
		return originalDesc
	}

	for _, desc := range a.adjustments.Descriptions {
		if desc.Path != route {
			continue
		}
		for _, update := range desc.Updates {
			if update.Method == method {
				return update.NewDescription
			}
		}
		break
	}
	return originalDesc
}
