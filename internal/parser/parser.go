// Package parser loads OpenAPI/Swagger specifications and turns each
// operation into a tool definition plus its MCP surface.
package parser

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/schema"

	"github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
	"github.com/getkin/kin-openapi/openapi3"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// NewSpecParser creates a new SpecParser instance
func NewSpecParser(adjuster *Adjuster) *SpecParser {
	return &SpecParser{
		routeTools: make([]*RouteTool, 0),
		adjuster:   adjuster,
	}
}

// GetRouteTools returns the parsed route tools
func (p *SpecParser) GetRouteTools() []*RouteTool {
	return p.routeTools
}

// Init parses a Swagger/OpenAPI specification from a file
func (p *SpecParser) Init(specFile string, adjustmentsFile string) error {
	data, err := os.ReadFile(specFile)
	if err != nil {
		return fmt.Errorf("failed to read spec file: %w", err)
	}
	if adjustmentsFile != "" {
		if err := p.adjuster.Load(adjustmentsFile); err != nil {
			return fmt.Errorf("failed to load adjustments file: %w", err)
		}
	}

	if err := p.detectAndParseOpenAPI(data); err != nil {
		return err
	}

	return p.processOperations()
}

// ParseReader parses a Swagger/OpenAPI specification from a reader
func (p *SpecParser) ParseReader(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read spec: %w", err)
	}

	if err := p.detectAndParseOpenAPI(data); err != nil {
		return err
	}

	return p.processOperations()
}

// detectAndParseOpenAPI attempts to parse data as either OpenAPI 2.0 or 3.0.
// Both JSON and YAML documents are accepted.
func (p *SpecParser) detectAndParseOpenAPI(data []byte) error {
	doc, jsonData, err := decodeDocument(data)
	if err != nil {
		return err
	}

	swaggerVersion, hasSwagger := doc["swagger"]
	openapiVersion, hasOpenAPI := doc["openapi"]

	if !hasSwagger && !hasOpenAPI {
		return fmt.Errorf("document is missing 'swagger' or 'openapi' version field")
	}

	if hasSwagger {
		convertedDoc, err := p.convertOpenAPI2to3(jsonData, swaggerVersion)
		if err != nil {
			return err
		}
		p.doc = convertedDoc
		return nil
	}

	if ver, ok := openapiVersion.(string); !ok || !strings.HasPrefix(ver, "3.") {
		return fmt.Errorf("unsupported OpenAPI version: %v", openapiVersion)
	}

	loader := openapi3.NewLoader()
	oasDoc, err := loader.LoadFromData(data)
	if err != nil {
		logger.Error("Failed to parse OpenAPI 3.0 spec", zap.Error(err))
		return fmt.Errorf("failed to parse OpenAPI spec: %w", err)
	}
	if oasDoc == nil {
		return fmt.Errorf("failed to parse OpenAPI spec: document is empty")
	}

	logger.Info("Successfully parsed OpenAPI 3.0 spec")
	p.doc = oasDoc
	return nil
}

// decodeDocument reads the top-level document as JSON, falling back to YAML.
// The returned byte slice is always JSON, so downstream consumers only need
// one decode path.
func decodeDocument(data []byte) (map[string]interface{}, []byte, error) {
	var doc map[string]interface{}
	if err := json.Unmarshal(data, &doc); err == nil {
		return doc, data, nil
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("spec is neither valid JSON nor valid YAML: %w", err)
	}
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to re-encode YAML spec: %w", err)
	}
	return doc, jsonData, nil
}

// convertOpenAPI2to3 converts an OpenAPI 2.0 specification to OpenAPI 3.0
func (p *SpecParser) convertOpenAPI2to3(data []byte, swaggerVersion interface{}) (*openapi3.T, error) {
	var swagger2Doc openapi2.T
	if err := json.Unmarshal(data, &swagger2Doc); err != nil {
		return nil, fmt.Errorf("failed to parse OpenAPI 2.0 spec: %w", err)
	}

	if swagger2Doc.Swagger != "2.0" {
		return nil, fmt.Errorf("unsupported Swagger version: %s", swaggerVersion)
	}

	logger.Info("Detected OpenAPI 2.0 spec, converting to OpenAPI 3.0")
	convertedDoc, err := openapi2conv.ToV3(&swagger2Doc)
	if err != nil {
		logger.Error("Failed to convert OpenAPI 2.0 to 3.0", zap.Error(err))
		return nil, fmt.Errorf("failed to convert OpenAPI 2.0 to 3.0: %w", err)
	}

	return convertedDoc, nil
}

// processOperations iterates through paths and operations in the spec,
// building one tool definition per selected operation. A build failure
// skips that single operation; the rest of the spec still loads.
func (p *SpecParser) processOperations() error {
	for path, pathItem := range p.doc.Paths.Map() {
		httpMethods := []struct {
			Method    string
			Operation *openapi3.Operation
		}{
			{"GET", pathItem.Get},
			{"POST", pathItem.Post},
			{"PUT", pathItem.Put},
			{"DELETE", pathItem.Delete},
			{"PATCH", pathItem.Patch},
		}

		for _, httpMethod := range httpMethods {
			if httpMethod.Operation == nil {
				continue
			}
			if !p.adjuster.ExistsInMCP(path, httpMethod.Method) {
				continue
			}

			def, err := p.buildDefinition(path, httpMethod.Method, pathItem, httpMethod.Operation)
			if err != nil {
				logger.Warn("Skipping operation",
					zap.String("path", path),
					zap.String("method", httpMethod.Method),
					zap.Error(err))
				continue
			}

			p.routeTools = append(p.routeTools, &RouteTool{
				Definition: def,
				Tool:       MCPTool(def),
			})
		}
	}

	return nil
}

// buildDefinition assembles the schema builder's input for one operation.
func (p *SpecParser) buildDefinition(path, method string, pathItem *openapi3.PathItem, operation *openapi3.Operation) (*schema.ToolDefinition, error) {
	params := mergeParameters(pathItem.Parameters, operation.Parameters)

	op := schema.Operation{
		Name:        toolName(path, method, operation),
		Description: p.description(path, method, operation),
		Method:      method,
		Path:        path,
		Parameters:  params,
	}
	if operation.RequestBody != nil {
		op.RequestBody = operation.RequestBody.Value
	}

	def, err := schema.Build(op)
	if err != nil {
		return nil, err
	}
	if err := schema.ValidateFlat(def); err != nil {
		return nil, err
	}
	return def, nil
}

// mergeParameters combines path-item-level and operation-level parameters.
// An operation may re-declare a path-item parameter with the same name and
// location; the operation-level declaration overrides it.
func mergeParameters(pathParams, opParams openapi3.Parameters) openapi3.Parameters {
	overridden := make(map[[2]string]bool, len(opParams))
	for _, ref := range opParams {
		if ref != nil && ref.Value != nil {
			overridden[[2]string{ref.Value.Name, ref.Value.In}] = true
		}
	}

	merged := make(openapi3.Parameters, 0, len(pathParams)+len(opParams))
	for _, ref := range pathParams {
		if ref != nil && ref.Value != nil && overridden[[2]string{ref.Value.Name, ref.Value.In}] {
			continue
		}
		merged = append(merged, ref)
	}
	return append(merged, opParams...)
}

func (p *SpecParser) description(path, method string, operation *openapi3.Operation) string {
	var desc string
	if operation.Description != "" {
		desc = operation.Description
	} else if operation.Summary != "" {
		desc = operation.Summary
	}
	desc = p.adjuster.GetDescription(path, method, desc)
	return fmt.Sprintf("%s %s \n %s", method, path, desc)
}

// toolName derives a stable tool name: the operationId when declared,
// otherwise method_path.
func toolName(path, method string, operation *openapi3.Operation) string {
	if operation.OperationID != "" {
		return strings.ToLower(operation.OperationID)
	}
	name := strings.TrimPrefix(path, "/")
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "{", "")
	name = strings.ReplaceAll(name, "}", "")
	return strings.ToLower(fmt.Sprintf("%s_%s", method, name))
}
