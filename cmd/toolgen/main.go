package main

import (
	"encoding/json"
	"os"
	"sort"

	"github.com/oasbridge/oas-mcp/internal/config"
	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/models"
	"github.com/oasbridge/oas-mcp/internal/parser"
	"github.com/oasbridge/oas-mcp/internal/schema"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func main() {
	Execute()
}

var (
	specFile        string
	adjustmentsFile string
	asJSON          bool
	initAdjustments string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "toolgen",
	Short: "Inspect the MCP tools generated from an OpenAPI spec",
	Long: `toolgen builds the tool set from an OpenAPI/Swagger definition without
serving it. It prints each tool's schema and routing, and can emit an
adjustments-file skeleton for filtering routes and rewriting descriptions.`,
	Run: runToolgen,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}
	}

	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&specFile, "spec-file", "", "Path to the OpenAPI/Swagger file")
	rootCmd.PersistentFlags().StringVar(&adjustmentsFile, "adjustments-file", "", "Path to the adjustments file")
	rootCmd.PersistentFlags().BoolVar(&asJSON, "json", false, "Print full tool definitions as JSON")
	rootCmd.PersistentFlags().StringVar(&initAdjustments, "init-adjustments", "", "Write an adjustments-file skeleton covering every route to the given path")
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")
}

func runToolgen(cmd *cobra.Command, args []string) {
	if specFile == "" {
		pterm.Error.Println("Spec file is required, you must supply it with --spec-file")
		os.Exit(1)
	}

	_ = logger.InitLogger(&config.LoggingConfig{Level: "error", Format: "console"})

	adjuster := parser.NewAdjuster()
	specParser := parser.NewSpecParser(adjuster)

	if err := specParser.Init(specFile, adjustmentsFile); err != nil {
		pterm.Error.Printf("Error parsing spec file: %v\n", err)
		os.Exit(1)
	}

	routeTools := specParser.GetRouteTools()
	sort.Slice(routeTools, func(i, j int) bool {
		return routeTools[i].Definition.Name < routeTools[j].Definition.Name
	})

	if initAdjustments != "" {
		if err := writeAdjustmentsSkeleton(initAdjustments, routeTools); err != nil {
			pterm.Error.Printf("Error writing adjustments skeleton: %v\n", err)
			os.Exit(1)
		}
		pterm.Info.Printfln("Wrote adjustments skeleton for %d routes to %s",
			len(routeTools), initAdjustments)
		return
	}

	if asJSON {
		printJSON(routeTools)
		return
	}

	printTable(routeTools)
}

func printTable(routeTools []*parser.RouteTool) {
	rows := pterm.TableData{{"Tool", "Method", "Path", "Arguments"}}
	for _, rt := range routeTools {
		def := rt.Definition
		names := make([]string, 0, len(def.Locations))
		for name := range def.Locations {
			names = append(names, name)
		}
		sort.Strings(names)
		rows = append(rows, []string{
			def.Name,
			def.Method,
			def.PathTemplate,
			joinWithLocations(def, names),
		})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithData(rows).Render(); err != nil {
		pterm.Error.Println(err)
	}
	pterm.Info.Printfln("Generated %d tools", len(routeTools))
}

func joinWithLocations(def *schema.ToolDefinition, names []string) string {
	out := ""
	for i, name := range names {
		if i > 0 {
			out += ", "
		}
		out += name + " (" + string(def.Locations[name]) + ")"
	}
	return out
}

func printJSON(routeTools []*parser.RouteTool) {
	type toolDump struct {
		Name        string                     `json:"name"`
		Description string                     `json:"description"`
		Method      string                     `json:"method"`
		Path        string                     `json:"path"`
		MediaType   string                     `json:"media_type,omitempty"`
		Properties  map[string]schema.Fragment `json:"properties"`
		Required    []string                   `json:"required"`
	}

	dumps := make([]toolDump, 0, len(routeTools))
	for _, rt := range routeTools {
		def := rt.Definition
		dumps = append(dumps, toolDump{
			Name:        def.Name,
			Description: def.Description,
			Method:      def.Method,
			Path:        def.PathTemplate,
			MediaType:   def.MediaType,
			Properties:  def.InputSchema.Properties,
			Required:    def.InputSchema.Required,
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(dumps); err != nil {
		pterm.Error.Println(err)
	}
}

// writeAdjustmentsSkeleton emits a selection covering every parsed route, to
// be trimmed by hand.
func writeAdjustmentsSkeleton(path string, routeTools []*parser.RouteTool) error {
	byPath := make(map[string][]string)
	for _, rt := range routeTools {
		byPath[rt.Definition.PathTemplate] = append(byPath[rt.Definition.PathTemplate], rt.Definition.Method)
	}

	paths := make([]string, 0, len(byPath))
	for p := range byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	adjustments := models.MCPAdjustments{}
	for _, p := range paths {
		adjustments.Routes = append(adjustments.Routes, models.RouteSelection{
			Path:    p,
			Methods: byPath[p],
		})
	}

	data, err := yaml.Marshal(&adjustments)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
