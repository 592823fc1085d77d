package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Version information - set by GoReleaser during build
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// GetVersionInfo returns a formatted version string
func GetVersionInfo() string {
	return fmt.Sprintf("oas-mcp version %s, commit %s, built at %s", version, commit, date)
}

type Config struct {
	Server          ServerConfig   `mapstructure:"server"`
	Logging         LoggingConfig  `mapstructure:"logging"`
	EndpointConfig  EndpointConfig `mapstructure:"endpoint"`
	SpecFile        string         `mapstructure:"spec_file"`
	AdjustmentsFile string         `mapstructure:"adjustments_file"`
}

// AuthType represents the type of outbound authentication to use
type AuthType string

const (
	AuthTypeNone   AuthType = "none"
	AuthTypeBasic  AuthType = "basic"
	AuthTypeBearer AuthType = "bearer"
	AuthTypeAPIKey AuthType = "api_key"
	AuthTypeOAuth2 AuthType = "oauth2"
)

// EndpointConfig describes the upstream API every tool invocation is routed
// to.
type EndpointConfig struct {
	BaseURL    string            `json:"base_url" mapstructure:"base_url"`
	AuthType   AuthType          `json:"auth_type" mapstructure:"auth_type"`
	AuthConfig map[string]string `json:"auth_config" mapstructure:"auth_config"`
	Headers    map[string]string `json:"headers" mapstructure:"headers"`
	// ForwardHeaders lists inbound request headers that are copied onto
	// outbound requests.
	ForwardHeaders []string      `json:"forward_headers" mapstructure:"forward_headers"`
	Timeout        time.Duration `json:"timeout" mapstructure:"timeout"`
}

type ServerMode string

const (
	ServerModeSSE   ServerMode = "sse"
	ServerModeSTDIO ServerMode = "stdio"
	ServerModeHTTP  ServerMode = "http"
)

type ServerConfig struct {
	Port    int        `mapstructure:"port"`
	Host    string     `mapstructure:"host"`
	Timeout string     `mapstructure:"timeout"`
	Mode    ServerMode `mapstructure:"mode"`
	Name    string     `mapstructure:"name"`
	Version string     `mapstructure:"version"`
}

type LoggingConfig struct {
	Level             string `mapstructure:"level"`
	Format            string `mapstructure:"format"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
	OutputPath        string `mapstructure:"output_path"`
	AppendToFile      bool   `mapstructure:"append_to_file"`
	DisableConsole    bool   `mapstructure:"disable_console"`
}

// InitFlags initializes command line flags (without parsing)
func InitFlags() {
	pflag.String("mode", string(ServerModeSTDIO), "Server mode (stdio|sse|http)")
	pflag.String("spec-file", "", "Path to the OpenAPI specification file")
	pflag.String("adjustments-file", "", "Path to the adjustments file")
	// Note: no pflag.Parse() here as it's called in main.go
}

func Load() (*Config, error) {
	viper.Reset() // Ensure clean state

	viper.SetEnvPrefix("OAS_MCP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.BindPFlags(pflag.CommandLine); err != nil {
		return nil, err
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("/etc/oas-mcp")

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	// Container deployments mount an override file here.
	if _, err := os.Stat("/config/config.yaml"); err == nil {
		viper.SetConfigFile("/config/config.yaml")
		if err := viper.MergeInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if mode := viper.GetString("mode"); mode != "" {
		switch ServerMode(mode) {
		case ServerModeSSE, ServerModeSTDIO, ServerModeHTTP:
			config.Server.Mode = ServerMode(mode)
		}
	}

	if specFile := viper.GetString("spec-file"); specFile != "" {
		config.SpecFile = specFile
	}
	if config.SpecFile == "" {
		return nil, fmt.Errorf("spec file is required, please adjust the config or pass --spec-file or OAS_MCP_SPEC_FILE environment variable")
	}

	if adjustmentsFile := viper.GetString("adjustments-file"); adjustmentsFile != "" {
		config.AdjustmentsFile = adjustmentsFile
	}

	if config.EndpointConfig.BaseURL == "" {
		return nil, fmt.Errorf("endpoint.base_url is required, please adjust the config or pass OAS_MCP_ENDPOINT_BASE_URL environment variable")
	}
	if config.EndpointConfig.Timeout == 0 {
		config.EndpointConfig.Timeout = 30 * time.Second
	}

	return &config, nil
}
