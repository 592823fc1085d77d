package requester

import (
	"github.com/oasbridge/oas-mcp/internal/config"

	"go.uber.org/fx"
)

// Module provides the requester module dependencies
var Module = fx.Options(
	fx.Provide(
		func(cfg *config.Config) *config.EndpointConfig { return &cfg.EndpointConfig },
		NewAuthProvider,
		NewHTTPRequester,
	),
)
