package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/oasbridge/oas-mcp/internal/config"
	"github.com/oasbridge/oas-mcp/internal/logger"
	"github.com/oasbridge/oas-mcp/internal/parser"
	"github.com/oasbridge/oas-mcp/internal/requester"
	"github.com/oasbridge/oas-mcp/internal/server"

	"github.com/spf13/pflag"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

func main() {
	config.InitFlags()
	pflag.Parse()

	app := fx.New(
		fx.Provide(config.Load),
		parser.Module,
		requester.Module,
		server.Module,
		fx.Invoke(initLogger),
		fx.Invoke(runServer),
		fx.NopLogger,
	)

	app.Run()
}

func initLogger(cfg *config.Config) error {
	return logger.InitLogger(&cfg.Logging)
}

func runServer(lc fx.Lifecycle, srv *server.Server, shutdowner fx.Shutdowner) {
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				if err := srv.Start(ctx); err != nil {
					logger.Error("Server stopped", zap.Error(err))
				}
				if err := shutdowner.Shutdown(); err != nil {
					logger.Error("Failed to trigger shutdown", zap.Error(err))
				}
			}()
			go watchReload(ctx, srv)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			_ = logger.Sync()
			return nil
		},
	})
}

// watchReload rebuilds the tool set from the spec file on SIGHUP.
func watchReload(ctx context.Context, srv *server.Server) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if err := srv.Reload(); err != nil {
				logger.Error("Spec reload failed", zap.Error(err))
			}
		}
	}
}
