// Package cmd defines and implements the CLI commands for the clientdiscovery executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/indieauth-client-discovery/internal/app"
	"github.com/JakeFAU/indieauth-client-discovery/internal/config"
	"github.com/JakeFAU/indieauth-client-discovery/internal/logging"
	"github.com/JakeFAU/indieauth-client-discovery/internal/telemetry"
)

// runtimeKeyType is the key for storing the runtime in the context.
type runtimeKeyType string

const runtimeKey runtimeKeyType = "runtime"

// runtime is what PersistentPreRunE hands to subcommands.
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	app    *app.App
	// shutdownTracing flushes the tracer provider.
	shutdownTracing func(context.Context) error
}

// newApp is the application factory. It's a variable so tests can inject fakes.
var newApp = func(ctx context.Context, cfg config.Config, logger *zap.Logger) (*app.App, error) {
	return app.NewApp(ctx, cfg, logger)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "clientdiscovery",
		Short: "Resolve display metadata for IndieAuth client identifiers.",
		Long: `clientdiscovery fetches an IndieAuth client identifier URL and extracts the
client's name, logo and homepage from a JSON metadata document or from the
microformats and title of an HTML page.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}
			zap.ReplaceGlobals(logger)

			exporterOpts, err := telemetry.ExporterOptions(cfg.Tracing.Exporter, os.Stderr)
			if err != nil {
				return fmt.Errorf("init span exporter: %w", err)
			}
			tp, err := telemetry.InitTracerProvider(cmd.Context(), logging.ServiceName, exporterOpts...)
			if err != nil {
				return fmt.Errorf("init tracing: %w", err)
			}

			appInstance, err := newApp(cmd.Context(), cfg, logger)
			if err != nil {
				_ = tp.Shutdown(cmd.Context())
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			rt := &runtime{cfg: cfg, logger: logger, app: appInstance, shutdownTracing: tp.Shutdown}
			cmd.SetContext(context.WithValue(cmd.Context(), runtimeKey, rt))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			rt, err := resolveRuntime(cmd.Context())
			if err != nil {
				return
			}
			rt.app.Close()
			if rt.shutdownTracing != nil {
				if err := rt.shutdownTracing(context.WithoutCancel(cmd.Context())); err != nil {
					rt.logger.Warn("Failed to flush traces", zap.Error(err))
				}
			}
			_ = rt.logger.Sync()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML, JSON or TOML)")
	cmd.AddCommand(newDiscoverCmd(), newServeCmd())
	return cmd
}

func resolveRuntime(ctx context.Context) (*runtime, error) {
	rt, ok := ctx.Value(runtimeKey).(*runtime)
	if !ok || rt == nil {
		return nil, errors.New("application services not initialized")
	}
	return rt, nil
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
