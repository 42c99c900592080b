package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/pixelpad/internal/config"
	"github.com/jmylchreest/pixelpad/internal/server"
	"github.com/jmylchreest/pixelpad/internal/user"
	"github.com/jmylchreest/pixelpad/internal/version"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP service",
		Long: `Run the PixelPad HTTP service.

Configuration is read from the --config file, then PIXELPAD_* environment
variables, then command-line flags.

Examples:
  # Serve on the default address
  pixelpad serve

  # Serve on localhost with the SQLite account store
  pixelpad serve --listen 127.0.0.1:9000 --users-backend sqlite`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}
	config.DefaultConfig().BindFlags(cmd.Flags())
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	logger := newLogger(cmd, cfg.LogLevel, cmd.ErrOrStderr())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openUserStore(ctx, cfg, logger.Named("users"))
	if err != nil {
		return err
	}
	defer store.Close()

	logger.Info("starting pixelpad",
		"version", version.Short(),
		"listen", cfg.Listen,
		"settings_dir", cfg.SettingsDir,
		"users", cfg.Users.Backend)

	srv := server.NewBuilder().
		WithConfig(cfg).
		WithLogger(logger).
		WithUserStore(store).
		Build()
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("failed to serve: %w", err)
	}
	return nil
}

func openUserStore(ctx context.Context, cfg *config.Config, logger hclog.Logger) (user.Store, error) {
	path := cfg.Users.JSONPath
	if cfg.Users.Backend == config.BackendSQLite {
		path = cfg.Users.SQLitePath
	}
	return user.Open(ctx, cfg.Users.Backend, path, user.Options{
		HashCost: cfg.Users.HashCost,
		Logger:   logger,
	})
}
