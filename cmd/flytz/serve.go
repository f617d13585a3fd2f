package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"flytz/internal/config"
	"flytz/internal/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API for the browser client",
	Long: `Starts the local JSON API. The config file is watched and the Amadeus and
Gemini clients are rebuilt when it changes or when keys are saved through
/api/settings.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default: server.addr from config, :8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// serve runs until interrupted, not for --timeout
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	// The server applies stored settings itself, so it starts from the
	// unmerged file and environment config.
	base, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		base.Server.Addr = serveAddr
	}

	srv := server.New(ctx, base, a.store, server.WithLogger(logger), server.WithEngine(a.engine))

	if err := os.MkdirAll(config.Dir(a.workspace), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", config.Dir(a.workspace), err)
	}
	watcher, err := config.NewWatcher(a.configPath, func(cfg *config.Config) {
		if err := cfg.Validate(); err != nil {
			logger.Warn("ignoring invalid config", zap.Error(err))
			return
		}
		if serveAddr != "" {
			cfg.Server.Addr = serveAddr
		}
		srv.Reload(ctx, cfg)
	})
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		logger.Warn("config hot reload disabled", zap.Error(err))
	}
	defer watcher.Stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Flytz API listening on %s\n", base.Server.Addr)
	return srv.ListenAndServe(ctx)
}
