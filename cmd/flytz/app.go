package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"flytz/cmd/flytz/ui"
	"flytz/internal/advisor"
	"flytz/internal/config"
	"flytz/internal/flights"
	"flytz/internal/logging"
	"flytz/internal/store"
	"flytz/internal/strategy"

	"go.uber.org/zap"
)

// app bundles everything a command needs for one invocation.
type app struct {
	workspace  string
	configPath string
	cfg        *config.Config
	store      *store.Store
	flights    *flights.Client
	advisor    *advisor.Advisor
	engine     *strategy.Engine
	styles     ui.Styles
}

// resolveWorkspace returns --workspace or the current directory.
func resolveWorkspace() (string, error) {
	if workspace != "" {
		return filepath.Abs(workspace)
	}
	return os.Getwd()
}

// openApp loads config, opens the store and builds the service clients.
// Stored settings fill credentials missing from the file and environment.
func openApp(ctx context.Context) (*app, error) {
	ws, err := resolveWorkspace()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace: %w", err)
	}
	if err := config.LoadDotEnv(ws); err != nil {
		return nil, err
	}

	path := configPath
	if path == "" {
		path = config.DefaultPath(ws)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	if err := logging.Initialize(config.Dir(ws), cfg.LoggingOptions()); err != nil {
		logger.Warn("file logging disabled", zap.Error(err))
	}

	st, err := store.NewStore(cfg.DatabasePath(ws))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	settings, err := st.Settings()
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to read settings: %w", err)
	}
	cfg.ApplySettings(settings)

	logger.Debug("workspace ready",
		zap.String("workspace", ws),
		zap.String("db", st.Path()),
		zap.Bool("amadeus", cfg.HasAmadeusCredentials()),
		zap.Bool("llm", cfg.HasLLMKey()))

	return &app{
		workspace:  ws,
		configPath: path,
		cfg:        cfg,
		store:      st,
		flights:    flights.NewClient(cfg.Amadeus),
		advisor:    advisor.FromConfig(ctx, cfg),
		engine:     strategy.NewEngine(),
		styles:     ui.DefaultStyles(),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("failed to close store", zap.Error(err))
	}
	logging.CloseAll()
}

// printJSON writes v indented.
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
