// Command flytz plans budget flight routes, searches live or demo fares and
// keeps saved strategies, price alerts and the waitlist in a local SQLite
// database. `flytz serve` exposes the same operations to the browser client.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	workspace  string
	configPath string
	timeout    time.Duration
	jsonOutput bool

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "flytz",
	Short: "Flytz - budget flight strategy planner",
	Long: `Flytz turns a home airport, a destination region and a chaos level into a
routing strategy: positioning flights, split tickets, hub hacks and the links
and prompts to execute them.

Deals come from Amadeus when credentials are configured and from a demo
inventory otherwise. Gemini adds the narrative analysis and the trip assistant.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "Workspace directory (default: current)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: <workspace>/.flytz/config.yaml)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Operation timeout")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Print JSON instead of styled output")

	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(dealsCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(hotelsCmd)
	rootCmd.AddCommand(activitiesCmd)
	rootCmd.AddCommand(inspireCmd)
	rootCmd.AddCommand(locationsCmd)
	rootCmd.AddCommand(savedCmd)
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(alertCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(waitlistCmd)
	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// commandContext bounds a command by --timeout. Commands invoked directly in
// tests have no context of their own.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
