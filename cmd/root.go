// Package cmd defines the CLI commands for the redline executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/redline-bd/redline/internal/app"
	"github.com/redline-bd/redline/internal/config"
)

var cfgFile string

type appKeyType string

const appKey appKeyType = "app"

// newApp is the application factory, replaceable in tests.
var newApp = func(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	return app.New(ctx, cfg)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "redline",
		Short: "News ingestion and political violence analysis pipeline",
		Long: `redline scrapes Bangladeshi news outlets, stores normalized articles in
Postgres and runs AI enrichment over them: political violence classification
and location extraction.`,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			instance, err := newApp(cmd.Context())
			if err != nil {
				return fmt.Errorf("initializing application: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, instance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if instance, ok := cmd.Context().Value(appKey).(*app.App); ok && instance != nil {
				instance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")

	cmd.AddCommand(
		newScrapeCmd(),
		newClassifyCmd(),
		newLocationsCmd(),
		newStatusCmd(),
		newServeCmd(),
	)
	return cmd
}

func resolveApp(ctx context.Context) (*app.App, error) {
	instance, ok := ctx.Value(appKey).(*app.App)
	if !ok || instance == nil {
		return nil, fmt.Errorf("application not initialized")
	}
	return instance, nil
}

func requireStore(a *app.App) error {
	if a.Store == nil {
		return fmt.Errorf("no database configured: set db.dsn or REDLINE_DB_DSN")
	}
	return nil
}

// Execute runs the CLI. SIGINT/SIGTERM cancel the command context so
// in-flight runs finish their bookkeeping.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
