// Package cmd defines the CLI commands for the slotscout executable.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/config"
	"github.com/slotscout/slotscout/internal/logging"
)

var cfgFile string

// deps carries the loaded configuration and logger to subcommands.
type deps struct {
	cfg    config.Config
	logger *zap.Logger
}

type depsKeyType struct{}

var depsKey depsKeyType

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slotscout",
		Short: "Driving test centre slot watcher",
		Long: `slotscout drives a headless browser through the DVSA booking
service, sweeps test centre search results area by area, records every
centre it sees in a CSV ledger, and sends an email the moment a centre
shows available slots.`,

		// Loads config and builds the logger before any subcommand runs.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger, err := logging.New(cfg.Logging.Development)
			if err != nil {
				return fmt.Errorf("build logger: %w", err)
			}
			ctx := context.WithValue(cmd.Context(), depsKey, deps{cfg: cfg, logger: logger})
			cmd.SetContext(ctx)
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if d, ok := cmd.Context().Value(depsKey).(deps); ok && d.logger != nil {
				_ = d.logger.Sync()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (settings also read from SLOTSCOUT_* env vars)")

	cmd.AddCommand(newCollectCmd())
	cmd.AddCommand(newMonitorCmd())

	return cmd
}

func resolveDeps(ctx context.Context) (deps, error) {
	d, ok := ctx.Value(depsKey).(deps)
	if !ok || d.logger == nil {
		return deps{}, fmt.Errorf("configuration not initialized")
	}
	return d, nil
}

// Execute is the main entry point.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
