package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/slotscout/slotscout/internal/alert"
	"github.com/slotscout/slotscout/internal/api"
	"github.com/slotscout/slotscout/internal/dvsa"
	"github.com/slotscout/slotscout/internal/ledger"
	"github.com/slotscout/slotscout/internal/monitor"
)

func newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Watch the logged-in centre list on a schedule",
		Long: `Logs into the booking service once and then sweeps the visible
centre list on a cron schedule, emailing on newly available slots and
writing each sweep's findings to a timestamped results file. Runs until
interrupted.`,

		RunE: runMonitorCommand,
	}
}

func runMonitorCommand(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	d, err := resolveDeps(ctx)
	if err != nil {
		return err
	}

	sessCfg := d.cfg.SessionConfig()
	if err := sessCfg.Validate(); err != nil {
		return err
	}
	session, err := dvsa.NewSession(sessCfg, d.logger.Named("dvsa"))
	if err != nil {
		return fmt.Errorf("start browser session: %w", err)
	}
	defer session.Close()

	store := ledger.NewStore(d.cfg.Collection.LedgerPath, d.logger.Named("ledger"))
	status := &api.RunStatus{}
	startOpsServer(ctx, d, store, status)

	tracker := alert.NewTracker()
	channel := alert.NewEmailChannel(d.cfg.AlertConfig(), d.logger.Named("alert"))

	mon, err := monitor.New(session, tracker, channel, monitor.Config{
		Schedule:            d.cfg.Monitor.Schedule,
		ResultsDir:          d.cfg.Monitor.ResultsDir,
		VerificationTimeout: time.Duration(d.cfg.Collection.VerificationWaitSec) * time.Second,
	}, d.logger.Named("monitor"))
	if err != nil {
		return err
	}

	if err := mon.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("monitor: %w", err)
	}
	return nil
}
