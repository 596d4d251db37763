package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/alert"
	"github.com/slotscout/slotscout/internal/api"
	"github.com/slotscout/slotscout/internal/collector"
	"github.com/slotscout/slotscout/internal/dvsa"
	"github.com/slotscout/slotscout/internal/geo"
	"github.com/slotscout/slotscout/internal/ledger"
)

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Run one full area-by-area collection pass",
		Long: `Logs into the booking service, then repeatedly picks the search
area farthest from everything already covered, paginates its results,
and appends every previously unseen centre to the CSV ledger. The run
ends when every area has been processed.`,

		RunE: runCollectCommand,
	}
}

func runCollectCommand(cmd *cobra.Command, _ []string) error {
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
	tracker := alert.NewTracker()
	channel := alert.NewEmailChannel(d.cfg.AlertConfig(), d.logger.Named("alert"))
	selector := geo.NewSelector()
	runCfg := d.cfg.CollectorConfig()

	status := &api.RunStatus{}
	startOpsServer(ctx, d, store, status)

	if err := session.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if err := session.NavigateToChangeCentre(ctx); err != nil {
		return fmt.Errorf("open centre search: %w", err)
	}

	area := collector.NewAreaCollector(session, tracker, channel, runCfg, d.logger.Named("area"))
	orch := collector.NewOrchestrator(selector, store, area, channel, runCfg, d.logger.Named("run"))

	res, runErr := orch.Run(ctx)
	status.Record(res)

	d.logger.Info("collection finished",
		zap.Int("areas", res.AreasProcessed),
		zap.Int("seen", res.EntitiesSeen),
		zap.Int("new", res.NewUniquesStored),
		zap.Int("total", res.TotalUniquesStored),
		zap.String("ledger", res.LedgerPath),
	)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("collection run: %w", runErr)
	}
	return nil
}
