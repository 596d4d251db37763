package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/api"
)

// startOpsServer runs the operational HTTP server in the background and
// shuts it down when ctx is cancelled. Returns immediately when the
// server is disabled.
func startOpsServer(ctx context.Context, d deps, ledger api.Ledger, status *api.RunStatus) {
	if !d.cfg.Server.Enabled {
		return
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", d.cfg.Server.Port),
		Handler:           api.NewServer(ledger, status, d.logger.Named("api")).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		d.logger.Info("ops server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Error("ops server failed", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.logger.Warn("ops server shutdown failed", zap.Error(err))
		}
	}()
}
