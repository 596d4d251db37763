package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
)

// AreaCollector runs the probe-and-paginate state machine for one area:
// Probing -> ExtractingBatch -> (LoadingMore <-> ExtractingBatch) ->
// Stopped{reason}. It forwards newly available centres to the alert channel
// as they are seen and always returns whatever it accumulated, even when it
// stops on an error.
type AreaCollector struct {
	driver  PageDriver
	tracker NotificationTracker
	channel AlertChannel
	cfg     Config
	logger  *zap.Logger
}

// NewAreaCollector wires the per-area state machine.
func NewAreaCollector(
	driver PageDriver,
	tracker NotificationTracker,
	channel AlertChannel,
	cfg Config,
	logger *zap.Logger,
) *AreaCollector {
	return &AreaCollector{
		driver:  driver,
		tracker: tracker,
		channel: channel,
		cfg:     cfg,
		logger:  logger,
	}
}

// Collect probes one postcode and paginates until a stop condition fires.
// existing is the ledger snapshot from run start; together with this call's
// accumulation it forms the reference set for the duplicate-batch heuristic.
// On error the accumulated partial results are returned alongside it.
func (a *AreaCollector) Collect(
	ctx context.Context,
	postcode string,
	existing []centre.Centre,
) ([]centre.Centre, StopReason, error) {
	var collected []centre.Centre

	if err := a.driver.Probe(ctx, postcode); err != nil {
		return collected, StopError, fmt.Errorf("probe %s: %w", postcode, err)
	}

	batch, err := a.extractBatch(ctx, postcode)
	if err != nil {
		return collected, StopError, err
	}
	collected = append(collected, batch...)
	a.logger.Info("extracted initial results",
		zap.String("postcode", postcode),
		zap.Int("count", len(batch)),
	)

	reference := newKeySet(existing)
	reference.add(batch)

	loadMoreClicks := 0
	duplicateBatches := 0
	for {
		if err := a.pauseIfChallenged(ctx); err != nil {
			return collected, StopError, err
		}

		more, err := a.driver.LoadMore(ctx)
		if err != nil {
			return collected, StopError, fmt.Errorf("load more for %s: %w", postcode, err)
		}
		if !more {
			a.logger.Info("no more results to load", zap.String("postcode", postcode))
			return collected, StopExhausted, nil
		}
		loadMoreClicks++

		batch, err := a.extractBatch(ctx, postcode)
		if err != nil {
			return collected, StopError, err
		}

		if batchLooksDuplicate(batch, reference) {
			duplicateBatches++
			a.logger.Debug("duplicate batch detected",
				zap.String("postcode", postcode),
				zap.Int("consecutive", duplicateBatches),
			)
		} else {
			duplicateBatches = 0
		}

		collected = append(collected, batch...)
		reference.add(batch)
		a.logger.Info("extracted batch",
			zap.String("postcode", postcode),
			zap.Int("count", len(batch)),
			zap.Int("total", len(collected)),
		)

		if duplicateBatches >= a.cfg.DuplicateThreshold {
			return collected, StopDuplicateThreshold, nil
		}
		if loadMoreClicks >= a.cfg.MaxLoadMore {
			return collected, StopClickLimit, nil
		}
	}
}

// extractBatch pulls the visible centres, tags them with the probed
// postcode, and evaluates each for alerting in extraction order.
func (a *AreaCollector) extractBatch(ctx context.Context, postcode string) ([]centre.Centre, error) {
	batch, err := a.driver.ExtractVisible(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract centres for %s: %w", postcode, err)
	}
	for i := range batch {
		batch[i].Postcode = postcode
		if batch[i].CollectedAt.IsZero() {
			batch[i].CollectedAt = time.Now().UTC()
		}
	}
	a.evaluateAlerts(ctx, batch)
	return batch, nil
}

// evaluateAlerts fires at most one alert per centre identity. The identity
// is marked before sending so a failing channel cannot re-alert the same
// centre later.
func (a *AreaCollector) evaluateAlerts(ctx context.Context, batch []centre.Centre) {
	for _, c := range batch {
		if c.Availability != centre.Available || a.tracker.HasFired(c) {
			continue
		}
		a.tracker.MarkFired(c)
		alertsSent.Inc()

		shot, err := a.driver.Screenshot(ctx, "availability")
		if err != nil {
			a.logger.Warn("availability screenshot failed", zap.Error(err))
		}
		if err := a.channel.Notify(ctx, c, shot); err != nil {
			a.logger.Warn("availability alert failed",
				zap.String("centre", c.Name), zap.Error(err))
		}
	}
}

// pauseIfChallenged blocks for the configured verification window when the
// driver reports a challenge. Fixed timeout, unconditional resume: there is
// no confirmation that the challenge was actually solved, a known design
// risk inherited from the site's behavior.
func (a *AreaCollector) pauseIfChallenged(ctx context.Context) error {
	challenged, err := a.driver.ChallengeDetected(ctx)
	if err != nil {
		return fmt.Errorf("challenge check: %w", err)
	}
	if !challenged {
		return nil
	}

	challengePauses.Inc()
	a.logger.Warn("verification challenge detected, pausing",
		zap.Duration("timeout", a.cfg.VerificationTimeout))

	if shot, shotErr := a.driver.Screenshot(ctx, "verification"); shotErr == nil {
		a.logger.Info("verification screenshot captured", zap.String("path", shot))
	}

	if err := a.driver.AwaitChallengeResolution(ctx, a.cfg.VerificationTimeout); err != nil {
		return fmt.Errorf("challenge pause: %w", err)
	}
	a.logger.Info("resuming after verification pause")
	return nil
}
