package collector

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
)

// areaRunner lets tests substitute the per-area state machine.
type areaRunner interface {
	Collect(ctx context.Context, postcode string, existing []centre.Centre) ([]centre.Centre, StopReason, error)
}

// Orchestrator sequences a full collection run: pick the next area, collect
// it, persist the unique finds, repeat until the catalog is exhausted. Areas
// are processed strictly sequentially; the ledger has exactly one writer.
type Orchestrator struct {
	selector AreaSelector
	store    Ledger
	area     areaRunner
	channel  AlertChannel
	cfg      Config
	logger   *zap.Logger
}

// NewOrchestrator wires a run.
func NewOrchestrator(
	selector AreaSelector,
	store Ledger,
	area *AreaCollector,
	channel AlertChannel,
	cfg Config,
	logger *zap.Logger,
) *Orchestrator {
	return &Orchestrator{
		selector: selector,
		store:    store,
		area:     area,
		channel:  channel,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run executes one full collection pass. A ledger initialize or load failure
// is fatal; per-area and per-append failures are logged and the run moves
// on. A FatalError escaping an area aborts the whole run after any in-flight
// durable write, leaving the ledger consistent.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if err := o.store.Initialize(); err != nil {
		return Result{}, fmt.Errorf("initialize ledger: %w", err)
	}
	existing, err := o.store.LoadAll()
	if err != nil {
		return Result{}, fmt.Errorf("load ledger: %w", err)
	}
	o.logger.Info("ledger loaded",
		zap.Int("existing", len(existing)),
		zap.String("path", o.store.Path()),
	)

	res := Result{
		TotalUniquesStored: len(existing),
		LedgerPath:         o.store.Path(),
	}
	used := make(map[string]struct{})
	total := o.selector.Count()

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		postcode, ok := o.selector.SelectNext(used)
		if !ok {
			break
		}
		o.logger.Info("processing postcode",
			zap.String("postcode", postcode),
			zap.Int("position", len(used)+1),
			zap.Int("total", total),
		)

		collected, reason, collectErr := o.area.Collect(ctx, postcode, existing)

		// The area enters the used set exactly once, success or not, so a
		// broken area can never stall the run.
		used[postcode] = struct{}{}
		res.AreasProcessed++
		areasProcessed.Inc()
		res.EntitiesSeen += len(collected)
		centresSeen.Add(float64(len(collected)))

		if collectErr != nil {
			var fatal *FatalError
			if errors.As(collectErr, &fatal) {
				o.notifyFatal(ctx, fatal)
				res.TotalUniquesStored = len(existing)
				return res, collectErr
			}
			areaErrors.Inc()
			o.logger.Warn("area failed, continuing with partial results",
				zap.String("postcode", postcode),
				zap.Error(collectErr),
			)
		}

		stored := o.persist(collected, &existing)
		res.NewUniquesStored += stored
		res.TotalUniquesStored = len(existing)
		o.logger.Info("area finished",
			zap.String("postcode", postcode),
			zap.String("reason", string(reason)),
			zap.Int("collected", len(collected)),
			zap.Int("stored", stored),
			zap.Int("ledger_total", len(existing)),
		)

		if len(used) < total {
			pause(ctx, randomPause(o.cfg.PauseMin, o.cfg.PauseMax))
		}
	}

	o.logger.Info("collection run complete",
		zap.Int("areas", res.AreasProcessed),
		zap.Int("seen", res.EntitiesSeen),
		zap.Int("new", res.NewUniquesStored),
		zap.Int("total", res.TotalUniquesStored),
	)
	return res, nil
}

// persist appends each non-duplicate centre durably, then extends the
// in-memory ledger view, in that order. An append failure skips only that
// centre: persistence errors on append are recoverable per-entity.
func (o *Orchestrator) persist(collected []centre.Centre, existing *[]centre.Centre) int {
	stored := 0
	for _, c := range collected {
		if o.store.IsDuplicate(c, *existing) {
			continue
		}
		if err := o.store.Append(c); err != nil {
			o.logger.Error("ledger append failed",
				zap.String("centre", c.Name),
				zap.Error(err),
			)
			continue
		}
		*existing = append(*existing, c)
		stored++
		newUniquesStored.Inc()
	}
	return stored
}

func (o *Orchestrator) notifyFatal(ctx context.Context, fatal *FatalError) {
	o.logger.Error("fatal condition, aborting run",
		zap.String("kind", fatal.Kind),
		zap.String("message", fatal.Message),
	)
	if err := o.channel.NotifyFatal(ctx, fatal.Kind, fatal.Message, fatal.ScreenshotRef); err != nil {
		o.logger.Warn("fatal alert failed", zap.Error(err))
	}
}
