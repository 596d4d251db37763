// Package monitor runs scheduled availability sweeps over a logged-in
// booking session and records what it finds.
package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/collector"
	"github.com/slotscout/slotscout/internal/dvsa"
)

// Driver is the slice of session behavior the monitor needs.
type Driver interface {
	Login(ctx context.Context) error
	ChallengeDetected(ctx context.Context) (bool, error)
	AwaitChallengeResolution(ctx context.Context, timeout time.Duration) error
	CheckAvailability(ctx context.Context) ([]dvsa.AvailabilityResult, error)
	Screenshot(ctx context.Context, label string) (string, error)
}

// Config governs sweep scheduling and output.
type Config struct {
	// Schedule is a standard five-field cron expression.
	Schedule   string
	ResultsDir string
	// VerificationTimeout is the fixed pause applied when a challenge
	// page blocks a sweep.
	VerificationTimeout time.Duration
}

// Validate enforces required values.
func (c Config) Validate() error {
	if c.Schedule == "" {
		return fmt.Errorf("monitor schedule must be set")
	}
	if c.ResultsDir == "" {
		return fmt.Errorf("monitor results dir must be set")
	}
	return nil
}

// Monitor logs in once and then sweeps on a cron schedule until its
// context is cancelled.
type Monitor struct {
	driver  Driver
	tracker collector.NotificationTracker
	channel collector.AlertChannel
	cfg     Config
	logger  *zap.Logger
}

// New wires a Monitor.
func New(driver Driver, tracker collector.NotificationTracker, channel collector.AlertChannel, cfg Config, logger *zap.Logger) (*Monitor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{driver: driver, tracker: tracker, channel: channel, cfg: cfg, logger: logger}, nil
}

// Run logs in, performs an immediate sweep, then repeats on the
// configured schedule. It blocks until ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) error {
	if err := m.driver.Login(ctx); err != nil {
		return fmt.Errorf("login: %w", err)
	}

	if err := m.Sweep(ctx); err != nil {
		m.logger.Warn("initial sweep failed", zap.Error(err))
	}

	c := cron.New(cron.WithLogger(cronLogger{logger: m.logger.Named("cron")}))
	_, err := c.AddFunc(m.cfg.Schedule, func() {
		if err := m.Sweep(ctx); err != nil {
			m.logger.Warn("sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule %q: %w", m.cfg.Schedule, err)
	}
	c.Start()
	defer c.Stop()

	<-ctx.Done()
	return ctx.Err()
}

// Sweep performs one availability pass: pause on a challenge page, scan
// the centre list, alert on anything newly available, and write a
// results file.
func (m *Monitor) Sweep(ctx context.Context) error {
	blocked, err := m.driver.ChallengeDetected(ctx)
	if err != nil {
		m.logger.Warn("challenge detection failed", zap.Error(err))
	}
	if blocked {
		ref, shotErr := m.driver.Screenshot(ctx, "monitor_challenge")
		if shotErr != nil {
			m.logger.Warn("challenge screenshot failed", zap.Error(shotErr))
		}
		m.logger.Info("challenge page detected, pausing sweep",
			zap.Duration("timeout", m.cfg.VerificationTimeout),
			zap.String("screenshot", ref))
		if err := m.driver.AwaitChallengeResolution(ctx, m.cfg.VerificationTimeout); err != nil {
			return fmt.Errorf("await challenge resolution: %w", err)
		}
	}

	results, err := m.driver.CheckAvailability(ctx)
	if err != nil {
		return fmt.Errorf("check availability: %w", err)
	}

	for _, r := range results {
		if m.tracker.HasFired(r.Centre) {
			continue
		}
		m.tracker.MarkFired(r.Centre)
		ref, shotErr := m.driver.Screenshot(ctx, "monitor_available")
		if shotErr != nil {
			m.logger.Warn("availability screenshot failed", zap.Error(shotErr))
		}
		if err := m.channel.Notify(ctx, r.Centre, ref); err != nil {
			m.logger.Warn("availability alert failed",
				zap.String("centre", r.Centre.Name), zap.Error(err))
		}
	}

	path, err := m.writeResults(results)
	if err != nil {
		return err
	}
	m.logger.Info("sweep complete",
		zap.Int("available", len(results)), zap.String("results", path))
	return nil
}

func (m *Monitor) writeResults(results []dvsa.AvailabilityResult) (string, error) {
	if err := os.MkdirAll(m.cfg.ResultsDir, 0o750); err != nil {
		return "", fmt.Errorf("create results dir: %w", err)
	}
	name := fmt.Sprintf("results-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	path := filepath.Join(m.cfg.ResultsDir, name)

	payload := struct {
		CheckedAt time.Time                 `json:"checkedAt"`
		Available []dvsa.AvailabilityResult `json:"available"`
	}{CheckedAt: time.Now().UTC(), Available: results}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write results: %w", err)
	}
	return path, nil
}

type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
