// Package monitor_test contains unit tests for the sweep loop.
package monitor_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/alert"
	"github.com/slotscout/slotscout/internal/centre"
	"github.com/slotscout/slotscout/internal/dvsa"
	"github.com/slotscout/slotscout/internal/monitor"
)

type fakeSessionDriver struct {
	results    []dvsa.AvailabilityResult
	challenged bool
	awaited    []time.Duration
	logins     int
}

func (d *fakeSessionDriver) Login(context.Context) error {
	d.logins++
	return nil
}

func (d *fakeSessionDriver) ChallengeDetected(context.Context) (bool, error) {
	return d.challenged, nil
}

func (d *fakeSessionDriver) AwaitChallengeResolution(_ context.Context, timeout time.Duration) error {
	d.awaited = append(d.awaited, timeout)
	d.challenged = false
	return nil
}

func (d *fakeSessionDriver) CheckAvailability(context.Context) ([]dvsa.AvailabilityResult, error) {
	return d.results, nil
}

func (d *fakeSessionDriver) Screenshot(context.Context, string) (string, error) {
	return "", nil
}

type recordingChannel struct {
	notified []centre.Centre
}

func (c *recordingChannel) Notify(_ context.Context, ctr centre.Centre, _ string) error {
	c.notified = append(c.notified, ctr)
	return nil
}

func (c *recordingChannel) NotifyFatal(context.Context, string, string, string) error {
	return nil
}

func available(name string, dates ...string) dvsa.AvailabilityResult {
	return dvsa.AvailabilityResult{
		Centre: centre.Centre{
			Name:         name,
			Availability: centre.Available,
			Status:       "available",
			CollectedAt:  time.Now().UTC(),
		},
		Dates: dates,
	}
}

func newTestMonitor(t *testing.T, d *fakeSessionDriver, ch *recordingChannel, dir string) *monitor.Monitor {
	t.Helper()
	m, err := monitor.New(d, alert.NewTracker(), ch, monitor.Config{
		Schedule:            "*/10 * * * *",
		ResultsDir:          dir,
		VerificationTimeout: 5 * time.Millisecond,
	}, zap.NewNop())
	require.NoError(t, err)
	return m
}

func TestSweepWritesResultsAndAlerts(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	d := &fakeSessionDriver{results: []dvsa.AvailabilityResult{
		available("Hendon", "2026-09-01", "2026-09-03"),
		available("Barnet", "2026-09-02"),
	}}
	ch := &recordingChannel{}
	m := newTestMonitor(t, d, ch, dir)

	require.NoError(t, m.Sweep(context.Background()))
	require.Len(t, ch.notified, 2)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	var payload struct {
		Available []dvsa.AvailabilityResult `json:"available"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.Len(t, payload.Available, 2)
	assert.Equal(t, "Hendon", payload.Available[0].Centre.Name)
	assert.Equal(t, []string{"2026-09-01", "2026-09-03"}, payload.Available[0].Dates)
}

func TestSweepAlertsEachCentreOnce(t *testing.T) {
	t.Parallel()

	d := &fakeSessionDriver{results: []dvsa.AvailabilityResult{available("Hendon", "2026-09-01")}}
	ch := &recordingChannel{}
	m := newTestMonitor(t, d, ch, t.TempDir())

	require.NoError(t, m.Sweep(context.Background()))
	require.NoError(t, m.Sweep(context.Background()))
	assert.Len(t, ch.notified, 1)
}

func TestSweepPausesOnChallenge(t *testing.T) {
	t.Parallel()

	d := &fakeSessionDriver{challenged: true}
	m := newTestMonitor(t, d, &recordingChannel{}, t.TempDir())

	require.NoError(t, m.Sweep(context.Background()))
	require.Len(t, d.awaited, 1)
	assert.Equal(t, 5*time.Millisecond, d.awaited[0])
}

func TestNewRejectsBadConfig(t *testing.T) {
	t.Parallel()

	_, err := monitor.New(&fakeSessionDriver{}, alert.NewTracker(), &recordingChannel{}, monitor.Config{}, zap.NewNop())
	assert.Error(t, err)
}
