package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/alert"
	"github.com/slotscout/slotscout/internal/centre"
)

// fakeDriver serves a scripted sequence of result batches. LoadMore keeps
// answering yes while unserved batches remain.
type fakeDriver struct {
	batches [][]centre.Centre
	next    int

	probeErr    error
	loadMoreErr error

	challenged   []bool
	challengeIdx int
	awaited      []time.Duration
	screenshots  int
	probed       []string
}

func (d *fakeDriver) Probe(_ context.Context, postcode string) error {
	d.probed = append(d.probed, postcode)
	return d.probeErr
}

func (d *fakeDriver) ExtractVisible(context.Context) ([]centre.Centre, error) {
	if d.next >= len(d.batches) {
		return nil, nil
	}
	b := d.batches[d.next]
	d.next++
	return b, nil
}

func (d *fakeDriver) LoadMore(context.Context) (bool, error) {
	if d.loadMoreErr != nil {
		return false, d.loadMoreErr
	}
	return d.next < len(d.batches), nil
}

func (d *fakeDriver) ChallengeDetected(context.Context) (bool, error) {
	if d.challengeIdx < len(d.challenged) {
		v := d.challenged[d.challengeIdx]
		d.challengeIdx++
		return v, nil
	}
	return false, nil
}

func (d *fakeDriver) AwaitChallengeResolution(_ context.Context, timeout time.Duration) error {
	d.awaited = append(d.awaited, timeout)
	return nil
}

func (d *fakeDriver) Screenshot(context.Context, string) (string, error) {
	d.screenshots++
	return "shot.png", nil
}

type fakeChannel struct {
	notified  []centre.Centre
	fatals    []string
	notifyErr error
}

func (c *fakeChannel) Notify(_ context.Context, ctr centre.Centre, _ string) error {
	c.notified = append(c.notified, ctr)
	return c.notifyErr
}

func (c *fakeChannel) NotifyFatal(_ context.Context, kind, _, _ string) error {
	c.fatals = append(c.fatals, kind)
	return nil
}

func testAreaConfig() Config {
	cfg := DefaultConfig()
	cfg.VerificationTimeout = 10 * time.Millisecond
	cfg.PauseMin = 0
	cfg.PauseMax = 0
	return cfg
}

func newTestArea(d *fakeDriver, ch *fakeChannel, cfg Config) *AreaCollector {
	return NewAreaCollector(d, alert.NewTracker(), ch, cfg, zap.NewNop())
}

func TestCollectStopsWhenExhausted(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{batches: [][]centre.Centre{named("a", "b"), named("c")}}
	area := newTestArea(d, &fakeChannel{}, testAreaConfig())

	collected, reason, err := area.Collect(context.Background(), "SW1A 1AA", nil)
	require.NoError(t, err)
	assert.Equal(t, StopExhausted, reason)
	require.Len(t, collected, 3)
	assert.Equal(t, []string{"SW1A 1AA"}, d.probed)
	for _, c := range collected {
		assert.Equal(t, "SW1A 1AA", c.Postcode)
		assert.False(t, c.CollectedAt.IsZero())
	}
}

func TestCollectStopsOnDuplicateThreshold(t *testing.T) {
	t.Parallel()

	abc := func() []centre.Centre { return named("a", "b", "c") }
	d := &fakeDriver{batches: [][]centre.Centre{abc(), abc(), abc(), abc()}}
	cfg := testAreaConfig()
	cfg.DuplicateThreshold = 2
	area := newTestArea(d, &fakeChannel{}, cfg)

	collected, reason, err := area.Collect(context.Background(), "M1 1AA", nil)
	require.NoError(t, err)
	assert.Equal(t, StopDuplicateThreshold, reason)
	// Initial batch plus two duplicate batches; the fourth is never fetched.
	assert.Len(t, collected, 9)
}

func TestCollectFreshBatchResetsDuplicateCount(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{batches: [][]centre.Centre{
		named("a", "b", "c"),
		named("a", "b", "c"),
		named("x", "y", "z"),
		named("a", "b", "c"),
	}}
	cfg := testAreaConfig()
	cfg.DuplicateThreshold = 2
	area := newTestArea(d, &fakeChannel{}, cfg)

	_, reason, err := area.Collect(context.Background(), "M1 1AA", nil)
	require.NoError(t, err)
	assert.Equal(t, StopExhausted, reason)
}

func TestCollectStopsAtClickLimit(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{batches: [][]centre.Centre{
		named("a"), named("b"), named("c"), named("d"), named("e"),
	}}
	cfg := testAreaConfig()
	cfg.MaxLoadMore = 2
	area := newTestArea(d, &fakeChannel{}, cfg)

	collected, reason, err := area.Collect(context.Background(), "M1 1AA", nil)
	require.NoError(t, err)
	assert.Equal(t, StopClickLimit, reason)
	assert.Len(t, collected, 3)
}

func TestCollectCountsExistingLedgerAsDuplicates(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{batches: [][]centre.Centre{
		named("x"),
		named("a", "b", "c"),
		named("a", "b", "c"),
	}}
	cfg := testAreaConfig()
	cfg.DuplicateThreshold = 2
	area := newTestArea(d, &fakeChannel{}, cfg)

	// a, b, c are already on the ledger, so both later batches count as
	// duplicates even though this area never extracted them before.
	_, reason, err := area.Collect(context.Background(), "M1 1AA", named("a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, StopDuplicateThreshold, reason)
}

func TestCollectProbeFailure(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{probeErr: errors.New("no search page")}
	area := newTestArea(d, &fakeChannel{}, testAreaConfig())

	collected, reason, err := area.Collect(context.Background(), "M1 1AA", nil)
	require.Error(t, err)
	assert.Equal(t, StopError, reason)
	assert.Empty(t, collected)
}

func TestCollectReturnsPartialResultsOnError(t *testing.T) {
	t.Parallel()

	boom := errors.New("tab crashed")
	d := &fakeDriver{
		batches:     [][]centre.Centre{named("a", "b")},
		loadMoreErr: boom,
	}
	area := newTestArea(d, &fakeChannel{}, testAreaConfig())

	collected, reason, err := area.Collect(context.Background(), "M1 1AA", nil)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StopError, reason)
	assert.Len(t, collected, 2)
}

func TestCollectPausesOnChallenge(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{
		batches:    [][]centre.Centre{named("a"), named("b")},
		challenged: []bool{true},
	}
	cfg := testAreaConfig()
	area := newTestArea(d, &fakeChannel{}, cfg)

	_, reason, err := area.Collect(context.Background(), "M1 1AA", nil)
	require.NoError(t, err)
	assert.Equal(t, StopExhausted, reason)
	require.Len(t, d.awaited, 1)
	assert.Equal(t, cfg.VerificationTimeout, d.awaited[0])
}

func TestCollectAlertsOnceMarkingBeforeSend(t *testing.T) {
	t.Parallel()

	available := centre.Centre{
		Name:         "Hendon",
		Address:      "Aerodrome Rd",
		Availability: centre.Available,
		Status:       "available",
	}
	d := &fakeDriver{batches: [][]centre.Centre{
		{available},
		{available, named("b")[0]},
	}}
	// A failing channel must not earn the centre a second attempt.
	ch := &fakeChannel{notifyErr: errors.New("smtp down")}
	area := newTestArea(d, ch, testAreaConfig())

	_, _, err := area.Collect(context.Background(), "NW9 5LL", nil)
	require.NoError(t, err)
	require.Len(t, ch.notified, 1)
	assert.Equal(t, "Hendon", ch.notified[0].Name)
}

func TestCollectDoesNotAlertUnavailable(t *testing.T) {
	t.Parallel()

	d := &fakeDriver{batches: [][]centre.Centre{{
		{Name: "Barnet", Availability: centre.NotAvailable},
		{Name: "Mill Hill", Availability: centre.Unknown},
	}}}
	ch := &fakeChannel{}
	area := newTestArea(d, ch, testAreaConfig())

	_, _, err := area.Collect(context.Background(), "EN5 5BL", nil)
	require.NoError(t, err)
	assert.Empty(t, ch.notified)
}
