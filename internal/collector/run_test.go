package collector

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
)

// fakeSelector hands out a fixed catalog in order.
type fakeSelector struct {
	catalog []string
}

func (s *fakeSelector) SelectNext(used map[string]struct{}) (string, bool) {
	for _, pc := range s.catalog {
		if _, ok := used[pc]; !ok {
			return pc, true
		}
	}
	return "", false
}

func (s *fakeSelector) Count() int { return len(s.catalog) }

// fakeLedger is an in-memory Ledger.
type fakeLedger struct {
	rows      []centre.Centre
	initErr   error
	loadErr   error
	appendErr error
	appends   int
}

func (l *fakeLedger) Initialize() error { return l.initErr }

func (l *fakeLedger) LoadAll() ([]centre.Centre, error) {
	if l.loadErr != nil {
		return nil, l.loadErr
	}
	out := make([]centre.Centre, len(l.rows))
	copy(out, l.rows)
	return out, nil
}

func (l *fakeLedger) Append(c centre.Centre) error {
	l.appends++
	if l.appendErr != nil {
		return l.appendErr
	}
	l.rows = append(l.rows, c)
	return nil
}

func (l *fakeLedger) IsDuplicate(c centre.Centre, candidates []centre.Centre) bool {
	for _, existing := range candidates {
		if centre.Same(c, existing) {
			return true
		}
	}
	return false
}

func (l *fakeLedger) Path() string { return "fake.csv" }

// fakeArea maps postcodes to scripted collect outcomes.
type fakeArea struct {
	results map[string][]centre.Centre
	errs    map[string]error
	calls   []string
}

func (a *fakeArea) Collect(_ context.Context, postcode string, _ []centre.Centre) ([]centre.Centre, StopReason, error) {
	a.calls = append(a.calls, postcode)
	if err := a.errs[postcode]; err != nil {
		return a.results[postcode], StopError, err
	}
	return a.results[postcode], StopExhausted, nil
}

func newTestOrchestrator(sel AreaSelector, store Ledger, area areaRunner, ch AlertChannel) *Orchestrator {
	cfg := DefaultConfig()
	cfg.PauseMin = 0
	cfg.PauseMax = 0
	return &Orchestrator{
		selector: sel,
		store:    store,
		area:     area,
		channel:  ch,
		cfg:      cfg,
		logger:   zap.NewNop(),
	}
}

func TestRunProcessesEveryArea(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{catalog: []string{"SW1A 1AA", "M1 1AA", "EH1 1AA"}}
	area := &fakeArea{results: map[string][]centre.Centre{
		"SW1A 1AA": named("a", "b"),
		"M1 1AA":   named("b", "c"),
		"EH1 1AA":  named("d"),
	}}
	store := &fakeLedger{}

	res, err := newTestOrchestrator(sel, store, area, &fakeChannel{}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, res.AreasProcessed)
	assert.Equal(t, 5, res.EntitiesSeen)
	// b repeats across areas, so only four uniques land on the ledger.
	assert.Equal(t, 4, res.NewUniquesStored)
	assert.Equal(t, 4, res.TotalUniquesStored)
	assert.Equal(t, "fake.csv", res.LedgerPath)
	assert.Equal(t, []string{"SW1A 1AA", "M1 1AA", "EH1 1AA"}, area.calls)
}

func TestRunSkipsCentresAlreadyOnLedger(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{catalog: []string{"SW1A 1AA"}}
	area := &fakeArea{results: map[string][]centre.Centre{
		"SW1A 1AA": named("a", "b"),
	}}
	store := &fakeLedger{rows: named("a")}

	res, err := newTestOrchestrator(sel, store, area, &fakeChannel{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.NewUniquesStored)
	assert.Equal(t, 2, res.TotalUniquesStored)
	assert.Equal(t, 1, store.appends)
}

func TestRunContinuesPastFailingArea(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{catalog: []string{"SW1A 1AA", "M1 1AA"}}
	area := &fakeArea{
		results: map[string][]centre.Centre{
			"SW1A 1AA": named("a"),
			"M1 1AA":   named("b"),
		},
		errs: map[string]error{"SW1A 1AA": errors.New("tab crashed")},
	}
	store := &fakeLedger{}

	res, err := newTestOrchestrator(sel, store, area, &fakeChannel{}).Run(context.Background())
	require.NoError(t, err)

	// The failing area's partial results still land, and the run reaches
	// the next area instead of retrying.
	assert.Equal(t, 2, res.AreasProcessed)
	assert.Equal(t, 2, res.NewUniquesStored)
	assert.Equal(t, []string{"SW1A 1AA", "M1 1AA"}, area.calls)
}

func TestRunAbortsOnFatalError(t *testing.T) {
	t.Parallel()

	fatal := &FatalError{Kind: "security_block", Message: "access denied, your ip: 1.2.3.4"}
	sel := &fakeSelector{catalog: []string{"SW1A 1AA", "M1 1AA"}}
	area := &fakeArea{errs: map[string]error{"SW1A 1AA": fatal}}
	store := &fakeLedger{}
	ch := &fakeChannel{}

	res, err := newTestOrchestrator(sel, store, area, ch).Run(context.Background())
	require.Error(t, err)
	var got *FatalError
	require.ErrorAs(t, err, &got)
	assert.Equal(t, "security_block", got.Kind)

	assert.Equal(t, []string{"security_block"}, ch.fatals)
	assert.Equal(t, 1, res.AreasProcessed)
	assert.Equal(t, []string{"SW1A 1AA"}, area.calls)
	assert.Zero(t, store.appends)
}

func TestRunSkipsOnlyFailedAppends(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{catalog: []string{"SW1A 1AA"}}
	area := &fakeArea{results: map[string][]centre.Centre{
		"SW1A 1AA": named("a", "b", "c"),
	}}
	store := &fakeLedger{appendErr: errors.New("disk full")}

	res, err := newTestOrchestrator(sel, store, area, &fakeChannel{}).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, store.appends)
	assert.Zero(t, res.NewUniquesStored)
}

func TestRunFailsOnLedgerSetup(t *testing.T) {
	t.Parallel()

	sel := &fakeSelector{catalog: []string{"SW1A 1AA"}}
	area := &fakeArea{}

	_, err := newTestOrchestrator(sel, &fakeLedger{initErr: errors.New("read-only fs")}, area, &fakeChannel{}).Run(context.Background())
	require.ErrorContains(t, err, "initialize ledger")

	_, err = newTestOrchestrator(sel, &fakeLedger{loadErr: errors.New("corrupt header")}, area, &fakeChannel{}).Run(context.Background())
	require.ErrorContains(t, err, "load ledger")
	assert.Empty(t, area.calls)
}

func TestRunStopsWhenContextCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sel := &fakeSelector{catalog: []string{"SW1A 1AA"}}
	area := &fakeArea{}
	_, err := newTestOrchestrator(sel, &fakeLedger{}, area, &fakeChannel{}).Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, area.calls)
}
