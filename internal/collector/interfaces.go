package collector

import (
	"context"
	"time"

	"github.com/slotscout/slotscout/internal/centre"
)

// PageDriver is the capability surface the collector needs from the page
// automation layer. The collector knows nothing about markup or the
// automation technology behind these calls.
type PageDriver interface {
	// Probe issues the search for one postcode area.
	Probe(ctx context.Context, postcode string) error
	// ExtractVisible returns the centres currently visible on the page.
	ExtractVisible(ctx context.Context) ([]centre.Centre, error)
	// LoadMore requests the next result batch. False means no further
	// batch is available.
	LoadMore(ctx context.Context) (bool, error)
	// ChallengeDetected reports whether a verification challenge is
	// currently blocking the page.
	ChallengeDetected(ctx context.Context) (bool, error)
	// AwaitChallengeResolution pauses for the configured window and then
	// returns regardless of whether the challenge was actually solved.
	AwaitChallengeResolution(ctx context.Context, timeout time.Duration) error
	// Screenshot captures the current page for alert context; the returned
	// path may be empty when capture fails.
	Screenshot(ctx context.Context, label string) (string, error)
}

// AlertChannel delivers user-facing alerts.
type AlertChannel interface {
	Notify(ctx context.Context, c centre.Centre, screenshotRef string) error
	NotifyFatal(ctx context.Context, kind, message, screenshotRef string) error
}

// NotificationTracker guards at-most-once alerting per centre identity.
type NotificationTracker interface {
	HasFired(c centre.Centre) bool
	MarkFired(c centre.Centre)
}

// Ledger is the persistence contract the orchestrator depends on.
type Ledger interface {
	Initialize() error
	LoadAll() ([]centre.Centre, error)
	Append(c centre.Centre) error
	IsDuplicate(c centre.Centre, candidates []centre.Centre) bool
	Path() string
}

// AreaSelector picks the next postcode to probe.
type AreaSelector interface {
	SelectNext(used map[string]struct{}) (string, bool)
	Count() int
}
