// Package alert guarantees at-most-once availability alerts per centre and
// delivers them over SMTP.
package alert

import (
	"sync"

	"github.com/slotscout/slotscout/internal/centre"
)

// Tracker remembers which centre identities have already been alerted.
// Membership lasts for the process lifetime unless Reset is called, so a
// centre observed again in a later run of the same process stays silent.
// It is an explicit object passed through the run, not a package global,
// so runs remain independently testable.
type Tracker struct {
	mu    sync.Mutex
	fired map[string]struct{}
}

// NewTracker returns an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{fired: make(map[string]struct{})}
}

// HasFired reports whether an alert was already sent for this identity.
func (t *Tracker) HasFired(c centre.Centre) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.fired[c.Key()]
	return ok
}

// MarkFired records the identity as alerted.
func (t *Tracker) MarkFired(c centre.Centre) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired[c.Key()] = struct{}{}
}

// Reset clears all membership, e.g. between test cases.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.fired = make(map[string]struct{})
}
