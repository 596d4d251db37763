// Package collector drives the probe-and-paginate collection of test
// centres: one state machine per postcode area and an orchestrator that
// sequences areas by geographic spread.
package collector

import (
	"fmt"
	"time"
)

// StopReason records why an area's pagination ended. Diagnostic only: the
// orchestrator logs it but never branches on it.
type StopReason string

// Stop reasons, checked in this order each pagination iteration.
const (
	StopExhausted          StopReason = "exhausted"
	StopDuplicateThreshold StopReason = "duplicate_threshold"
	StopClickLimit         StopReason = "click_limit"
	StopError              StopReason = "error"
)

// Config holds the collection knobs.
type Config struct {
	// DuplicateThreshold is how many consecutive duplicate batches end an
	// area's pagination.
	DuplicateThreshold int
	// MaxLoadMore caps load-more attempts per area.
	MaxLoadMore int
	// VerificationTimeout is the fixed pause applied when a challenge is
	// detected mid-pagination.
	VerificationTimeout time.Duration
	// PauseMin and PauseMax bound the randomized courtesy delay between
	// areas.
	PauseMin time.Duration
	PauseMax time.Duration
}

// DefaultConfig mirrors the documented defaults.
func DefaultConfig() Config {
	return Config{
		DuplicateThreshold:  3,
		MaxLoadMore:         20,
		VerificationTimeout: 60 * time.Second,
		PauseMin:            2 * time.Second,
		PauseMax:            5 * time.Second,
	}
}

// Validate rejects configurations the state machine cannot run with.
func (c Config) Validate() error {
	if c.DuplicateThreshold <= 0 {
		return fmt.Errorf("collection.duplicate_threshold must be > 0")
	}
	if c.MaxLoadMore <= 0 {
		return fmt.Errorf("collection.max_load_more must be > 0")
	}
	if c.VerificationTimeout <= 0 {
		return fmt.Errorf("collection.verification_timeout must be > 0")
	}
	if c.PauseMin < 0 || c.PauseMax < c.PauseMin {
		return fmt.Errorf("collection pause bounds must satisfy 0 <= min <= max")
	}
	return nil
}

// Result aggregates one full collection run.
type Result struct {
	AreasProcessed     int    `json:"areas_processed"`
	EntitiesSeen       int    `json:"entities_seen"`
	NewUniquesStored   int    `json:"new_uniques_stored"`
	TotalUniquesStored int    `json:"total_uniques_stored"`
	LedgerPath         string `json:"ledger_path"`
}

// FatalError signals a condition (site maintenance, security block) that
// must abort the whole run rather than just the current area.
type FatalError struct {
	Kind          string
	Message       string
	ScreenshotRef string
}

func (e *FatalError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}
