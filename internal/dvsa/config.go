package dvsa

import (
	"fmt"
	"time"
)

// Config carries everything the browser session needs.
type Config struct {
	// LoginURL is the booking-service entry point.
	LoginURL string
	// LicenceNumber and BookingReference authenticate the session. Both
	// come from the environment, never from config files.
	LicenceNumber    string
	BookingReference string

	UserAgent  string
	Headless   bool
	NavTimeout time.Duration

	// Human-ish interaction pacing.
	TypeDelayMin time.Duration
	TypeDelayMax time.Duration
	PageDelayMin time.Duration
	PageDelayMax time.Duration
	// LoadMoreWait is the fixed settle time after clicking show-more; the
	// results arrive via AJAX with nothing reliable to wait on.
	LoadMoreWait time.Duration

	ScreenshotDir string
}

// Validate enforces required values.
func (c Config) Validate() error {
	if c.LoginURL == "" {
		return fmt.Errorf("dvsa.login_url must be set")
	}
	if c.LicenceNumber == "" || c.BookingReference == "" {
		return fmt.Errorf("dvsa licence number and booking reference must be set (SLOTSCOUT_DVSA_LICENCE_NUMBER, SLOTSCOUT_DVSA_BOOKING_REFERENCE)")
	}
	if c.UserAgent == "" {
		return fmt.Errorf("dvsa.user_agent must be set")
	}
	if c.NavTimeout <= 0 {
		return fmt.Errorf("dvsa.nav_timeout must be > 0")
	}
	return nil
}
