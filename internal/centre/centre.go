// Package centre defines the test centre entity shared across subsystems.
package centre

import (
	"strings"
	"time"
)

// Availability represents the slot state reported for a centre.
type Availability string

// Availability values persisted in the ledger.
const (
	Available    Availability = "available"
	NotAvailable Availability = "not_available"
	Unknown      Availability = "unknown"
)

// ParseAvailability maps free-form status text to an Availability value.
func ParseAvailability(status string) Availability {
	s := strings.ToLower(status)
	switch {
	case strings.Contains(s, "not available"),
		strings.Contains(s, "unavailable"),
		strings.Contains(s, "no tests"):
		return NotAvailable
	case strings.Contains(s, "available"):
		return Available
	default:
		return Unknown
	}
}

// Centre is one discovered test centre record.
type Centre struct {
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Postcode     string       `json:"postcode"`
	Availability Availability `json:"availability"`
	Status       string       `json:"status,omitempty"`
	CentreID     string       `json:"centre_id,omitempty"`
	CollectedAt  time.Time    `json:"collected_at"`
}

// Normalize reduces s to its comparable form: lowercase with every
// non-alphanumeric byte removed. Stripping spaces subsumes whitespace
// collapsing, so "Lee On  The Solent" and "lee-on-the-solent" compare equal.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Key returns the identity key for a centre. Two centres are the same
// real-world thing iff their keys match.
func (c Centre) Key() string {
	return Normalize(c.Name) + "|" + Normalize(c.Address)
}

// Same reports whether two centres share the normalized (name, address)
// identity.
func Same(a, b Centre) bool {
	return a.Key() == b.Key()
}
