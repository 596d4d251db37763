package dvsa

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
)

// AvailabilityResult is one centre found with open dates during a monitor
// sweep.
type AvailabilityResult struct {
	Centre centre.Centre `json:"centre"`
	Dates  []string      `json:"dates"`
}

const availabilityExtractScript = `Array.from(document.querySelectorAll('.test-centre-item')).map(el => ({
	name: (el.querySelector('.centre-name') || {textContent: ''}).textContent.trim(),
	dates: Array.from(el.querySelectorAll('.available-date')).map(d => d.textContent.trim())
})).filter(c => c.name && c.dates.length > 0)`

// CheckAvailability scans the logged-in session's centre list for open
// dates. Used by the monitor path; the collection path paginates search
// results instead.
func (s *Session) CheckAvailability(ctx context.Context) ([]AvailabilityResult, error) {
	if err := s.run(ctx, chromedp.WaitVisible(".test-centre-list", chromedp.ByQuery)); err != nil {
		return nil, fmt.Errorf("centre list not visible: %w", err)
	}

	var raw []struct {
		Name  string   `json:"name"`
		Dates []string `json:"dates"`
	}
	if err := s.run(ctx, chromedp.Evaluate(availabilityExtractScript, &raw)); err != nil {
		return nil, fmt.Errorf("extract availability: %w", err)
	}

	now := time.Now().UTC()
	results := make([]AvailabilityResult, 0, len(raw))
	for _, r := range raw {
		results = append(results, AvailabilityResult{
			Centre: centre.Centre{
				Name:         r.Name,
				Availability: centre.Available,
				Status:       "available",
				CollectedAt:  now,
			},
			Dates: r.Dates,
		})
	}
	s.logger.Info("availability sweep complete", zap.Int("available", len(results)))
	return results, nil
}
