package dvsa

import (
	"context"
	"fmt"
	"strings"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/collector"
)

// maintenancePatterns are fragments the site's maintenance pages contain.
var maintenancePatterns = []string{
	"i'll be back",
	"be back at",
	"maintenance",
	"temporarily unavailable",
	"service unavailable",
	"currently unavailable",
}

// challengeSelectors match known CAPTCHA widgets.
var challengeSelectors = []string{
	"#recaptcha",
	".g-recaptcha",
	`iframe[src*="recaptcha"]`,
	`iframe[src*="captcha"]`,
	".captcha",
	"#captcha",
	".hcaptcha",
	"#hcaptcha",
}

// challengeTexts match verification prompts without a recognizable widget.
var challengeTexts = []string{
	"verify you are human",
	"complete the captcha",
	"security check",
	"prove you are not a robot",
	"verification required",
}

// pageText returns the lowercased body text of the current page.
func (s *Session) pageText(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Evaluate(`document.body ? document.body.textContent.toLowerCase() : ""`, &text))
	if err != nil {
		return "", fmt.Errorf("read page text: %w", err)
	}
	return text, nil
}

// ChallengeDetected reports whether a verification challenge is blocking the
// page. Detection errors degrade to "no challenge" so a flaky readout never
// kills an area.
func (s *Session) ChallengeDetected(ctx context.Context) (bool, error) {
	script := fmt.Sprintf(
		`!!document.querySelector(%q)`,
		strings.Join(challengeSelectors, ", "),
	)
	var present bool
	if err := s.run(ctx, chromedp.Evaluate(script, &present)); err != nil {
		s.logger.Warn("challenge selector check failed", zap.Error(err))
		return false, nil
	}
	if present {
		return true, nil
	}

	text, err := s.pageText(ctx)
	if err != nil {
		s.logger.Warn("challenge text check failed", zap.Error(err))
		return false, nil
	}
	for _, needle := range challengeTexts {
		if strings.Contains(text, needle) {
			s.logger.Warn("verification prompt found", zap.String("match", needle))
			return true, nil
		}
	}
	return false, nil
}

// checkBlockingConditions inspects the current page for maintenance mode and
// security blocks after a navigation or interaction. Either condition is
// fatal for the whole run.
func (s *Session) checkBlockingConditions(ctx context.Context, action string) error {
	text, err := s.pageText(ctx)
	if err != nil {
		// Unreadable page text is not itself a block signal.
		s.logger.Warn("block check skipped", zap.String("action", action), zap.Error(err))
		return nil
	}

	if strings.Contains(text, "access denied") &&
		(strings.Contains(text, "your ip:") || strings.Contains(text, "proxy ip:")) {
		shot, _ := s.Screenshot(ctx, "security-block")
		return &collector.FatalError{
			Kind:          "security_block",
			Message:       fmt.Sprintf("access denied after %s", action),
			ScreenshotRef: shot,
		}
	}

	for _, pattern := range maintenancePatterns {
		if !strings.Contains(text, pattern) {
			continue
		}
		shot, _ := s.Screenshot(ctx, "maintenance")
		return &collector.FatalError{
			Kind:          "maintenance",
			Message:       fmt.Sprintf("maintenance page detected after %s (matched %q)", action, pattern),
			ScreenshotRef: shot,
		}
	}
	return nil
}
