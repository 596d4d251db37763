// Package dvsa drives the DVSA booking site through headless Chrome. It is
// the only package that knows the site's markup; everything above it talks
// through the collector's PageDriver interface.
package dvsa

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/slotscout/slotscout/internal/centre"
	"github.com/slotscout/slotscout/internal/collector"
)

// Selectors for the booking flow. The site assigns stable element IDs.
const (
	selLicenceInput     = "#driving-licence-number"
	selReferenceInput   = "#application-reference-number"
	selLoginSubmit      = "#booking-login"
	selBookingSummary   = "#page-ibs-summary"
	selChangeCentre     = "#test-centre-change"
	selSearchPage       = "#page-test-centre-search"
	selPostcodeInput    = "#test-centres-input"
	selPostcodeSubmit   = "#test-centres-submit"
	selSearchResults    = "#search-results"
	selFetchMoreButton  = "#fetch-more-centres"
	centreLinkSelector  = `[id^="centre-name-"]`
	centreCountScript   = `document.querySelectorAll('[id^="centre-name-"]').length`
	centreExtractScript = `Array.from(document.querySelectorAll('[id^="centre-name-"]')).map(el => ({id: el.id, text: el.textContent.trim()}))`
)

// Session is one logged-in browser session against the booking site. It
// implements collector.PageDriver. Not safe for concurrent use: the run is
// single-threaded by construction and the session holds one browser tab.
type Session struct {
	cfg             Config
	logger          *zap.Logger
	allocatorCancel context.CancelFunc
	browserCtx      context.Context
	browserCancel   context.CancelFunc
}

var _ collector.PageDriver = (*Session)(nil)

// NewSession launches the browser and warms it up. Call Close when done.
func NewSession(cfg Config, logger *zap.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("window-size", "1920,1080"),
		chromedp.Flag("incognito", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocatorCtx, allocatorCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocatorCtx)
	err := chromedp.Run(browserCtx,
		emulation.SetUserAgentOverride(cfg.UserAgent).WithAcceptLanguage("en-GB"),
	)
	if err != nil {
		browserCancel()
		allocatorCancel()
		return nil, fmt.Errorf("chromedp warmup: %w", err)
	}

	return &Session{
		cfg:             cfg,
		logger:          logger,
		allocatorCancel: allocatorCancel,
		browserCtx:      browserCtx,
		browserCancel:   browserCancel,
	}, nil
}

// Close tears down the browser.
func (s *Session) Close() {
	if s == nil {
		return
	}
	s.browserCancel()
	s.allocatorCancel()
}

// Login navigates to the booking service and authenticates with the licence
// number and booking reference. Maintenance pages and security blocks abort
// with a collector.FatalError.
func (s *Session) Login(ctx context.Context) error {
	s.logger.Info("logging in", zap.String("url", s.cfg.LoginURL))

	if err := s.run(ctx,
		chromedp.Navigate(s.cfg.LoginURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
	); err != nil {
		return fmt.Errorf("navigate to login page: %w", err)
	}
	s.pageSettleDelay(ctx)

	if err := s.checkBlockingConditions(ctx, "login page load"); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.WaitVisible(selLicenceInput, chromedp.ByQuery)); err != nil {
		shot, _ := s.Screenshot(ctx, "wrong-page-loaded")
		return fmt.Errorf("login form not found (screenshot %s): %w", shot, err)
	}

	if err := s.typeSlow(ctx, selLicenceInput, s.cfg.LicenceNumber); err != nil {
		return fmt.Errorf("enter licence number: %w", err)
	}
	if err := s.typeSlow(ctx, selReferenceInput, s.cfg.BookingReference); err != nil {
		return fmt.Errorf("enter booking reference: %w", err)
	}
	if err := s.clickSlow(ctx, selLoginSubmit); err != nil {
		return fmt.Errorf("submit login: %w", err)
	}
	s.pageSettleDelay(ctx)

	if err := s.checkBlockingConditions(ctx, "login submission"); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.WaitVisible(selBookingSummary, chromedp.ByQuery)); err != nil {
		shot, _ := s.Screenshot(ctx, "wrong-page-after-login")
		return fmt.Errorf("booking summary not reached (screenshot %s): %w", shot, err)
	}
	s.logger.Info("login complete")
	return nil
}

// NavigateToChangeCentre moves from the booking summary to the test centre
// search form.
func (s *Session) NavigateToChangeCentre(ctx context.Context) error {
	if err := s.run(ctx, chromedp.WaitVisible(selChangeCentre, chromedp.ByQuery)); err != nil {
		return fmt.Errorf("change-centre button not found: %w", err)
	}
	if err := s.clickSlow(ctx, selChangeCentre); err != nil {
		return fmt.Errorf("click change centre: %w", err)
	}
	s.pageSettleDelay(ctx)

	if err := s.checkBlockingConditions(ctx, "change centre navigation"); err != nil {
		return err
	}
	if err := s.run(ctx,
		chromedp.WaitVisible(selSearchPage, chromedp.ByQuery),
		chromedp.WaitVisible(selPostcodeInput, chromedp.ByQuery),
	); err != nil {
		shot, _ := s.Screenshot(ctx, "wrong-page-after-change-centre")
		return fmt.Errorf("search page not reached (screenshot %s): %w", shot, err)
	}
	return nil
}

// Probe searches for test centres near one postcode.
func (s *Session) Probe(ctx context.Context, postcode string) error {
	s.logger.Info("searching postcode", zap.String("postcode", postcode))

	if err := s.run(ctx,
		chromedp.WaitVisible(selPostcodeInput, chromedp.ByQuery),
		clearValue(selPostcodeInput),
	); err != nil {
		return fmt.Errorf("search form not ready: %w", err)
	}
	if err := s.typeSlow(ctx, selPostcodeInput, postcode); err != nil {
		return fmt.Errorf("enter postcode: %w", err)
	}
	if err := s.clickSlow(ctx, selPostcodeSubmit); err != nil {
		return fmt.Errorf("submit search: %w", err)
	}
	s.pageSettleDelay(ctx)

	if err := s.checkBlockingConditions(ctx, "postcode search"); err != nil {
		return err
	}
	if err := s.run(ctx, chromedp.WaitVisible(selSearchResults, chromedp.ByQuery)); err != nil {
		shot, _ := s.Screenshot(ctx, "wrong-page-after-search")
		return fmt.Errorf("search results not shown (screenshot %s): %w", shot, err)
	}
	return nil
}

// extractedLink mirrors the DOM payload pulled per centre link.
type extractedLink struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// ExtractVisible returns every centre currently listed, in DOM order. The
// results list exposes only "Name – Status" link text, so Address stays
// empty on this path and identity degrades to name-only matching.
func (s *Session) ExtractVisible(ctx context.Context) ([]centre.Centre, error) {
	var links []extractedLink
	if err := s.run(ctx, chromedp.Evaluate(centreExtractScript, &links)); err != nil {
		return nil, fmt.Errorf("extract centre links: %w", err)
	}

	centres := make([]centre.Centre, 0, len(links))
	now := time.Now().UTC()
	for _, link := range links {
		name, status := splitNameStatus(link.Text)
		if name == "" {
			continue
		}
		centres = append(centres, centre.Centre{
			Name:         name,
			Status:       status,
			Availability: centre.ParseAvailability(status),
			CentreID:     trimCentrePrefix(link.ID),
			CollectedAt:  now,
		})
	}
	s.logger.Debug("extracted centres", zap.Int("count", len(centres)))
	return centres, nil
}

// LoadMore clicks the show-more button if present and reports whether new
// results actually appeared.
func (s *Session) LoadMore(ctx context.Context) (bool, error) {
	visible, err := s.elementVisible(ctx, selFetchMoreButton)
	if err != nil {
		return false, fmt.Errorf("check show-more button: %w", err)
	}
	if !visible {
		return false, nil
	}

	var countBefore int
	if err := s.run(ctx, chromedp.Evaluate(centreCountScript, &countBefore)); err != nil {
		return false, fmt.Errorf("count results: %w", err)
	}

	if err := s.run(ctx, chromedp.ScrollIntoView(selFetchMoreButton, chromedp.ByQuery)); err != nil {
		return false, fmt.Errorf("scroll to show-more: %w", err)
	}
	if err := s.clickSlow(ctx, selFetchMoreButton); err != nil {
		return false, fmt.Errorf("click show-more: %w", err)
	}
	// AJAX completion has no observable signal; wait a fixed settle time.
	sleep(ctx, s.cfg.LoadMoreWait)

	if err := s.checkBlockingConditions(ctx, "show more results"); err != nil {
		return false, err
	}

	var countAfter int
	if err := s.run(ctx, chromedp.Evaluate(centreCountScript, &countAfter)); err != nil {
		return false, fmt.Errorf("recount results: %w", err)
	}
	if countAfter <= countBefore {
		s.logger.Debug("no new results after show-more",
			zap.Int("before", countBefore), zap.Int("after", countAfter))
		return false, nil
	}
	return true, nil
}

// AwaitChallengeResolution blocks for the given window and then resumes
// whether or not the challenge was cleared.
func (s *Session) AwaitChallengeResolution(ctx context.Context, timeout time.Duration) error {
	s.logger.Warn("waiting for manual verification", zap.Duration("timeout", timeout))
	sleep(ctx, timeout)
	return ctx.Err()
}

// run executes chromedp actions in a fresh nav-timeout window on the
// session's browser context, honoring the caller's cancellation.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	taskCtx, cancel := context.WithTimeout(s.browserCtx, s.cfg.NavTimeout)
	defer cancel()
	stop := forwardCancel(ctx, cancel)
	defer stop()
	return chromedp.Run(taskCtx, actions...)
}

// forwardCancel propagates the caller's cancellation into a chromedp task.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// typeSlow types text one rune at a time with randomized gaps.
func (s *Session) typeSlow(ctx context.Context, sel, text string) error {
	if err := s.run(ctx, chromedp.Click(sel, chromedp.ByQuery)); err != nil {
		return err
	}
	for _, r := range text {
		if err := s.run(ctx, chromedp.SendKeys(sel, string(r), chromedp.ByQuery)); err != nil {
			return err
		}
		sleep(ctx, randomBetween(s.cfg.TypeDelayMin, s.cfg.TypeDelayMax))
	}
	return nil
}

// clickSlow pauses briefly before clicking.
func (s *Session) clickSlow(ctx context.Context, sel string) error {
	sleep(ctx, randomBetween(s.cfg.TypeDelayMin, s.cfg.TypeDelayMax))
	return s.run(ctx, chromedp.Click(sel, chromedp.ByQuery))
}

func (s *Session) pageSettleDelay(ctx context.Context) {
	sleep(ctx, randomBetween(s.cfg.PageDelayMin, s.cfg.PageDelayMax))
}

func (s *Session) elementVisible(ctx context.Context, sel string) (bool, error) {
	script := fmt.Sprintf(`(() => {
		const el = document.querySelector(%q);
		if (!el) return false;
		const rect = el.getBoundingClientRect();
		return rect.height > 0 && rect.width > 0;
	})()`, sel)
	var visible bool
	if err := s.run(ctx, chromedp.Evaluate(script, &visible)); err != nil {
		return false, err
	}
	return visible, nil
}

func clearValue(sel string) chromedp.Action {
	script := fmt.Sprintf(`(() => { const el = document.querySelector(%q); if (el) el.value = ''; })()`, sel)
	return chromedp.Evaluate(script, nil)
}

func sleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func randomBetween(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	n, err := rand.Int(rand.Reader, big.NewInt(int64(max-min)))
	if err != nil {
		return min
	}
	return min + time.Duration(n.Int64())
}
