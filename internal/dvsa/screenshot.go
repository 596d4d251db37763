package dvsa

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Screenshot captures the full current page as PNG under the configured
// screenshots directory and returns the file path.
func (s *Session) Screenshot(ctx context.Context, label string) (string, error) {
	if s.cfg.ScreenshotDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o750); err != nil {
		return "", fmt.Errorf("create screenshot dir: %w", err)
	}

	var buf []byte
	if err := s.run(ctx, chromedp.FullScreenshot(&buf, 90)); err != nil {
		return "", fmt.Errorf("capture screenshot: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.png",
		label,
		time.Now().UTC().Format("2006-01-02T15-04-05"),
		uuid.NewString()[:8],
	)
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return "", fmt.Errorf("write screenshot %s: %w", path, err)
	}
	s.logger.Debug("screenshot saved", zap.String("path", path))
	return path, nil
}
