package scraper

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/lpaudit/models"
)

// ScreenshotOptions tune one capture.
type ScreenshotOptions struct {
	// FullPage captures the whole scrollable document instead of the window.
	FullPage bool

	// Timeout bounds the page load. Zero means the configured default.
	Timeout time.Duration
}

// Screenshot loads target at the named viewport, waits for network idle
// plus the settle delay and returns the PNG bytes.
func (s *Scraper) Screenshot(ctx context.Context, target, viewport string, opts ScreenshotOptions) ([]byte, error) {
	vp, err := LookupViewport(viewport)
	if err != nil {
		return nil, models.NewAuditError(models.ErrCodeInvalidInput, err.Error(), err)
	}
	timeout := s.auditCfg.ClampTimeout(opts.Timeout)

	var png []byte
	err = s.withPage(ctx, vp, false, func(page *rod.Page) error {
		if err := load(ctx, page, target, timeout); err != nil {
			return err
		}

		select {
		case <-time.After(s.auditCfg.ScreenshotSettle):
		case <-ctx.Done():
			return ctx.Err()
		}

		shotCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var err error
		png, err = page.Context(shotCtx).Screenshot(opts.FullPage, nil)
		return err
	})
	if err != nil {
		return nil, categorizeError(err, timeout)
	}
	return png, nil
}

// CaptureToFile takes a screenshot and writes it to path. Failures are
// reported in the result rather than returned.
func (s *Scraper) CaptureToFile(ctx context.Context, target, viewport, path string, opts ScreenshotOptions) *models.ScreenshotResult {
	result := &models.ScreenshotResult{
		URL:      target,
		Output:   path,
		Viewport: viewport,
	}

	png, err := s.Screenshot(ctx, target, viewport, opts)
	if err == nil {
		err = os.WriteFile(path, png, 0o644) //nolint:gosec // screenshots are meant to be shared
	}
	if err != nil {
		msg := err.Error()
		var auditErr *models.AuditError
		if errors.As(err, &auditErr) {
			msg = auditErr.Message
		}
		result.Error = &msg
		slog.Warn("screenshot failed", "url", target, "viewport", viewport, "error", err)
		return result
	}

	result.Success = true
	return result
}
