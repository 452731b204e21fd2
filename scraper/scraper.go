// Package scraper drives a headless Chromium through the audit passes and
// screenshot captures.
package scraper

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/models"
)

// Scraper manages the global browser lifecycle. Every pass runs in its own
// incognito context so cookies and caches never leak between passes.
// It is safe for concurrent use.
type Scraper struct {
	browser    *rod.Browser
	contexts   rod.Pool[rod.Browser]
	browserCfg config.BrowserConfig
	auditCfg   config.AuditConfig
	rules      *config.Rules
	active     atomic.Int32
}

// NewScraper launches a headless browser. At most browserCfg.MaxPages
// incognito contexts are open at any time.
func NewScraper(browserCfg config.BrowserConfig, auditCfg config.AuditConfig, rules *config.Rules) (*Scraper, error) {
	if rules == nil {
		rules = config.DefaultRules()
	}

	l := launcher.New().
		Headless(browserCfg.Headless).
		NoSandbox(browserCfg.NoSandbox)

	if browserCfg.BrowserBin != "" {
		l = l.Bin(browserCfg.BrowserBin)
	}
	if browserCfg.DefaultProxy != "" {
		l = l.Proxy(browserCfg.DefaultProxy)
	}

	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-features"), "AudioServiceOutOfProcess,TranslateUI")
	l.Set(flags.Flag("disable-ipc-flooding-protection"))
	l.Set(flags.Flag("disable-popup-blocking"))
	l.Set(flags.Flag("disable-renderer-backgrounding"))
	l.Set(flags.Flag("disable-background-timer-throttling"))
	l.Set(flags.Flag("disable-backgrounding-occluded-windows"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAuditError(
			models.ErrCodeBrowserCrash,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewAuditError(
			models.ErrCodeBrowserCrash,
			"failed to connect to browser",
			err,
		)
	}

	slog.Info("context pool created", "maxContexts", browserCfg.MaxPages)

	return &Scraper{
		browser:    browser,
		contexts:   rod.NewBrowserPool(browserCfg.MaxPages),
		browserCfg: browserCfg,
		auditCfg:   auditCfg,
		rules:      rules,
	}, nil
}

// Stats returns a snapshot of the context pool's current state.
func (s *Scraper) Stats() models.PoolStats {
	return models.PoolStats{
		MaxContexts:    s.browserCfg.MaxPages,
		ActiveContexts: int(s.active.Load()),
	}
}

// Close kills the browser process.
// Call this on graceful shutdown to prevent zombie Chrome processes.
func (s *Scraper) Close() {
	slog.Info("scraper shutting down: closing browser")
	if err := s.browser.Close(); err != nil {
		slog.Warn("close browser", "error", err)
	}
	slog.Info("scraper shutdown complete")
}

// withPage opens a fresh incognito page sized to vp and hands it to fn.
// The context is disposed and its pool slot returned when fn is done.
//
// Stealth must be installed before the first navigation, so it happens
// here rather than in the passes.
func (s *Scraper) withPage(ctx context.Context, vp Viewport, useStealth bool, fn func(*rod.Page) error) error {
	select {
	case <-s.contexts:
	case <-ctx.Done():
		return ctx.Err()
	}
	s.active.Add(1)
	defer func() {
		s.active.Add(-1)
		s.contexts.Put(nil)
	}()

	incognito, err := s.browser.Incognito()
	if err != nil {
		return models.NewAuditError(models.ErrCodeBrowserCrash, "failed to open browser context", err)
	}
	defer func() {
		if closeErr := incognito.Close(); closeErr != nil {
			slog.Warn("cleanup: failed to dispose browser context", "error", closeErr)
		}
	}()

	page, err := incognito.Page(proto.TargetCreateTarget{})
	if err != nil {
		return models.NewAuditError(models.ErrCodeBrowserCrash, "failed to open page", err)
	}

	if err := page.SetViewport(vp.metrics()); err != nil {
		return models.NewAuditError(models.ErrCodeBrowserCrash, "failed to set viewport", err)
	}

	if useStealth {
		if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
			slog.Warn("stealth injection failed, proceeding without stealth",
				"error", evalErr,
			)
		}
	}

	return fn(page)
}

// load navigates to target and blocks until the load event has fired and
// the network has been quiet for idleWindow, or timeout elapses.
//
// The idle waiter MUST be registered before Navigate, otherwise in-flight
// requests are missed and the wait returns instantly.
func load(ctx context.Context, page *rod.Page, target string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	p := page.Context(ctx)
	waitIdle := p.WaitRequestIdle(idleWindow, nil, nil, nil)

	if err := p.Navigate(target); err != nil {
		return err
	}
	if err := p.WaitLoad(); err != nil {
		return err
	}
	waitIdle()

	return ctx.Err()
}
