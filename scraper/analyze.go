package scraper

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-rod/rod"
	"github.com/use-agent/lpaudit/extract"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/simhash"
)

// Options tune one audit.
type Options struct {
	// Timeout bounds the page load of each pass. Zero means the
	// configured default; larger values are clamped to the maximum.
	Timeout time.Duration

	// Stealth installs the anti-bot-detection evasions before navigation.
	Stealth bool
}

// Analyze audits target with a desktop pass followed by a mobile pass.
//
// The returned report is never nil. When a pass fails the report keeps
// whatever was gathered before the failure, its Error carries the message
// and the returned error is the matching *models.AuditError. A failed
// desktop pass skips the mobile pass.
func (s *Scraper) Analyze(ctx context.Context, target string, opts Options) (*models.Report, error) {
	timeout := s.auditCfg.ClampTimeout(opts.Timeout)
	return runPasses(ctx, target, timeout, opts.Stealth, s.desktopPass, s.mobilePass)
}

// pass fills its part of r from one page load and returns the rendered HTML.
type pass func(ctx context.Context, r *models.Report, target string, timeout time.Duration, useStealth bool) (string, error)

func runPasses(ctx context.Context, target string, timeout time.Duration, useStealth bool, desktop, mobile pass) (*models.Report, error) {
	start := time.Now()
	r := models.NewReport(target)

	desktopHTML, err := desktop(ctx, r, target, timeout, useStealth)
	if err != nil {
		return r, failReport(r, err, timeout)
	}

	mobileHTML, err := mobile(ctx, r, target, timeout, useStealth)
	if err != nil {
		return r, failReport(r, err, timeout)
	}

	distance := simhash.DOMDistance(desktopHTML, mobileHTML)
	r.Mobile.DOMDistance = &distance

	slog.Debug("audit complete",
		"url", target,
		"finalURL", r.FinalURL,
		"elapsed", time.Since(start),
	)
	return r, nil
}

func failReport(r *models.Report, err error, timeout time.Duration) error {
	auditErr := categorizeError(err, timeout)
	r.Fail(auditErr.Message)
	slog.Warn("audit pass failed", "url", r.URL, "code", auditErr.Code, "error", err)
	return auditErr
}

// desktopPass loads target at 1920x1080 and fills the timing, content,
// conversion, trust and schema groups. It returns the rendered HTML.
func (s *Scraper) desktopPass(ctx context.Context, r *models.Report, target string, timeout time.Duration, useStealth bool) (string, error) {
	var rendered string
	err := s.withPage(ctx, auditDesktop, useStealth, func(page *rod.Page) error {
		if err := load(ctx, page, target, timeout); err != nil {
			return err
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		p := page.Context(probeCtx)

		nav, err := p.Eval(jsNavTiming)
		if err != nil {
			return err
		}
		r.Performance.TTFBMs = timingMs(nav.Value.Get("ttfb"))
		r.Performance.DOMContentLoadedMs = timingMs(nav.Value.Get("domContentLoaded"))

		cls, err := p.Eval(jsCLS)
		if err != nil {
			return err
		}
		if !cls.Value.Nil() {
			v := round4(cls.Value.Num())
			r.Performance.CLS = &v
		}

		title, err := p.Eval(jsTitle)
		if err != nil {
			return err
		}
		t := title.Value.Str()
		r.Content.Title = &t

		r.Conversion.CTAAboveFold = ctaAboveFold(rodLocator{p}, s.rules.CTAProbes, float64(auditDesktop.Height))

		snap, err := snapshot(p, target)
		if err != nil {
			return err
		}
		r.FinalURL = snap.URL
		rendered = snap.HTML

		return extract.Desktop(r, snap, s.rules)
	})
	return rendered, err
}

// mobilePass reloads target at 375x812 in a fresh context and fills LCP
// and the mobile group. It returns the rendered HTML.
func (s *Scraper) mobilePass(ctx context.Context, r *models.Report, target string, timeout time.Duration, useStealth bool) (string, error) {
	var rendered string
	err := s.withPage(ctx, auditMobile, useStealth, func(page *rod.Page) error {
		if err := load(ctx, page, target, timeout); err != nil {
			return err
		}

		probeCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		p := page.Context(probeCtx)

		lcp, err := p.Eval(jsLCP)
		if err != nil {
			return err
		}
		r.Performance.LCPMs = timingMs(lcp.Value)

		scroll, err := p.Eval(jsHorizontalScroll)
		if err != nil {
			return err
		}
		r.Mobile.HorizontalScroll = scroll.Value.Bool()

		font, err := p.Eval(jsBodyFontSize)
		if err != nil {
			return err
		}
		r.Mobile.FontReadable = font.Value.Num() >= 16

		html, err := p.HTML()
		if err != nil {
			return err
		}
		rendered = html

		return extract.Mobile(r, extract.Page{URL: target, HTML: html})
	})
	return rendered, err
}

// snapshot collects what the pure DOM rules need from a loaded page.
func snapshot(p *rod.Page, target string) (extract.Page, error) {
	snap := extract.Page{URL: target}

	html, err := p.HTML()
	if err != nil {
		return snap, err
	}
	snap.HTML = html

	if loc, err := p.Eval(jsLocation); err == nil && loc.Value.Str() != "" {
		snap.URL = loc.Value.Str()
	}

	text, err := p.Eval(jsInnerText)
	if err != nil {
		return snap, err
	}
	snap.InnerText = text.Value.Str()

	// Resource timing is best effort; a page that clears its buffer just
	// reports no trackers.
	if res, err := p.Eval(jsResources); err == nil {
		snap.Resources = stringList(res.Value)
	}

	return snap, nil
}
