package scraper

import (
	"math"
	"regexp"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/use-agent/lpaudit/config"
	"github.com/ysmood/gson"
)

// idleWindow is how long the network must stay quiet before a page counts
// as loaded.
const idleWindow = 500 * time.Millisecond

// In-page probes. Observers resolve after at most 3s so a page that never
// reports an entry cannot stall the pass.
const (
	jsNavTiming = `() => {
		const nav = performance.getEntriesByType('navigation')[0];
		return {
			ttfb: nav ? nav.responseStart : null,
			domContentLoaded: nav ? nav.domContentLoadedEventEnd : null,
		};
	}`

	jsCLS = `() => new Promise(resolve => {
		let clsValue = 0;
		new PerformanceObserver(list => {
			for (const entry of list.getEntries()) {
				if (!entry.hadRecentInput) clsValue += entry.value;
			}
			resolve(clsValue);
		}).observe({type: 'layout-shift', buffered: true});
		setTimeout(() => resolve(clsValue), 3000);
	})`

	jsLCP = `() => new Promise(resolve => {
		new PerformanceObserver(list => {
			const entries = list.getEntries();
			resolve(entries.length > 0 ? entries[entries.length - 1].startTime : null);
		}).observe({type: 'largest-contentful-paint', buffered: true});
		setTimeout(() => resolve(null), 3000);
	})`

	jsTitle     = `() => document.title`
	jsLocation  = `() => location.href`
	jsInnerText = `() => document.body ? document.body.innerText : ''`
	jsResources = `() => performance.getEntriesByType('resource').map(e => e.name)`

	jsHorizontalScroll = `() => document.documentElement.scrollWidth > window.innerWidth`
	jsBodyFontSize     = `() => document.body ? parseFloat(window.getComputedStyle(document.body).fontSize) : 0`
)

// ctaLocator finds the first element matching a CTA probe and returns its
// bounding box. A nil box with a nil error means no element, or one that
// is not rendered.
type ctaLocator interface {
	locate(probe config.CTAProbe) (*proto.DOMRect, error)
}

// rodLocator locates CTA probes on a live page.
type rodLocator struct {
	page *rod.Page
}

func (l rodLocator) locate(probe config.CTAProbe) (*proto.DOMRect, error) {
	var (
		has bool
		el  *rod.Element
		err error
	)
	if probe.Text != "" {
		has, el, err = l.page.HasR(probe.Selector, textPattern(probe.Text))
	} else {
		has, el, err = l.page.Has(probe.Selector)
	}
	if err != nil || !has {
		return nil, err
	}

	shape, err := el.Shape()
	if err != nil {
		return nil, err
	}
	return shape.Box(), nil
}

// ctaAboveFold reports whether any probe matches an element whose top edge
// sits above fold. Probes run in order and the first hit wins. A probe
// that errors, matches nothing, or matches an element without a box or
// below the fold is a miss.
func ctaAboveFold(loc ctaLocator, probes []config.CTAProbe, fold float64) bool {
	for _, probe := range probes {
		box, err := loc.locate(probe)
		if err != nil || box == nil {
			continue
		}
		if box.Y < fold {
			return true
		}
	}
	return false
}

// textPattern builds the case-insensitive substring regex rod's HasR expects.
func textPattern(text string) string {
	return "/" + regexp.QuoteMeta(text) + "/i"
}

// roundMs rounds a millisecond reading to an integer, half to even.
func roundMs(v float64) int {
	return int(math.RoundToEven(v))
}

// round4 rounds to four decimal places.
func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// timingMs converts a probe timing to whole milliseconds. Null and zero
// readings mean the page never reported the metric.
func timingMs(v gson.JSON) *int {
	if v.Nil() || v.Num() == 0 {
		return nil
	}
	ms := roundMs(v.Num())
	return &ms
}

func stringList(v gson.JSON) []string {
	arr := v.Arr()
	out := make([]string, 0, len(arr))
	for _, entry := range arr {
		if s := entry.Str(); s != "" {
			out = append(out, s)
		}
	}
	return out
}
