package cleaner

import (
	"strings"
	"testing"
)

const articleHTML = `<html><head><title>Guide</title></head><body>
<nav><a href="/">Home</a><a href="/pricing">Pricing</a></nav>
<article>
<h2>Choosing a water heater</h2>
<p>Tank water heaters store forty to eighty gallons of hot water and keep it ready for use throughout the day.</p>
<p>Tankless units heat water on demand, which cuts standby losses and usually lowers the monthly energy bill for small households.</p>
<p>Read the <a href="/guides/sizing">sizing guide</a> before you buy.</p>
</article>
<script>window.track = 1;</script>
</body></html>`

func TestConvert_HTMLPassthrough(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	got, err := c.Convert(articleHTML, "https://example.com/guide", FormatHTML, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != articleHTML {
		t.Error("html format should return the document unchanged")
	}
}

func TestConvert_Markdown(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	got, err := c.Convert(articleHTML, "https://example.com/guide", FormatMarkdown, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Tankless units heat water on demand") {
		t.Errorf("markdown missing article text: %q", got)
	}
	if !strings.Contains(got, "https://example.com/guides/sizing") {
		t.Errorf("relative link should be resolved: %q", got)
	}
	if strings.Contains(got, "window.track") {
		t.Error("script content leaked into markdown")
	}
}

func TestConvert_TextFallback(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	got, err := c.Convert(`<html><body><p>Short</p><script>x()</script></body></html>`, "https://example.com", FormatText, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Short" {
		t.Errorf("text fallback = %q, want %q", got, "Short")
	}
}

func TestConvert_Selector(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	got, err := c.Convert(articleHTML, "https://example.com", FormatHTML, "nav a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `<a href="/">Home</a><a href="/pricing">Pricing</a>`
	if got != want {
		t.Errorf("selector output = %q, want %q", got, want)
	}
}

func TestConvert_Errors(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	if _, err := c.Convert(articleHTML, "https://example.com", FormatHTML, "a[href"); err == nil {
		t.Error("expected error for invalid selector")
	}
	if _, err := c.Convert(articleHTML, "https://example.com", "pdf", ""); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestSelect_NoMatch(t *testing.T) {
	t.Parallel()

	got, n, err := Select("<p>x</p>", "table")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "<p>x</p>" || n != 0 {
		t.Errorf("no-match should return input, got %q (%d)", got, n)
	}
}

func TestSelect_NestedMatchesRenderedOnce(t *testing.T) {
	t.Parallel()

	in := `<div class="card"><div class="card">inner</div></div><div class="card">second</div>`
	got, n, err := Select(in, ".card")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
	if strings.Count(got, "inner") != 1 {
		t.Errorf("nested match duplicated: %q", got)
	}
	if !strings.Contains(got, "second") {
		t.Errorf("sibling match missing: %q", got)
	}
}

const landingHTML = `<html><body>
<header class="site-header"><a href="/">Acme</a><a href="/login">Log in</a></header>
<section class="hero"><h1>Payroll in minutes</h1><p>Run payroll for your whole team in three clicks.</p></section>
<div id="cookie-consent"><p>We use cookies.</p><a href="/privacy">Privacy</a></div>
<footer><a href="/terms">Terms</a><a href="/jobs">Jobs</a></footer>
</body></html>`

func TestPruneBoilerplate(t *testing.T) {
	t.Parallel()

	got, ok := PruneBoilerplate(landingHTML)
	if !ok {
		t.Fatal("expected blocks to survive")
	}
	if !strings.Contains(got, "Payroll in minutes") {
		t.Errorf("hero dropped: %q", got)
	}
	for _, chrome := range []string{"Log in", "We use cookies", "Terms"} {
		if strings.Contains(got, chrome) {
			t.Errorf("boilerplate %q kept: %q", chrome, got)
		}
	}
}

func TestPruneBoilerplate_NothingSurvives(t *testing.T) {
	t.Parallel()

	if _, ok := PruneBoilerplate(`<html><body><nav><a href="/">Home</a></nav></body></html>`); ok {
		t.Error("expected no surviving blocks")
	}
}

func TestConvert_TextLandingPage(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	got, err := c.Convert(landingHTML, "https://example.com", FormatText, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "Run payroll for your whole team") {
		t.Errorf("text missing hero copy: %q", got)
	}
}

func TestMarkdown_StrikethroughAndBlankRuns(t *testing.T) {
	t.Parallel()

	c := NewCleaner()
	got, err := c.markdown(`<p>Was <del>$99</del> now $49</p><div></div><div></div><p><a href="/buy">Buy</a></p>`, "https://example.com/offer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(got, "~~$99~~") {
		t.Errorf("struck price lost: %q", got)
	}
	if strings.Contains(got, "\n\n\n") {
		t.Errorf("blank runs not collapsed: %q", got)
	}
	if !strings.Contains(got, "https://example.com/buy") {
		t.Errorf("relative link not resolved: %q", got)
	}
	if got != strings.TrimSpace(got) {
		t.Errorf("output not trimmed: %q", got)
	}
}
