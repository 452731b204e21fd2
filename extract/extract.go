// Package extract turns a rendered page snapshot into report facts.
//
// Everything here is a pure function of the HTML and innerText the browser
// handed back, so the rules run the same against a live page or a fixture.
package extract

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/use-agent/lpaudit/cleaner"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/models"
	"golang.org/x/text/cases"
)

// HTML attribute values for type are matched without regard to case.
const formFieldSelector = "form input:not([type='hidden' i]):not([type='submit' i])"

// Page is the snapshot a browser pass produces.
type Page struct {
	// URL is the document location after redirects.
	URL string

	// HTML is the serialized rendered DOM.
	HTML string

	// InnerText is document.body.innerText.
	InnerText string

	// Resources lists every URL reported by the Resource Timing API.
	Resources []string
}

// Desktop fills the content, conversion, trust and schema groups from the
// desktop snapshot. CTA placement and timing metrics need layout and are
// set by the browser pass itself.
func Desktop(r *models.Report, p Page, rules *config.Rules) error {
	doc, err := parseLive(p.HTML)
	if err != nil {
		return fmt.Errorf("extract: parse desktop html: %w", err)
	}

	r.Content.H1 = FirstH1(doc)
	r.Content.MetaDescription = MetaDescription(doc)
	r.Content.WordCount = WordCount(p.InnerText)
	r.Content.MainTextWords = MainTextWords(p.HTML, p.URL)

	r.Conversion.FormPresent, r.Conversion.FormFields = Forms(doc)
	r.Conversion.PhoneNumber = doc.Find("a[href^='tel:']").Length() > 0
	r.Conversion.ChatWidget = AnyMatch(doc, rules.ChatSelectors)
	r.Conversion.TrackingTags = TrackingVendors(p.Resources)

	folded := foldCase(p.InnerText)
	r.Trust.Testimonials = containsAny(folded, rules.TestimonialKeywords)
	r.Trust.TrustBadges = containsAny(folded, rules.BadgeKeywords)

	types := SchemaTypes(doc)
	r.Schema.TypesFound = types
	r.Schema.ProductSchema = hasType(types, "Product")
	r.Schema.FAQSchema = hasType(types, "FAQPage")
	r.Schema.ServiceSchema = hasType(types, "Service")
	r.Trust.ReviewsSchema = hasType(types, "Review") || hasType(types, "AggregateRating")

	return nil
}

// Mobile fills the DOM-only fields of the mobile group.
func Mobile(r *models.Report, p Page) error {
	doc, err := parseLive(p.HTML)
	if err != nil {
		return fmt.Errorf("extract: parse mobile html: %w", err)
	}
	r.Mobile.ViewportMeta = doc.Find(`meta[name="viewport"]`).Length() > 0
	return nil
}

// parseLive parses rendered HTML and drops template contents, which the
// browser keeps inert and never matches against selectors.
func parseLive(rawHTML string) (*goquery.Document, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	doc.Find("template").Remove()
	return doc, nil
}

// FirstH1 returns the trimmed text of the first h1, or nil when the page
// has none. An empty heading yields a pointer to "".
func FirstH1(doc *goquery.Document) *string {
	h1 := doc.Find("h1").First()
	if h1.Length() == 0 {
		return nil
	}
	text := strings.TrimSpace(h1.Text())
	return &text
}

// MetaDescription returns the content attribute of the description meta
// tag, or nil when the tag or its attribute is missing.
func MetaDescription(doc *goquery.Document) *string {
	content, ok := doc.Find(`meta[name="description"]`).First().Attr("content")
	if !ok {
		return nil
	}
	return &content
}

// Forms reports whether any form exists and, if so, how many visible
// non-submit inputs sit inside forms.
func Forms(doc *goquery.Document) (bool, int) {
	if doc.Find("form").Length() == 0 {
		return false, 0
	}
	return true, doc.Find(formFieldSelector).Length()
}

// AnyMatch reports whether any selector matches, stopping at the first hit.
func AnyMatch(doc *goquery.Document, selectors []string) bool {
	for _, sel := range selectors {
		if doc.Find(sel).Length() > 0 {
			return true
		}
	}
	return false
}

// WordCount counts whitespace-separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// MainTextWords counts words in the readability main-content extraction.
// Pages where readability finds nothing report zero.
func MainTextWords(rawHTML, pageURL string) int {
	article, ok := cleaner.ExtractContent(rawHTML, pageURL)
	if !ok {
		return 0
	}
	return WordCount(article.TextContent)
}

func containsAny(folded string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(folded, foldCase(n)) {
			return true
		}
	}
	return false
}

// foldCase case-folds s for caseless keyword matching. A Caser is
// stateful, so every call builds its own.
func foldCase(s string) string {
	return cases.Fold().String(s)
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}
