package cleaner

import (
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Landing pages are usually a stack of sections (hero, benefits, pricing,
// testimonials) rather than one article, so readability often rejects them.
// Pruning scores each top-level block of <body> instead and drops the
// chrome around the offer.

// Signal weights for the block scorer.
const (
	wTextDensity   = 3.0
	wLinkDensity   = -2.0
	wTagWeight     = 1.5
	wClassIDWeight = 1.0
	wTextLength    = 0.5
)

// offerPatterns in a class or id mark blocks that carry the pitch.
var offerPatterns = []string{
	"hero", "main", "content", "feature", "benefit", "pricing", "plan",
	"testimonial", "review", "faq", "offer", "signup", "form",
}

// chromePatterns in a class or id mark boilerplate around the pitch.
var chromePatterns = []string{
	"nav", "menu", "footer", "header", "cookie", "consent", "banner",
	"modal", "popup", "sidebar", "social", "share", "widget",
}

// PruneBoilerplate keeps the top-level <body> blocks that score above zero
// and returns their outer HTML joined by newlines. The bool is false when
// the document has no body or no block survives.
func PruneBoilerplate(rawHTML string) (string, bool) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return "", false
	}
	doc.Find("script, style, noscript, template").Remove()

	body := doc.Find("body")
	if body.Length() == 0 {
		return "", false
	}

	var kept []string
	body.Children().Each(func(_ int, el *goquery.Selection) {
		if scoreBlock(el) <= 0 {
			return
		}
		if html, err := goquery.OuterHtml(el); err == nil {
			kept = append(kept, html)
		}
	})

	if len(kept) == 0 {
		return "", false
	}
	return strings.Join(kept, "\n"), true
}

// scoreBlock combines text density, link density, the tag, class/id hints
// and a log-scale text length bonus.
func scoreBlock(el *goquery.Selection) float64 {
	outer, err := goquery.OuterHtml(el)
	if err != nil || outer == "" {
		return 0
	}

	text := strings.TrimSpace(el.Text())
	textLen := len(text)

	textDensity := float64(textLen) / float64(len(outer))

	linkTextLen := 0
	el.Find("a").Each(func(_ int, a *goquery.Selection) {
		linkTextLen += len(strings.TrimSpace(a.Text()))
	})
	linkDensity := 0.0
	if textLen > 0 {
		linkDensity = float64(linkTextLen) / float64(textLen)
	}

	return textDensity*wTextDensity +
		linkDensity*wLinkDensity +
		tagWeight(el)*wTagWeight +
		classIDWeight(el)*wClassIDWeight +
		math.Log10(float64(textLen)+1)*wTextLength
}

func tagWeight(el *goquery.Selection) float64 {
	switch goquery.NodeName(el) {
	case "main", "article", "section", "form":
		return 5.0
	case "nav", "footer", "aside", "header", "dialog":
		return -5.0
	default:
		return 0.0
	}
}

// classIDWeight counts each direction at most once.
func classIDWeight(el *goquery.Selection) float64 {
	class, _ := el.Attr("class")
	id, _ := el.Attr("id")
	combined := strings.ToLower(class + " " + id)

	score := 0.0
	for _, pat := range offerPatterns {
		if strings.Contains(combined, pat) {
			score += 3.0
			break
		}
	}
	for _, pat := range chromePatterns {
		if strings.Contains(combined, pat) {
			score -= 3.0
			break
		}
	}
	return score
}
