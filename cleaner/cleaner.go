// Package cleaner converts fetched HTML into the output formats offered by
// the fetch command: the raw document, its main content as Markdown, or
// its main content as plain text.
package cleaner

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/PuerkitoBio/goquery"
)

// Output formats accepted by Convert.
const (
	FormatHTML     = "html"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// Cleaner holds the reusable Markdown converter. It is safe for concurrent use.
type Cleaner struct {
	mdConverter *converter.Converter
}

// NewCleaner initialises the Cleaner with a pre-configured Markdown converter.
func NewCleaner() *Cleaner {
	return &Cleaner{
		mdConverter: pricingConverter(),
	}
}

// Convert narrows rawHTML to selector (when set) and renders it in format.
//
//   - html:     the (narrowed) document unchanged
//   - markdown: main content, converted with html-to-markdown
//   - text:     main content as plain text
//
// See MainContent for how the main content is found. When nothing is
// found, markdown and text fall back to the whole document.
func (c *Cleaner) Convert(rawHTML, sourceURL, format, selector string) (string, error) {
	if selector != "" {
		narrowed, n, err := Select(rawHTML, selector)
		if err != nil {
			return "", fmt.Errorf("cleaner: selector %q: %w", selector, err)
		}
		if n == 0 {
			slog.Debug("selector matched nothing, keeping whole document", "selector", selector, "url", sourceURL)
		}
		rawHTML = narrowed
	}

	switch format {
	case FormatHTML, "":
		return rawHTML, nil
	case FormatMarkdown:
		body := rawHTML
		if main, _, ok := MainContent(rawHTML, sourceURL); ok {
			body = main
		}
		md, err := c.markdown(body, sourceURL)
		if err != nil {
			return "", fmt.Errorf("cleaner: markdown conversion: %w", err)
		}
		return md, nil
	case FormatText:
		if _, text, ok := MainContent(rawHTML, sourceURL); ok {
			return text, nil
		}
		return stripTags(rawHTML), nil
	default:
		return "", fmt.Errorf("cleaner: unknown format %q", format)
	}
}

// stripTags returns the trimmed text content of an HTML fragment.
func stripTags(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return html
	}
	doc.Find("script, style, noscript").Remove()
	return strings.TrimSpace(doc.Text())
}
