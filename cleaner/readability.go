package cleaner

import (
	"log/slog"
	nurl "net/url"
	"strings"

	readability "github.com/go-shiori/go-readability"
)

// minContentLength is the shortest TextContent (in characters) accepted as
// a real main-content extraction.
const minContentLength = 50

// ExtractContent runs the Mozilla Readability algorithm on rawHTML.
// The boolean is false when the URL is invalid, readability fails, or the
// extracted text is shorter than minContentLength; the returned Article is
// then the zero value.
func ExtractContent(rawHTML string, sourceURL string) (readability.Article, bool) {
	parsedURL, err := nurl.Parse(sourceURL)
	if err != nil {
		slog.Debug("readability: invalid source URL", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), parsedURL)
	if err != nil {
		slog.Debug("readability: extraction failed", "url", sourceURL, "error", err)
		return readability.Article{}, false
	}

	if len(strings.TrimSpace(article.TextContent)) < minContentLength {
		slog.Debug("readability: extracted content too short",
			"url", sourceURL, "length", len(article.TextContent),
		)
		return readability.Article{}, false
	}

	return article, true
}

// MainContent returns the main content of rawHTML as HTML and as plain
// text. Readability is tried first, then PruneBoilerplate. ok is false when
// neither finds anything.
func MainContent(rawHTML, sourceURL string) (html, text string, ok bool) {
	if article, found := ExtractContent(rawHTML, sourceURL); found {
		return article.Content, strings.TrimSpace(article.TextContent), true
	}
	if pruned, found := PruneBoilerplate(rawHTML); found {
		return pruned, stripTags(pruned), true
	}
	return "", "", false
}
