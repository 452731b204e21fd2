package handler

import (
	"context"

	"github.com/use-agent/lpaudit/engine"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/scraper"
)

// Auditor is the browser side of the API. *scraper.Scraper implements it.
type Auditor interface {
	Analyze(ctx context.Context, url string, opts scraper.Options) (*models.Report, error)
	Screenshot(ctx context.Context, url, viewport string, opts scraper.ScreenshotOptions) ([]byte, error)
	Stats() models.PoolStats
}

// Fetcher performs plain HTTP fetches. *engine.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, url string, opts engine.Options) (*models.FetchResult, error)
}

// Converter renders fetched HTML in another format. *cleaner.Cleaner
// implements it.
type Converter interface {
	Convert(rawHTML, sourceURL, format, selector string) (string, error)
}
