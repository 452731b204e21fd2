package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/use-agent/lpaudit/cleaner"
	"github.com/use-agent/lpaudit/config"
	"github.com/use-agent/lpaudit/engine"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/scraper"
)

type stubAuditor struct{}

func (stubAuditor) Analyze(_ context.Context, url string, _ scraper.Options) (*models.Report, error) {
	return models.NewReport(url), nil
}

func (stubAuditor) Screenshot(context.Context, string, string, scraper.ScreenshotOptions) ([]byte, error) {
	return []byte("png"), nil
}

func (stubAuditor) Stats() models.PoolStats { return models.PoolStats{MaxContexts: 1} }

func newTestRouter() http.Handler {
	cfg := config.Load()
	cfg.Server.Mode = "test"
	cfg.RateLimit = config.RateLimitConfig{RequestsPerSecond: 100, Burst: 100}
	return NewRouter(Deps{
		Auditor:   stubAuditor{},
		Fetcher:   engine.NewFetcher(""),
		Converter: cleaner.NewCleaner(),
		StartTime: time.Now(),
		Version:   "test",
	}, cfg)
}

func TestRouter_Routes(t *testing.T) {
	t.Parallel()

	r := newTestRouter()
	tests := []struct {
		method string
		path   string
		body   string
		want   int
	}{
		{http.MethodGet, "/api/v1/health", "", http.StatusOK},
		{http.MethodPost, "/api/v1/analyze", `{"url":"https://example.com"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/screenshot", `{"url":"https://example.com"}`, http.StatusOK},
		{http.MethodPost, "/api/v1/fetch", `{"url":"ftp://example.com"}`, http.StatusBadRequest},
		{http.MethodGet, "/api/v1/scrape", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
