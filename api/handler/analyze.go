package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/cache"
	"github.com/use-agent/lpaudit/grading"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/scraper"
	"github.com/use-agent/lpaudit/webhook"
)

// Analyze returns a handler for POST /api/v1/analyze.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Serve from cache when max_age allows.
//  3. Auditor.Analyze → report               (records analyze_ms)
//  4. Grade and score the report.
//  5. Cache, fire the webhook, respond.
//
// A failed audit still returns the partial audit next to the error.
func Analyze(au Auditor, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		cacheKey := cache.Key(req.URL, req.Stealth)
		if cc != nil && req.MaxAge > 0 {
			if cached, hit := cc.Get(cacheKey, req.MaxAge); hit {
				c.JSON(http.StatusOK, models.AnalyzeResponse{
					Success:     true,
					Audit:       cached,
					CacheStatus: "hit",
					Timing: models.TimingInfo{
						TotalMs: time.Since(totalStart).Milliseconds(),
					},
				})
				return
			}
		}

		analyzeStart := time.Now()
		report, err := au.Analyze(c.Request.Context(), req.URL, scraper.Options{
			Timeout: time.Duration(req.TimeoutMs) * time.Millisecond,
			Stealth: req.Stealth,
		})
		analyzeMs := time.Since(analyzeStart).Milliseconds()

		audit := grading.NewAudit(report)
		resp := models.AnalyzeResponse{
			Success: err == nil,
			Audit:   audit,
		}

		if req.WebhookURL != "" {
			webhook.DeliverAsync(req.WebhookURL, req.WebhookSecret,
				webhook.NewEvent(webhook.EventAuditCompleted, req.URL, audit))
		}

		status := http.StatusOK
		if err != nil {
			auditErr := toAuditError(err)
			resp.Error = auditErr.ToDetail()
			status = mapErrorToStatus(auditErr)
		} else if cc != nil && req.MaxAge > 0 {
			cc.Set(cacheKey, audit)
			resp.CacheStatus = "miss"
		}

		resp.Timing = models.TimingInfo{
			TotalMs:   time.Since(totalStart).Milliseconds(),
			AnalyzeMs: analyzeMs,
		}
		c.JSON(status, resp)
	}
}
