package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/models"
	"github.com/use-agent/lpaudit/scraper"
)

// Screenshot returns a handler for POST /api/v1/screenshot. On success the
// body is the PNG itself.
func Screenshot(au Auditor) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ScreenshotRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		if _, err := scraper.LookupViewport(req.Viewport); err != nil {
			badRequest(c, err)
			return
		}

		png, err := au.Screenshot(c.Request.Context(), req.URL, req.Viewport, scraper.ScreenshotOptions{
			FullPage: req.FullPage,
			Timeout:  time.Duration(req.TimeoutMs) * time.Millisecond,
		})
		if err != nil {
			auditErr := toAuditError(err)
			c.JSON(mapErrorToStatus(auditErr), models.ErrorResponse{
				Success: false,
				Error:   auditErr.ToDetail(),
			})
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	}
}
