package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/engine"
	"github.com/use-agent/lpaudit/models"
)

// Fetch returns a handler for POST /api/v1/fetch. The fetched body is
// converted to the requested format before it is returned.
func Fetch(f Fetcher, conv Converter) gin.HandlerFunc {
	return func(c *gin.Context) {
		totalStart := time.Now()

		var req models.FetchRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		req.Defaults()

		result, err := f.Fetch(c.Request.Context(), req.URL, engine.Options{
			Timeout:         time.Duration(req.Timeout) * time.Second,
			FollowRedirects: *req.FollowRedirects,
			MaxRedirects:    req.MaxRedirects,
		})
		if err != nil {
			auditErr := toAuditError(err)
			c.JSON(mapErrorToStatus(auditErr), models.FetchResponse{
				Success: false,
				Result:  result,
				Error:   auditErr.ToDetail(),
				Timing:  models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
			})
			return
		}

		content, err := conv.Convert(result.Content, result.URL, req.Format, req.CSSSelector)
		if err != nil {
			badRequest(c, err)
			return
		}
		result.Content = content

		c.JSON(http.StatusOK, models.FetchResponse{
			Success: true,
			Result:  result,
			Timing:  models.TimingInfo{TotalMs: time.Since(totalStart).Milliseconds()},
		})
	}
}
