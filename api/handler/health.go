package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/cache"
	"github.com/use-agent/lpaudit/models"
)

// Health returns a handler for GET /api/v1/health. It reports browser
// context pool utilisation and how many audits are cached. cc may be nil.
func Health(au Auditor, cc *cache.Cache, startTime time.Time, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		stats := au.Stats()

		resp := models.HealthResponse{
			Status:    poolStatus(stats),
			Uptime:    time.Since(startTime).Round(time.Second).String(),
			PoolStats: stats,
			Version:   version,
		}
		if cc != nil {
			resp.CachedAudits = cc.Len()
		}
		c.JSON(http.StatusOK, resp)
	}
}

// poolStatus is "saturated" when every context is busy, "degraded" above
// 80% utilisation and "healthy" otherwise.
func poolStatus(s models.PoolStats) string {
	switch {
	case s.MaxContexts <= 0:
		return "healthy"
	case s.ActiveContexts >= s.MaxContexts:
		return "saturated"
	case float64(s.ActiveContexts) > 0.8*float64(s.MaxContexts):
		return "degraded"
	default:
		return "healthy"
	}
}
