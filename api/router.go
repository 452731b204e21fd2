// Package api wires the HTTP routes to the auditor, fetcher and cache.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/lpaudit/api/handler"
	"github.com/use-agent/lpaudit/api/middleware"
	"github.com/use-agent/lpaudit/cache"
	"github.com/use-agent/lpaudit/config"
)

// Deps are the services behind the routes.
type Deps struct {
	Auditor   handler.Auditor
	Fetcher   handler.Fetcher
	Converter handler.Converter
	Cache     *cache.Cache
	StartTime time.Time
	Version   string
}

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     RateLimit
//
// Health sits outside the rate limit so monitoring probes always work.
func NewRouter(d Deps, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")
	v1.GET("/health", handler.Health(d.Auditor, d.Cache, d.StartTime, d.Version))

	limited := v1.Group("")
	limited.Use(middleware.RateLimit(cfg.RateLimit))

	limited.POST("/analyze", handler.Analyze(d.Auditor, d.Cache))
	limited.POST("/fetch", handler.Fetch(d.Fetcher, d.Converter))
	limited.POST("/screenshot", handler.Screenshot(d.Auditor))

	return r
}
