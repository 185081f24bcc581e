// Package api wires the HTTP surface: routing, authentication, and rate
// limiting around the extraction core.
package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsift/finsift/api/handler"
	"github.com/finsift/finsift/api/middleware"
	"github.com/finsift/finsift/cache"
	"github.com/finsift/finsift/config"
	"github.com/finsift/finsift/crawler"
	"github.com/finsift/finsift/engine"
	"github.com/finsift/finsift/extract"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(eng engine.Engine, ex *extract.Extractor, cr *crawler.Crawler, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Extract
	protected.POST("/extract", handler.Extract(eng, ex, cc, cfg.Fetch))

	// Classify
	protected.POST("/classify", handler.Classify(eng, cfg.Fetch))

	// Crawl
	protected.POST("/crawl", handler.PostCrawl(cr))
	protected.GET("/crawl/:id", handler.GetCrawl())

	return r
}
