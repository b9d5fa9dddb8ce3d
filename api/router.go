package api

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MBGrao/ecommerce-product-intelligence-api/analyzer"
	"github.com/MBGrao/ecommerce-product-intelligence-api/api/handler"
	"github.com/MBGrao/ecommerce-product-intelligence-api/api/middleware"
	"github.com/MBGrao/ecommerce-product-intelligence-api/cache"
	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger → RequestID
//	API:     Auth (if keys configured) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(a *analyzer.Analyzer, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())
	r.Use(middleware.RequestID())

	v1 := r.Group("/api/v1")

	// Health — no auth required.
	v1.GET("/health", handler.Health(cc, cfg.Browser.Enabled, startTime))

	// Protected group — auth + rate limit.
	protected := v1.Group("")
	protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Analyze
	protected.POST("/analyze/partial", handler.AnalyzePartial(a))
	protected.POST("/analyze/full", handler.AnalyzeFull(a))

	// Crop
	protected.POST("/crop", handler.Crop(cfg.Crop))

	return r
}
