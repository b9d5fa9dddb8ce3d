package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/MBGrao/ecommerce-product-intelligence-api/cache"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// Health returns a handler for GET /api/v1/health.
func Health(cc *cache.Cache, browserEnabled bool, startTime time.Time) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, models.HealthResponse{
			Status:         "healthy",
			Version:        "0.1.0",
			Uptime:         time.Since(startTime).Round(time.Second).String(),
			CacheSize:      cc.Len(),
			BrowserEnabled: browserEnabled,
		})
	}
}
