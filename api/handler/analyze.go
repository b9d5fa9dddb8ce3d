package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MBGrao/ecommerce-product-intelligence-api/analyzer"
	"github.com/MBGrao/ecommerce-product-intelligence-api/api/middleware"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// AnalyzePartial returns a handler for POST /api/v1/analyze/partial.
//
// The partial tier answers fast from the quick fetch, the warm cache or a
// skeleton contract; the heavy analysis runs in the background and lands in
// the cache for the next full request.
func AnalyzePartial(a *analyzer.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		result, err := a.Partial(c.Request.Context(), &req, requestID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, result)
	}
}

// AnalyzeFull returns a handler for POST /api/v1/analyze/full.
//
// Orchestration flow:
//  1. Parse & validate request, apply defaults.
//  2. Analyzer.Full → complete contract, or a typed scrape_failed result
//     when a vendor URL was supplied but yielded no usable product data.
func AnalyzeFull(a *analyzer.Analyzer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.AnalyzeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}
		req.Defaults()

		out, err := a.Full(c.Request.Context(), &req, requestID(c))
		if err != nil {
			respondError(c, err)
			return
		}

		// A scrape_failed outcome is a well-formed answer, not a transport
		// error: the caller asked about a specific URL and the page had no
		// product on it.
		if out.Failed != nil {
			c.JSON(http.StatusOK, out.Failed)
			return
		}

		c.JSON(http.StatusOK, out.Contract)
	}
}

// requestID reads the ID assigned by the RequestID middleware.
func requestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDKey)
}

// respondError maps an AnalyzeError to the correct HTTP status code and
// writes a structured JSON error response.
func respondError(c *gin.Context, err error) {
	var ae *models.AnalyzeError
	if !errors.As(err, &ae) {
		ae = models.NewAnalyzeError(models.ErrCodeInternal, err.Error(), err)
	}

	c.JSON(mapErrorToStatus(ae), gin.H{"error": ae.ToDetail()})
}

// mapErrorToStatus translates error codes to HTTP status codes.
func mapErrorToStatus(e *models.AnalyzeError) int {
	switch e.Code {
	case models.ErrCodeInvalidInput, models.ErrCodeUnsafeTarget:
		return http.StatusBadRequest // 400
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeFetchTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeFetchFailed, models.ErrCodeUpstream:
		return http.StatusBadGateway // 502
	default:
		return http.StatusInternalServerError // 500
	}
}
