package handler

import (
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"github.com/MBGrao/ecommerce-product-intelligence-api/imaging"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// Crop returns a handler for POST /api/v1/crop.
//
// Server-side cropping is opt-in: when disabled the endpoint answers 403 so
// deployments that crop client-side don't expose an image-processing surface.
func Crop(cfg config.CropConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.Enabled {
			c.JSON(http.StatusForbidden, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "server-side cropping is disabled",
				},
			})
			return
		}

		var req models.CropRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: err.Error(),
				},
			})
			return
		}

		raw := req.ImageBase64
		if i := strings.IndexByte(raw, ','); i >= 0 && strings.HasPrefix(raw, "data:") {
			raw = raw[i+1:]
		}
		imgBytes, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": models.ErrorDetail{
					Code:    models.ErrCodeInvalidInput,
					Message: "image_base64 is not valid base64",
				},
			})
			return
		}

		cropped, err := imaging.CenterCrop(imgBytes)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"image_base64_cropped": base64.StdEncoding.EncodeToString(cropped),
		})
	}
}
