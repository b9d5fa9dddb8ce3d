// Package imaging implements the optional server-side crop operation.
package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	jpegQuality  = 92
	maxCropSide  = 8000
	maxOutputPix = 1600
)

// CenterCrop decodes an image, crops the largest centered square, and
// re-encodes it as JPEG. Oversized squares are scaled down to keep payloads
// reasonable.
func CenterCrop(imgBytes []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"unsupported image format", err)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w > maxCropSide || h > maxCropSide {
		return nil, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"image dimensions too large", nil)
	}

	side := w
	if h < side {
		side = h
	}
	left := b.Min.X + (w-side)/2
	top := b.Min.Y + (h-side)/2
	cropRect := image.Rect(left, top, left+side, top+side)

	outSide := side
	if outSide > maxOutputPix {
		outSide = maxOutputPix
	}
	dst := image.NewRGBA(image.Rect(0, 0, outSide, outSide))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, cropRect, draw.Src, nil)

	var out bytes.Buffer
	if err := jpeg.Encode(&out, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeInternal,
			"jpeg encode failed", err)
	}
	return out.Bytes(), nil
}
