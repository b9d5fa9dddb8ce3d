package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestCenterCropLandscape(t *testing.T) {
	out, err := CenterCrop(encodePNG(t, 200, 100))
	if err != nil {
		t.Fatalf("CenterCrop: %v", err)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if format != "jpeg" {
		t.Errorf("format = %q", format)
	}
	if cfg.Width != cfg.Height {
		t.Errorf("output %dx%d, want square", cfg.Width, cfg.Height)
	}
	if cfg.Width != 100 {
		t.Errorf("side = %d, want min input dimension", cfg.Width)
	}
}

func TestCenterCropScalesDown(t *testing.T) {
	out, err := CenterCrop(encodePNG(t, 2400, 2400))
	if err != nil {
		t.Fatalf("CenterCrop: %v", err)
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != maxOutputPix || cfg.Height != maxOutputPix {
		t.Errorf("output %dx%d, want %d square", cfg.Width, cfg.Height, maxOutputPix)
	}
}

func TestCenterCropRejectsGarbage(t *testing.T) {
	_, err := CenterCrop([]byte("not an image"))
	var aerr *models.AnalyzeError
	if !errors.As(err, &aerr) || aerr.Code != models.ErrCodeInvalidInput {
		t.Fatalf("err = %v", err)
	}
}
