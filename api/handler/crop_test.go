package handler

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	_ "image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
)

func cropEngine(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/crop", Crop(config.CropConfig{Enabled: enabled}))
	return r
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestCropDisabled(t *testing.T) {
	r := cropEngine(false)

	body := `{"image_base64":"` + pngBase64(t, 40, 20) + `"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/crop", bytes.NewBufferString(body)))

	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", w.Code)
	}
}

func TestCropCenterSquare(t *testing.T) {
	r := cropEngine(true)

	body := `{"image_base64":"` + pngBase64(t, 40, 20) + `","mode":"center"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/crop", bytes.NewBufferString(body)))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	out, err := base64.StdEncoding.DecodeString(resp["image_base64_cropped"])
	if err != nil {
		t.Fatalf("response not base64: %v", err)
	}
	img, format, err := image.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatal(err)
	}
	if format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", format)
	}
	b := img.Bounds()
	if b.Dx() != b.Dy() {
		t.Fatalf("crop not square: %dx%d", b.Dx(), b.Dy())
	}
}

func TestCropRejectsBadBase64(t *testing.T) {
	r := cropEngine(true)

	body := `{"image_base64":"not base64!!!"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/crop", bytes.NewBufferString(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestCropRejectsBadMode(t *testing.T) {
	r := cropEngine(true)

	body := `{"image_base64":"` + pngBase64(t, 10, 10) + `","mode":"oval"}`
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/crop", bytes.NewBufferString(body)))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
