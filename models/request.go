package models

import "encoding/json"

// AnalyzeRequest is the payload for POST /analyze/partial and /analyze/full.
// At least one of ImageBase64, ImageURL or ProductURLHint must be present.
type AnalyzeRequest struct {
	// ImageBase64 is a base64 image, with or without a data-URL prefix.
	ImageBase64 string `json:"image_base64,omitempty"`

	// ImageURL is a public http(s) image URL.
	ImageURL string `json:"image_url,omitempty" binding:"omitempty,url"`

	// ProductURLHint is the product page to scrape directly, when known.
	ProductURLHint string `json:"url,omitempty" binding:"omitempty,url"`

	// Language is the output language tag. Arabic is the only contract
	// the assembler produces today.
	Language string `json:"language,omitempty"`

	// FastOnly suppresses the background full analysis the partial tier
	// normally starts after answering. The full endpoint ignores it.
	FastOnly bool `json:"fast_only,omitempty"`

	// VisionJSON is a precomputed image-understanding payload. When set,
	// the external vision call is skipped. Both the object shape and the
	// {"responses":[...]} wrapper shape are accepted.
	VisionJSON json.RawMessage `json:"vision_json,omitempty"`
}

// Defaults applies default values to unset fields.
func (r *AnalyzeRequest) Defaults() {
	if r.Language == "" {
		r.Language = "ar"
	}
}

// HasInput reports whether the request carries any usable input.
func (r *AnalyzeRequest) HasInput() bool {
	return r.ImageBase64 != "" || r.ImageURL != "" || r.ProductURLHint != ""
}

// CropRequest is the payload for POST /crop.
type CropRequest struct {
	ImageBase64 string `json:"image_base64" binding:"required"`

	// Mode selects the crop shape. "center" and "square" are equivalent
	// today; both produce a centered square crop.
	Mode string `json:"mode,omitempty" binding:"omitempty,oneof=center square"`
}
