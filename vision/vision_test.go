package vision

import (
	"strings"
	"testing"

	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

const restPayload = `{"responses":[{
	"labelAnnotations":[{"description":"Headphones"},{"description":"Audio equipment"}],
	"fullTextAnnotation":{"text":"SoundMax Pro\n49.99 USD"},
	"webDetection":{
		"webEntities":[{"description":"SoundMax Pro Wireless"}],
		"visuallySimilarImages":[{"url":"https://img.example.com/sim1.jpg"}],
		"bestGuessLabels":[{"label":"soundmax wireless headphones"}]
	}}]}`

func TestNormalizeRESTWrapper(t *testing.T) {
	s, err := Normalize([]byte(restPayload))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(s.Labels) != 2 || s.Labels[0] != "Headphones" {
		t.Errorf("Labels = %v", s.Labels)
	}
	if !strings.Contains(s.Text, "SoundMax") {
		t.Errorf("Text = %q", s.Text)
	}
	if len(s.Entities) != 1 || len(s.SimilarImages) != 1 || len(s.BestGuesses) != 1 {
		t.Errorf("Signals = %+v", s)
	}
}

func TestNormalizePlainShape(t *testing.T) {
	plain := `{"labelAnnotations":[{"description":"Mug"}]}`
	s, err := Normalize([]byte(plain))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if len(s.Labels) != 1 || s.Labels[0] != "Mug" {
		t.Errorf("Labels = %v", s.Labels)
	}
}

func TestNormalizeEmpty(t *testing.T) {
	s, err := Normalize(nil)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if !s.Empty() {
		t.Errorf("expected empty signals, got %+v", s)
	}
}

func TestPickNamePriority(t *testing.T) {
	s := Signals{
		BestGuesses: []string{"product", "gaming mouse rgb"},
		Entities:    []string{"Logitech G502"},
		Labels:      []string{"Mouse"},
	}
	if got := PickName(s); got != "gaming mouse rgb" {
		t.Errorf("PickName = %q, want first non-generic best guess", got)
	}

	s.BestGuesses = nil
	if got := PickName(s); got != "Logitech G502" {
		t.Errorf("PickName = %q, want entity", got)
	}

	s.Entities = nil
	if got := PickName(s); got != "Mouse" {
		t.Errorf("PickName = %q, want label", got)
	}
}

func TestPickNameOCRFallback(t *testing.T) {
	s := Signals{Text: "--\nSuperClean Detergent 5L\nmore text"}
	if got := PickName(s); got != "SuperClean Detergent 5L" {
		t.Errorf("PickName = %q, want first substantial OCR line", got)
	}
}

func TestPickNameSentinel(t *testing.T) {
	s := Signals{Labels: []string{"product", "electronics"}, Text: "!!\n--"}
	if got := PickName(s); got != models.UnknownProductName {
		t.Errorf("PickName = %q, want sentinel", got)
	}
}

func TestPickNameTruncates(t *testing.T) {
	long := strings.Repeat("a", 200)
	s := Signals{BestGuesses: []string{long}}
	if got := PickName(s); len(got) != 120 {
		t.Errorf("len = %d, want 120", len(got))
	}
}

func TestKeywords(t *testing.T) {
	s := Signals{
		Entities: []string{"Phone Case", "phone case", ""},
		Labels:   []string{"Accessory"},
	}
	kw := Keywords(s)
	if len(kw) != 2 || kw[0] != "Phone Case" || kw[1] != "Accessory" {
		t.Errorf("Keywords = %v", kw)
	}
}

func TestKeywordsCap(t *testing.T) {
	var s Signals
	for i := 0; i < 20; i++ {
		s.Labels = append(s.Labels, strings.Repeat("x", i+1))
	}
	if kw := Keywords(s); len(kw) != maxKeywords {
		t.Errorf("len = %d, want %d", len(kw), maxKeywords)
	}
}

func TestPriceFromText(t *testing.T) {
	tests := []struct {
		text   string
		amount float64
		code   string
		ok     bool
	}{
		{"Special offer 49.99 USD only", 49.99, "USD", true},
		{"السعر 150 ر.س", 150, "SAR", true},
		{"1,299.00 AED", 1299, "AED", true},
		{"Model 8842-X serial 12345", 0, "", false},
		{"", 0, "", false},
	}
	for _, tt := range tests {
		amount, code, ok := PriceFromText(tt.text)
		if ok != tt.ok || amount != tt.amount || code != tt.code {
			t.Errorf("PriceFromText(%q) = %v %q %v, want %v %q %v",
				tt.text, amount, code, ok, tt.amount, tt.code, tt.ok)
		}
	}
}
