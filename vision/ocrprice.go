package vision

import (
	"regexp"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
)

// ocrPricePatterns require an explicit currency token next to the number.
// OCR text is full of bare digits (model numbers, quantities), so unlike
// page extraction there is no unmarked fallback here.
var ocrPricePatterns = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:USD|دولار|\$)`), "USD"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:EUR|يورو|€)`), "EUR"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:YER|ر\.ي|يمني)`), "YER"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:SAR|ر\.س|سعودي)`), "SAR"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:AED|د\.إ|درهم)`), "AED"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:KWD|د\.ك|كويتي)`), "KWD"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:QAR|ر\.ق|قطري)`), "QAR"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:OMR|ر\.ع|عماني)`), "OMR"},
	{regexp.MustCompile(`(?i)(\d+(?:,\d{3})*(?:\.\d{2})?)\s*(?:BHD|د\.ب|بحريني)`), "BHD"},
}

// PriceFromText scans OCR text for a currency-marked price.
func PriceFromText(text string) (amount float64, code string, ok bool) {
	if text == "" {
		return 0, "", false
	}
	for _, p := range ocrPricePatterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if amt, parsed := currency.ParseAmount(m[1]); parsed {
			return amt, p.code, true
		}
	}
	return 0, "", false
}
