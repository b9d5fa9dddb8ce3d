package extract

import (
	"regexp"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
)

// pricePatterns are the shared price shapes seen in marketplace script
// blobs, ordered from most to least specific. The last pattern matches any
// plausible money figure and is reserved for the generic strategy.
var pricePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)aok-offscreen">\$?(\d[\d\.,]*)<`),
	regexp.MustCompile(`(?i)data-asin-price\s*=\s*"(\d[\d\.,]*)"`),
	regexp.MustCompile(`(?i)"price"\s*:\s*"?(\d[\d\.,]*)"?`),
	regexp.MustCompile(`(?i)"currentPrice"\s*:\s*"?(\d[\d\.,]*)"?`),
	regexp.MustCompile(`(?i)"priceValue"\s*:\s*"?(\d[\d\.,]*)"?`),
	regexp.MustCompile(`(?i)price\s*[:=]\s*"?(\d[\d\.,]*)"?`),
	regexp.MustCompile(`(?i)data-price\s*=\s*"(\d[\d\.,]*)"`),
	regexp.MustCompile(`(?i)data-current-price\s*=\s*"(\d[\d\.,]*)"`),
	regexp.MustCompile(`(?i)product:price:amount"\s*content="\s*(\d[\d\.,]*)`),
	regexp.MustCompile(`(?i)og:price:amount"\s*content="\s*(\d[\d\.,]*)`),
}

var genericMoneyRe = regexp.MustCompile(`\$?\s*(\d{1,4}(?:,\d{3})*(?:\.\d{1,2})?)`)

var scriptBlobRe = regexp.MustCompile(`(?is)<script[^>]*>(.*?)</script>`)

// inlineScriptStrategy scans script bodies for price-shaped JSON fields,
// then sniffs the surrounding text for a currency marker.
type inlineScriptStrategy struct{}

func (inlineScriptStrategy) Name() string { return "inline" }

func (inlineScriptStrategy) Extract(html, pageURL string) Record {
	for _, blobMatch := range scriptBlobRe.FindAllStringSubmatch(html, -1) {
		blob := blobMatch[1]
		for _, re := range pricePatterns {
			loc := re.FindStringSubmatchIndex(blob)
			if loc == nil {
				continue
			}
			raw := blob[loc[2]:loc[3]]
			amount, ok := currency.ParseAmount(raw)
			if !ok {
				continue
			}
			code := contextCurrency(blob, loc[0], loc[1])
			return Record{Price: &PriceSignal{Amount: amount, Currency: code, Source: "inline_json"}}
		}
	}
	return Record{}
}

// contextCurrency inspects an 80-byte window either side of a price match
// for a currency marker, defaulting to USD.
func contextCurrency(blob string, start, end int) string {
	lo := start - 80
	if lo < 0 {
		lo = 0
	}
	hi := end + 80
	if hi > len(blob) {
		hi = len(blob)
	}
	if _, code, ok := currency.ParsePriceText(blob[lo:hi]); ok {
		return code
	}
	return "USD"
}
