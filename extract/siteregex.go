package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
)

// siteRegexStrategy applies raw-HTML regex tables keyed by host substring.
// It catches prices that live in obfuscated or minified payloads the vendor
// adapters' JSON probing missed.
type siteRegexStrategy struct{}

var sitePriceTables = []struct {
	hostPart string
	source   string
	patterns []*regexp.Regexp
}{
	{
		hostPart: "aliexpress",
		source:   "aliexpress_regex",
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`(?i)"tradePrice"\s*:\s*"(\d[\d\.,]*)"`),
			regexp.MustCompile(`(?i)"discountedPrice"\s*:\s*"(\d[\d\.,]*)"`),
			regexp.MustCompile(`(?i)"salePrice"\s*:\s*"(\d[\d\.,]*)"`),
			regexp.MustCompile(`(?is)"skuVal"\s*:\s*\{[^}]*"actSkuCalPrice"\s*:\s*"([^"]+)"`),
			regexp.MustCompile(`(?is)"skuVal"\s*:\s*\{[^}]*"skuCalPrice"\s*:\s*"([^"]+)"`),
			regexp.MustCompile(`(?i)"currentPrice"\s*:\s*"([^"]+)"`),
		},
	},
}

func (siteRegexStrategy) Name() string { return "siteregex" }

func (siteRegexStrategy) Extract(html, pageURL string) Record {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Record{}
	}
	host := strings.ToLower(u.Hostname())
	for _, table := range sitePriceTables {
		if !strings.Contains(host, table.hostPart) {
			continue
		}
		for _, re := range table.patterns {
			m := re.FindStringSubmatch(html)
			if m == nil {
				continue
			}
			if amount, ok := currency.ParseAmount(m[1]); ok {
				return Record{Price: &PriceSignal{Amount: amount, Currency: "USD", Source: table.source}}
			}
		}
	}
	return Record{}
}
