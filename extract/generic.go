package extract

import "github.com/MBGrao/ecommerce-product-intelligence-api/currency"

// genericRegexStrategy is the last resort: the shared price patterns plus a
// bare money-figure scan over the whole document. The pipeline only runs it
// when nothing upstream produced a currency-bearing price, because a bare
// number on a product page is as likely a review count as a price.
type genericRegexStrategy struct{}

func (genericRegexStrategy) Name() string { return "generic" }

func (genericRegexStrategy) Extract(html, pageURL string) Record {
	for _, re := range pricePatterns {
		loc := re.FindStringSubmatchIndex(html)
		if loc == nil {
			continue
		}
		if amount, ok := currency.ParseAmount(html[loc[2]:loc[3]]); ok {
			code := contextCurrency(html, loc[0], loc[1])
			return Record{Price: &PriceSignal{Amount: amount, Currency: code, Source: "regex"}}
		}
	}
	if m := genericMoneyRe.FindStringSubmatchIndex(html); m != nil {
		if amount, ok := currency.ParseAmount(html[m[2]:m[3]]); ok {
			code := contextCurrency(html, m[0], m[1])
			return Record{Price: &PriceSignal{Amount: amount, Currency: code, Source: "regex"}}
		}
	}
	return Record{}
}
