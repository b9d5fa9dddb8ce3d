package extract

import (
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/PuerkitoBio/goquery"
)

// priceSelectors in probe order: Amazon's offscreen span first, then the
// common storefront price classes.
var priceSelectors = []string{
	".a-price .a-offscreen",
	".a-price-whole",
	".priceToPay .a-price .a-offscreen",
	".price",
	".product-price",
	".price-current",
	".price__current",
	".price-amount",
	".price-display",
	".product__price",
}

// imgSelectors cover direct and lazy-loaded image sources.
var imgSelectors = []struct {
	selector string
	attr     string
}{
	{"img[src]", "src"},
	{"img[data-src]", "data-src"},
}

// domProbeStrategy walks rendered DOM selectors for a visible price and
// gathers page images as a last image source.
type domProbeStrategy struct{}

func (domProbeStrategy) Name() string { return "domprobe" }

func (domProbeStrategy) Extract(html, pageURL string) Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Record{}
	}

	var rec Record
	for _, sel := range priceSelectors {
		text := strings.TrimSpace(doc.Find(sel).First().Text())
		if text == "" {
			continue
		}
		if amount, code, ok := currency.ParsePriceText(text); ok {
			rec.Price = &PriceSignal{Amount: amount, Currency: code, Source: "selector:" + sel}
			break
		}
	}

	for _, is := range imgSelectors {
		doc.Find(is.selector).Each(func(_ int, s *goquery.Selection) {
			if len(rec.Images) >= maxImages {
				return
			}
			if src, ok := s.Attr(is.attr); ok && strings.HasPrefix(src, "http") {
				rec.Images = append(rec.Images, src)
			}
		})
		if len(rec.Images) > 0 {
			break
		}
	}

	return rec
}
