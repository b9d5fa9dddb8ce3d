package extract

import (
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/PuerkitoBio/goquery"
	"github.com/dyatlov/go-opengraph/opengraph"
)

// metaStrategy reads OpenGraph / twitter card tags plus the product price
// metas some shops emit alongside them.
type metaStrategy struct{}

func (metaStrategy) Name() string { return "meta" }

func (metaStrategy) Extract(html, pageURL string) Record {
	var rec Record

	og := opengraph.NewOpenGraph()
	if err := og.ProcessHTML(strings.NewReader(html)); err == nil {
		rec.Title = strings.TrimSpace(og.Title)
		for _, img := range og.Images {
			if img.URL != "" {
				rec.Images = append(rec.Images, img.URL)
			} else if img.SecureURL != "" {
				rec.Images = append(rec.Images, img.SecureURL)
			}
		}
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return rec
	}

	if rec.Title == "" {
		if t, ok := doc.Find(`meta[name="twitter:title"]`).Attr("content"); ok {
			rec.Title = strings.TrimSpace(t)
		}
	}
	if rec.Title == "" {
		rec.Title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	if raw, ok := doc.Find(`meta[property="product:price:amount"], meta[property="og:price:amount"]`).Attr("content"); ok {
		if amount, parsed := currency.ParseAmount(raw); parsed {
			code := "USD"
			if c, has := doc.Find(`meta[property="product:price:currency"], meta[property="og:price:currency"]`).Attr("content"); has && c != "" {
				code = strings.TrimSpace(c)
			}
			rec.Price = &PriceSignal{Amount: amount, Currency: code, Source: "meta"}
		}
	}

	if len(rec.Images) == 0 {
		if u, ok := doc.Find(`meta[name="twitter:image"]`).Attr("content"); ok && u != "" {
			rec.Images = append(rec.Images, u)
		}
	}

	rec.Video = detectVideo(doc)
	return rec
}

// videoSelectors in preference order: real video elements, then embeds,
// then plain links to hosting sites.
var videoSelectors = []struct {
	selector string
	attr     string
}{
	{"video[src]", "src"},
	{"video source[src]", "src"},
	{`iframe[src*="youtube"]`, "src"},
	{`iframe[src*="youtu.be"]`, "src"},
	{`iframe[src*="vimeo"]`, "src"},
	{`a[href*="youtube.com/watch"]`, "href"},
	{`a[href*="youtu.be/"]`, "href"},
	{`a[href*="vimeo.com/"]`, "href"},
}

func detectVideo(doc *goquery.Document) string {
	for _, vs := range videoSelectors {
		if v, ok := doc.Find(vs.selector).First().Attr(vs.attr); ok && v != "" {
			return v
		}
	}
	return ""
}
