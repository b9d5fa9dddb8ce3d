// Package search finds vendor product pages for a recognised product name
// via Google Shopping results.
package search

import (
	"context"
	"net/url"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/fetch"
	"github.com/PuerkitoBio/goquery"
)

// Item is one shopping result.
type Item struct {
	Title     string
	PriceText string
	ImageURL  string
	URL       string
}

const maxResults = 5

// Searcher renders a shopping query through the configured page source and
// parses the result grid.
type Searcher struct {
	source  fetch.PageSource
	allowed []string
}

// New creates a Searcher. allowed is the vendor-domain allowlist applied to
// result URLs.
func New(source fetch.PageSource, allowed []string) *Searcher {
	return &Searcher{source: source, allowed: allowed}
}

// Search runs a shopping query and returns up to five parsed results.
func (s *Searcher) Search(ctx context.Context, query string) ([]Item, error) {
	target := "https://www.google.com/search?q=" + url.QueryEscape(query) + "&tbm=shop"
	html, err := s.source.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return parseResults(html)
}

func parseResults(html string) ([]Item, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var items []Item
	doc.Find("div.sh-dgr__content").EachWithBreak(func(_ int, box *goquery.Selection) bool {
		var it Item
		it.Title = strings.TrimSpace(box.Find("h3, .tAxDx").First().Text())
		it.PriceText = strings.TrimSpace(box.Find(".a8Pemb, .XrAfOe").First().Text())
		img := box.Find("img").First()
		if src, ok := img.Attr("src"); ok && src != "" {
			it.ImageURL = src
		} else if src, ok := img.Attr("data-src"); ok {
			it.ImageURL = src
		}
		if href, ok := box.Find("a").First().Attr("href"); ok {
			it.URL = href
		}
		items = append(items, it)
		return len(items) < maxResults
	})
	return items, nil
}

// VendorURL resolves a result link to the real vendor page: relative links
// are made absolute against google.com, and /url redirect wrappers are
// unwrapped to their q or url parameter.
func VendorURL(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/") {
		href = "https://www.google.com" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if strings.HasSuffix(u.Hostname(), "google.com") && strings.HasPrefix(u.Path, "/url") {
		q := u.Query()
		if target := q.Get("q"); target != "" {
			return target
		}
		if target := q.Get("url"); target != "" {
			return target
		}
	}
	return href
}

// PickVendor returns the first result whose unwrapped URL is on the
// allowlist. google.com itself is never a vendor.
func (s *Searcher) PickVendor(items []Item) string {
	for _, it := range items {
		cand := VendorURL(it.URL)
		if cand == "" {
			continue
		}
		u, err := url.Parse(cand)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == "" || host == "google.com" || strings.HasSuffix(host, ".google.com") {
			continue
		}
		if s.hostAllowed(host) {
			return cand
		}
	}
	return ""
}

func (s *Searcher) hostAllowed(host string) bool {
	for _, d := range s.allowed {
		d = strings.ToLower(strings.TrimSpace(d))
		if d == "" {
			continue
		}
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

// FirstImage returns the first result thumbnail, used as an image-guarantee
// fallback when vendor scraping yields nothing.
func FirstImage(items []Item) string {
	for _, it := range items {
		if it.ImageURL != "" {
			return it.ImageURL
		}
	}
	return ""
}

// FirstPrice returns the first result price text.
func FirstPrice(items []Item) string {
	for _, it := range items {
		if it.PriceText != "" {
			return it.PriceText
		}
	}
	return ""
}
