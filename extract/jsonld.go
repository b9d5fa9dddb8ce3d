package extract

import (
	"strconv"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/PuerkitoBio/goquery"
	"github.com/ysmood/gson"
)

// jsonLDStrategy reads schema.org Product nodes from ld+json script blocks.
// Highest priority: structured data the site itself published.
type jsonLDStrategy struct{}

func (jsonLDStrategy) Name() string { return "jsonld" }

func (jsonLDStrategy) Extract(html, pageURL string) Record {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return Record{}
	}

	var rec Record
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := strings.TrimSpace(s.Text())
		if raw == "" {
			return true
		}
		root := gson.NewFrom(raw)
		nodes := jsonNodes(root)
		for _, node := range nodes {
			if !isProductNode(node) {
				continue
			}
			parseProductNode(node, &rec)
			return false
		}
		return true
	})
	return rec
}

// jsonNodes flattens the three shapes ld+json blocks come in: a single
// node, a top-level list, or a node wrapped in @graph.
func jsonNodes(root gson.JSON) []gson.JSON {
	if _, isList := root.Val().([]interface{}); isList {
		return root.Arr()
	}
	if root.Has("@graph") {
		if graph := root.Get("@graph"); graph.Arr() != nil {
			return graph.Arr()
		}
	}
	return []gson.JSON{root}
}

func isProductNode(node gson.JSON) bool {
	if _, isMap := node.Val().(map[string]interface{}); !isMap {
		return false
	}
	if !node.Has("@type") {
		return false
	}
	typ := node.Get("@type")
	switch v := typ.Val().(type) {
	case string:
		return strings.Contains(strings.ToLower(v), "product")
	case []interface{}:
		for _, t := range typ.Arr() {
			if s, ok := t.Val().(string); ok && strings.EqualFold(s, "Product") {
				return true
			}
		}
	}
	return false
}

func parseProductNode(node gson.JSON, rec *Record) {
	if node.Has("name") {
		if s, ok := node.Get("name").Val().(string); ok {
			rec.Title = strings.TrimSpace(s)
		}
	}

	if node.Has("image") {
		img := node.Get("image")
		switch img.Val().(type) {
		case string:
			rec.Images = append(rec.Images, img.Str())
		case []interface{}:
			for _, i := range img.Arr() {
				if u, ok := i.Val().(string); ok && u != "" {
					rec.Images = append(rec.Images, u)
				}
			}
		}
	}

	if node.Has("offers") {
		rec.Price = priceFromOffers(node.Get("offers"))
	}

	for _, key := range []string{"additionalProperty", "additionalProperties"} {
		if !node.Has(key) {
			continue
		}
		for _, p := range node.Get(key).Arr() {
			name := stringAt(p, "name")
			if name == "" {
				name = stringAt(p, "propertyID")
			}
			value := stringAt(p, "value")
			if name == "" || value == "" {
				continue
			}
			if rec.Specs == nil {
				rec.Specs = make(map[string]string)
			}
			rec.Specs[name] = value
		}
		break
	}
}

// priceFromOffers handles both the single-offer dict and the offer-list
// shape, taking the first offer carrying a usable positive amount.
func priceFromOffers(offers gson.JSON) *PriceSignal {
	candidates := []gson.JSON{offers}
	if _, isList := offers.Val().([]interface{}); isList {
		candidates = offers.Arr()
	}
	for _, off := range candidates {
		if !off.Has("price") {
			continue
		}
		var raw string
		switch v := off.Get("price").Val().(type) {
		case string:
			raw = v
		case float64:
			raw = strconv.FormatFloat(v, 'f', -1, 64)
		}
		amount, parsed := currency.ParseAmount(raw)
		if !parsed || amount <= 0 {
			continue
		}
		code := "USD"
		if c := stringAt(off, "priceCurrency"); c != "" {
			code = c
		}
		return &PriceSignal{Amount: amount, Currency: code, Source: "jsonld_offers"}
	}
	return nil
}

func stringAt(node gson.JSON, key string) string {
	if !node.Has(key) {
		return ""
	}
	if s, ok := node.Get(key).Val().(string); ok {
		return strings.TrimSpace(s)
	}
	return ""
}
