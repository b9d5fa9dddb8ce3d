package extract

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/ysmood/gson"
)

// vendorAdapter is a host-specific extractor that understands one
// marketplace's embedded data format.
type vendorAdapter interface {
	Match(host string) bool
	Parse(html string) Record
}

// VendorRegistry dispatches to the adapter matching the page host. It sits
// right below structured data in priority: vendor payloads are richer than
// meta tags but less trustworthy than ld+json.
type VendorRegistry struct {
	adapters []vendorAdapter
}

// NewVendorRegistry builds the registry with all known marketplace adapters.
func NewVendorRegistry() *VendorRegistry {
	return &VendorRegistry{
		adapters: []vendorAdapter{
			aliExpressAdapter{},
			amazonAdapter{},
			regionalAdapter{},
		},
	}
}

func (r *VendorRegistry) Name() string { return "vendor" }

func (r *VendorRegistry) Extract(html, pageURL string) Record {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Record{}
	}
	host := strings.ToLower(u.Hostname())
	for _, a := range r.adapters {
		if a.Match(host) {
			return a.Parse(html)
		}
	}
	return Record{}
}

// ── AliExpress ───────────────────────────────────────────────────────

// runParamsPatterns locate the embedded product payload. The first group of
// each pattern is the JSON blob.
var runParamsPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?s)window\.runParams\s*=\s*(\{.*?\})\s*;`),
	regexp.MustCompile(`(?s)__AERENDER_DATA__\s*=\s*(\{.*?\})\s*;`),
	regexp.MustCompile(`(?s)data:\s*(\{.*?\})\s*,\s*rendering:`),
	regexp.MustCompile(`(?s)window\.__DEFAULT_DATA__\s*=\s*(\{.*?\})\s*;`),
	regexp.MustCompile(`runParams\s*=\s*(\{[^;]+\});`),
}

var payloadMarkers = []string{
	"priceModule", "imageModule", "specsModule",
	"titleModule", "descriptionModule", "storeModule",
}

var (
	trailingCommaObj = regexp.MustCompile(`,\s*}`)
	trailingCommaArr = regexp.MustCompile(`,\s*]`)
)

type aliExpressAdapter struct{}

func (aliExpressAdapter) Match(host string) bool {
	return host == "aliexpress.com" || strings.HasSuffix(host, ".aliexpress.com") ||
		host == "aliexpress.us" || strings.HasSuffix(host, ".aliexpress.us")
}

func (aliExpressAdapter) Parse(html string) Record {
	payload, ok := findPayload(html)
	if !ok {
		return Record{}
	}

	// Some payloads nest everything under "data".
	root := payload
	if root.Has("data") {
		if _, isMap := root.Get("data").Val().(map[string]interface{}); isMap {
			root = root.Get("data")
		}
	}

	var rec Record
	rec.Title = firstStringPath(root,
		"titleModule.subject",
		"pageModule.title",
		"productInfoComponent.subject",
		"title",
		"subject",
	)

	for _, path := range []string{"imageModule.imagePathList", "imageModule.imagePaths", "imageList", "images"} {
		if !root.Has(path) {
			continue
		}
		for _, i := range root.Get(path).Arr() {
			if u, isStr := i.Val().(string); isStr && strings.HasPrefix(u, "http") {
				rec.Images = append(rec.Images, u)
			}
		}
		if len(rec.Images) > 0 {
			break
		}
	}

	if raw := firstStringPath(root,
		"priceModule.formatedActivityPrice",
		"priceModule.formatedPrice",
		"priceModule.maxActivityAmount",
		"priceModule.maxAmount",
		"priceModule.minActivityAmount",
		"priceModule.minAmount",
		"priceModule.actSkuCalPrice",
		"priceModule.skuCalPrice",
		"price.formatedAmount",
		"price",
	); raw != "" {
		if amount, code, ok := currency.ParsePriceText(raw); ok {
			rec.Price = &PriceSignal{Amount: amount, Currency: code, Source: "aliexpress"}
		}
	}

	if root.Has("specsModule.props") {
		for _, prop := range root.Get("specsModule.props").Arr() {
			name := stringAt(prop, "attrName")
			value := stringAt(prop, "attrValue")
			if name != "" && value != "" {
				if rec.Specs == nil {
					rec.Specs = make(map[string]string)
				}
				rec.Specs[name] = value
			}
		}
	}

	if root.Has("crossLinkModule.breadCrumbPathList") {
		for _, crumb := range root.Get("crossLinkModule.breadCrumbPathList").Arr() {
			if name := stringAt(crumb, "name"); name != "" {
				rec.Breadcrumbs = append(rec.Breadcrumbs, name)
			}
		}
	}

	return rec
}

// findPayload tries each runParams pattern, repairing trailing commas when
// the raw blob fails to parse, and accepts the first blob that mentions a
// known module key.
func findPayload(html string) (gson.JSON, bool) {
	for _, re := range runParamsPatterns {
		for _, m := range re.FindAllStringSubmatch(html, 4) {
			blob := m[1]
			for _, candidate := range []string{blob, repairJSON(blob)} {
				j := gson.NewFrom(candidate)
				if _, isMap := j.Val().(map[string]interface{}); !isMap {
					continue
				}
				for _, marker := range payloadMarkers {
					if strings.Contains(candidate, marker) {
						return j, true
					}
				}
			}
		}
	}
	return gson.JSON{}, false
}

func repairJSON(blob string) string {
	blob = trailingCommaObj.ReplaceAllString(blob, "}")
	return trailingCommaArr.ReplaceAllString(blob, "]")
}

// firstStringPath returns the first non-empty string found at the given
// dot paths.
func firstStringPath(root gson.JSON, paths ...string) string {
	for _, path := range paths {
		if !root.Has(path) {
			continue
		}
		if s, ok := root.Get(path).Val().(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

// ── Amazon ───────────────────────────────────────────────────────────

var amazonPriceRe = regexp.MustCompile(`(?i)"priceAmount"\s*:\s*"?(\d[\d\.,]*)"?`)

type amazonAdapter struct{}

func (amazonAdapter) Match(host string) bool {
	return strings.Contains(host, "amazon.")
}

func (amazonAdapter) Parse(html string) Record {
	var rec Record
	if m := amazonPriceRe.FindStringSubmatch(html); m != nil {
		if amount, ok := currency.ParseAmount(m[1]); ok {
			rec.Price = &PriceSignal{Amount: amount, Currency: "USD", Source: "amazon_json"}
		}
	}
	return rec
}

// ── Daraz / Noon ─────────────────────────────────────────────────────

var regionalPriceRes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)"offerPrice"\s*:\s*"(\d[\d\.,]*)"`),
	regexp.MustCompile(`(?i)"price"\s*:\s*"(\d[\d\.,]*)"`),
	regexp.MustCompile(`(?i)"salePrice"\s*:\s*"(\d[\d\.,]*)"`),
}

type regionalAdapter struct{}

func (regionalAdapter) Match(host string) bool {
	return strings.Contains(host, "daraz.") || strings.Contains(host, "noon.")
}

func (regionalAdapter) Parse(html string) Record {
	var rec Record
	for _, re := range regionalPriceRes {
		if m := re.FindStringSubmatch(html); m != nil {
			if amount, ok := currency.ParseAmount(m[1]); ok {
				rec.Price = &PriceSignal{Amount: amount, Currency: "USD", Source: "regional_json"}
				break
			}
		}
	}
	return rec
}
