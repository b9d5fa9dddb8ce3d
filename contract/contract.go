// Package contract assembles the Arabic-localized response contract from
// whatever signals the analysis run produced. It never fabricates values: a
// missing price stays empty, but the image list is always populated.
package contract

import (
	"regexp"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// Inputs carries everything a contract can be assembled from. Zero fields
// are simply omitted from the result.
type Inputs struct {
	Name        string
	Images      []string
	Video       string
	PriceAmount float64
	PriceCode   string
	PriceSource string
	Specs       map[string]string
	Features    []string
	Keywords    []string
	Breadcrumbs []string
	Labels      []string

	// Fallback material for the image and price guarantees.
	ShoppingImageURL  string
	ShoppingPriceText string
	InputImageURL     string
}

// Assembler builds contracts with a shared currency converter.
type Assembler struct {
	conv *currency.Converter
}

// NewAssembler creates an Assembler.
func NewAssembler(conv *currency.Converter) *Assembler {
	return &Assembler{conv: conv}
}

const (
	maxContractImages = 8
	maxDescriptionLen = 4000
)

// Full assembles the complete contract.
func (a *Assembler) Full(in Inputs) models.FullContract {
	name := in.Name
	if name == "" {
		name = models.UnknownProductName
	}

	yer, priceObj := a.price(in)

	specs := LocalizeSpecs(in.Specs)
	main, sub, trail := GuessCategories(in.Labels, in.Name)
	if len(in.Breadcrumbs) > 0 {
		trail = in.Breadcrumbs
		if len(in.Breadcrumbs) >= 1 {
			main = in.Breadcrumbs[0]
		}
		if len(in.Breadcrumbs) >= 2 {
			sub = in.Breadcrumbs[1]
		}
	}

	out := models.FullContract{
		ProductName:    name,
		Description:    Describe(name, in.Features, specs, yer),
		ImageURLs:      a.guaranteeImages(in),
		Components:     []string{},
		PriceYER:       yer,
		Price:          priceObj,
		Specifications: specs,
		Variants:       []map[string]any{},
		SearchKeywords: capList(in.Keywords, 16),
		Categories:     models.Categories{Main: main, Sub: sub, Trail: trail},
		Features:       in.Features,
	}
	if out.Features == nil {
		out.Features = []string{}
	}
	if out.SearchKeywords == nil {
		out.SearchKeywords = []string{}
	}
	if in.Video != "" {
		v := in.Video
		out.VideoURL = &v
	}
	return out
}

// Partial assembles the fast-path contract. Name and price may be empty;
// the image guarantee still holds.
func (a *Assembler) Partial(in Inputs) models.PartialContract {
	yer, priceObj := a.price(in)
	out := models.PartialContract{
		ProductName: in.Name,
		PriceYER:    yer,
		ImageURLs:   a.guaranteeImages(in),
		Price:       priceObj,
		Features:    in.Features,
	}
	if out.Features == nil {
		out.Features = []string{}
	}
	return out
}

// price resolves the effective price, consulting shopping price text when
// no direct amount was extracted. A missing price yields ("", nil), never a
// zero string.
func (a *Assembler) price(in Inputs) (string, *models.PriceObject) {
	amount, code, source := in.PriceAmount, in.PriceCode, in.PriceSource
	if amount <= 0 && in.ShoppingPriceText != "" {
		if amt, c, ok := currency.ParsePriceText(in.ShoppingPriceText); ok {
			amount, code, source = amt, c, "shopping"
		}
	}
	if amount <= 0 {
		return "", nil
	}
	if code == "" {
		code = "USD"
	}
	multi := a.conv.ToMulti(amount, code)
	return a.conv.YERString(amount, code), &models.PriceObject{
		Amount:   amount,
		Currency: code,
		Source:   source,
		USD:      multi.USD,
		SAR:      multi.SAR,
		AED:      multi.AED,
		YER:      multi.YER,
	}
}

// guaranteeImages enforces the non-empty image list: scraped images first,
// then the shopping thumbnail, then the caller's input image, then the
// placeholder.
func (a *Assembler) guaranteeImages(in Inputs) []string {
	imgs := capList(in.Images, maxContractImages)
	if len(imgs) > 0 {
		if len(imgs) < 5 && in.ShoppingImageURL != "" && !contains(imgs, in.ShoppingImageURL) {
			imgs = append(imgs, in.ShoppingImageURL)
		}
		return imgs
	}
	if in.ShoppingImageURL != "" {
		return []string{in.ShoppingImageURL}
	}
	if in.InputImageURL != "" {
		return []string{in.InputImageURL}
	}
	return []string{models.PlaceholderImageURL}
}

func capList(in []string, n int) []string {
	if len(in) > n {
		return in[:n]
	}
	return in
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// specMap localizes common vendor spec keys to the contract's Arabic keys.
var specMap = map[string]string{
	"brand": "العلامة_التجارية", "brand name": "العلامة_التجارية", "manufacturer": "العلامة_التجارية",
	"model": "الموديل", "model number": "الموديل", "sku": "الموديل",
	"power": "الطاقة", "wattage": "الطاقة",
	"weight": "الوزن",
	"material": "المادة",
	"capacity": "السعة", "volume": "السعة",
	"voltage": "الجهد", "input voltage": "الجهد",
	"dimensions": "الأبعاد", "size": "الأبعاد",
}

var specKeyNormRe = regexp.MustCompile(`[^a-z\x{0600}-\x{06FF}\s]+`)

// LocalizeSpecs maps known spec keys to Arabic, keeps unknown keys as-is,
// and drops empty or zero values. The first value for a localized key wins.
func LocalizeSpecs(specs map[string]string) map[string]string {
	out := make(map[string]string, len(specs))
	for k, v := range specs {
		v = strings.TrimSpace(v)
		if v == "" || v == "0" {
			continue
		}
		key := strings.ToLower(strings.TrimSpace(k))
		key = strings.TrimSpace(specKeyNormRe.ReplaceAllString(key, " "))
		if ar, ok := specMap[key]; ok {
			if _, dup := out[ar]; !dup {
				out[ar] = v
			}
			continue
		}
		if _, dup := out[k]; !dup {
			out[k] = v
		}
	}
	return out
}
