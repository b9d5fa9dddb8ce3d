package contract

import (
	"strings"
	"testing"
	"time"

	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

func testAssembler() *Assembler {
	return NewAssembler(currency.New("", time.Hour, 250))
}

func TestFullContractComplete(t *testing.T) {
	out := testAssembler().Full(Inputs{
		Name:        "سماعة بلوتوث لاسلكية",
		Images:      []string{"https://cdn/a.jpg", "https://cdn/b.jpg"},
		Video:       "https://youtube.com/watch?v=x",
		PriceAmount: 20,
		PriceCode:   "USD",
		PriceSource: "jsonld_offers",
		Specs:       map[string]string{"Brand": "SoundMax", "Weight": "50g"},
		Features:    []string{"عزل ضوضاء"},
		Keywords:    []string{"headphones", "bluetooth"},
		Labels:      []string{"Headphones"},
	})

	if out.ProductName != "سماعة بلوتوث لاسلكية" {
		t.Errorf("ProductName = %q", out.ProductName)
	}
	if out.PriceYER != "5000.00" {
		t.Errorf("PriceYER = %q", out.PriceYER)
	}
	if out.Price == nil || out.Price.Amount != 20 || out.Price.USD != 20 {
		t.Errorf("Price = %+v", out.Price)
	}
	if out.VideoURL == nil || *out.VideoURL != "https://youtube.com/watch?v=x" {
		t.Error("VideoURL missing")
	}
	if out.Specifications["العلامة_التجارية"] != "SoundMax" {
		t.Errorf("Specs = %v", out.Specifications)
	}
	if out.Specifications["الوزن"] != "50g" {
		t.Errorf("Specs = %v", out.Specifications)
	}
	if out.Categories.Main != "إلكترونيات" || out.Categories.Sub != "سماعات" {
		t.Errorf("Categories = %+v", out.Categories)
	}
	if out.Description == "" {
		t.Error("Description empty despite real specs")
	}
}

func TestPriceNeverFabricated(t *testing.T) {
	out := testAssembler().Full(Inputs{Name: "منتج ما"})
	if out.PriceYER != "" {
		t.Errorf("PriceYER = %q, want empty for missing price", out.PriceYER)
	}
	if out.Price != nil {
		t.Errorf("Price = %+v, want nil", out.Price)
	}
}

func TestImageGuaranteeChain(t *testing.T) {
	a := testAssembler()

	out := a.Full(Inputs{Images: []string{"https://cdn/a.jpg"}})
	if len(out.ImageURLs) == 0 || out.ImageURLs[0] != "https://cdn/a.jpg" {
		t.Errorf("ImageURLs = %v", out.ImageURLs)
	}

	out = a.Full(Inputs{ShoppingImageURL: "https://shop/thumb.jpg"})
	if len(out.ImageURLs) != 1 || out.ImageURLs[0] != "https://shop/thumb.jpg" {
		t.Errorf("ImageURLs = %v, want shopping thumbnail", out.ImageURLs)
	}

	out = a.Full(Inputs{InputImageURL: "https://user/upload.jpg"})
	if len(out.ImageURLs) != 1 || out.ImageURLs[0] != "https://user/upload.jpg" {
		t.Errorf("ImageURLs = %v, want input image", out.ImageURLs)
	}

	out = a.Full(Inputs{})
	if len(out.ImageURLs) != 1 || out.ImageURLs[0] != models.PlaceholderImageURL {
		t.Errorf("ImageURLs = %v, want placeholder", out.ImageURLs)
	}
}

func TestShoppingImagePadsShortList(t *testing.T) {
	out := testAssembler().Full(Inputs{
		Images:           []string{"https://cdn/a.jpg"},
		ShoppingImageURL: "https://shop/thumb.jpg",
	})
	if len(out.ImageURLs) != 2 || out.ImageURLs[1] != "https://shop/thumb.jpg" {
		t.Errorf("ImageURLs = %v", out.ImageURLs)
	}
}

func TestShoppingPriceFallback(t *testing.T) {
	out := testAssembler().Full(Inputs{
		Name:              "Kettle",
		ShoppingPriceText: "$12.00",
	})
	if out.Price == nil || out.Price.Amount != 12 || out.Price.Source != "shopping" {
		t.Errorf("Price = %+v", out.Price)
	}
	if out.PriceYER != "3000.00" {
		t.Errorf("PriceYER = %q", out.PriceYER)
	}
}

func TestUnknownNameSentinel(t *testing.T) {
	out := testAssembler().Full(Inputs{})
	if out.ProductName != models.UnknownProductName {
		t.Errorf("ProductName = %q", out.ProductName)
	}
}

func TestBreadcrumbsPreferred(t *testing.T) {
	out := testAssembler().Full(Inputs{
		Name:        "USB Hub",
		Labels:      []string{"Electronics"},
		Breadcrumbs: []string{"الحاسبات", "ملحقات"},
	})
	if out.Categories.Main != "الحاسبات" || out.Categories.Sub != "ملحقات" {
		t.Errorf("Categories = %+v", out.Categories)
	}
	if len(out.Categories.Trail) != 2 {
		t.Errorf("Trail = %v", out.Categories.Trail)
	}
}

func TestPartialContract(t *testing.T) {
	out := testAssembler().Partial(Inputs{
		Name:        "Mug",
		PriceAmount: 4,
		PriceCode:   "USD",
		PriceSource: "meta",
	})
	if out.PriceYER != "1000.00" {
		t.Errorf("PriceYER = %q", out.PriceYER)
	}
	if len(out.ImageURLs) != 1 || out.ImageURLs[0] != models.PlaceholderImageURL {
		t.Errorf("ImageURLs = %v", out.ImageURLs)
	}
	if out.Features == nil {
		t.Error("Features must be an empty list, not nil")
	}
}

func TestDescribeNoFiller(t *testing.T) {
	if d := Describe(models.UnknownProductName, nil, nil, ""); d != "" {
		t.Errorf("Describe = %q, want empty when nothing was found", d)
	}
	d := Describe("خلاط كهربائي", []string{"سرعتان"}, map[string]string{"الطاقة": "500W"}, "12500.00")
	if d == "" || !strings.Contains(d, "خلاط كهربائي") {
		t.Errorf("Describe = %q", d)
	}
	if len(d) > maxDescriptionLen {
		t.Errorf("description exceeds cap: %d", len(d))
	}
}

func TestGuessCategoriesFallback(t *testing.T) {
	main, sub, trail := GuessCategories(nil, "mystery item")
	if main != "منتجات" || sub != "عام" || len(trail) != 2 {
		t.Errorf("GuessCategories = %q %q %v", main, sub, trail)
	}
}

func TestLocalizeSpecs(t *testing.T) {
	out := LocalizeSpecs(map[string]string{
		"Model Number": "X-200",
		"Color":        "Red",
		"Empty":        "",
		"Zero":         "0",
	})
	if out["الموديل"] != "X-200" {
		t.Errorf("out = %v", out)
	}
	if out["Color"] != "Red" {
		t.Errorf("unknown key must pass through: %v", out)
	}
	if len(out) != 2 {
		t.Errorf("empty/zero values must be dropped: %v", out)
	}
}
