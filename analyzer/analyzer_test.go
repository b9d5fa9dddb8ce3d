package analyzer

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MBGrao/ecommerce-product-intelligence-api/cache"
	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"github.com/MBGrao/ecommerce-product-intelligence-api/contract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/MBGrao/ecommerce-product-intelligence-api/extract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/fetch"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
	"github.com/MBGrao/ecommerce-product-intelligence-api/safeurl"
	"github.com/MBGrao/ecommerce-product-intelligence-api/search"
	"github.com/MBGrao/ecommerce-product-intelligence-api/vision"
)

const vendorHTML = `<html><head><script type="application/ld+json">
{"@type":"Product","name":"Smart Kettle 1.7L",
 "image":["https://cdn.example.com/kettle.jpg"],
 "offers":{"price":"35.00","priceCurrency":"USD"}}
</script></head></html>`

const noPriceHTML = `<html><head><title>Just a page</title></head></html>`

type stubSource struct {
	html  string
	err   error
	calls int
}

func (s *stubSource) Name() string { return "stub" }
func (s *stubSource) Fetch(ctx context.Context, pageURL string) (string, error) {
	s.calls++
	return s.html, s.err
}

type stubVision struct {
	signals vision.Signals
	err     error
}

func (s *stubVision) Enabled() bool { return true }
func (s *stubVision) Annotate(ctx context.Context, b []byte) (vision.Signals, error) {
	return s.signals, s.err
}

type stubSearch struct {
	items  []search.Item
	vendor string
}

func (s *stubSearch) Search(ctx context.Context, q string) ([]search.Item, error) {
	return s.items, nil
}
func (s *stubSearch) PickVendor(items []search.Item) string { return s.vendor }

func newTestAnalyzer(t *testing.T, source fetch.PageSource, v annotator, sr shoppingSearcher) *Analyzer {
	t.Helper()
	fetchCfg := config.FetchConfig{
		QuickMaxBytes:            64 * 1024,
		QuickMarketplaceMaxBytes: 256 * 1024,
		QuickConnectTimeout:      2 * time.Second,
		QuickReadTimeout:         2 * time.Second,
		FullTimeout:              5 * time.Second,
		MaxImageBytes:            5 << 20,
		AllowedDomains:           []string{"shop.example.com", "aliexpress.com", "127.0.0.1"},
	}
	conv := currency.New("", time.Hour, 250)
	return New(
		config.AnalyzeConfig{
			HardTimeout:       5 * time.Second,
			PartialTimeout:    2 * time.Second,
			UseSimilarImages:  true,
			UseShoppingSearch: true,
		},
		fetchCfg,
		Deps{
			Validator: safeurl.New(safeurl.WithTrusted([]string{"shop.example.com", "aliexpress.com", "127.0.0.1"})),
			Quick:     fetch.NewQuickFetcher(fetchCfg),
			Source:    source,
			Pipeline:  extract.NewPipeline(),
			Cache:     cache.New(100, time.Hour),
			Converter: conv,
			Vision:    v,
			Searcher:  sr,
			Assembler: contract.NewAssembler(conv),
		},
	)
}

func imageReq() *models.AnalyzeRequest {
	return &models.AnalyzeRequest{
		ImageBase64: base64.StdEncoding.EncodeToString([]byte("fake image bytes")),
		FastOnly:    true,
	}
}

func TestFullURLHintSuccess(t *testing.T) {
	src := &stubSource{html: vendorHTML}
	a := newTestAnalyzer(t, src, nil, nil)

	out, err := a.Full(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: "https://shop.example.com/p/1", FastOnly: true,
	}, "rid-1")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Contract == nil || out.Failed != nil {
		t.Fatalf("Outcome = %+v", out)
	}
	if out.Contract.ProductName != "Smart Kettle 1.7L" {
		t.Errorf("ProductName = %q", out.Contract.ProductName)
	}
	if out.Contract.PriceYER != "8750.00" {
		t.Errorf("PriceYER = %q", out.Contract.PriceYER)
	}
	if len(out.Contract.ImageURLs) == 0 {
		t.Error("image guarantee violated")
	}
}

func TestFullURLHintNoProductData(t *testing.T) {
	a := newTestAnalyzer(t, &stubSource{html: noPriceHTML}, nil, nil)

	out, err := a.Full(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: "https://shop.example.com/p/2", FastOnly: true,
	}, "rid-2")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Failed == nil || out.Contract != nil {
		t.Fatalf("Outcome = %+v, want typed scrape failure", out)
	}
	if out.Failed.Status != "scrape_failed" || out.Failed.Reason != "no_product_data_found" {
		t.Errorf("Failed = %+v", out.Failed)
	}
	if out.Failed.URL != "https://shop.example.com/p/2" {
		t.Errorf("URL = %q", out.Failed.URL)
	}
}

func TestFullURLHintFetchError(t *testing.T) {
	a := newTestAnalyzer(t, &stubSource{err: errors.New("connection refused")}, nil, nil)

	out, err := a.Full(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: "https://shop.example.com/p/3", FastOnly: true,
	}, "rid-3")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Failed == nil || out.Failed.Reason != "scraping_error" {
		t.Errorf("Outcome = %+v", out)
	}
}

func TestFullURLHintDisallowedDomain(t *testing.T) {
	a := newTestAnalyzer(t, &stubSource{html: vendorHTML}, nil, nil)

	out, err := a.Full(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: "https://evil.example.org/p/1", FastOnly: true,
	}, "rid-4")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Failed == nil {
		t.Fatalf("Outcome = %+v, want failure for disallowed domain", out)
	}
}

func TestFullImageDegraded(t *testing.T) {
	// No vision, no search: the response must still satisfy the contract
	// with the sentinel name, no price, and exactly one placeholder image.
	a := newTestAnalyzer(t, &stubSource{}, nil, nil)

	out, err := a.Full(context.Background(), imageReq(), "rid-5")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	c := out.Contract
	if c == nil {
		t.Fatal("Contract nil")
	}
	if c.ProductName != models.UnknownProductName {
		t.Errorf("ProductName = %q", c.ProductName)
	}
	if c.PriceYER != "" || c.Price != nil {
		t.Errorf("price fabricated: %q %+v", c.PriceYER, c.Price)
	}
	if len(c.ImageURLs) != 1 || c.ImageURLs[0] != models.PlaceholderImageURL {
		t.Errorf("ImageURLs = %v", c.ImageURLs)
	}
}

func TestFullImageVendorSupersedesVision(t *testing.T) {
	src := &stubSource{html: vendorHTML}
	v := &stubVision{signals: vision.Signals{
		BestGuesses: []string{"electric kettle"},
		Labels:      []string{"Kettle"},
		Text:        "9.99 USD",
	}}
	sr := &stubSearch{
		items:  []search.Item{{URL: "/url?q=https://shop.example.com/p/9", ImageURL: "https://t/1.jpg", PriceText: "$30"}},
		vendor: "https://shop.example.com/p/9",
	}
	a := newTestAnalyzer(t, src, v, sr)

	out, err := a.Full(context.Background(), imageReq(), "rid-6")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	c := out.Contract
	if c.ProductName != "Smart Kettle 1.7L" {
		t.Errorf("ProductName = %q, vendor title must supersede vision guess", c.ProductName)
	}
	if c.Price == nil || c.Price.Amount != 35.00 || c.Price.Source != "jsonld_offers" {
		t.Errorf("Price = %+v, vendor price must supersede OCR", c.Price)
	}
	if len(c.ImageURLs) == 0 || c.ImageURLs[0] != "https://cdn.example.com/kettle.jpg" {
		t.Errorf("ImageURLs = %v", c.ImageURLs)
	}
}

func TestFullImageOCRPriceWhenNoVendor(t *testing.T) {
	v := &stubVision{signals: vision.Signals{
		BestGuesses: []string{"desk lamp"},
		Text:        "price 19.99 USD",
	}}
	sr := &stubSearch{items: []search.Item{{ImageURL: "https://t/2.jpg"}}}
	a := newTestAnalyzer(t, &stubSource{}, v, sr)

	out, err := a.Full(context.Background(), imageReq(), "rid-7")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	c := out.Contract
	if c.Price == nil || c.Price.Amount != 19.99 || c.Price.Source != "ocr" {
		t.Errorf("Price = %+v, want OCR fallback", c.Price)
	}
	if len(c.ImageURLs) != 1 || c.ImageURLs[0] != "https://t/2.jpg" {
		t.Errorf("ImageURLs = %v, want shopping thumbnail fallback", c.ImageURLs)
	}
}

func TestFullCacheHit(t *testing.T) {
	src := &stubSource{html: vendorHTML}
	a := newTestAnalyzer(t, src, nil, nil)
	req := &models.AnalyzeRequest{ProductURLHint: "https://shop.example.com/p/1", FastOnly: true}

	if _, err := a.Full(context.Background(), req, "rid-8a"); err != nil {
		t.Fatalf("Full: %v", err)
	}
	if _, err := a.Full(context.Background(), req, "rid-8b"); err != nil {
		t.Fatalf("Full: %v", err)
	}
	if src.calls != 1 {
		t.Errorf("source calls = %d, want cached second request", src.calls)
	}
}

func TestPartialURLHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, vendorHTML)
	}))
	defer srv.Close()

	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	pc, err := a.Partial(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: srv.URL + "/item", FastOnly: true,
	}, "rid-9")
	if err != nil {
		t.Fatalf("Partial: %v", err)
	}
	if pc.ProductName != "Smart Kettle 1.7L" {
		t.Errorf("ProductName = %q", pc.ProductName)
	}
	if pc.PriceYER != "8750.00" {
		t.Errorf("PriceYER = %q", pc.PriceYER)
	}
	if len(pc.ImageURLs) == 0 {
		t.Error("image guarantee violated")
	}
}

func TestPartialSkeletonKeepsGuarantee(t *testing.T) {
	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	pc, err := a.Partial(context.Background(), imageReq(), "rid-10")
	if err != nil {
		t.Fatalf("Partial: %v", err)
	}
	if pc.ProductName != "" || pc.PriceYER != "" {
		t.Errorf("skeleton = %+v, want empty name and price", pc)
	}
	if len(pc.ImageURLs) != 1 || pc.ImageURLs[0] != models.PlaceholderImageURL {
		t.Errorf("ImageURLs = %v", pc.ImageURLs)
	}
}

func TestPartialWarmHitAfterFull(t *testing.T) {
	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	req := imageReq()

	if _, err := a.Full(context.Background(), req, "rid-11a"); err != nil {
		t.Fatalf("Full: %v", err)
	}
	pc, err := a.Partial(context.Background(), req, "rid-11b")
	if err != nil {
		t.Fatalf("Partial: %v", err)
	}
	if pc.ProductName != models.UnknownProductName {
		t.Errorf("ProductName = %q, want warm-cached full result", pc.ProductName)
	}
}

func TestFullRequiresInput(t *testing.T) {
	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	_, err := a.Full(context.Background(), &models.AnalyzeRequest{}, "rid-12")
	var aerr *models.AnalyzeError
	if !errors.As(err, &aerr) || aerr.Code != models.ErrCodeInvalidInput {
		t.Fatalf("err = %v", err)
	}
}

// flakySource fails its first fetch and recovers afterwards.
type flakySource struct {
	calls int
	html  string
}

func (s *flakySource) Name() string { return "flaky" }
func (s *flakySource) Fetch(ctx context.Context, pageURL string) (string, error) {
	s.calls++
	if s.calls == 1 {
		return "", errors.New("connection reset")
	}
	return s.html, nil
}

func TestFullFailureNotCached(t *testing.T) {
	src := &flakySource{html: vendorHTML}
	a := newTestAnalyzer(t, src, nil, nil)
	req := &models.AnalyzeRequest{ProductURLHint: "https://shop.example.com/p/7", FastOnly: true}

	out, err := a.Full(context.Background(), req, "rid-14a")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Failed == nil || out.Failed.Reason != "scraping_error" {
		t.Fatalf("Outcome = %+v, want transient scrape failure", out)
	}

	out, err = a.Full(context.Background(), req, "rid-14b")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Contract == nil {
		t.Fatalf("Outcome = %+v, want recovery once the page fetches", out)
	}
	if src.calls != 2 {
		t.Errorf("source calls = %d, failure must not be served from cache", src.calls)
	}
}

func TestPartialFastOnlySkipsBackgroundWarm(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, vendorHTML)
	}))
	defer srv.Close()

	src := &stubSource{html: vendorHTML}
	a := newTestAnalyzer(t, src, nil, nil)

	if _, err := a.Partial(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: srv.URL + "/item", FastOnly: true,
	}, "rid-15"); err != nil {
		t.Fatalf("Partial: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if src.calls != 0 {
		t.Errorf("source calls = %d, fast_only must suppress the background analysis", src.calls)
	}
}

func TestPartialImageDownloadBounded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(3 * time.Second)
	}))
	defer srv.Close()

	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	a.cfg.PartialTimeout = 200 * time.Millisecond

	start := time.Now()
	_, err := a.Partial(context.Background(), &models.AnalyzeRequest{
		ImageURL: srv.URL + "/img.jpg", FastOnly: true,
	}, "rid-16")
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("partial took %v, image download must respect the partial budget", elapsed)
	}
	if err == nil {
		t.Error("expected an error from the timed-out image download")
	}
}

func TestPartialTitleFallbackFromQuickTier(t *testing.T) {
	// A page whose title only survives via the quick tier's tokenizer still
	// yields a named partial.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><head><title>Ceramic Vase 20cm</title><script>var x = '<")
	}))
	defer srv.Close()

	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	pc, err := a.Partial(context.Background(), &models.AnalyzeRequest{
		ProductURLHint: srv.URL + "/item", FastOnly: true,
	}, "rid-17")
	if err != nil {
		t.Fatalf("Partial: %v", err)
	}
	if pc.ProductName != "Ceramic Vase 20cm" {
		t.Errorf("ProductName = %q, want tokenized title", pc.ProductName)
	}
}

func TestPreprocessedVisionJSON(t *testing.T) {
	payload := `{"responses":[{"webDetection":{"bestGuessLabels":[{"label":"ceramic vase"}]}}]}`
	req := imageReq()
	req.VisionJSON = []byte(payload)

	a := newTestAnalyzer(t, &stubSource{}, nil, nil)
	out, err := a.Full(context.Background(), req, "rid-13")
	if err != nil {
		t.Fatalf("Full: %v", err)
	}
	if out.Contract.ProductName != "ceramic vase" {
		t.Errorf("ProductName = %q, want name from supplied payload", out.Contract.ProductName)
	}
}
