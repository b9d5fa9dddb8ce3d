package analyzer

import (
	"context"
	"log/slog"

	"github.com/MBGrao/ecommerce-product-intelligence-api/contract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/extract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
	"github.com/MBGrao/ecommerce-product-intelligence-api/search"
	"github.com/MBGrao/ecommerce-product-intelligence-api/vision"
)

// Outcome is the result of a full analysis: exactly one of Contract or
// Failed is set.
type Outcome struct {
	Contract *models.FullContract
	Failed   *models.ScrapeFailed
}

// Full runs the complete analysis flow under the hard timeout.
//
// With a URL hint the flow is scrape-only: either the vendor page yields a
// real title and price, or the caller gets a typed scrape_failed result.
// The hint is never silently blended with inferred data. Without a hint the
// flow is vision first, then shopping search for a vendor page, with vendor
// data superseding vision guesses.
func (a *Analyzer) Full(ctx context.Context, req *models.AnalyzeRequest, rid string) (Outcome, error) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.HardTimeout)
	defer cancel()

	if !req.HasInput() {
		return Outcome{}, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"either image_base64, image_url, or url is required", nil)
	}

	imgBytes, err := a.imageBytes(ctx, req)
	if err != nil {
		return Outcome{}, err
	}

	key := "full:" + fingerprint(imgBytes, req.ProductURLHint)
	if cached, ok := a.cache.Get(key); ok {
		if out, isOutcome := cached.(Outcome); isOutcome {
			slog.Info("full cache hit", "request_id", rid)
			return out, nil
		}
	}

	a.conv.EnsureFresh(ctx)

	var out Outcome
	if req.ProductURLHint != "" {
		out, err = a.fullFromURLHint(ctx, req, rid)
	} else {
		out, err = a.fullFromImage(ctx, req, imgBytes, rid)
	}
	if err != nil {
		return Outcome{}, err
	}

	// Only assembled contracts are cached. A scrape failure, often just a
	// transient fetch error, must not be served for the whole TTL.
	if out.Contract != nil {
		a.cache.Set(key, out)
		a.seedWarmCache(imgBytes, out.Contract)
		if a.notifier != nil && a.notifier.FullConfigured() {
			a.notifier.DeliverFullAsync(out.Contract, rid)
		}
	}
	return out, nil
}

func (a *Analyzer) fullFromURLHint(ctx context.Context, req *models.AnalyzeRequest, rid string) (Outcome, error) {
	rec, err := a.scrapePage(ctx, req.ProductURLHint)
	if err != nil {
		slog.Warn("url hint scrape failed", "request_id", rid,
			"url", req.ProductURLHint, "error", err)
		return Outcome{Failed: &models.ScrapeFailed{
			Status:    "scrape_failed",
			Reason:    "scraping_error",
			RequestID: rid,
			URL:       req.ProductURLHint,
			Message:   "Unable to retrieve the provided URL",
		}}, nil
	}

	if rec.Title == "" || rec.Price == nil {
		slog.Warn("url hint yielded no product data", "request_id", rid,
			"url", req.ProductURLHint,
			"title", rec.Title != "", "price", rec.Price != nil)
		return Outcome{Failed: &models.ScrapeFailed{
			Status:    "scrape_failed",
			Reason:    "no_product_data_found",
			RequestID: rid,
			URL:       req.ProductURLHint,
			Message:   "Unable to extract product data from the provided URL",
		}}, nil
	}

	slog.Info("url hint scrape succeeded", "request_id", rid,
		"url", req.ProductURLHint, "images", len(rec.Images))

	c := a.assembler.Full(contract.Inputs{
		Name:        rec.Title,
		Images:      rec.Images,
		Video:       rec.Video,
		PriceAmount: rec.Price.Amount,
		PriceCode:   rec.Price.Currency,
		PriceSource: rec.Price.Source,
		Specs:       rec.Specs,
		Features:    rec.Features,
		Breadcrumbs: rec.Breadcrumbs,
	})
	return Outcome{Contract: &c}, nil
}

func (a *Analyzer) fullFromImage(ctx context.Context, req *models.AnalyzeRequest, imgBytes []byte, rid string) (Outcome, error) {
	signals, err := a.imageSignals(ctx, req, imgBytes, rid)
	if err != nil {
		return Outcome{}, err
	}

	name := vision.PickName(signals)
	slog.Info("vision signals", "request_id", rid,
		"labels", len(signals.Labels), "entities", len(signals.Entities),
		"name", name)

	in := contract.Inputs{
		Name:          name,
		Keywords:      vision.Keywords(signals),
		Labels:        signals.Labels,
		InputImageURL: req.ImageURL,
	}
	if name == models.UnknownProductName {
		in.Name = ""
	}

	// Secondary source: find a vendor page for the recognised name. Vendor
	// data supersedes the vision guesses wherever it is non-empty.
	if a.cfg.UseShoppingSearch && a.searcher != nil && in.Name != "" {
		a.enrichFromShopping(ctx, &in, rid)
	}

	// OCR price only when no vendor price was found.
	if in.PriceAmount <= 0 {
		if amount, code, ok := vision.PriceFromText(signals.Text); ok {
			in.PriceAmount, in.PriceCode, in.PriceSource = amount, code, "ocr"
		}
	}

	if a.cfg.UseSimilarImages && len(in.Images) == 0 {
		in.Images = signals.SimilarImages
	}

	c := a.assembler.Full(in)
	return Outcome{Contract: &c}, nil
}

// imageSignals prefers a caller-supplied pre-processed annotation payload
// and falls back to a live annotate call.
func (a *Analyzer) imageSignals(ctx context.Context, req *models.AnalyzeRequest, imgBytes []byte, rid string) (vision.Signals, error) {
	if len(req.VisionJSON) > 0 {
		return vision.Normalize(req.VisionJSON)
	}
	if a.vision == nil || !a.vision.Enabled() {
		slog.Warn("vision disabled, proceeding without image signals", "request_id", rid)
		return vision.Signals{}, nil
	}
	signals, err := a.vision.Annotate(ctx, imgBytes)
	if err != nil {
		// A dead vision backend degrades the result, it does not fail the
		// request.
		slog.Warn("vision annotate failed", "request_id", rid, "error", err)
		return vision.Signals{}, nil
	}
	return signals, nil
}

// enrichFromShopping searches for the product, scrapes the best allowed
// vendor result, and folds everything usable into in.
func (a *Analyzer) enrichFromShopping(ctx context.Context, in *contract.Inputs, rid string) {
	items, err := a.searcher.Search(ctx, in.Name)
	if err != nil || len(items) == 0 {
		slog.Warn("shopping search yielded nothing", "request_id", rid, "error", err)
		return
	}
	in.ShoppingImageURL = search.FirstImage(items)
	in.ShoppingPriceText = search.FirstPrice(items)

	vendorURL := a.searcher.PickVendor(items)
	if vendorURL == "" {
		slog.Info("no allowed vendor in shopping results", "request_id", rid)
		return
	}

	rec, err := a.scrapePage(ctx, vendorURL)
	if err != nil {
		slog.Warn("vendor scrape failed", "request_id", rid,
			"url", vendorURL, "error", err)
		return
	}
	slog.Info("vendor scrape succeeded", "request_id", rid, "url", vendorURL)
	mergeVendor(in, rec)
}

// mergeVendor overlays scraped vendor data onto the vision-derived inputs.
func mergeVendor(in *contract.Inputs, rec extract.Record) {
	if rec.Title != "" {
		in.Name = rec.Title
	}
	if len(rec.Images) > 0 {
		in.Images = rec.Images
	}
	if rec.Video != "" {
		in.Video = rec.Video
	}
	if rec.Price != nil {
		in.PriceAmount = rec.Price.Amount
		in.PriceCode = rec.Price.Currency
		in.PriceSource = rec.Price.Source
	}
	if len(rec.Specs) > 0 {
		in.Specs = rec.Specs
	}
	if len(rec.Features) > 0 {
		in.Features = rec.Features
	}
	if len(rec.Breadcrumbs) > 0 {
		in.Breadcrumbs = rec.Breadcrumbs
	}
}

// seedWarmCache stores a trimmed partial view of a finished full contract
// so later partial requests for the same image answer instantly.
func (a *Analyzer) seedWarmCache(imgBytes []byte, c *models.FullContract) {
	if len(imgBytes) == 0 {
		return
	}
	warm := models.PartialContract{
		ProductName: c.ProductName,
		PriceYER:    c.PriceYER,
		ImageURLs:   c.ImageURLs,
		Price:       c.Price,
		Features:    c.Features,
	}
	a.cache.Set("warm:"+fingerprint(imgBytes, ""), warm)
}
