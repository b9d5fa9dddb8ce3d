package analyzer

import (
	"context"
	"log/slog"

	"github.com/MBGrao/ecommerce-product-intelligence-api/contract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/extract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// Partial runs the fast path: a truncated quick-tier fetch with cheap
// extraction when a URL hint is present, a warm-cache consult otherwise.
// It always answers inside the partial budget and never calls vision or
// the browser. A background full analysis is kicked off to warm future
// requests.
func (a *Analyzer) Partial(ctx context.Context, req *models.AnalyzeRequest, rid string) (models.PartialContract, error) {
	if !req.HasInput() {
		return models.PartialContract{}, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"either image_base64, image_url, or url is required", nil)
	}

	// The partial budget bounds everything after input validation, the
	// image download included: a slow image host must not stall the fast
	// path.
	ctx, cancel := context.WithTimeout(ctx, a.cfg.PartialTimeout)
	defer cancel()

	imgBytes, err := a.imageBytes(ctx, req)
	if err != nil {
		return models.PartialContract{}, err
	}

	key := "partial:" + fingerprint(imgBytes, req.ProductURLHint)
	if cached, ok := a.cache.Get(key); ok {
		if pc, isPartial := cached.(models.PartialContract); isPartial {
			slog.Info("partial cache hit", "request_id", rid)
			return pc, nil
		}
	}

	var result models.PartialContract
	var found bool

	if req.ProductURLHint != "" {
		result, found = a.partialFromURLHint(ctx, req, rid)
	}

	if !found && len(imgBytes) > 0 {
		if warmed, ok := a.cache.Get("warm:" + fingerprint(imgBytes, "")); ok {
			if pc, isPartial := warmed.(models.PartialContract); isPartial {
				slog.Info("partial warm hit", "request_id", rid)
				result, found = pc, true
			}
		}
	}

	if !found {
		// Skeleton: empty name and price, the image guarantee still holds.
		result = a.assembler.Partial(contract.Inputs{InputImageURL: req.ImageURL})
	}

	a.cache.Set(key, result)

	// Warm future requests with the full flow, detached from this request's
	// deadline. Failures are logged inside Full and swallowed here.
	if !req.FastOnly {
		go a.warmInBackground(req, rid)
	}

	if a.notifier != nil && a.notifier.PartialConfigured() {
		a.notifier.DeliverPartialAsync(result, rid)
	}
	return result, nil
}

// partialFromURLHint runs the quick tier against the hint. Disallowed
// domains and fetch failures return an unfound result rather than an error:
// the partial path always degrades, never fails.
func (a *Analyzer) partialFromURLHint(ctx context.Context, req *models.AnalyzeRequest, rid string) (models.PartialContract, bool) {
	if err := a.validator.Validate(req.ProductURLHint); err != nil {
		slog.Warn("partial url hint rejected", "request_id", rid, "error", err)
		return models.PartialContract{}, false
	}
	if !a.domainAllowed(req.ProductURLHint) {
		slog.Warn("partial url hint domain not allowed", "request_id", rid,
			"url", req.ProductURLHint)
		return models.PartialContract{}, false
	}

	res, err := a.quick.Fetch(ctx, req.ProductURLHint)
	if err != nil {
		slog.Warn("partial quick fetch failed", "request_id", rid, "error", err)
		return models.PartialContract{}, false
	}

	rec := a.pipeline.Run(res.HTML, req.ProductURLHint)
	if rec.Title == "" {
		// Truncation can leave the strategies nothing to work with; the
		// streamed <title> from the quick tier is still a usable name.
		rec.Title = extract.CleanTitle(res.Title)
	}
	if rec.Empty() {
		slog.Warn("partial extraction found nothing", "request_id", rid,
			"truncated", res.Truncated)
		return models.PartialContract{}, false
	}

	in := contract.Inputs{
		Name:          rec.Title,
		Images:        rec.Images,
		Features:      rec.Features,
		InputImageURL: req.ImageURL,
	}
	if rec.Price != nil {
		in.PriceAmount = rec.Price.Amount
		in.PriceCode = rec.Price.Currency
		in.PriceSource = rec.Price.Source
	}
	slog.Info("partial extraction succeeded", "request_id", rid,
		"truncated", res.Truncated,
		"title", rec.Title != "", "price", rec.Price != nil)
	return a.assembler.Partial(in), true
}

// warmInBackground runs the full flow on its own deadline so its results
// land in the warm and full cache namespaces for later requests.
func (a *Analyzer) warmInBackground(req *models.AnalyzeRequest, rid string) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("background warm panicked", "request_id", rid, "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.HardTimeout)
	defer cancel()
	if _, err := a.Full(ctx, req, rid); err != nil {
		slog.Warn("background warm failed", "request_id", rid, "error", err)
	}
}
