package fetch

import (
	"context"
	"fmt"
	"net/http"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

// QuickFetcher performs the truncated quick-tier fetch: stream the response
// and stop once the byte budget is reached, capturing <head> metadata and
// leading structured-data blocks without paying full-page transfer cost.
type QuickFetcher struct {
	cfg    config.FetchConfig
	client *http.Client
}

// NewQuickFetcher creates a QuickFetcher with the tier's short connect and
// read timeouts.
func NewQuickFetcher(cfg config.FetchConfig) *QuickFetcher {
	return &QuickFetcher{
		cfg:    cfg,
		client: newClient(cfg.QuickConnectTimeout, cfg.QuickReadTimeout),
	}
}

// budgetFor returns the byte budget for a target. Known JS-heavy
// marketplaces bury their product state deep in the body, so they get the
// larger budget.
func (f *QuickFetcher) budgetFor(pageURL string) int {
	if isAliExpress(pageURL) {
		return f.cfg.QuickMarketplaceMaxBytes
	}
	return f.cfg.QuickMaxBytes
}

// Fetch retrieves at most the budget's worth of the page. The caller's
// context bounds the whole operation; expiry surfaces as a typed timeout
// via the returned context error.
func (f *QuickFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeFetchFailed, "quick fetch: build request", err)
	}
	ali := isAliExpress(pageURL)
	browserHeaders(req, ali)

	resp, err := f.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, models.NewAnalyzeError(models.ErrCodeFetchTimeout, "quick fetch timed out", ctx.Err())
		}
		return nil, models.NewAnalyzeError(models.ErrCodeFetchFailed, "quick fetch failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, models.NewAnalyzeError(models.ErrCodeFetchFailed,
			fmt.Sprintf("quick fetch: HTTP %d", resp.StatusCode), nil)
	}

	budget := f.budgetFor(pageURL)
	buf := make([]byte, budget+1)
	total := 0
	for total < len(buf) {
		n, readErr := resp.Body.Read(buf[total:])
		total += n
		if readErr != nil {
			break
		}
	}

	if total == 0 && ctx.Err() != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeFetchTimeout, "quick fetch timed out", ctx.Err())
	}

	truncated := total > budget
	if truncated {
		total = budget
	}

	html := string(buf[:total])
	return &Result{
		HTML:      html,
		Title:     ExtractTitle(html),
		Tier:      TierQuick,
		SourceURL: pageURL,
		Truncated: truncated,
	}, nil
}
