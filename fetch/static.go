package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"golang.org/x/net/html"
)

// maxFullBody caps a full-tier read to prevent unbounded memory use.
const maxFullBody = 10 << 20

// StaticSource is the PageSource used when browser automation is disabled:
// a plain full-page retrieval with a Chrome TLS fingerprint. For AliExpress
// it retries on a staged delay schedule and alternate regional subdomains
// until the content passes the product-data heuristic, keeping the best
// attempt otherwise.
type StaticSource struct {
	cfg    config.FetchConfig
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error
}

// NewStaticSource creates a StaticSource.
func NewStaticSource(cfg config.FetchConfig) *StaticSource {
	return &StaticSource{
		cfg:    cfg,
		client: newClient(10*time.Second, cfg.FullTimeout),
		sleep:  sleepCtx,
	}
}

func (s *StaticSource) Name() string { return "static" }

// Fetch retrieves the complete page.
func (s *StaticSource) Fetch(ctx context.Context, pageURL string) (string, error) {
	if isAliExpress(pageURL) {
		return s.fetchMarketplace(ctx, pageURL)
	}
	return s.get(ctx, pageURL)
}

func (s *StaticSource) get(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("static fetch: build request: %w", err)
	}
	browserHeaders(req, isAliExpress(pageURL))

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("static fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("static fetch: HTTP %d for %s", resp.StatusCode, pageURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFullBody))
	if err != nil {
		return "", fmt.Errorf("static fetch: read body: %w", err)
	}
	return string(body), nil
}

// fetchMarketplace runs the staged retry ladder: each attempt waits the
// scheduled delay, refetches, and returns as soon as the content looks like
// real product data. Failing that, alternate regional subdomains are tried
// with the item ID carried over. The largest response seen is returned when
// nothing passes the heuristic.
func (s *StaticSource) fetchMarketplace(ctx context.Context, pageURL string) (string, error) {
	var best string
	var lastErr error

	for _, delay := range s.cfg.RetryDelays {
		if delay > 0 {
			if err := s.sleep(ctx, delay); err != nil {
				break
			}
		}
		body, err := s.get(ctx, pageURL)
		if err != nil {
			lastErr = err
			continue
		}
		if LooksLikeProductData(body) {
			return body, nil
		}
		if len(body) > len(best) {
			best = body
		}
	}

	// Alternate regional subdomains, same item ID.
	if itemID := aliExpressItemID(pageURL); itemID != "" {
		for _, domain := range []string{
			"https://www.aliexpress.com",
			"https://www.aliexpress.us",
			"https://es.aliexpress.com",
		} {
			altURL := domain + "/item/" + itemID + ".html"
			if altURL == pageURL {
				continue
			}
			body, err := s.get(ctx, altURL)
			if err != nil {
				lastErr = err
				continue
			}
			if LooksLikeProductData(body) {
				return body, nil
			}
			if len(body) > len(best) {
				best = body
			}
		}
	}

	if best != "" {
		return best, nil
	}
	if lastErr != nil {
		return "", lastErr
	}
	return "", fmt.Errorf("static fetch: no content for %s", pageURL)
}

// aliExpressItemID pulls the numeric item ID out of an /item/<id>.html URL.
func aliExpressItemID(pageURL string) string {
	_, after, found := strings.Cut(pageURL, "/item/")
	if !found {
		return ""
	}
	id := after
	if i := strings.IndexAny(id, ".?#"); i >= 0 {
		id = id[:i]
	}
	return id
}

// productMarkers are the structural indicators of an embedded product
// payload. A page must carry at least two of them.
var productMarkers = []string{
	"window.runParams", "priceModule", "imageModule", "titleModule",
}

// productTokens are page-level hints that product information (not just a
// skeleton shell) is present.
var productTokens = []string{
	"product-title", "product-price", "sku", "product-detail",
}

// minProductBytes is the minimum body size for a page to count as rendered
// product data rather than a bootstrap shell.
const minProductBytes = 100 * 1024

// LooksLikeProductData reports whether fetched HTML carries real product
// data: at least two structural markers, substantial size, and at least one
// product token.
func LooksLikeProductData(body string) bool {
	if len(body) < minProductBytes {
		return false
	}
	markers := 0
	for _, m := range productMarkers {
		if strings.Contains(body, m) {
			markers++
		}
	}
	if markers < 2 {
		return false
	}
	lower := strings.ToLower(body)
	for _, tok := range productTokens {
		if strings.Contains(lower, tok) {
			return true
		}
	}
	return false
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ExtractTitle finds the first <title> text in raw HTML using the streaming
// tokenizer, cheap enough for truncated quick-tier content.
func ExtractTitle(body string) string {
	tokenizer := html.NewTokenizer(bytes.NewReader([]byte(body)))
	for {
		tt := tokenizer.Next()
		switch tt {
		case html.ErrorToken:
			return ""
		case html.StartTagToken:
			tn, _ := tokenizer.TagName()
			if string(tn) == "title" {
				if tokenizer.Next() == html.TextToken {
					return strings.TrimSpace(string(tokenizer.Text()))
				}
				return ""
			}
		}
	}
}
