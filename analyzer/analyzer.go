// Package analyzer orchestrates the extraction and fallback chain that
// turns an analysis request into a response contract.
package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

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
	"github.com/MBGrao/ecommerce-product-intelligence-api/webhook"
)

// annotator is the image-understanding dependency.
type annotator interface {
	Enabled() bool
	Annotate(ctx context.Context, imageBytes []byte) (vision.Signals, error)
}

// shoppingSearcher is the secondary-source lookup dependency.
type shoppingSearcher interface {
	Search(ctx context.Context, query string) ([]search.Item, error)
	PickVendor(items []search.Item) string
}

// Analyzer runs the full and partial analysis flows.
type Analyzer struct {
	cfg       config.AnalyzeConfig
	fetchCfg  config.FetchConfig
	validator *safeurl.Validator
	quick     *fetch.QuickFetcher
	source    fetch.PageSource
	pipeline  *extract.Pipeline
	cache     *cache.Cache
	conv      *currency.Converter
	vision    annotator
	searcher  shoppingSearcher
	assembler *contract.Assembler
	notifier  *webhook.Notifier
	imgClient *http.Client
}

// Deps bundles the analyzer's collaborators.
type Deps struct {
	Validator *safeurl.Validator
	Quick     *fetch.QuickFetcher
	Source    fetch.PageSource
	Pipeline  *extract.Pipeline
	Cache     *cache.Cache
	Converter *currency.Converter
	Vision    annotator
	Searcher  shoppingSearcher
	Assembler *contract.Assembler
	Notifier  *webhook.Notifier
}

// New creates an Analyzer.
func New(cfg config.AnalyzeConfig, fetchCfg config.FetchConfig, d Deps) *Analyzer {
	return &Analyzer{
		cfg:       cfg,
		fetchCfg:  fetchCfg,
		validator: d.Validator,
		quick:     d.Quick,
		source:    d.Source,
		pipeline:  d.Pipeline,
		cache:     d.Cache,
		conv:      d.Converter,
		vision:    d.Vision,
		searcher:  d.Searcher,
		assembler: d.Assembler,
		notifier:  d.Notifier,
		imgClient: &http.Client{Timeout: fetchCfg.FullTimeout},
	}
}

// domainAllowed reports whether the host is on the scraping allowlist.
func (a *Analyzer) domainAllowed(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, d := range a.fetchCfg.AllowedDomains {
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

// imageBytes resolves the request's image input to raw bytes. URL-only
// requests return nil bytes with no error.
func (a *Analyzer) imageBytes(ctx context.Context, req *models.AnalyzeRequest) ([]byte, error) {
	if req.ImageBase64 != "" {
		return decodeBase64Image(req.ImageBase64, a.fetchCfg.MaxImageBytes)
	}
	if req.ImageURL != "" {
		return a.downloadImage(ctx, req.ImageURL)
	}
	return nil, nil
}

// decodeBase64Image accepts both data URLs and bare base64.
func decodeBase64Image(s string, maxBytes int64) ([]byte, error) {
	if i := strings.LastIndex(s, ","); i >= 0 {
		s = s[i+1:]
	}
	if int64(base64.StdEncoding.DecodedLen(len(s))) > maxBytes {
		return nil, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"image exceeds size limit", nil)
	}
	b, err := base64.StdEncoding.DecodeString(strings.TrimSpace(s))
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"invalid base64 image", err)
	}
	return b, nil
}

func (a *Analyzer) downloadImage(ctx context.Context, imageURL string) ([]byte, error) {
	if err := a.validator.Validate(imageURL); err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeUnsafeTarget,
			"image URL rejected", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"invalid image URL", err)
	}
	resp, err := a.imgClient.Do(req)
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeFetchFailed,
			"image download failed", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, models.NewAnalyzeError(models.ErrCodeFetchFailed,
			fmt.Sprintf("image download: HTTP %d", resp.StatusCode), nil)
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, a.fetchCfg.MaxImageBytes+1))
	if err != nil {
		return nil, models.NewAnalyzeError(models.ErrCodeFetchFailed,
			"image download read failed", err)
	}
	if int64(len(b)) > a.fetchCfg.MaxImageBytes {
		return nil, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"image exceeds size limit", nil)
	}
	return b, nil
}

// fingerprint keys cache entries by the image content plus any URL hint.
// URL-only requests key on the hint alone.
func fingerprint(imgBytes []byte, urlHint string) string {
	if len(imgBytes) == 0 {
		return cache.Key("url_only", urlHint)
	}
	return cache.Key(string(imgBytes), urlHint)
}

// scrapePage runs the full-tier fetch and extraction pipeline over one
// vendor URL.
func (a *Analyzer) scrapePage(ctx context.Context, pageURL string) (extract.Record, error) {
	if err := a.validator.Validate(pageURL); err != nil {
		return extract.Record{}, models.NewAnalyzeError(models.ErrCodeUnsafeTarget,
			"target URL rejected", err)
	}
	if !a.domainAllowed(pageURL) {
		return extract.Record{}, models.NewAnalyzeError(models.ErrCodeInvalidInput,
			"domain not allowed for scraping", nil)
	}
	html, err := a.source.Fetch(ctx, pageURL)
	if err != nil {
		return extract.Record{}, err
	}
	return a.pipeline.Run(html, pageURL), nil
}
