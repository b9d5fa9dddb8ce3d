package fetch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

// productSelectors are the DOM hooks that indicate product content finished
// rendering. Navigation waits for any of them before falling back to the
// settle delay.
var productSelectors = []string{
	".product-title", ".product-price", "[data-price]",
	".product-info", ".product-detail", ".sku-info",
}

// RodSource renders pages in a shared headless browser with a reusable page
// pool. It is safe for concurrent use.
type RodSource struct {
	browser *rod.Browser
	pool    rod.Pool[rod.Page]
	cfg     config.BrowserConfig
}

// NewRodSource launches the headless browser and initialises the page pool.
func NewRodSource(cfg config.BrowserConfig) (*RodSource, error) {
	l := launcher.New().
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox)

	if cfg.BrowserBin != "" {
		l = l.Bin(cfg.BrowserBin)
	}

	// ── Stealth flags ────────────────────────────────────────────────
	l.Set(flags.Flag("disable-blink-features"), "AutomationControlled")
	l.Delete(flags.Flag("enable-automation"))
	l.Set(flags.Flag("disable-dev-shm-usage"))
	l.Set(flags.Flag("disable-extensions"))
	l.Set(flags.Flag("disable-component-update"))
	l.Set(flags.Flag("disable-default-apps"))
	l.Set(flags.Flag("no-first-run"))

	controlURL, err := l.Launch()
	if err != nil {
		return nil, models.NewAnalyzeError(
			models.ErrCodeInternal,
			"failed to launch browser",
			err,
		)
	}
	slog.Info("browser launched", "controlURL", controlURL)

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, models.NewAnalyzeError(
			models.ErrCodeInternal,
			"failed to connect to browser",
			err,
		)
	}

	pool := rod.NewPagePool(cfg.MaxPages)
	slog.Info("page pool created", "maxPages", cfg.MaxPages)

	return &RodSource{browser: browser, pool: pool, cfg: cfg}, nil
}

func (r *RodSource) Name() string { return "browser" }

// Fetch renders pageURL and returns its HTML once product content appears or
// the settle delay expires.
//
// Lifecycle:
//
//  1. Acquire page        – borrow a tab from the pool (or create one)
//  2. DEFER: cleanup      – about:blank + return to pool (leak prevention)
//  3. Stealth injection   – mask navigator.webdriver etc. (before navigation!)
//  4. Context binding     – propagate the caller's deadline to Rod operations
//  5. Navigate            – triggers page load
//  6. Wait                – product selector race, then settle delay
//  7. Extract             – page.HTML()
func (r *RodSource) Fetch(ctx context.Context, pageURL string) (string, error) {
	page, acquireErr := r.pool.Get(func() (*rod.Page, error) {
		return r.browser.Page(proto.TargetCreateTarget{})
	})
	if acquireErr != nil {
		return "", models.NewAnalyzeError(
			models.ErrCodeInternal,
			"failed to acquire page from pool",
			acquireErr,
		)
	}

	// Cleanup uses the ORIGINAL page reference so it succeeds even after the
	// request context has expired.
	defer func() {
		if navErr := page.Navigate("about:blank"); navErr != nil {
			slog.Warn("cleanup: failed to navigate to about:blank",
				"error", navErr,
			)
		}
		r.pool.Put(page)
	}()

	if _, evalErr := page.EvalOnNewDocument(stealth.JS); evalErr != nil {
		slog.Warn("stealth injection failed, proceeding without stealth",
			"error", evalErr,
		)
	}

	p := page.Context(ctx)

	if navErr := p.Navigate(pageURL); navErr != nil {
		return "", categorizeNavError(navErr)
	}

	r.waitProductContent(ctx, p)

	rawHTML, htmlErr := p.HTML()
	if htmlErr != nil {
		return "", categorizeNavError(htmlErr)
	}
	return rawHTML, nil
}

// waitProductContent polls for the first product selector hit, giving up
// after the settle delay. Cheaper and more reliable on marketplace pages
// than network-idle waits, which their trackers never satisfy.
func (r *RodSource) waitProductContent(ctx context.Context, p *rod.Page) {
	deadline := time.Now().Add(r.cfg.SettleDelay)
	for time.Now().Before(deadline) {
		for _, sel := range productSelectors {
			if has, _, err := p.Has(sel); err == nil && has {
				return
			}
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(200 * time.Millisecond):
		}
	}
}

// Close drains the page pool and kills the browser process. Call this on
// graceful shutdown to prevent zombie Chrome processes.
func (r *RodSource) Close() {
	slog.Info("browser source shutting down: draining page pool")
	r.pool.Cleanup(func(p *rod.Page) {
		_ = p.Close()
	})
	r.browser.MustClose()
	slog.Info("browser source shutdown complete")
}

// categorizeNavError wraps raw rod errors into typed errors so the API layer
// can map them to appropriate HTTP status codes.
func categorizeNavError(err error) *models.AnalyzeError {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewAnalyzeError(models.ErrCodeFetchTimeout, "page render timed out", err)
	case errors.Is(err, context.Canceled):
		return models.NewAnalyzeError(models.ErrCodeFetchTimeout, "request canceled", err)
	default:
		return models.NewAnalyzeError(models.ErrCodeFetchFailed, "page render failed", err)
	}
}
