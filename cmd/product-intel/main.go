package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MBGrao/ecommerce-product-intelligence-api/analyzer"
	"github.com/MBGrao/ecommerce-product-intelligence-api/api"
	"github.com/MBGrao/ecommerce-product-intelligence-api/cache"
	"github.com/MBGrao/ecommerce-product-intelligence-api/config"
	"github.com/MBGrao/ecommerce-product-intelligence-api/contract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/currency"
	"github.com/MBGrao/ecommerce-product-intelligence-api/extract"
	"github.com/MBGrao/ecommerce-product-intelligence-api/fetch"
	"github.com/MBGrao/ecommerce-product-intelligence-api/safeurl"
	"github.com/MBGrao/ecommerce-product-intelligence-api/search"
	"github.com/MBGrao/ecommerce-product-intelligence-api/vision"
	"github.com/MBGrao/ecommerce-product-intelligence-api/webhook"
)

func main() {
	// ── 1. Load configuration ───────────────────────────────────────
	cfg := config.Load()

	// ── 2. Initialise structured logging ────────────────────────────
	initLogger(cfg.Log)
	slog.Info("product-intel starting",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"mode", cfg.Server.Mode,
		"browser", cfg.Browser.Enabled,
	)

	// ── 3. Select page source ───────────────────────────────────────
	// The rendered source launches Chrome once at startup; the static
	// source needs no process. Selection is a deployment decision, not
	// a per-request one.
	var source fetch.PageSource
	if cfg.Browser.Enabled {
		rod, err := fetch.NewRodSource(cfg.Browser)
		if err != nil {
			slog.Error("failed to launch browser", "error", err)
			os.Exit(1)
		}
		defer rod.Close()
		source = rod
	} else {
		source = fetch.NewStaticSource(cfg.Fetch)
	}

	// ── 4. Assemble the analysis stack ──────────────────────────────
	validator := safeurl.New()
	quick := fetch.NewQuickFetcher(cfg.Fetch)
	pipeline := extract.NewPipeline()
	cc := cache.New(cfg.Cache.Capacity, cfg.Cache.TTL)
	conv := currency.New(cfg.Currency.RateURL, cfg.Currency.RefreshInterval, cfg.Currency.YERPerUSD)
	visionClient := vision.NewClient(cfg.Vision)
	searcher := search.New(source, cfg.Fetch.AllowedDomains)
	assembler := contract.NewAssembler(conv)
	notifier := webhook.NewNotifier(cfg.Webhook)

	// Warm the exchange rates before the first request; a failure here is
	// fine, the static fallback table covers it.
	func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		conv.EnsureFresh(ctx)
	}()

	a := analyzer.New(cfg.Analyze, cfg.Fetch, analyzer.Deps{
		Validator: validator,
		Quick:     quick,
		Source:    source,
		Pipeline:  pipeline,
		Cache:     cc,
		Converter: conv,
		Vision:    visionClient,
		Searcher:  searcher,
		Assembler: assembler,
		Notifier:  notifier,
	})

	// ── 5. Setup router ─────────────────────────────────────────────
	startTime := time.Now()
	router := api.NewRouter(a, cfg, cc, startTime)

	// ── 6. Start HTTP server ────────────────────────────────────────
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		slog.Info("HTTP server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// ── 7. Graceful shutdown ────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	slog.Info("shutdown signal received", "signal", sig.String())

	// Give in-flight requests 5 seconds to complete.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("HTTP server forced shutdown", "error", err)
	} else {
		slog.Info("HTTP server drained gracefully")
	}

	// rod.Close() runs via defer when the browser source is active.
	slog.Info("product-intel stopped")
}

// initLogger configures slog based on the LogConfig.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
