package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Fetch     FetchConfig
	Browser   BrowserConfig
	Analyze   AnalyzeConfig
	Cache     CacheConfig
	Currency  CurrencyConfig
	Vision    VisionConfig
	Webhook   WebhookConfig
	Crop      CropConfig
	Log       LogConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// APIKeys is the list of valid X-API-Key values. Empty disables auth.
	APIKeys []string
}

// RateLimitConfig controls per-identity rate limiting.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained rate per API key or IP.
	RequestsPerSecond float64 // default: 5

	// Burst is the maximum burst size per identity.
	Burst int // default: 10
}

// FetchConfig controls the tiered page fetcher.
type FetchConfig struct {
	// QuickMaxBytes is the truncation budget for a quick-tier fetch.
	QuickMaxBytes int // default: 160 KB

	// QuickMarketplaceMaxBytes is the larger budget used for known
	// JS-heavy marketplaces whose embedded product state alone exceeds
	// the default budget.
	QuickMarketplaceMaxBytes int // default: 1 MB

	// QuickConnectTimeout is the dial deadline for a quick fetch.
	QuickConnectTimeout time.Duration // default: 150ms

	// QuickReadTimeout is the read deadline for a quick fetch.
	QuickReadTimeout time.Duration // default: 120ms

	// FullTimeout is the deadline for a full-tier fetch.
	FullTimeout time.Duration // default: 12s

	// RetryDelays is the staged delay schedule for full-tier refetches
	// when the first response fails the product-data heuristic.
	RetryDelays []time.Duration // default: [0s, 2s, 5s]

	// AllowedDomains is the vendor allowlist for scraping targets.
	// Subdomains of each entry are allowed too.
	AllowedDomains []string

	// MaxImageBytes caps a downloaded input image.
	MaxImageBytes int64 // default: 5 MB
}

// BrowserConfig controls the rod-based rendered page source.
type BrowserConfig struct {
	// Enabled selects the rendered page source at startup. When false the
	// static HTTP page source serves full-tier fetches.
	Enabled bool // default: false

	// Headless controls whether the browser runs headless.
	Headless bool // default: true

	// MaxPages is the page pool capacity (max concurrent tabs).
	MaxPages int // default: 3

	// NoSandbox disables Chrome's sandbox (needed in Docker).
	NoSandbox bool // default: false

	// BrowserBin overrides the Chromium binary path.
	BrowserBin string

	// SettleDelay is the fixed wait after navigation when no product
	// indicator selector appears.
	SettleDelay time.Duration // default: 2s
}

// AnalyzeConfig controls orchestrator budgets and fallback toggles.
type AnalyzeConfig struct {
	// HardTimeout is the overall budget for a full analysis request.
	HardTimeout time.Duration // default: 12s

	// PartialTimeout is the budget for the partial fast path.
	PartialTimeout time.Duration // default: 600ms

	// UseSimilarImages allows visually-similar vision images to top up
	// the image list when the vendor page had none.
	UseSimilarImages bool // default: true

	// UseShoppingSearch enables the secondary-source lookup.
	UseShoppingSearch bool // default: true
}

// CacheConfig controls the fingerprint cache.
type CacheConfig struct {
	// Capacity is the maximum number of cached entries.
	Capacity int // default: 1000

	// TTL is the per-entry time to live.
	TTL time.Duration // default: 24h
}

// CurrencyConfig controls the currency normalizer.
type CurrencyConfig struct {
	// RateURL is the live exchange-rate source (base USD).
	RateURL string // default: exchangerate-api v4 latest/USD

	// RefreshInterval is the minimum time between rate refreshes.
	RefreshInterval time.Duration // default: 1h

	// YERPerUSD is the static fallback rate to the target currency.
	YERPerUSD float64 // default: 250.0
}

// VisionConfig controls the external image-understanding client.
type VisionConfig struct {
	// APIKey authenticates against the annotate endpoint. Empty disables
	// vision calls; the orchestrator degrades accordingly.
	APIKey string

	// Endpoint is the annotate URL.
	Endpoint string // default: Google Vision images:annotate

	// Timeout is the per-call deadline.
	Timeout time.Duration // default: 6s
}

// WebhookConfig controls result delivery to external sinks.
type WebhookConfig struct {
	// PartialURL receives partial contracts. Empty disables delivery.
	PartialURL string

	// FullURL receives full contracts. Empty disables delivery.
	FullURL string

	// APIKey is sent as bearer token and apikey header (Supabase style).
	APIKey string
}

// CropConfig controls the server-side crop endpoint.
type CropConfig struct {
	// Enabled gates POST /crop.
	Enabled bool // default: false
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// defaultAllowedDomains is the vendor set the service is willing to scrape.
var defaultAllowedDomains = []string{
	"aliexpress.com", "amazon.com", "amazon.ae", "amazon.sa",
	"amazon.co.uk", "amazon.de", "amazon.fr", "noon.com", "souq.com",
	"jumia.com", "daraz.com", "ebay.com", "etsy.com",
	"shopify.com", "woocommerce.com",
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host: envOr("PI_HOST", "0.0.0.0"),
			Port: envIntOr("PI_PORT", 8080),
			Mode: envOr("PI_MODE", "release"),
		},
		Auth: AuthConfig{
			APIKeys: envSliceOr("API_KEY", nil),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: envFloatOr("PI_RATE_RPS", 5.0),
			Burst:             envIntOr("PI_RATE_BURST", 10),
		},
		Fetch: FetchConfig{
			QuickMaxBytes:            envIntOr("QUICK_HTML_MAX_BYTES", 160*1024),
			QuickMarketplaceMaxBytes: envIntOr("QUICK_MARKETPLACE_MAX_BYTES", 1024*1024),
			QuickConnectTimeout:      envDurationOr("QUICK_CONNECT_TIMEOUT", 150*time.Millisecond),
			QuickReadTimeout:         envDurationOr("QUICK_READ_TIMEOUT", 120*time.Millisecond),
			FullTimeout:              envDurationOr("FULL_FETCH_TIMEOUT", 12*time.Second),
			RetryDelays:              envDurationSliceOr("FULL_RETRY_DELAYS", []time.Duration{0, 2 * time.Second, 5 * time.Second}),
			AllowedDomains:           envSliceOr("ALLOWED_SCRAPING_DOMAINS", defaultAllowedDomains),
			MaxImageBytes:            int64(envIntOr("MAX_IMAGE_BYTES", 5*1024*1024)),
		},
		Browser: BrowserConfig{
			Enabled:     envBoolOr("ENABLE_BROWSER", false),
			Headless:    envBoolOr("PI_HEADLESS", true),
			MaxPages:    envIntOr("PI_MAX_PAGES", 3),
			NoSandbox:   envBoolOr("PI_NO_SANDBOX", false),
			BrowserBin:  os.Getenv("PI_BROWSER_BIN"),
			SettleDelay: envDurationOr("PI_BROWSER_SETTLE", 2*time.Second),
		},
		Analyze: AnalyzeConfig{
			HardTimeout:       envDurationOr("REQUEST_HARD_TIMEOUT", 12*time.Second),
			PartialTimeout:    envDurationOr("PARTIAL_TIMEOUT", 600*time.Millisecond),
			UseSimilarImages:  envBoolOr("USE_VISION_SIMILAR_IMAGES", true),
			UseShoppingSearch: envBoolOr("USE_SHOPPING_SEARCH", true),
		},
		Cache: CacheConfig{
			Capacity: envIntOr("CACHE_CAPACITY", 1000),
			TTL:      envDurationOr("CACHE_TTL", 24*time.Hour),
		},
		Currency: CurrencyConfig{
			RateURL:         envOr("EXCHANGE_RATE_URL", "https://api.exchangerate-api.com/v4/latest/USD"),
			RefreshInterval: envDurationOr("EXCHANGE_REFRESH_INTERVAL", time.Hour),
			YERPerUSD:       envFloatOr("YER_PER_USD", 250.0),
		},
		Vision: VisionConfig{
			APIKey:   os.Getenv("GOOGLE_API_KEY"),
			Endpoint: envOr("VISION_ENDPOINT", "https://vision.googleapis.com/v1/images:annotate"),
			Timeout:  envDurationOr("VISION_TIMEOUT", 6*time.Second),
		},
		Webhook: WebhookConfig{
			PartialURL: os.Getenv("SUPABASE_PARTIAL_WEBHOOK"),
			FullURL:    os.Getenv("SUPABASE_FULL_WEBHOOK"),
			APIKey:     os.Getenv("SUPABASE_API_KEY"),
		},
		Crop: CropConfig{
			Enabled: envBoolOr("ENABLE_SERVER_CROP", false),
		},
		Log: LogConfig{
			Level:  envOr("PI_LOG_LEVEL", "info"),
			Format: envOr("PI_LOG_FORMAT", "json"),
		},
	}
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envFloatOr(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}

func envDurationSliceOr(key string, fallback []time.Duration) []time.Duration {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]time.Duration, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				if d, err := time.ParseDuration(trimmed); err == nil {
					result = append(result, d)
				}
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
