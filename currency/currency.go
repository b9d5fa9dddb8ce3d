// Package currency converts extracted price signals into the Yemeni Rial
// contract string plus a multi-currency view, using live-refreshed rates
// with static fallbacks.
package currency

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/ysmood/gson"
)

// staticYERRates are the fallback rate-to-YER table used when the live
// source has no entry for a currency. The USD rate is overridable at
// construction (env YER_PER_USD).
var staticYERRates = map[string]float64{
	"USD": 250.0,
	"EUR": 270.0,
	"SAR": 66.7,
	"AED": 68.0,
	"KWD": 820.0,
	"QAR": 68.7,
	"OMR": 650.0,
	"BHD": 663.0,
	"PKR": 0.87,
}

// Converter maintains a currency-code → rate-to-YER mapping, refreshed from
// an external source at most once per interval. It is safe for concurrent
// use.
type Converter struct {
	mu         sync.Mutex
	rates      map[string]float64 // code -> units of YER per 1 unit
	lastUpdate time.Time
	interval   time.Duration
	rateURL    string
	yerPerUSD  float64
	client     *http.Client
}

// New creates a Converter. yerPerUSD overrides the static USD fallback.
func New(rateURL string, interval time.Duration, yerPerUSD float64) *Converter {
	if yerPerUSD <= 0 {
		yerPerUSD = staticYERRates["USD"]
	}
	return &Converter{
		rates:     map[string]float64{},
		interval:  interval,
		rateURL:   rateURL,
		yerPerUSD: yerPerUSD,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

// EnsureFresh refreshes the rate table when it is stale. A refresh failure
// keeps the last known mapping and is logged, never surfaced.
func (c *Converter) EnsureFresh(ctx context.Context) {
	c.mu.Lock()
	stale := c.lastUpdate.IsZero() || time.Since(c.lastUpdate) > c.interval
	c.mu.Unlock()
	if !stale {
		return
	}
	if err := c.refresh(ctx); err != nil {
		slog.Warn("exchange rate refresh failed, keeping last known rates", "error", err)
	}
}

// refresh fetches the USD-based rate table and rebases it to YER.
func (c *Converter) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.rateURL, nil)
	if err != nil {
		return fmt.Errorf("currency: build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("currency: fetch rates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("currency: rate source returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("currency: read rates: %w", err)
	}

	usdRates := gson.NewFrom(string(body)).Get("rates")
	if usdRates.Nil() {
		return fmt.Errorf("currency: rate payload missing rates object")
	}

	// The source publishes units-of-X per USD. Rebase: 1 X = yerPerUSD/rate YER.
	yerPerUSD := c.yerPerUSD
	if r := usdRates.Get("YER"); !r.Nil() && r.Num() > 0 {
		yerPerUSD = r.Num()
	}

	fresh := map[string]float64{"USD": yerPerUSD, "YER": 1}
	for code, val := range usdRates.Map() {
		rate := val.Num()
		if rate <= 0 {
			continue
		}
		fresh[strings.ToUpper(code)] = yerPerUSD / rate
	}

	c.mu.Lock()
	c.rates = fresh
	c.lastUpdate = time.Now()
	c.mu.Unlock()
	return nil
}

// rateToYER returns YER per one unit of code, falling back to the static
// table and finally to 1.0 for unknown codes.
func (c *Converter) rateToYER(code string) float64 {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		code = "USD"
	}
	c.mu.Lock()
	r, ok := c.rates[code]
	c.mu.Unlock()
	if ok && r > 0 {
		return r
	}
	if code == "USD" {
		return c.yerPerUSD
	}
	if r, ok := staticYERRates[code]; ok {
		return r
	}
	return 1.0
}

// ToYER converts a positive amount in the given currency to YER. Conversion
// from YER to itself is the identity. The result is always positive and
// finite for a positive input.
func (c *Converter) ToYER(amount float64, from string) float64 {
	if strings.ToUpper(strings.TrimSpace(from)) == "YER" {
		return amount
	}
	return amount * c.rateToYER(from)
}

// YERString formats an amount as the contract price string. A missing or
// non-positive amount yields the empty string, never "0.00".
func (c *Converter) YERString(amount float64, from string) string {
	if amount <= 0 {
		return ""
	}
	return fmt.Sprintf("%.2f", c.ToYER(amount, from))
}

// MultiCurrency is the USD/SAR/AED/YER view of a source amount.
type MultiCurrency struct {
	USD float64
	SAR float64
	AED float64
	YER float64
}

// ToMulti converts an amount into the multi-currency view. Pegged Gulf
// rates are fixed (1 USD = 3.75 SAR = 3.67 AED).
func (c *Converter) ToMulti(amount float64, from string) MultiCurrency {
	usd := amount * c.rateToYER(from) / c.rateToYER("USD")
	return MultiCurrency{
		USD: round2(usd),
		SAR: round2(usd * 3.75),
		AED: round2(usd * 3.67),
		YER: round2(c.ToYER(amount, from)),
	}
}

func round2(f float64) float64 {
	return float64(int64(f*100+0.5)) / 100
}

// --- free-text price parsing ---

var currencyMarkers = []struct {
	re   *regexp.Regexp
	code string
}{
	{regexp.MustCompile(`(?i)\$|USD|دولار`), "USD"},
	{regexp.MustCompile(`(?i)€|EUR|يورو`), "EUR"},
	{regexp.MustCompile(`(?i)ر\.ي|يمني|YER`), "YER"},
	{regexp.MustCompile(`(?i)ر\.س|سعودي|SAR`), "SAR"},
	{regexp.MustCompile(`(?i)د\.إ|درهم|AED`), "AED"},
	{regexp.MustCompile(`(?i)د\.ك|كويتي|KWD`), "KWD"},
	{regexp.MustCompile(`(?i)ر\.ق|قطري|QAR`), "QAR"},
	{regexp.MustCompile(`(?i)ر\.ع|عماني|OMR`), "OMR"},
	{regexp.MustCompile(`(?i)د\.ب|بحريني|BHD`), "BHD"},
	{regexp.MustCompile(`(?i)₨|PKR|روبية|باكستاني`), "PKR"},
}

var numberRe = regexp.MustCompile(`\d[\d,\.]*`)

// arabicDigits maps Arabic-Indic digits to ASCII.
var arabicDigits = strings.NewReplacer(
	"٠", "0", "١", "1", "٢", "2", "٣", "3", "٤", "4",
	"٥", "5", "٦", "6", "٧", "7", "٨", "8", "٩", "9",
)

// ParseAmount extracts a numeric amount from a raw price token, normalizing
// Arabic-Indic digits and thousands separators. Returns false for anything
// that does not parse to a positive number.
func ParseAmount(raw string) (float64, bool) {
	s := arabicDigits.Replace(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, false
	}
	return f, true
}

// ParsePriceText extracts (amount, currency) from free text such as an OCR
// dump or a shopping result snippet. Currency defaults to USD when no marker
// matches; returns ok=false when no number is found.
func ParsePriceText(text string) (amount float64, code string, ok bool) {
	code = "USD"
	if text == "" {
		return 0, code, false
	}
	for _, m := range currencyMarkers {
		if m.re.MatchString(text) {
			code = m.code
			break
		}
	}
	num := numberRe.FindString(arabicDigits.Replace(text))
	if num == "" {
		return 0, code, false
	}
	amount, ok = ParseAmount(num)
	return amount, code, ok
}
