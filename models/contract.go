package models

// UnknownProductName is the degraded sentinel used when no strategy or
// vision signal produced a usable product name.
const UnknownProductName = "منتج غير محدد"

// PlaceholderImageURL is the last-resort image used to keep the non-empty
// image list guarantee.
const PlaceholderImageURL = "https://via.placeholder.com/600x600.png?text=Product+Image"

// PriceObject is the structured price attached to a contract. It is only
// present when a real price signal was found; an absent price is nil, never
// a zero amount.
type PriceObject struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
	Source   string  `json:"source"`

	// Multi-currency view, derived from the source amount.
	USD float64 `json:"usd,omitempty"`
	SAR float64 `json:"sar,omitempty"`
	AED float64 `json:"aed,omitempty"`
	YER float64 `json:"yer,omitempty"`
}

// Categories is the localized category block of the full contract.
type Categories struct {
	Main  string   `json:"الفئة_الرئيسية"`
	Sub   string   `json:"الفئة_الفرعية"`
	Trail []string `json:"التسلسل"`
}

// PartialContract is the fast-path response: name, price in YER and at
// least one image. Field names follow the Arabic client contract.
type PartialContract struct {
	ProductName string       `json:"اسم_المنتج"`
	PriceYER    string       `json:"السعر_بالريال_اليمني"`
	ImageURLs   []string     `json:"روابط_الصور"`
	Price       *PriceObject `json:"السعر"`
	Features    []string     `json:"المزايا"`
}

// FullContract is the complete enrichment response. Every field is present
// even when empty; ImageURLs always has at least one entry.
type FullContract struct {
	ProductName    string            `json:"اسم_المنتج"`
	Description    string            `json:"الوصف"`
	ImageURLs      []string          `json:"روابط_الصور"`
	VideoURL       *string           `json:"رابط_الفيديو"`
	Components     []string          `json:"المكونات"`
	PriceYER       string            `json:"السعر_بالريال_اليمني"`
	Price          *PriceObject      `json:"السعر"`
	Specifications map[string]string `json:"المواصفات"`
	Variants       []map[string]any  `json:"المتغيرات"`
	SearchKeywords []string          `json:"كلمات_البحث"`
	Categories     Categories        `json:"الفئات"`
	Features       []string          `json:"المزايا"`
}

// ScrapeFailed is the typed degraded result returned when a vendor URL was
// supplied but extraction produced no usable product data. URL-hint requests
// are never silently blended with inferred data.
type ScrapeFailed struct {
	Status    string `json:"status"` // always "scrape_failed"
	Reason    string `json:"reason"`
	RequestID string `json:"request_id"`
	URL       string `json:"url"`
	Message   string `json:"message,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status         string `json:"status"`
	Version        string `json:"version"`
	Uptime         string `json:"uptime"`
	CacheSize      int    `json:"cache_size"`
	BrowserEnabled bool   `json:"browser_enabled"`
}
