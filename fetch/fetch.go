// Package fetch retrieves vendor pages under one of two budgets: a quick
// truncated fetch tuned for <head> metadata, and a full fetch served by a
// PageSource selected once at startup (rendered browser or static HTTP).
package fetch

import (
	"context"
	"net/url"
	"strings"
)

// Tier identifies the retrieval budget a Result was produced under.
type Tier string

const (
	// TierQuick is the truncated, sub-second fetch.
	TierQuick Tier = "quick"

	// TierFull is the complete-page fetch.
	TierFull Tier = "full"
)

// Result is the outcome of a fetch. It is immutable and discarded after
// extraction.
type Result struct {
	// HTML is the page content, possibly truncated on the quick tier.
	HTML string

	// Title is the raw document <title>, tokenized on the quick tier even
	// when truncation cut the body before the parser-friendly close tags.
	Title string

	// Tier records which budget produced the content.
	Tier Tier

	// SourceURL is the fetched URL (before any regional retry rewrite).
	SourceURL string

	// Truncated is true when the quick-tier byte budget cut the body off.
	Truncated bool
}

// PageSource retrieves the full HTML of a page. Two implementations exist:
// RodSource renders JavaScript in a headless browser, StaticSource performs
// a plain retrieval. The choice is made once at startup, never per request.
type PageSource interface {
	// Name identifies the source ("browser" or "static").
	Name() string

	// Fetch returns the final page HTML. Context expiry must surface as
	// the context error, never a hang.
	Fetch(ctx context.Context, pageURL string) (string, error)
}

const chromeUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// aliExpressCookie forces the glo site, English locale and USD pricing so
// extracted prices are comparable across requests.
const aliExpressCookie = "aep_usuc_f=site=glo&b_locale=en_US&c_tp=USD&region=US"

// isAliExpress reports whether the URL belongs to the AliExpress family,
// which needs larger byte budgets and locale cookies.
func isAliExpress(pageURL string) bool {
	return strings.Contains(strings.ToLower(pageURL), "aliexpress")
}

func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}
