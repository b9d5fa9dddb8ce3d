package extract

import (
	"regexp"
	"strings"
)

var titleScrubs = []*regexp.Regexp{
	regexp.MustCompile(`(?i)Amazon\.[a-z\.]+:\s*`),
	regexp.MustCompile(`(?i)\s*\|\s*Buy.*$`),
	regexp.MustCompile(`(?i)\s*–\s*[\w\s]+?Store.*$`),
	regexp.MustCompile(`(?i)\s*[\|\-–]\s*(?:eBay|AliExpress|Noon|Daraz|Amazon).*?$`),
}

var multiSpaceRe = regexp.MustCompile(`\s{2,}`)

// CleanTitle strips storefront branding and trailing marketing boilerplate
// from a page title.
func CleanTitle(raw string) string {
	t := strings.TrimSpace(raw)
	if t == "" {
		return ""
	}
	for _, re := range titleScrubs {
		t = re.ReplaceAllString(t, "")
	}
	t = multiSpaceRe.ReplaceAllString(t, " ")
	return strings.TrimSpace(t)
}
