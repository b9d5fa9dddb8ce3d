package extract

import "strings"

// junkFeatures are label-style terms too vague to present as product
// selling points.
var junkFeatures = map[string]struct{}{
	"advertising": {}, "publication": {}, "background": {},
	"wallpaper": {}, "font": {}, "brand": {}, "product": {},
}

const maxFeatures = 6

// CleanFeatures dedupes case-insensitively, drops junk terms, and caps the
// list.
func CleanFeatures(features []string) []string {
	out := make([]string, 0, len(features))
	seen := make(map[string]struct{}, len(features))
	for _, f := range features {
		s := strings.TrimSpace(f)
		key := strings.ToLower(s)
		if s == "" {
			continue
		}
		if _, junk := junkFeatures[key]; junk {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
		if len(out) == maxFeatures {
			break
		}
	}
	return out
}
