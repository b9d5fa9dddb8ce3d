// Package extract turns fetched product-page HTML into a structured record
// by running a fixed priority order of extraction strategies and merging
// their results.
package extract

// PriceSignal is one extracted price with provenance. Source names which
// strategy produced it.
type PriceSignal struct {
	Amount   float64
	Currency string
	Source   string
}

// Record is the merged output of the extraction pipeline. Zero values mean
// the field was not found.
type Record struct {
	Title       string
	Price       *PriceSignal
	Images      []string
	Video       string
	Specs       map[string]string
	Features    []string
	Breadcrumbs []string
}

// Empty reports whether the record carries no signal at all.
func (r Record) Empty() bool {
	return r.Title == "" && r.Price == nil && len(r.Images) == 0 &&
		r.Video == "" && len(r.Specs) == 0 && len(r.Features) == 0 &&
		len(r.Breadcrumbs) == 0
}

const maxImages = 8

// Merge folds src into dst. Scalar fields keep the first non-empty value
// seen, so earlier (higher priority) strategies win. Images accumulate
// across strategies, deduplicated in arrival order and capped.
func Merge(dst, src Record) Record {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Price == nil {
		dst.Price = src.Price
	}
	if dst.Video == "" {
		dst.Video = src.Video
	}
	if len(dst.Breadcrumbs) == 0 {
		dst.Breadcrumbs = src.Breadcrumbs
	}
	if len(dst.Features) == 0 {
		dst.Features = src.Features
	}
	if len(dst.Specs) == 0 {
		dst.Specs = src.Specs
	} else {
		for k, v := range src.Specs {
			if _, ok := dst.Specs[k]; !ok {
				dst.Specs[k] = v
			}
		}
	}
	dst.Images = appendImages(dst.Images, src.Images)
	return dst
}

func appendImages(have, add []string) []string {
	seen := make(map[string]struct{}, len(have))
	for _, u := range have {
		seen[u] = struct{}{}
	}
	for _, u := range add {
		if len(have) >= maxImages {
			break
		}
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		have = append(have, u)
	}
	return have
}
