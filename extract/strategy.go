package extract

import "log/slog"

// Strategy is one extraction technique. Extract never fails: a strategy
// that finds nothing returns a zero Record.
type Strategy interface {
	Name() string
	Extract(html, pageURL string) Record
}

// Pipeline runs strategies in priority order and merges their output. The
// generic numeric scan only runs when no earlier strategy produced a
// currency-bearing price, since bare numbers are too easy to misread.
type Pipeline struct {
	strategies []Strategy
	generic    Strategy
}

// NewPipeline builds the standard pipeline.
func NewPipeline() *Pipeline {
	return &Pipeline{
		strategies: []Strategy{
			jsonLDStrategy{},
			NewVendorRegistry(),
			metaStrategy{},
			inlineScriptStrategy{},
			siteRegexStrategy{},
			domProbeStrategy{},
		},
		generic: genericRegexStrategy{},
	}
}

// Run executes the pipeline over one page.
func (p *Pipeline) Run(html, pageURL string) Record {
	var merged Record
	for _, s := range p.strategies {
		rec := s.Extract(html, pageURL)
		if rec.Empty() {
			continue
		}
		slog.Debug("strategy hit", "strategy", s.Name(),
			"title", rec.Title != "", "price", rec.Price != nil,
			"images", len(rec.Images))
		merged = Merge(merged, rec)
	}
	if merged.Price == nil {
		if rec := p.generic.Extract(html, pageURL); rec.Price != nil {
			merged = Merge(merged, rec)
		}
	}
	merged.Title = CleanTitle(merged.Title)
	merged.Images = RankImages(NormalizeImages(merged.Images))
	merged.Features = CleanFeatures(merged.Features)
	return merged
}
