package vision

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/MBGrao/ecommerce-product-intelligence-api/models"
)

type annotation struct {
	Description string `json:"description"`
}

type webEntity struct {
	Description string `json:"description"`
}

type webImage struct {
	URL string `json:"url"`
}

type bestGuess struct {
	Label string `json:"label"`
}

type annotateResponse struct {
	LabelAnnotations   []annotation `json:"labelAnnotations"`
	FullTextAnnotation struct {
		Text string `json:"text"`
	} `json:"fullTextAnnotation"`
	WebDetection struct {
		WebEntities           []webEntity `json:"webEntities"`
		VisuallySimilarImages []webImage  `json:"visuallySimilarImages"`
		BestGuessLabels       []bestGuess `json:"bestGuessLabels"`
	} `json:"webDetection"`
}

type restWrapper struct {
	Responses []json.RawMessage `json:"responses"`
}

// Normalize accepts either a raw annotate response or the REST batch
// wrapper {"responses":[...]} and distills it to Signals. Pre-processed
// payloads supplied by callers arrive in either shape.
func Normalize(raw []byte) (Signals, error) {
	if len(raw) == 0 {
		return Signals{}, nil
	}

	var wrapper restWrapper
	if err := json.Unmarshal(raw, &wrapper); err == nil && len(wrapper.Responses) > 0 {
		raw = wrapper.Responses[0]
	}

	var resp annotateResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return Signals{}, models.NewAnalyzeError(models.ErrCodeUpstream,
			"vision: malformed annotation payload", err)
	}

	var s Signals
	for _, l := range resp.LabelAnnotations {
		if l.Description != "" {
			s.Labels = append(s.Labels, l.Description)
		}
	}
	s.Text = resp.FullTextAnnotation.Text
	for _, e := range resp.WebDetection.WebEntities {
		if e.Description != "" {
			s.Entities = append(s.Entities, e.Description)
		}
	}
	for _, i := range resp.WebDetection.VisuallySimilarImages {
		if i.URL != "" {
			s.SimilarImages = append(s.SimilarImages, i.URL)
		}
	}
	for _, b := range resp.WebDetection.BestGuessLabels {
		if b.Label != "" {
			s.BestGuesses = append(s.BestGuesses, b.Label)
		}
	}
	return s, nil
}

// genericNames are annotation values too vague to present as a product
// name.
var genericNames = map[string]struct{}{
	"personal care": {}, "packaging and labeling": {}, "black background": {},
	"product": {}, "electronics": {}, "appliance": {},
}

var nonWordRe = regexp.MustCompile(`^\W+$`)

const maxNameLen = 120

// PickName chooses the best product name: web best guesses first, then
// entities, then labels, then the first substantial OCR line. Falls back to
// the unknown-product sentinel.
func PickName(s Signals) string {
	for _, source := range [][]string{s.BestGuesses, s.Entities, s.Labels} {
		for _, cand := range source {
			name := strings.TrimSpace(cand)
			if name == "" || nonWordRe.MatchString(name) {
				continue
			}
			if _, generic := genericNames[strings.ToLower(name)]; generic {
				continue
			}
			return truncate(name, maxNameLen)
		}
	}
	for _, line := range strings.Split(s.Text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) >= 3 && !nonWordRe.MatchString(line) {
			return truncate(line, maxNameLen)
		}
	}
	return models.UnknownProductName
}

const maxKeywords = 16

// Keywords merges entities and labels, deduplicating case-insensitively.
func Keywords(s Signals) []string {
	out := make([]string, 0, maxKeywords)
	seen := make(map[string]struct{})
	for _, w := range append(append([]string{}, s.Entities...), s.Labels...) {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		key := strings.ToLower(w)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, w)
		if len(out) == maxKeywords {
			break
		}
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
