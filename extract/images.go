package extract

import (
	"sort"
	"strings"
)

// NormalizeImages drops data URIs, relative paths, and blanks, keeping at
// most the image cap.
func NormalizeImages(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || strings.HasPrefix(u, "data:") {
			continue
		}
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			continue
		}
		out = append(out, u)
		if len(out) == maxImages {
			break
		}
	}
	return out
}

// RankImages orders URLs so likely hi-res product shots come first, with
// thumbnails and sprite sheets last. Ties keep lexical order so ranking is
// stable across runs.
func RankImages(urls []string) []string {
	if len(urls) == 0 {
		return urls
	}
	type scored struct {
		score int
		url   string
	}
	scores := make([]scored, 0, len(urls))
	seen := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		s := 0
		if strings.Contains(u, "1000") || strings.Contains(u, "1200") ||
			strings.Contains(u, "1500") || strings.Contains(u, "2000") {
			s += 2
		}
		if strings.Contains(u, "_SL1500_") || strings.Contains(u, "_SL1200_") {
			s += 3
		}
		if strings.Contains(u, "._") && strings.Contains(u, "_SX") {
			s--
		}
		if strings.Contains(u, "sprite") || strings.Contains(u, "thumb") {
			s -= 2
		}
		scores = append(scores, scored{s, u})
	}
	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].url < scores[j].url
	})
	out := make([]string, 0, len(scores))
	for _, sc := range scores {
		out = append(out, sc.url)
		if len(out) == maxImages {
			break
		}
	}
	return out
}
