// Package cite locates evidentiary excerpts supporting an extracted value
// within a document's text segments.
package cite

import (
	"sort"
	"strings"

	"github.com/sells-group/docreview/internal/model"
)

// DefaultMaxResults is the default citation cap per extraction.
const DefaultMaxResults = model.MaxCitations

// Locate ranks segments by relevance to the extracted value and returns
// the top maxResults as citations, best first. Relevance is 1.0 on
// case-insensitive substring containment, otherwise Jaccard similarity of
// whitespace token sets. Segments with zero relevance are discarded; an
// empty value yields zero citations. Output order is deterministic: ties
// break by ascending segment index.
func Locate(value string, segments []model.TextSegment, maxResults int) []model.Citation {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	value = strings.TrimSpace(value)
	if value == "" || len(segments) == 0 {
		return nil
	}

	valueLower := strings.ToLower(value)
	valueTokens := tokenSet(valueLower)

	scored := make([]model.Citation, 0, len(segments))
	for _, seg := range segments {
		segLower := strings.ToLower(seg.Text)

		var relevance float64
		if strings.Contains(segLower, valueLower) {
			relevance = 1.0
		} else {
			relevance = jaccard(valueTokens, tokenSet(segLower))
		}
		if relevance <= 0 {
			continue
		}

		scored = append(scored, model.Citation{
			CitationText:   truncate(seg.Text, model.MaxCitationLength),
			RelevanceScore: relevance,
			PageNumber:     seg.PageNumber,
			SectionTitle:   seg.SectionTitle,
			SegmentIndex:   seg.Index,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		return scored[i].SegmentIndex < scored[j].SegmentIndex
	})

	if len(scored) > maxResults {
		scored = scored[:maxResults]
	}
	return scored
}

func tokenSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		set[tok] = true
	}
	return set
}

// jaccard computes |A∩B| / |A∪B| over token sets.
func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for tok := range a {
		if b[tok] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
