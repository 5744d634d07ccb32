package cite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docreview/internal/model"
)

func segs(texts ...string) []model.TextSegment {
	out := make([]model.TextSegment, len(texts))
	for i, t := range texts {
		out[i] = model.TextSegment{Text: t, Index: i, PageNumber: i + 1}
	}
	return out
}

func TestLocate_VerbatimContainmentScoresOne(t *testing.T) {
	segments := segs(
		"The purchase price is $50,000 payable at closing.",
		"Unrelated boilerplate about notices.",
	)
	cits := Locate("$50,000", segments, 3)
	require.Len(t, cits, 1)
	assert.Equal(t, 1.0, cits[0].RelevanceScore)
	assert.Equal(t, 0, cits[0].SegmentIndex)
	assert.Equal(t, 1, cits[0].PageNumber)
}

func TestLocate_CaseInsensitive(t *testing.T) {
	cits := Locate("ACME CORP", segs("This agreement is made by Acme Corp of Delaware."), 3)
	require.Len(t, cits, 1)
	assert.Equal(t, 1.0, cits[0].RelevanceScore)
}

func TestLocate_JaccardFallback(t *testing.T) {
	cits := Locate("effective date January 2024", segs("the effective date of this lease is March 2024"), 3)
	require.Len(t, cits, 1)
	assert.Greater(t, cits[0].RelevanceScore, 0.0)
	assert.Less(t, cits[0].RelevanceScore, 1.0)
}

func TestLocate_EmptyValueYieldsNoCitations(t *testing.T) {
	assert.Empty(t, Locate("", segs("some text"), 3))
	assert.Empty(t, Locate("   ", segs("some text"), 3))
}

func TestLocate_DiscardsZeroRelevance(t *testing.T) {
	cits := Locate("zebra quantum", segs("completely unrelated legal text"), 3)
	assert.Empty(t, cits)
}

func TestLocate_CapsResultsAndOrdersByRelevance(t *testing.T) {
	segments := segs(
		"governing law of Delaware applies",         // partial overlap
		"the governing law is the law of Delaware",  // contains-ish overlap
		"governing law: Delaware",                   // verbatim
		"law firm retained for the Delaware matter", // partial
		"noise with zero overlap whatsoever",
	)
	cits := Locate("governing law: Delaware", segments, 3)
	require.Len(t, cits, 3)
	for i := 1; i < len(cits); i++ {
		assert.GreaterOrEqual(t, cits[i-1].RelevanceScore, cits[i].RelevanceScore)
	}
	assert.Equal(t, 2, cits[0].SegmentIndex)
}

func TestLocate_TieBreaksBySegmentIndex(t *testing.T) {
	segments := segs(
		"payment due on the closing date",
		"payment due on the closing date",
	)
	cits := Locate("payment due on the closing date", segments, 2)
	require.Len(t, cits, 2)
	assert.Equal(t, 0, cits[0].SegmentIndex)
	assert.Equal(t, 1, cits[1].SegmentIndex)
}

func TestLocate_TruncatesCitationText(t *testing.T) {
	long := "indemnification " + strings.Repeat("x", 2*model.MaxCitationLength)
	cits := Locate("indemnification", segs(long), 1)
	require.Len(t, cits, 1)
	assert.Len(t, cits[0].CitationText, model.MaxCitationLength)
}

func TestLocate_DefaultMaxResults(t *testing.T) {
	segments := segs(
		"alpha beta", "alpha beta", "alpha beta", "alpha beta", "alpha beta",
	)
	cits := Locate("alpha beta", segments, 0)
	assert.Len(t, cits, DefaultMaxResults)
}
