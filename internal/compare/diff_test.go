package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docreview/internal/model"
)

func diffTable(field string, cells map[string]model.DocumentCell) *model.ComparisonTable {
	var docIDs []string
	for _, id := range []string{"doc-1", "doc-2", "doc-3", "doc-4"} {
		if _, ok := cells[id]; ok {
			docIDs = append(docIDs, id)
		}
	}
	return &model.ComparisonTable{
		ProjectID:   "proj-1",
		DocumentIDs: docIDs,
		Rows: []model.ComparisonRow{
			{FieldName: field, FieldType: model.FieldTypeText, DocumentResults: cells},
		},
	}
}

func foundCell(value, normalized string) model.DocumentCell {
	return model.DocumentCell{Value: value, NormalizedValue: normalized, Status: model.StatusExtracted}
}

func TestDiffUnanimous(t *testing.T) {
	table := diffTable("governing_law", map[string]model.DocumentCell{
		"doc-1": foundCell("Delaware", ""),
		"doc-2": foundCell("delaware", ""),
		"doc-3": foundCell(" Delaware ", ""),
	})

	reports := Diff(table)
	require.Len(t, reports, 1)
	r := reports[0]

	assert.True(t, r.IsUnanimous)
	assert.Equal(t, 1, r.UniqueValues)
	assert.Equal(t, 3, r.TotalDocuments)
	assert.Equal(t, 3, r.MajorityCount)
	assert.Empty(t, r.Outliers)
}

func TestDiffMajorityAndOutlier(t *testing.T) {
	table := diffTable("governing_law", map[string]model.DocumentCell{
		"doc-1": foundCell("Delaware", ""),
		"doc-2": foundCell("Delaware", ""),
		"doc-3": foundCell("New York", ""),
	})

	reports := Diff(table)
	r := reports[0]

	assert.False(t, r.IsUnanimous)
	assert.Equal(t, 2, r.UniqueValues)
	assert.Equal(t, "Delaware", r.MajorityValue)
	assert.Equal(t, 2, r.MajorityCount)
	assert.Equal(t, []string{"doc-3"}, r.Outliers)
	assert.ElementsMatch(t, []string{"doc-1", "doc-2"}, r.ValueGroups["Delaware"])
	assert.Equal(t, []string{"doc-3"}, r.ValueGroups["New York"])
}

func TestDiffTieBreaksLexically(t *testing.T) {
	table := diffTable("governing_law", map[string]model.DocumentCell{
		"doc-1": foundCell("New York", ""),
		"doc-2": foundCell("Delaware", ""),
	})

	r := Diff(table)[0]
	assert.Equal(t, "Delaware", r.MajorityValue)
	assert.Equal(t, 1, r.MajorityCount)
	assert.Equal(t, []string{"doc-1"}, r.Outliers)
}

func TestDiffGroupsOnNormalizedValue(t *testing.T) {
	table := diffTable("effective_date", map[string]model.DocumentCell{
		"doc-1": foundCell("01/15/2024", "2024-01-15"),
		"doc-2": foundCell("January 15, 2024", "2024-01-15"),
	})

	r := Diff(table)[0]
	assert.True(t, r.IsUnanimous)
	assert.Equal(t, "2024-01-15", r.MajorityValue)
}

func TestDiffSkipsNotFound(t *testing.T) {
	table := diffTable("governing_law", map[string]model.DocumentCell{
		"doc-1": foundCell("Delaware", ""),
		"doc-2": {Status: model.StatusNotFound},
		"doc-3": {Status: model.StatusError},
	})

	r := Diff(table)[0]
	assert.Equal(t, 1, r.TotalDocuments)
	assert.True(t, r.IsUnanimous)
	assert.Empty(t, r.Outliers)
	assert.Nil(t, r.SimilarityPairs)
}

func TestDiffAllMissing(t *testing.T) {
	table := diffTable("governing_law", map[string]model.DocumentCell{
		"doc-1": {Status: model.StatusNotFound},
		"doc-2": {Status: model.StatusNotFound},
	})

	r := Diff(table)[0]
	assert.Zero(t, r.TotalDocuments)
	assert.Zero(t, r.UniqueValues)
	assert.False(t, r.IsUnanimous)
	assert.Empty(t, r.MajorityValue)
}

func TestDiffSimilarityPairs(t *testing.T) {
	table := diffTable("governing_law", map[string]model.DocumentCell{
		"doc-1": foundCell("Delaware", ""),
		"doc-2": foundCell("Delaware", ""),
		"doc-3": foundCell("Maryland", ""),
	})

	r := Diff(table)[0]
	require.Len(t, r.SimilarityPairs, 3)

	bySignature := make(map[string]float64)
	for _, p := range r.SimilarityPairs {
		assert.Less(t, p.DocA, p.DocB, "pairs are ordered DocA < DocB")
		bySignature[p.DocA+"|"+p.DocB] = p.Similarity
	}
	assert.InDelta(t, 1.0, bySignature["doc-1|doc-2"], 1e-9)
	assert.Greater(t, bySignature["doc-1|doc-2"], bySignature["doc-1|doc-3"])
}
