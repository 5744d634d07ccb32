package evaluate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docreview/internal/model"
)

func TestMatchScore(t *testing.T) {
	tests := []struct {
		name  string
		ai    string
		human string
		want  float64
	}{
		{"both empty is correct", "", "", 1.0},
		{"ai empty is a miss", "", "Delaware", 0.0},
		{"human empty is a miss", "Delaware", "", 0.0},
		{"exact", "Delaware", "Delaware", 1.0},
		{"case and whitespace folded", "  delaware ", "Delaware", 1.0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MatchScore(tt.ai, tt.human), 1e-9)
		})
	}
}

func TestMatchScorePartialSimilarity(t *testing.T) {
	score := MatchScore("State of Delaware", "Delaware")
	assert.Greater(t, score, 0.0)
	assert.Less(t, score, 1.0)

	near := MatchScore("Delawore", "Delaware")
	far := MatchScore("New York", "Delaware")
	assert.Greater(t, near, far)
	assert.GreaterOrEqual(t, near, MatchThreshold)
}

func TestMatchScoreSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"Delaware", "Delawore"},
		{"State of Delaware", "Delaware"},
		{"", "Delaware"},
		{"2024-01-15", "2024-02-01"},
	}
	for _, p := range pairs {
		assert.Equal(t, MatchScore(p[0], p[1]), MatchScore(p[1], p[0]), "%q vs %q", p[0], p[1])
	}
}

func TestEvaluateProducesRecord(t *testing.T) {
	res := &model.ExtractionResult{
		DocumentID:      "doc-1",
		FieldName:       "governing_law",
		ExtractedValue:  "Delaware",
		NormalizedValue: "Delaware",
		Normalized:      true,
		Status:          model.StatusExtracted,
	}
	ref := model.Reference{DocumentID: "doc-1", FieldName: "governing_law", HumanValue: "Delaware"}

	rec := Evaluate("proj-1", res, ref)
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, "proj-1", rec.ProjectID)
	assert.Equal(t, "Delaware", rec.AIValue)
	assert.InDelta(t, 1.0, rec.SimilarityScore, 1e-9)
	assert.True(t, rec.IsMatch)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestEvaluateNotFoundScoresZero(t *testing.T) {
	res := &model.ExtractionResult{
		DocumentID: "doc-1",
		FieldName:  "escrow_amount",
		Status:     model.StatusNotFound,
	}
	ref := model.Reference{DocumentID: "doc-1", FieldName: "escrow_amount", HumanValue: "USD 100000.00"}

	rec := Evaluate("proj-1", res, ref)
	assert.Empty(t, rec.AIValue)
	assert.Zero(t, rec.SimilarityScore)
	assert.False(t, rec.IsMatch)
}

func TestEvaluateAllMatchesByDocumentAndField(t *testing.T) {
	results := []*model.ExtractionResult{
		{DocumentID: "doc-1", FieldName: "governing_law", ExtractedValue: "Delaware", Status: model.StatusExtracted},
		{DocumentID: "doc-2", FieldName: "governing_law", ExtractedValue: "New York", Status: model.StatusExtracted},
	}
	refs := []model.Reference{
		{DocumentID: "doc-1", FieldName: "governing_law", HumanValue: "Delaware"},
		{DocumentID: "doc-2", FieldName: "governing_law", HumanValue: "Delaware"},
		{DocumentID: "doc-3", FieldName: "governing_law", HumanValue: "Delaware"},
	}

	records := EvaluateAll("proj-1", results, refs)
	require.Len(t, records, 3)
	assert.True(t, records[0].IsMatch)
	assert.False(t, records[1].IsMatch)
	assert.False(t, records[2].IsMatch, "reference without extraction evaluates against empty")
	assert.Empty(t, records[2].AIValue)
}

func TestMetricsAggregation(t *testing.T) {
	records := []*model.EvaluationRecord{
		{FieldName: "governing_law", IsMatch: true},
		{FieldName: "governing_law", IsMatch: false},
		{FieldName: "purchase_price", IsMatch: true},
		{FieldName: "purchase_price", IsMatch: true},
	}
	results := []*model.ExtractionResult{
		{Status: model.StatusExtracted, ExtractedValue: "a", ConfidenceScore: 0.9},
		{Status: model.StatusExtracted, ExtractedValue: "b", ConfidenceScore: 0.7},
		{Status: model.StatusNotFound, ConfidenceScore: 0},
		{Status: model.StatusExtracted, ExtractedValue: "c", ConfidenceScore: 0.8},
	}

	m := Metrics(records, results)
	assert.Equal(t, 4, m.TotalFields)
	assert.Equal(t, 3, m.MatchedFields)
	assert.InDelta(t, 0.75, m.FieldAccuracy, 1e-9)
	assert.InDelta(t, 0.75, m.Coverage, 1e-9)
	assert.InDelta(t, 0.6, m.AverageConfidence, 1e-9)

	require.Len(t, m.PerField, 2)
	assert.Equal(t, "governing_law", m.PerField[0].FieldName)
	assert.InDelta(t, 0.5, m.PerField[0].Accuracy, 1e-9)
	assert.Equal(t, "purchase_price", m.PerField[1].FieldName)
	assert.InDelta(t, 1.0, m.PerField[1].Accuracy, 1e-9)
}

func TestMetricsEmpty(t *testing.T) {
	m := Metrics(nil, nil)
	assert.Zero(t, m.TotalFields)
	assert.Zero(t, m.FieldAccuracy)
	assert.Zero(t, m.Coverage)
}
