package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/docreview/internal/model"
)

func compareTemplate() *model.TemplateRegistry {
	return model.NewTemplateRegistry(&model.FieldTemplate{
		ID:      "tpl-1",
		Name:    "acquisition",
		Version: 1,
		Fields: []model.FieldDefinition{
			{Name: "effective_date", FieldType: model.FieldTypeDate},
			{Name: "purchase_price", FieldType: model.FieldTypeCurrency},
		},
	})
}

func extracted(doc, field, value, normalized string, conf float64) *model.ExtractionResult {
	return &model.ExtractionResult{
		ID:              doc + "/" + field,
		DocumentID:      doc,
		FieldName:       field,
		ExtractedValue:  value,
		NormalizedValue: normalized,
		Normalized:      normalized != "",
		ConfidenceScore: conf,
		Status:          model.StatusExtracted,
	}
}

func TestBuildTableRowAndColumnOrder(t *testing.T) {
	docs := []string{"doc-1", "doc-2"}
	results := []*model.ExtractionResult{
		extracted("doc-2", "purchase_price", "$1,000", "USD 1000.00", 0.8),
		extracted("doc-1", "effective_date", "01/15/2024", "2024-01-15", 0.9),
	}

	table := BuildTable("proj-1", docs, compareTemplate(), results)

	assert.Equal(t, "proj-1", table.ProjectID)
	assert.Equal(t, docs, table.DocumentIDs)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "effective_date", table.Rows[0].FieldName)
	assert.Equal(t, "purchase_price", table.Rows[1].FieldName)
}

func TestBuildTableMissingCellIsNotFound(t *testing.T) {
	docs := []string{"doc-1", "doc-2"}
	results := []*model.ExtractionResult{
		extracted("doc-1", "effective_date", "01/15/2024", "2024-01-15", 0.9),
	}

	table := BuildTable("proj-1", docs, compareTemplate(), results)

	for _, row := range table.Rows {
		require.Len(t, row.DocumentResults, 2, "every document must have a cell in %s", row.FieldName)
	}

	cell := table.Rows[0].DocumentResults["doc-2"]
	assert.Equal(t, model.StatusNotFound, cell.Status)
	assert.Zero(t, cell.ConfidenceScore)
	assert.Empty(t, cell.Value)

	found := table.Rows[0].DocumentResults["doc-1"]
	assert.Equal(t, model.StatusExtracted, found.Status)
	assert.Equal(t, "2024-01-15", found.NormalizedValue)
}

func TestBuildTableIgnoresUnknownFields(t *testing.T) {
	docs := []string{"doc-1"}
	results := []*model.ExtractionResult{
		extracted("doc-1", "no_such_field", "x", "", 0.5),
	}

	table := BuildTable("proj-1", docs, compareTemplate(), results)
	require.Len(t, table.Rows, 2)
	for _, row := range table.Rows {
		assert.Equal(t, model.StatusNotFound, row.DocumentResults["doc-1"].Status)
	}
}
