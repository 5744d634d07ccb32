// Package compare aligns extraction results across a project's documents:
// the comparison table, per-field difference reports, and outlier detection.
package compare

import (
	"github.com/sells-group/docreview/internal/model"
)

// BuildTable pivots a run's extraction results into a field × document
// matrix. Rows follow the template's declared field order; columns follow
// the order of documentIDs. Every (field, document) cell is present: a
// document without a stored result for a field gets a NOT_FOUND placeholder
// cell with zero confidence.
func BuildTable(projectID string, documentIDs []string, registry *model.TemplateRegistry, results []*model.ExtractionResult) *model.ComparisonTable {
	byKey := make(map[string]map[string]*model.ExtractionResult, len(registry.Template.Fields))
	for _, res := range results {
		docs, ok := byKey[res.FieldName]
		if !ok {
			docs = make(map[string]*model.ExtractionResult)
			byKey[res.FieldName] = docs
		}
		docs[res.DocumentID] = res
	}

	table := &model.ComparisonTable{
		ProjectID:   projectID,
		DocumentIDs: append([]string(nil), documentIDs...),
	}

	for _, field := range registry.FieldOrder() {
		def := registry.ByName(field)
		row := model.ComparisonRow{
			FieldName:       field,
			FieldType:       def.FieldType,
			DocumentResults: make(map[string]model.DocumentCell, len(documentIDs)),
		}
		for _, docID := range documentIDs {
			if res, ok := byKey[field][docID]; ok {
				row.DocumentResults[docID] = toCell(res)
				continue
			}
			row.DocumentResults[docID] = model.DocumentCell{Status: model.StatusNotFound}
		}
		table.Rows = append(table.Rows, row)
	}
	return table
}

func toCell(res *model.ExtractionResult) model.DocumentCell {
	return model.DocumentCell{
		ExtractionID:    res.ID,
		Value:           res.ExtractedValue,
		NormalizedValue: res.NormalizedValue,
		ConfidenceScore: res.ConfidenceScore,
		Status:          res.Status,
		Citations:       res.Citations,
	}
}
