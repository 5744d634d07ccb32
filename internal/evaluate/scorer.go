// Package evaluate scores stored extraction values against human-labeled
// references and aggregates accuracy metrics over a project.
package evaluate

import (
	"sort"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/google/uuid"

	"github.com/sells-group/docreview/internal/model"
)

// MatchThreshold is the minimum similarity for an evaluation to count as a
// match.
const MatchThreshold = 0.8

// MatchScore computes the similarity between an extracted value and a
// human-labeled value. Both empty means trivially correct; exactly one
// empty means a complete miss. Otherwise values are compared after
// trimming and case-folding: exact agreement scores 1.0, anything else
// scores by edit-distance similarity.
func MatchScore(aiValue, humanValue string) float64 {
	a := strings.ToLower(strings.TrimSpace(aiValue))
	h := strings.ToLower(strings.TrimSpace(humanValue))

	switch {
	case a == "" && h == "":
		return 1.0
	case a == "" || h == "":
		return 0.0
	case a == h:
		return 1.0
	}
	return levenshtein.Similarity(a, h, nil)
}

// Evaluate scores one extraction against its reference and produces an
// append-only record.
func Evaluate(projectID string, res *model.ExtractionResult, ref model.Reference) *model.EvaluationRecord {
	aiValue := ""
	if res != nil && res.Found() {
		aiValue = res.BestValue()
	}
	score := MatchScore(aiValue, ref.HumanValue)

	rec := &model.EvaluationRecord{
		ID:              uuid.NewString(),
		ProjectID:       projectID,
		FieldName:       ref.FieldName,
		DocumentID:      ref.DocumentID,
		AIValue:         aiValue,
		HumanValue:      ref.HumanValue,
		SimilarityScore: score,
		IsMatch:         score >= MatchThreshold,
		CreatedAt:       time.Now().UTC(),
	}
	return rec
}

// EvaluateAll scores every reference with a corresponding extraction
// result, keyed by (document, field). References naming a pair the run
// never extracted evaluate against an empty value.
func EvaluateAll(projectID string, results []*model.ExtractionResult, refs []model.Reference) []*model.EvaluationRecord {
	byKey := make(map[string]*model.ExtractionResult, len(results))
	for _, res := range results {
		byKey[res.DocumentID+"\x00"+res.FieldName] = res
	}

	records := make([]*model.EvaluationRecord, 0, len(refs))
	for _, ref := range refs {
		res := byKey[ref.DocumentID+"\x00"+ref.FieldName]
		records = append(records, Evaluate(projectID, res, ref))
	}
	return records
}

// Metrics aggregates evaluation records with the run's extraction results.
// Coverage is the share of (document, field) pairs with a found value;
// average confidence spans all results, found or not.
func Metrics(records []*model.EvaluationRecord, results []*model.ExtractionResult) *model.EvaluationMetrics {
	m := &model.EvaluationMetrics{TotalFields: len(records)}

	perField := make(map[string]*model.FieldEvaluation)
	for _, rec := range records {
		fe, ok := perField[rec.FieldName]
		if !ok {
			fe = &model.FieldEvaluation{FieldName: rec.FieldName}
			perField[rec.FieldName] = fe
		}
		fe.Total++
		if rec.IsMatch {
			fe.Matched++
			m.MatchedFields++
		}
	}
	if m.TotalFields > 0 {
		m.FieldAccuracy = float64(m.MatchedFields) / float64(m.TotalFields)
	}

	names := make([]string, 0, len(perField))
	for name := range perField {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fe := perField[name]
		if fe.Total > 0 {
			fe.Accuracy = float64(fe.Matched) / float64(fe.Total)
		}
		m.PerField = append(m.PerField, *fe)
	}

	if len(results) > 0 {
		found := 0
		var confSum float64
		for _, res := range results {
			if res.Found() {
				found++
			}
			confSum += res.ConfidenceScore
		}
		m.Coverage = float64(found) / float64(len(results))
		m.AverageConfidence = confSum / float64(len(results))
	}
	return m
}
