package model

import "time"

// EvaluationRecord compares one stored extraction value against a
// human-labeled reference. Records are append-only; repeated evaluation
// runs accumulate rather than overwrite.
type EvaluationRecord struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	DocumentID      string    `json:"document_id"`
	FieldName       string    `json:"field_name"`
	AIValue         string    `json:"ai_value,omitempty"`
	HumanValue      string    `json:"human_value,omitempty"`
	SimilarityScore float64   `json:"similarity_score"`
	IsMatch         bool      `json:"is_match"`
	CreatedAt       time.Time `json:"created_at"`
}

// FieldEvaluation aggregates evaluation outcomes for a single field.
type FieldEvaluation struct {
	FieldName string  `json:"field_name"`
	Total     int     `json:"total"`
	Matched   int     `json:"matched"`
	Accuracy  float64 `json:"accuracy"`
}

// EvaluationMetrics aggregates evaluation quality over a project.
type EvaluationMetrics struct {
	TotalFields       int               `json:"total_fields"`
	MatchedFields     int               `json:"matched_fields"`
	FieldAccuracy     float64           `json:"field_accuracy"`
	Coverage          float64           `json:"coverage"`
	AverageConfidence float64           `json:"average_confidence"`
	PerField          []FieldEvaluation `json:"per_field"`
}

// Reference is one externally supplied human-labeled value.
type Reference struct {
	DocumentID string `json:"document_id" yaml:"document_id"`
	FieldName  string `json:"field_name" yaml:"field_name"`
	HumanValue string `json:"human_value" yaml:"human_value"`
}
