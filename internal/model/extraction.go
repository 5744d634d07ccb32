package model

import "time"

// Method tags which strategy produced an extraction.
type Method string

const (
	MethodPrimary  Method = "PRIMARY"
	MethodFallback Method = "FALLBACK"
)

// ExtractionStatus is the terminal state of a (document, field) extraction.
type ExtractionStatus string

const (
	StatusExtracted ExtractionStatus = "EXTRACTED"
	StatusNotFound  ExtractionStatus = "NOT_FOUND"
	StatusError     ExtractionStatus = "ERROR"
)

// MaxCitationLength bounds the stored citation excerpt.
const MaxCitationLength = 500

// MaxCitations bounds how many citations an extraction carries.
const MaxCitations = 3

// Citation is an evidentiary excerpt supporting an extracted value.
// Within an extraction, citations are ordered by descending relevance,
// ties broken by ascending source segment index.
type Citation struct {
	CitationText   string  `json:"citation_text"`
	RelevanceScore float64 `json:"relevance_score"`
	PageNumber     int     `json:"page_number,omitempty"`
	SectionTitle   string  `json:"section_title,omitempty"`
	SegmentIndex   int     `json:"segment_index"`
}

// ExtractionResult is the outcome of extracting one field from one document.
// ConfidenceScore is always defined, even when normalization failed
// (NormalizedValue == "" with Normalized == false).
type ExtractionResult struct {
	ID              string           `json:"id"`
	RunID           string           `json:"run_id,omitempty"`
	DocumentID      string           `json:"document_id"`
	FieldName       string           `json:"field_name"`
	FieldType       FieldType        `json:"field_type"`
	ExtractedValue  string           `json:"extracted_value,omitempty"`
	RawText         string           `json:"raw_text,omitempty"`
	NormalizedValue string           `json:"normalized_value,omitempty"`
	Normalized      bool             `json:"normalized"`
	Validated       bool             `json:"validated"`
	ConfidenceScore float64          `json:"confidence_score"`
	Method          Method           `json:"method,omitempty"`
	Status          ExtractionStatus `json:"status"`
	Citations       []Citation       `json:"citations,omitempty"`
	ExtractedAt     time.Time        `json:"extracted_at"`
}

// Found reports whether the extraction produced a value.
func (r *ExtractionResult) Found() bool {
	return r.Status == StatusExtracted && r.ExtractedValue != ""
}

// BestValue returns the normalized value when normalization succeeded,
// otherwise the raw extracted value.
func (r *ExtractionResult) BestValue() string {
	if r.Normalized && r.NormalizedValue != "" {
		return r.NormalizedValue
	}
	return r.ExtractedValue
}

// RunStatus is the lifecycle state of an extraction run.
type RunStatus string

const (
	RunStatusQueued    RunStatus = "queued"
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// FieldFailure records a non-fatal per-field problem during a run so the
// caller can surface which fields need manual attention.
type FieldFailure struct {
	DocumentID string `json:"document_id"`
	FieldName  string `json:"field_name"`
	Reason     string `json:"reason"`
}

// Run is one extraction pass over a project with a specific template
// version. A new run logically supersedes the prior run's results; prior
// rows are retained for audit.
type Run struct {
	ID              string         `json:"id"`
	ProjectID       string         `json:"project_id"`
	TemplateID      string         `json:"template_id"`
	TemplateVersion int            `json:"template_version"`
	Status          RunStatus      `json:"status"`
	Failures        []FieldFailure `json:"failures,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	CompletedAt     *time.Time     `json:"completed_at,omitempty"`
}
