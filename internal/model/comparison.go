package model

// DocumentCell is the per-document view inside a comparison row. Documents
// with no extraction for the row's field get an explicit NOT_FOUND cell,
// never a missing key.
type DocumentCell struct {
	ExtractionID    string           `json:"extraction_id,omitempty"`
	Value           string           `json:"value,omitempty"`
	NormalizedValue string           `json:"normalized_value,omitempty"`
	ConfidenceScore float64          `json:"confidence_score"`
	Status          ExtractionStatus `json:"status"`
	Citations       []Citation       `json:"citations,omitempty"`
}

// ComparisonRow aligns one field's extractions across all project documents.
type ComparisonRow struct {
	FieldName       string                  `json:"field_name"`
	FieldType       FieldType               `json:"field_type"`
	DocumentResults map[string]DocumentCell `json:"document_results"`
}

// ComparisonTable is the full field × document matrix for a project.
type ComparisonTable struct {
	ProjectID   string          `json:"project_id"`
	DocumentIDs []string        `json:"document_ids"` // column order
	Rows        []ComparisonRow `json:"rows"`
}

// SimilarityPair is the lexical similarity between two documents' raw
// values for one field. Pairs are unordered; DocA sorts before DocB.
type SimilarityPair struct {
	DocA       string  `json:"doc_a"`
	DocB       string  `json:"doc_b"`
	Similarity float64 `json:"similarity"`
}

// DiffReport summarizes cross-document agreement for a single field.
type DiffReport struct {
	FieldName       string              `json:"field_name"`
	IsUnanimous     bool                `json:"is_unanimous"`
	MajorityValue   string              `json:"majority_value"`
	MajorityCount   int                 `json:"majority_count"`
	TotalDocuments  int                 `json:"total_documents"`
	UniqueValues    int                 `json:"unique_values"`
	ValueGroups     map[string][]string `json:"value_groups"` // canonical value -> document IDs
	Outliers        []string            `json:"outliers"`     // documents outside the majority group
	SimilarityPairs []SimilarityPair    `json:"similarity_pairs"`
}
