package model

// TextSegment is a located span of document text produced by the ingestion
// collaborator. Segments are read-only inputs to the engine.
type TextSegment struct {
	Text         string `json:"text"`
	PageNumber   int    `json:"page_number,omitempty"`
	SectionTitle string `json:"section_title,omitempty"`
	Index        int    `json:"index"`
}

// Document is a single document within a project: its full text plus the
// located segments the citation locator searches.
type Document struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Text     string        `json:"text"`
	Segments []TextSegment `json:"segments"`
}

// Project groups documents for cross-document comparison.
type Project struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Documents []string `json:"documents"` // document IDs
}
