// Package store persists projects, documents, templates, extraction runs,
// and evaluation records. Two backends are provided: SQLite for local
// single-user work and PostgreSQL for shared deployments.
package store

import (
	"context"

	"github.com/sells-group/docreview/internal/model"
)

// RunFilter specifies criteria for listing runs.
type RunFilter struct {
	ProjectID string          `json:"project_id,omitempty"`
	Status    model.RunStatus `json:"status,omitempty"`
	Limit     int             `json:"limit,omitempty"`
	Offset    int             `json:"offset,omitempty"`
}

// Store defines the persistence interface for the review engine.
type Store interface {
	// Projects
	CreateProject(ctx context.Context, name string) (*model.Project, error)
	GetProject(ctx context.Context, projectID string) (*model.Project, error)

	// Documents
	SaveDocument(ctx context.Context, projectID string, doc *model.Document) error
	GetDocument(ctx context.Context, documentID string) (*model.Document, error)
	ListDocuments(ctx context.Context, projectID string) ([]model.Document, error)

	// Templates. Saving an existing template name bumps the version;
	// version 0 on Get means latest.
	SaveTemplate(ctx context.Context, tpl *model.FieldTemplate) (*model.FieldTemplate, error)
	GetTemplate(ctx context.Context, name string, version int) (*model.FieldTemplate, error)

	// Runs
	CreateRun(ctx context.Context, run *model.Run) error
	CompleteRun(ctx context.Context, run *model.Run) error
	GetRun(ctx context.Context, runID string) (*model.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error)

	// Extraction results
	SaveResults(ctx context.Context, results []*model.ExtractionResult) error
	ListResults(ctx context.Context, runID string) ([]*model.ExtractionResult, error)
	LatestResults(ctx context.Context, projectID string) ([]*model.ExtractionResult, error)

	// Evaluations (append-only)
	SaveEvaluations(ctx context.Context, records []*model.EvaluationRecord) error
	ListEvaluations(ctx context.Context, projectID string) ([]*model.EvaluationRecord, error)

	// Human-labeled references. Importing the same (document, field) pair
	// again replaces its value.
	ImportReferences(ctx context.Context, projectID string, refs []model.Reference) error
	ListReferences(ctx context.Context, projectID string) ([]model.Reference, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
