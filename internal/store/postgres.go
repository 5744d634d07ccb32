package store

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/docreview/internal/db"
	"github.com/sells-group/docreview/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool    db.Pool
	closeFn func()
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool, closeFn: pool.Close}, nil
}

// Pool returns the underlying database pool for subsystems that need
// direct query access.
func (s *PostgresStore) Pool() db.Pool {
	return s.pool
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	project_id TEXT NOT NULL REFERENCES projects(id),
	name       TEXT NOT NULL,
	content    TEXT NOT NULL,
	segments   JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY DEFAULT gen_random_uuid()::text,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	fields     JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	UNIQUE (name, version)
);

CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL REFERENCES projects(id),
	template_id      TEXT NOT NULL,
	template_version INTEGER NOT NULL,
	status           TEXT NOT NULL DEFAULT 'queued',
	failures         JSONB,
	created_at       TIMESTAMPTZ NOT NULL DEFAULT now(),
	completed_at     TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS extractions (
	id               TEXT PRIMARY KEY,
	run_id           TEXT NOT NULL REFERENCES runs(id),
	document_id      TEXT NOT NULL,
	field_name       TEXT NOT NULL,
	field_type       TEXT NOT NULL,
	extracted_value  TEXT,
	raw_text         TEXT,
	normalized_value TEXT,
	normalized       BOOLEAN NOT NULL DEFAULT false,
	validated        BOOLEAN NOT NULL DEFAULT false,
	confidence       DOUBLE PRECISION NOT NULL DEFAULT 0,
	method           TEXT,
	status           TEXT NOT NULL,
	extracted_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS citations (
	extraction_id   TEXT NOT NULL REFERENCES extractions(id),
	citation_text   TEXT NOT NULL,
	relevance_score DOUBLE PRECISION NOT NULL,
	page_number     INTEGER NOT NULL DEFAULT 0,
	section_title   TEXT NOT NULL DEFAULT '',
	segment_index   INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS evaluations (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL,
	document_id TEXT NOT NULL,
	field_name  TEXT NOT NULL,
	ai_value    TEXT,
	human_value TEXT,
	similarity  DOUBLE PRECISION NOT NULL DEFAULT 0,
	is_match    BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluation_references (
	project_id  TEXT NOT NULL,
	document_id TEXT NOT NULL,
	field_name  TEXT NOT NULL,
	human_value TEXT NOT NULL,
	PRIMARY KEY (project_id, document_id, field_name)
);

CREATE INDEX IF NOT EXISTS idx_documents_project ON documents(project_id);
CREATE INDEX IF NOT EXISTS idx_templates_name ON templates(name, version DESC);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_extractions_run ON extractions(run_id);
CREATE INDEX IF NOT EXISTS idx_extractions_document ON extractions(document_id, field_name);
CREATE INDEX IF NOT EXISTS idx_citations_extraction ON citations(extraction_id);
CREATE INDEX IF NOT EXISTS idx_evaluations_project ON evaluations(project_id);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	if s.closeFn != nil {
		s.closeFn()
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return eris.Wrap(err, "postgres: ping")
}

func (s *PostgresStore) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	id := uuid.New().String()
	_, err := s.pool.Exec(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES ($1, $2, $3)`,
		id, name, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: insert project")
	}
	return &model.Project{ID: id, Name: name}, nil
}

func (s *PostgresStore) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var p model.Project
	err := s.pool.QueryRow(ctx,
		`SELECT id, name FROM projects WHERE id = $1`, projectID,
	).Scan(&p.ID, &p.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("project not found: %s", projectID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get project")
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id FROM documents WHERE project_id = $1 ORDER BY created_at, id`, projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list project documents")
	}
	defer rows.Close()
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document id")
		}
		p.Documents = append(p.Documents, docID)
	}
	return &p, eris.Wrap(rows.Err(), "postgres: iterate project documents")
}

func (s *PostgresStore) SaveDocument(ctx context.Context, projectID string, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	segmentsJSON, err := json.Marshal(doc.Segments)
	if err != nil {
		return eris.Wrap(err, "postgres: marshal segments")
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO documents (id, project_id, name, content, segments, created_at) VALUES ($1, $2, $3, $4, $5, $6)`,
		doc.ID, projectID, doc.Name, doc.Text, segmentsJSON, time.Now().UTC(),
	)
	return eris.Wrapf(err, "postgres: insert document %s", doc.Name)
}

func (s *PostgresStore) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	var d model.Document
	var segmentsJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, content, segments FROM documents WHERE id = $1`, documentID,
	).Scan(&d.ID, &d.Name, &d.Text, &segmentsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("document not found: %s", documentID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get document")
	}
	if err := json.Unmarshal(segmentsJSON, &d.Segments); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal segments")
	}
	return &d, nil
}

func (s *PostgresStore) ListDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, content, segments FROM documents WHERE project_id = $1 ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		var d model.Document
		var segmentsJSON []byte
		if err := rows.Scan(&d.ID, &d.Name, &d.Text, &segmentsJSON); err != nil {
			return nil, eris.Wrap(err, "postgres: scan document")
		}
		if err := json.Unmarshal(segmentsJSON, &d.Segments); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal segments")
		}
		docs = append(docs, d)
	}
	return docs, eris.Wrap(rows.Err(), "postgres: list documents iterate")
}

func (s *PostgresStore) SaveTemplate(ctx context.Context, tpl *model.FieldTemplate) (*model.FieldTemplate, error) {
	fieldsJSON, err := json.Marshal(tpl.Fields)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: marshal template fields")
	}

	saved := *tpl
	saved.ID = uuid.New().String()

	err = s.pool.QueryRow(ctx,
		`INSERT INTO templates (id, name, version, fields, created_at)
		 VALUES ($1, $2, (SELECT COALESCE(MAX(version), 0) + 1 FROM templates WHERE name = $2), $3, $4)
		 RETURNING version`,
		saved.ID, saved.Name, fieldsJSON, time.Now().UTC(),
	).Scan(&saved.Version)
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: insert template %s", tpl.Name)
	}
	return &saved, nil
}

func (s *PostgresStore) GetTemplate(ctx context.Context, name string, version int) (*model.FieldTemplate, error) {
	query := `SELECT id, name, version, fields FROM templates WHERE name = $1`
	args := []any{name}
	if version > 0 {
		query += ` AND version = $2`
		args = append(args, version)
	}
	query += ` ORDER BY version DESC LIMIT 1`

	var tpl model.FieldTemplate
	var fieldsJSON []byte
	err := s.pool.QueryRow(ctx, query, args...).Scan(&tpl.ID, &tpl.Name, &tpl.Version, &fieldsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("template not found: %s", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get template")
	}
	if err := json.Unmarshal(fieldsJSON, &tpl.Fields); err != nil {
		return nil, eris.Wrap(err, "postgres: unmarshal template fields")
	}
	return &tpl, nil
}

func (s *PostgresStore) CreateRun(ctx context.Context, run *model.Run) error {
	failuresJSON, err := marshalFailuresJSON(run.Failures)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO runs (id, project_id, template_id, template_version, status, failures, created_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		run.ID, run.ProjectID, run.TemplateID, run.TemplateVersion, string(run.Status),
		failuresJSON, run.CreatedAt, run.CompletedAt,
	)
	return eris.Wrapf(err, "postgres: insert run %s", run.ID)
}

func (s *PostgresStore) CompleteRun(ctx context.Context, run *model.Run) error {
	failuresJSON, err := marshalFailuresJSON(run.Failures)
	if err != nil {
		return err
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE runs SET status = $1, failures = $2, completed_at = $3 WHERE id = $4`,
		string(run.Status), failuresJSON, run.CompletedAt, run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "postgres: complete run %s", run.ID)
	}
	if tag.RowsAffected() == 0 {
		return eris.Errorf("run not found: %s", run.ID)
	}
	return nil
}

func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var failuresJSON []byte
	err := s.pool.QueryRow(ctx,
		`SELECT id, project_id, template_id, template_version, status, failures, created_at, completed_at
		 FROM runs WHERE id = $1`, runID,
	).Scan(&r.ID, &r.ProjectID, &r.TemplateID, &r.TemplateVersion, &r.Status, &failuresJSON, &r.CreatedAt, &r.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "postgres: get run")
	}
	if len(failuresJSON) > 0 {
		if err := json.Unmarshal(failuresJSON, &r.Failures); err != nil {
			return nil, eris.Wrap(err, "postgres: unmarshal run failures")
		}
	}
	return &r, nil
}

func (s *PostgresStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, project_id, template_id, template_version, status, failures, created_at, completed_at
	          FROM runs WHERE 1=1`
	var args []any
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		query += ` AND project_id = $` + itoa(len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		query += ` AND status = $` + itoa(len(args))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += ` LIMIT $` + itoa(len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += ` OFFSET $` + itoa(len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var failuresJSON []byte
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.TemplateID, &r.TemplateVersion, &r.Status,
			&failuresJSON, &r.CreatedAt, &r.CompletedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan run")
		}
		if len(failuresJSON) > 0 {
			if err := json.Unmarshal(failuresJSON, &r.Failures); err != nil {
				return nil, eris.Wrap(err, "postgres: unmarshal run failures")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "postgres: list runs iterate")
}

// SaveResults inserts extraction rows one by one and bulk-loads their
// citations through the COPY protocol.
func (s *PostgresStore) SaveResults(ctx context.Context, results []*model.ExtractionResult) error {
	if len(results) == 0 {
		return nil
	}

	var citationRows [][]any
	for _, res := range results {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO extractions (id, run_id, document_id, field_name, field_type, extracted_value, raw_text,
			 normalized_value, normalized, validated, confidence, method, status, extracted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			res.ID, res.RunID, res.DocumentID, res.FieldName, string(res.FieldType),
			res.ExtractedValue, res.RawText, res.NormalizedValue,
			res.Normalized, res.Validated, res.ConfidenceScore,
			string(res.Method), string(res.Status), res.ExtractedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert extraction %s/%s", res.DocumentID, res.FieldName)
		}
		for _, c := range res.Citations {
			citationRows = append(citationRows, []any{
				res.ID, c.CitationText, c.RelevanceScore, c.PageNumber, c.SectionTitle, c.SegmentIndex,
			})
		}
	}

	_, err := db.CopyFrom(ctx, s.pool, "citations",
		[]string{"extraction_id", "citation_text", "relevance_score", "page_number", "section_title", "segment_index"},
		citationRows,
	)
	return eris.Wrap(err, "postgres: save citations")
}

const postgresExtractionColumns = `e.id, e.run_id, e.document_id, e.field_name, e.field_type, e.extracted_value,
e.raw_text, e.normalized_value, e.normalized, e.validated, e.confidence, e.method, e.status, e.extracted_at`

func (s *PostgresStore) ListResults(ctx context.Context, runID string) ([]*model.ExtractionResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresExtractionColumns+` FROM extractions e WHERE e.run_id = $1 ORDER BY e.document_id, e.field_name`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	results, err := collectPGResults(rows)
	if err != nil {
		return nil, err
	}
	return results, s.attachCitations(ctx, results)
}

func (s *PostgresStore) LatestResults(ctx context.Context, projectID string) ([]*model.ExtractionResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+postgresExtractionColumns+` FROM extractions e WHERE e.run_id = (
		   SELECT id FROM runs WHERE project_id = $1 AND status = $2 ORDER BY created_at DESC LIMIT 1
		 ) ORDER BY e.document_id, e.field_name`,
		projectID, string(model.RunStatusCompleted),
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: latest results")
	}
	results, err := collectPGResults(rows)
	if err != nil {
		return nil, err
	}
	return results, s.attachCitations(ctx, results)
}

// attachCitations loads citation rows for the given results in one query.
func (s *PostgresStore) attachCitations(ctx context.Context, results []*model.ExtractionResult) error {
	if len(results) == 0 {
		return nil
	}
	byID := make(map[string]*model.ExtractionResult, len(results))
	ids := make([]string, 0, len(results))
	for _, res := range results {
		byID[res.ID] = res
		ids = append(ids, res.ID)
	}

	rows, err := s.pool.Query(ctx,
		`SELECT extraction_id, citation_text, relevance_score, page_number, section_title, segment_index
		 FROM citations WHERE extraction_id = ANY($1)
		 ORDER BY extraction_id, relevance_score DESC, segment_index`,
		ids,
	)
	if err != nil {
		return eris.Wrap(err, "postgres: load citations")
	}
	defer rows.Close()

	for rows.Next() {
		var extractionID string
		var c model.Citation
		if err := rows.Scan(&extractionID, &c.CitationText, &c.RelevanceScore, &c.PageNumber, &c.SectionTitle, &c.SegmentIndex); err != nil {
			return eris.Wrap(err, "postgres: scan citation")
		}
		if res, ok := byID[extractionID]; ok {
			res.Citations = append(res.Citations, c)
		}
	}
	return eris.Wrap(rows.Err(), "postgres: iterate citations")
}

func (s *PostgresStore) SaveEvaluations(ctx context.Context, records []*model.EvaluationRecord) error {
	for _, rec := range records {
		_, err := s.pool.Exec(ctx,
			`INSERT INTO evaluations (id, project_id, document_id, field_name, ai_value, human_value, similarity, is_match, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			rec.ID, rec.ProjectID, rec.DocumentID, rec.FieldName,
			rec.AIValue, rec.HumanValue, rec.SimilarityScore, rec.IsMatch, rec.CreatedAt,
		)
		if err != nil {
			return eris.Wrapf(err, "postgres: insert evaluation %s/%s", rec.DocumentID, rec.FieldName)
		}
	}
	return nil
}

func (s *PostgresStore) ListEvaluations(ctx context.Context, projectID string) ([]*model.EvaluationRecord, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project_id, document_id, field_name, ai_value, human_value, similarity, is_match, created_at
		 FROM evaluations WHERE project_id = $1 ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list evaluations")
	}
	defer rows.Close()

	var records []*model.EvaluationRecord
	for rows.Next() {
		var rec model.EvaluationRecord
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.DocumentID, &rec.FieldName,
			&rec.AIValue, &rec.HumanValue, &rec.SimilarityScore, &rec.IsMatch, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan evaluation")
		}
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "postgres: list evaluations iterate")
}

// ImportReferences bulk-upserts labeled values keyed by (document, field).
func (s *PostgresStore) ImportReferences(ctx context.Context, projectID string, refs []model.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(refs))
	for _, ref := range refs {
		rows = append(rows, []any{projectID, ref.DocumentID, ref.FieldName, ref.HumanValue})
	}
	_, err := db.BulkUpsert(ctx, s.pool, db.UpsertConfig{
		Table:        "evaluation_references",
		Columns:      []string{"project_id", "document_id", "field_name", "human_value"},
		ConflictKeys: []string{"project_id", "document_id", "field_name"},
	}, rows)
	return eris.Wrap(err, "postgres: import references")
}

func (s *PostgresStore) ListReferences(ctx context.Context, projectID string) ([]model.Reference, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT document_id, field_name, human_value FROM evaluation_references
		 WHERE project_id = $1 ORDER BY document_id, field_name`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list references")
	}
	defer rows.Close()

	var refs []model.Reference
	for rows.Next() {
		var ref model.Reference
		if err := rows.Scan(&ref.DocumentID, &ref.FieldName, &ref.HumanValue); err != nil {
			return nil, eris.Wrap(err, "postgres: scan reference")
		}
		refs = append(refs, ref)
	}
	return refs, eris.Wrap(rows.Err(), "postgres: list references iterate")
}

func collectPGResults(rows pgx.Rows) ([]*model.ExtractionResult, error) {
	defer rows.Close()

	var results []*model.ExtractionResult
	for rows.Next() {
		var res model.ExtractionResult
		var extractedValue, rawText, normalizedValue, method *string
		if err := rows.Scan(&res.ID, &res.RunID, &res.DocumentID, &res.FieldName, &res.FieldType,
			&extractedValue, &rawText, &normalizedValue, &res.Normalized, &res.Validated,
			&res.ConfidenceScore, &method, &res.Status, &res.ExtractedAt); err != nil {
			return nil, eris.Wrap(err, "postgres: scan extraction")
		}
		if extractedValue != nil {
			res.ExtractedValue = *extractedValue
		}
		if rawText != nil {
			res.RawText = *rawText
		}
		if normalizedValue != nil {
			res.NormalizedValue = *normalizedValue
		}
		if method != nil {
			res.Method = model.Method(*method)
		}
		results = append(results, &res)
	}
	return results, eris.Wrap(rows.Err(), "postgres: iterate extractions")
}

func marshalFailuresJSON(failures []model.FieldFailure) ([]byte, error) {
	if len(failures) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(failures)
	if err != nil {
		return nil, eris.Wrap(err, "marshal failures")
	}
	return b, nil
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
