package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/docreview/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS projects (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS documents (
	id         TEXT PRIMARY KEY,
	project_id TEXT NOT NULL REFERENCES projects(id),
	name       TEXT NOT NULL,
	content    TEXT NOT NULL,
	segments   TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE TABLE IF NOT EXISTS templates (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	version    INTEGER NOT NULL,
	fields     TEXT NOT NULL,
	created_at DATETIME NOT NULL DEFAULT (datetime('now')),
	UNIQUE (name, version)
);

CREATE TABLE IF NOT EXISTS runs (
	id               TEXT PRIMARY KEY,
	project_id       TEXT NOT NULL REFERENCES projects(id),
	template_id      TEXT NOT NULL,
	template_version INTEGER NOT NULL,
	status           TEXT NOT NULL DEFAULT 'queued',
	failures         TEXT,
	created_at       DATETIME NOT NULL DEFAULT (datetime('now')),
	completed_at     DATETIME
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
	normalized       INTEGER NOT NULL DEFAULT 0,
	validated        INTEGER NOT NULL DEFAULT 0,
	confidence       REAL NOT NULL DEFAULT 0,
	method           TEXT,
	status           TEXT NOT NULL,
	citations        TEXT,
	extracted_at     DATETIME NOT NULL
);

CREATE TABLE IF NOT EXISTS evaluations (
	id          TEXT PRIMARY KEY,
	project_id  TEXT NOT NULL,
	document_id TEXT NOT NULL,
	field_name  TEXT NOT NULL,
	ai_value    TEXT,
	human_value TEXT,
	similarity  REAL NOT NULL DEFAULT 0,
	is_match    INTEGER NOT NULL DEFAULT 0,
	created_at  DATETIME NOT NULL
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
CREATE INDEX IF NOT EXISTS idx_evaluations_project ON evaluations(project_id);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateProject(ctx context.Context, name string) (*model.Project, error) {
	id := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO projects (id, name, created_at) VALUES (?, ?, ?)`,
		id, name, time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: insert project")
	}
	return &model.Project{ID: id, Name: name}, nil
}

func (s *SQLiteStore) GetProject(ctx context.Context, projectID string) (*model.Project, error) {
	var p model.Project
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name FROM projects WHERE id = ?`, projectID,
	).Scan(&p.ID, &p.Name)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("project not found: %s", projectID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get project")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM documents WHERE project_id = ? ORDER BY created_at, id`, projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list project documents")
	}
	defer rows.Close()
	for rows.Next() {
		var docID string
		if err := rows.Scan(&docID); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan document id")
		}
		p.Documents = append(p.Documents, docID)
	}
	return &p, eris.Wrap(rows.Err(), "sqlite: iterate project documents")
}

func (s *SQLiteStore) SaveDocument(ctx context.Context, projectID string, doc *model.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	segmentsJSON, err := json.Marshal(doc.Segments)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal segments")
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO documents (id, project_id, name, content, segments, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		doc.ID, projectID, doc.Name, doc.Text, string(segmentsJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert document %s", doc.Name)
}

func (s *SQLiteStore) GetDocument(ctx context.Context, documentID string) (*model.Document, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, content, segments FROM documents WHERE id = ?`, documentID,
	)
	return scanDocument(row)
}

func (s *SQLiteStore) ListDocuments(ctx context.Context, projectID string) ([]model.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, content, segments FROM documents WHERE project_id = ? ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list documents")
	}
	defer rows.Close()

	var docs []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *d)
	}
	return docs, eris.Wrap(rows.Err(), "sqlite: list documents iterate")
}

func (s *SQLiteStore) SaveTemplate(ctx context.Context, tpl *model.FieldTemplate) (*model.FieldTemplate, error) {
	fieldsJSON, err := json.Marshal(tpl.Fields)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: marshal template fields")
	}

	var maxVersion sql.NullInt64
	err = s.db.QueryRowContext(ctx,
		`SELECT MAX(version) FROM templates WHERE name = ?`, tpl.Name,
	).Scan(&maxVersion)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query template version")
	}

	saved := *tpl
	saved.ID = uuid.New().String()
	saved.Version = int(maxVersion.Int64) + 1

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO templates (id, name, version, fields, created_at) VALUES (?, ?, ?, ?, ?)`,
		saved.ID, saved.Name, saved.Version, string(fieldsJSON), time.Now().UTC(),
	)
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: insert template %s", tpl.Name)
	}
	return &saved, nil
}

func (s *SQLiteStore) GetTemplate(ctx context.Context, name string, version int) (*model.FieldTemplate, error) {
	query := `SELECT id, name, version, fields FROM templates WHERE name = ?`
	args := []any{name}
	if version > 0 {
		query += ` AND version = ?`
		args = append(args, version)
	}
	query += ` ORDER BY version DESC LIMIT 1`

	var tpl model.FieldTemplate
	var fieldsJSON string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&tpl.ID, &tpl.Name, &tpl.Version, &fieldsJSON)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("template not found: %s", name)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get template")
	}
	if err := json.Unmarshal([]byte(fieldsJSON), &tpl.Fields); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal template fields")
	}
	return &tpl, nil
}

func (s *SQLiteStore) CreateRun(ctx context.Context, run *model.Run) error {
	failuresJSON, err := marshalFailures(run.Failures)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, project_id, template_id, template_version, status, failures, created_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.ProjectID, run.TemplateID, run.TemplateVersion, string(run.Status),
		failuresJSON, run.CreatedAt, run.CompletedAt,
	)
	return eris.Wrapf(err, "sqlite: insert run %s", run.ID)
}

func (s *SQLiteStore) CompleteRun(ctx context.Context, run *model.Run) error {
	failuresJSON, err := marshalFailures(run.Failures)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, failures = ?, completed_at = ? WHERE id = ?`,
		string(run.Status), failuresJSON, run.CompletedAt, run.ID,
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: complete run %s", run.ID)
	}
	return checkRowsAffected(res, "run", run.ID)
}

func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.Run, error) {
	var r model.Run
	var failuresJSON sql.NullString
	var completedAt sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`SELECT id, project_id, template_id, template_version, status, failures, created_at, completed_at
		 FROM runs WHERE id = ?`, runID,
	).Scan(&r.ID, &r.ProjectID, &r.TemplateID, &r.TemplateVersion, &r.Status, &failuresJSON, &r.CreatedAt, &completedAt)
	if err == sql.ErrNoRows {
		return nil, eris.Errorf("run not found: %s", runID)
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: get run")
	}
	if completedAt.Valid {
		r.CompletedAt = &completedAt.Time
	}
	if failuresJSON.Valid && failuresJSON.String != "" {
		if err := json.Unmarshal([]byte(failuresJSON.String), &r.Failures); err != nil {
			return nil, eris.Wrap(err, "sqlite: unmarshal run failures")
		}
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]model.Run, error) {
	query := `SELECT id, project_id, template_id, template_version, status, failures, created_at, completed_at
	          FROM runs WHERE 1=1`
	var args []any
	if filter.ProjectID != "" {
		query += ` AND project_id = ?`
		args = append(args, filter.ProjectID)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY created_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []model.Run
	for rows.Next() {
		var r model.Run
		var failuresJSON sql.NullString
		var completedAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.ProjectID, &r.TemplateID, &r.TemplateVersion, &r.Status, &failuresJSON, &r.CreatedAt, &completedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		if completedAt.Valid {
			r.CompletedAt = &completedAt.Time
		}
		if failuresJSON.Valid && failuresJSON.String != "" {
			if err := json.Unmarshal([]byte(failuresJSON.String), &r.Failures); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal run failures")
			}
		}
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

func (s *SQLiteStore) SaveResults(ctx context.Context, results []*model.ExtractionResult) error {
	if len(results) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save results")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO extractions (id, run_id, document_id, field_name, field_type, extracted_value, raw_text,
		 normalized_value, normalized, validated, confidence, method, status, citations, extracted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return eris.Wrap(err, "sqlite: prepare insert extraction")
	}
	defer stmt.Close()

	for _, res := range results {
		citationsJSON, err := json.Marshal(res.Citations)
		if err != nil {
			return eris.Wrap(err, "sqlite: marshal citations")
		}
		if _, err := stmt.ExecContext(ctx,
			res.ID, res.RunID, res.DocumentID, res.FieldName, string(res.FieldType),
			res.ExtractedValue, res.RawText, res.NormalizedValue,
			res.Normalized, res.Validated, res.ConfidenceScore,
			string(res.Method), string(res.Status), string(citationsJSON), res.ExtractedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert extraction %s/%s", res.DocumentID, res.FieldName)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save results")
}

const sqliteExtractionColumns = `id, run_id, document_id, field_name, field_type, extracted_value, raw_text,
normalized_value, normalized, validated, confidence, method, status, citations, extracted_at`

func (s *SQLiteStore) ListResults(ctx context.Context, runID string) ([]*model.ExtractionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteExtractionColumns+` FROM extractions WHERE run_id = ? ORDER BY document_id, field_name`,
		runID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	return collectResults(rows)
}

func (s *SQLiteStore) LatestResults(ctx context.Context, projectID string) ([]*model.ExtractionResult, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteExtractionColumns+` FROM extractions WHERE run_id = (
		   SELECT id FROM runs WHERE project_id = ? AND status = ? ORDER BY created_at DESC LIMIT 1
		 ) ORDER BY document_id, field_name`,
		projectID, string(model.RunStatusCompleted),
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: latest results")
	}
	return collectResults(rows)
}

func (s *SQLiteStore) SaveEvaluations(ctx context.Context, records []*model.EvaluationRecord) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin save evaluations")
	}
	defer tx.Rollback()

	for _, rec := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO evaluations (id, project_id, document_id, field_name, ai_value, human_value, similarity, is_match, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.ID, rec.ProjectID, rec.DocumentID, rec.FieldName,
			rec.AIValue, rec.HumanValue, rec.SimilarityScore, rec.IsMatch, rec.CreatedAt,
		); err != nil {
			return eris.Wrapf(err, "sqlite: insert evaluation %s/%s", rec.DocumentID, rec.FieldName)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit save evaluations")
}

func (s *SQLiteStore) ListEvaluations(ctx context.Context, projectID string) ([]*model.EvaluationRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, project_id, document_id, field_name, ai_value, human_value, similarity, is_match, created_at
		 FROM evaluations WHERE project_id = ? ORDER BY created_at, id`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list evaluations")
	}
	defer rows.Close()

	var records []*model.EvaluationRecord
	for rows.Next() {
		var rec model.EvaluationRecord
		if err := rows.Scan(&rec.ID, &rec.ProjectID, &rec.DocumentID, &rec.FieldName,
			&rec.AIValue, &rec.HumanValue, &rec.SimilarityScore, &rec.IsMatch, &rec.CreatedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan evaluation")
		}
		records = append(records, &rec)
	}
	return records, eris.Wrap(rows.Err(), "sqlite: list evaluations iterate")
}

func (s *SQLiteStore) ImportReferences(ctx context.Context, projectID string, refs []model.Reference) error {
	if len(refs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin import references")
	}
	defer tx.Rollback()

	for _, ref := range refs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO evaluation_references (project_id, document_id, field_name, human_value) VALUES (?, ?, ?, ?)
			 ON CONFLICT (project_id, document_id, field_name) DO UPDATE SET human_value = excluded.human_value`,
			projectID, ref.DocumentID, ref.FieldName, ref.HumanValue,
		); err != nil {
			return eris.Wrapf(err, "sqlite: import reference %s/%s", ref.DocumentID, ref.FieldName)
		}
	}
	return eris.Wrap(tx.Commit(), "sqlite: commit import references")
}

func (s *SQLiteStore) ListReferences(ctx context.Context, projectID string) ([]model.Reference, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT document_id, field_name, human_value FROM evaluation_references
		 WHERE project_id = ? ORDER BY document_id, field_name`,
		projectID,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list references")
	}
	defer rows.Close()

	var refs []model.Reference
	for rows.Next() {
		var ref model.Reference
		if err := rows.Scan(&ref.DocumentID, &ref.FieldName, &ref.HumanValue); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan reference")
		}
		refs = append(refs, ref)
	}
	return refs, eris.Wrap(rows.Err(), "sqlite: list references iterate")
}

// helpers

func checkRowsAffected(res sql.Result, entity, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return eris.Wrap(err, "rows affected")
	}
	if n == 0 {
		return eris.Errorf("%s not found: %s", entity, id)
	}
	return nil
}

func marshalFailures(failures []model.FieldFailure) (string, error) {
	if len(failures) == 0 {
		return "", nil
	}
	b, err := json.Marshal(failures)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal failures")
	}
	return string(b), nil
}

type scannable interface {
	Scan(dest ...any) error
}

func scanDocument(row scannable) (*model.Document, error) {
	var d model.Document
	var segmentsJSON string
	err := row.Scan(&d.ID, &d.Name, &d.Text, &segmentsJSON)
	if err == sql.ErrNoRows {
		return nil, eris.New("document not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan document")
	}
	if err := json.Unmarshal([]byte(segmentsJSON), &d.Segments); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal segments")
	}
	return &d, nil
}

func collectResults(rows *sql.Rows) ([]*model.ExtractionResult, error) {
	defer rows.Close()

	var results []*model.ExtractionResult
	for rows.Next() {
		var res model.ExtractionResult
		var extractedValue, rawText, normalizedValue, method, citationsJSON sql.NullString
		if err := rows.Scan(&res.ID, &res.RunID, &res.DocumentID, &res.FieldName, &res.FieldType,
			&extractedValue, &rawText, &normalizedValue, &res.Normalized, &res.Validated,
			&res.ConfidenceScore, &method, &res.Status, &citationsJSON, &res.ExtractedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan extraction")
		}
		res.ExtractedValue = extractedValue.String
		res.RawText = rawText.String
		res.NormalizedValue = normalizedValue.String
		res.Method = model.Method(method.String)
		if citationsJSON.Valid && citationsJSON.String != "" {
			if err := json.Unmarshal([]byte(citationsJSON.String), &res.Citations); err != nil {
				return nil, eris.Wrap(err, "sqlite: unmarshal citations")
			}
		}
		results = append(results, &res)
	}
	return results, eris.Wrap(rows.Err(), "sqlite: iterate extractions")
}
