package extract

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/docreview/internal/cite"
	"github.com/sells-group/docreview/internal/model"
	"github.com/sells-group/docreview/internal/normalize"
)

// DefaultConcurrency bounds concurrent (document, field) extractions.
const DefaultConcurrency = 4

// Orchestrator drives extraction runs: for every (document, field) pair it
// invokes the primary strategy, falls back to heuristics when the primary
// is unavailable or comes back empty, then normalizes, validates, locates
// citations, and composes the final confidence.
type Orchestrator struct {
	primary     Strategy
	fallback    Strategy
	concurrency int
}

// NewOrchestrator wires the two strategies. A nil fallback disables the
// heuristic tier; concurrency <= 0 selects DefaultConcurrency.
func NewOrchestrator(primary, fallback Strategy, concurrency int) *Orchestrator {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Orchestrator{primary: primary, fallback: fallback, concurrency: concurrency}
}

// Request describes one extraction run.
type Request struct {
	ProjectID string
	Documents []*model.Document
	Template  *model.FieldTemplate
}

// Execute runs extraction for every document and template field. It always
// returns the run record and whatever results were produced; on context
// cancellation the run is marked failed and the partial results are kept.
func (o *Orchestrator) Execute(ctx context.Context, req Request) (*model.Run, []*model.ExtractionResult, error) {
	if req.Template == nil || len(req.Template.Fields) == 0 {
		return nil, nil, eris.New("extract: template has no fields")
	}

	run := &model.Run{
		ID:              uuid.NewString(),
		ProjectID:       req.ProjectID,
		TemplateID:      req.Template.ID,
		TemplateVersion: req.Template.Version,
		Status:          model.RunStatusRunning,
		CreatedAt:       time.Now().UTC(),
	}

	var (
		mu      sync.Mutex
		results []*model.ExtractionResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)

	for _, doc := range req.Documents {
		for i := range req.Template.Fields {
			doc, field := doc, &req.Template.Fields[i]

			if !field.FieldType.Valid() {
				mu.Lock()
				run.Failures = append(run.Failures, model.FieldFailure{
					DocumentID: doc.ID,
					FieldName:  field.Name,
					Reason:     "unknown field type " + string(field.FieldType),
				})
				mu.Unlock()
				zap.L().Warn("skipping field with unknown type",
					zap.String("field", field.Name),
					zap.String("type", string(field.FieldType)))
				continue
			}

			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				res, err := o.extractField(gctx, run.ID, doc, field)
				if err != nil {
					return err
				}
				mu.Lock()
				results = append(results, res)
				if res.Status == model.StatusError {
					run.Failures = append(run.Failures, model.FieldFailure{
						DocumentID: doc.ID,
						FieldName:  field.Name,
						Reason:     "extraction unavailable",
					})
				}
				mu.Unlock()
				return nil
			})
		}
	}

	err := g.Wait()
	done := time.Now().UTC()
	run.CompletedAt = &done
	if err != nil {
		run.Status = model.RunStatusFailed
		return run, results, eris.Wrap(err, "extract: run aborted")
	}
	run.Status = model.RunStatusCompleted
	zap.L().Info("extraction run completed",
		zap.String("run_id", run.ID),
		zap.Int("results", len(results)),
		zap.Int("failures", len(run.Failures)))
	return run, results, nil
}

// extractField produces exactly one result for a (document, field) pair.
// Strategy errors never propagate except for context cancellation: an
// unavailable primary falls through to the heuristic tier, and a dead
// heuristic tier yields a StatusError row.
func (o *Orchestrator) extractField(ctx context.Context, runID string, doc *model.Document, field *model.FieldDefinition) (*model.ExtractionResult, error) {
	raw, method, err := o.runStrategies(ctx, doc, field)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &model.ExtractionResult{
			ID:          uuid.NewString(),
			RunID:       runID,
			DocumentID:  doc.ID,
			FieldName:   field.Name,
			FieldType:   field.FieldType,
			Status:      model.StatusError,
			ExtractedAt: time.Now().UTC(),
		}, nil
	}

	res := &model.ExtractionResult{
		ID:          uuid.NewString(),
		RunID:       runID,
		DocumentID:  doc.ID,
		FieldName:   field.Name,
		FieldType:   field.FieldType,
		Method:      method,
		ExtractedAt: time.Now().UTC(),
	}

	if raw == nil || !raw.Found() {
		res.Status = model.StatusNotFound
		res.ConfidenceScore = 0
		return res, nil
	}

	res.Status = model.StatusExtracted
	res.ExtractedValue = raw.Value
	res.RawText = raw.RawText

	normalized, ok := normalize.Normalize(raw.Value, field.FieldType, field.NormalizationRules)
	res.Normalized = ok
	if ok {
		res.NormalizedValue = normalized
	}

	valueForChecks := raw.Value
	if ok {
		valueForChecks = normalized
	}
	res.Validated = normalize.Validate(valueForChecks, field.FieldType, field.ValidationRules)

	searchText := raw.RawText
	if searchText == "" {
		searchText = raw.Value
	}
	res.Citations = cite.Locate(searchText, doc.Segments, model.MaxCitations)

	res.ConfidenceScore = Compose(Signals{
		MethodConfidence: raw.Confidence,
		Normalized:       ok,
		Validated:        res.Validated,
		CitationCount:    len(res.Citations),
	})
	return res, nil
}

// runStrategies applies the primary strategy, then the fallback when the
// primary is unavailable or found nothing.
func (o *Orchestrator) runStrategies(ctx context.Context, doc *model.Document, field *model.FieldDefinition) (*RawExtraction, model.Method, error) {
	raw, err := o.primary.Extract(ctx, doc, field)
	switch {
	case err == nil && raw != nil && raw.Found():
		return raw, o.primary.Name(), nil
	case err != nil && !eris.Is(err, ErrUnavailable):
		return nil, o.primary.Name(), err
	}

	if o.fallback == nil {
		if err != nil {
			return nil, o.primary.Name(), err
		}
		return raw, o.primary.Name(), nil
	}

	if err != nil {
		zap.L().Warn("primary strategy unavailable, using fallback",
			zap.String("document_id", doc.ID),
			zap.String("field", field.Name))
	}

	fraw, ferr := o.fallback.Extract(ctx, doc, field)
	if ferr != nil {
		return nil, o.fallback.Name(), ferr
	}
	return fraw, o.fallback.Name(), nil
}
