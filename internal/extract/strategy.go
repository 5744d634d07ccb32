// Package extract drives field extraction: a primary semantic-inference
// strategy with a heuristic fallback, confidence composition, and the
// orchestrator that fans extraction out over every (document, field) pair.
package extract

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/docreview/internal/model"
)

// ErrUnavailable signals that the primary strategy could not produce an
// answer (backend unreachable, malformed response). It is recovered locally
// by falling back to the heuristic strategy and is never surfaced to the
// caller as a run failure.
var ErrUnavailable = eris.New("extraction strategy unavailable")

// RawExtraction is the method-intrinsic output of a strategy before
// normalization, citation lookup, and confidence composition.
type RawExtraction struct {
	Value      string
	RawText    string
	Confidence float64
}

// Found reports whether the strategy produced a value.
func (r *RawExtraction) Found() bool {
	return r != nil && strings.TrimSpace(r.Value) != ""
}

// Strategy extracts a single field from a document. Implementations return
// a zero-valued RawExtraction (not an error) when the field is simply not
// present.
type Strategy interface {
	Name() model.Method
	Extract(ctx context.Context, doc *model.Document, field *model.FieldDefinition) (*RawExtraction, error)
}

// noiseValues are answers that mean "not found" regardless of phrasing.
var noiseValues = map[string]bool{
	"n/a":                  true,
	"none":                 true,
	"null":                 true,
	"unknown":              true,
	"not found":            true,
	"not specified":        true,
	"not stated":           true,
	"no information found": true,
}

// isNoise reports whether a value is a placeholder for "nothing found".
func isNoise(value string) bool {
	cleaned := strings.TrimRight(strings.ToLower(strings.TrimSpace(value)), ".")
	return noiseValues[cleaned]
}
