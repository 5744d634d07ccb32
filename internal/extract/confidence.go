package extract

// Confidence adjustments applied after normalization and validation.
const (
	normFailPenalty       = 0.5
	validationFailPenalty = 0.6
	citationBonus         = 0.05
	citationBonusMinCount = 2
)

// Signals carries the inputs to confidence composition for one extraction.
type Signals struct {
	MethodConfidence float64
	Normalized       bool
	Validated        bool
	CitationCount    int
}

// Compose folds the post-extraction signals into the final confidence
// score. Normalization failure halves the score, validation failure
// multiplies it by 0.6, and two or more citations add a small bonus.
// The result is clamped to [0, 1].
func Compose(s Signals) float64 {
	score := s.MethodConfidence
	if !s.Normalized {
		score *= normFailPenalty
	}
	if !s.Validated {
		score *= validationFailPenalty
	}
	if s.CitationCount >= citationBonusMinCount {
		score += citationBonus
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
