package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompose(t *testing.T) {
	tests := []struct {
		name    string
		signals Signals
		want    float64
	}{
		{
			name:    "clean pass keeps method confidence",
			signals: Signals{MethodConfidence: 0.9, Normalized: true, Validated: true, CitationCount: 1},
			want:    0.9,
		},
		{
			name:    "normalization failure halves",
			signals: Signals{MethodConfidence: 0.9, Normalized: false, Validated: true},
			want:    0.45,
		},
		{
			name:    "validation failure multiplies by 0.6",
			signals: Signals{MethodConfidence: 0.9, Normalized: true, Validated: false},
			want:    0.54,
		},
		{
			name:    "both penalties stack",
			signals: Signals{MethodConfidence: 1.0, Normalized: false, Validated: false},
			want:    0.3,
		},
		{
			name:    "two citations earn the bonus",
			signals: Signals{MethodConfidence: 0.9, Normalized: true, Validated: true, CitationCount: 2},
			want:    0.95,
		},
		{
			name:    "one citation earns nothing",
			signals: Signals{MethodConfidence: 0.9, Normalized: true, Validated: true, CitationCount: 1},
			want:    0.9,
		},
		{
			name:    "bonus clamps at one",
			signals: Signals{MethodConfidence: 0.98, Normalized: true, Validated: true, CitationCount: 3},
			want:    1.0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Compose(tt.signals), 1e-9)
		})
	}
}
