package pipeline

import (
	"math"
	"testing"
)

func TestMeanStdDev(t *testing.T) {
	tests := []struct {
		name       string
		values     []float64
		wantMean   float64
		wantStdDev float64
	}{
		{
			name:       "Single element has zero deviation",
			values:     []float64{42},
			wantMean:   42,
			wantStdDev: 0,
		},
		{
			name:       "Two equal elements",
			values:     []float64{7, 7},
			wantMean:   7,
			wantStdDev: 0,
		},
		{
			name:       "Two-point sample",
			values:     []float64{10, 1000},
			wantMean:   505,
			wantStdDev: 495,
		},
		{
			name:       "Population variance divides by N",
			values:     []float64{2, 4, 4, 4, 5, 5, 7, 9},
			wantMean:   5,
			wantStdDev: 2,
		},
		{
			name:       "Negative values",
			values:     []float64{-3, 3},
			wantMean:   0,
			wantStdDev: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mean, stdDev := MeanStdDev(tt.values)

			if math.Abs(mean-tt.wantMean) > 1e-12 {
				t.Errorf("Expected mean %v, got %v", tt.wantMean, mean)
			}
			if math.Abs(stdDev-tt.wantStdDev) > 1e-12 {
				t.Errorf("Expected stddev %v, got %v", tt.wantStdDev, stdDev)
			}
		})
	}
}
