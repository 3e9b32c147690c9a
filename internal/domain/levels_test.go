package domain

import (
	"math"
	"testing"
)

func TestFindModelLevel_Bounds(t *testing.T) {
	levels := []float64{0.5, 1.5, 2.5, 3.5}

	tests := []struct {
		depth      float64
		fractional bool
		expected   float64
	}{
		{1.4, false, 1},
		{1.0, true, 0.5},
		{2.0, true, 1.5},
		{0.0, true, -0.5},
		{5.0, true, 3},
		{3.5, true, 3},
	}
	for _, tt := range tests {
		got := FindModelLevel(tt.depth, levels, tt.fractional)
		if math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("depth %.1f fractional=%v: expected %.3f, got %.3f", tt.depth, tt.fractional, tt.expected, got)
		}
	}
	if !math.IsNaN(FindModelLevel(1, nil, false)) {
		t.Errorf("expected NaN for empty levels")
	}
}
