package domain

import (
	"errors"
	"math"
	"testing"
)

func angleDiff(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

// TestAmpPhase_RoundTrip tests that ReIm inverts AmpPhase.
func TestAmpPhase_RoundTrip(t *testing.T) {
	tests := []struct {
		amp, pha float64
	}{
		{1.0, 0},
		{0.8, 45},
		{0.25, 179.5},
		{1.3, 270},
		{2.0, 359.9},
	}

	for _, tt := range tests {
		re, im := ReIm(tt.amp, tt.pha)
		amp, pha := AmpPhase(re, im)
		if math.Abs(amp-tt.amp) > 1e-12 {
			t.Errorf("Amplitude %.3f: got %.12f", tt.amp, amp)
		}
		if angleDiff(pha, tt.pha) > 1e-9 {
			t.Errorf("Phase %.3f: got %.12f", tt.pha, pha)
		}
		if pha < 0 || pha >= 360 {
			t.Errorf("Phase %.3f out of range", pha)
		}
	}
}

// TestAmpPhase_Sign tests the phase lag sign convention.
func TestAmpPhase_Sign(t *testing.T) {
	amp, pha := AmpPhase(0, -1)
	if math.Abs(amp-1) > 1e-12 || math.Abs(pha-90) > 1e-12 {
		t.Errorf("AmpPhase(0, -1): expected (1, 90), got (%.6f, %.6f)", amp, pha)
	}
}

// TestComposite_SingleRun tests that one run is returned unchanged.
func TestComposite_SingleRun(t *testing.T) {
	run := &HarmonicField{Name: "M2_eta", Shape: []int{1, 2}, Re: []float64{0.5, -1}, Im: []float64{0.25, 2}}

	got, err := Composite([]*HarmonicField{run}, []float64{30})
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	for k := range run.Re {
		if math.Abs(got.Re[k]-run.Re[k]) > 1e-12 || math.Abs(got.Im[k]-run.Im[k]) > 1e-12 {
			t.Errorf("Cell %d: expected (%.3f, %.3f), got (%.3f, %.3f)", k, run.Re[k], run.Im[k], got.Re[k], got.Im[k])
		}
	}
}

// TestComposite_Weighted tests the length-weighted mean.
func TestComposite_Weighted(t *testing.T) {
	a := &HarmonicField{Shape: []int{1}, Re: []float64{1}, Im: []float64{0}}
	b := &HarmonicField{Shape: []int{1}, Re: []float64{3}, Im: []float64{4}}

	got, err := Composite([]*HarmonicField{a, b}, []float64{1, 3})
	if err != nil {
		t.Fatalf("Composite: %v", err)
	}
	if math.Abs(got.Re[0]-2.5) > 1e-12 {
		t.Errorf("Re: expected 2.5, got %.12f", got.Re[0])
	}
	if math.Abs(got.Im[0]-3.0) > 1e-12 {
		t.Errorf("Im: expected 3.0, got %.12f", got.Im[0])
	}
	if a.Re[0] != 1 {
		t.Errorf("Input run was modified")
	}
}

// TestComposite_LengthMismatch tests the count check.
func TestComposite_LengthMismatch(t *testing.T) {
	a := &HarmonicField{Shape: []int{1}, Re: []float64{1}, Im: []float64{0}}

	_, err := Composite([]*HarmonicField{a, a}, []float64{1})
	if !errors.Is(err, ErrLengthMismatch) {
		t.Errorf("Expected ErrLengthMismatch, got %v", err)
	}
}

// TestComposite_ShapeMismatch tests that malformed runs are rejected.
func TestComposite_ShapeMismatch(t *testing.T) {
	a := &HarmonicField{Shape: []int{2}, Re: []float64{1}, Im: []float64{0}}

	if _, err := Composite([]*HarmonicField{a}, []float64{1}); err == nil {
		t.Errorf("Expected error for malformed run")
	}
}

// TestCompareConstituent tests both distance measures.
func TestCompareConstituent(t *testing.T) {
	same := CompareConstituent(0.9, 120, 0.9, 120)
	if same.DF95 > 1e-12 || same.DM04 > 1e-12 {
		t.Errorf("Identical constituents: expected zero distances, got %+v", same)
	}

	// Amplitude-only difference: D_F95 = |ao-am|, D_M04 = |ao-am|/sqrt(2).
	amp := CompareConstituent(1.0, 30, 0.6, 30)
	if math.Abs(amp.DF95-0.4) > 1e-12 {
		t.Errorf("D_F95: expected 0.4, got %.12f", amp.DF95)
	}
	if math.Abs(amp.DM04-0.4/math.Sqrt2) > 1e-12 {
		t.Errorf("D_M04: expected %.12f, got %.12f", 0.4/math.Sqrt2, amp.DM04)
	}

	// Opposite phases.
	opp := CompareConstituent(1.0, 0, 1.0, 180)
	if math.Abs(opp.DF95-2.0) > 1e-12 {
		t.Errorf("D_F95 opposite: expected 2, got %.12f", opp.DF95)
	}
	if math.Abs(opp.DM04-math.Sqrt2) > 1e-12 {
		t.Errorf("D_M04 opposite: expected sqrt(2), got %.12f", opp.DM04)
	}
}
