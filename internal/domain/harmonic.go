package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// AmpPhase converts a harmonic real/imaginary pair into amplitude and phase.
// Phase = -atan2(im, re) in degrees, normalized to [0, 360).
func AmpPhase(re, im float64) (amp, phaDeg float64) {
	amp = math.Hypot(re, im)
	phaDeg = NormalizeDeg(-Rad2Deg(math.Atan2(im, re)))
	return amp, phaDeg
}

// ReIm is the inverse of AmpPhase.
func ReIm(amp, phaDeg float64) (re, im float64) {
	rad := Deg2Rad(phaDeg)
	return amp * math.Cos(rad), -amp * math.Sin(rad)
}

// HarmonicField holds the real and imaginary coefficients of one constituent
// over a grid. Values are stored row-major with the given shape.
type HarmonicField struct {
	Name  string // E.g., "M2_eta".
	Shape []int
	Re    []float64
	Im    []float64
}

// Validate checks that the coefficient slices match the shape.
func (f *HarmonicField) Validate() error {
	n := 1
	for _, d := range f.Shape {
		n *= d
	}
	if len(f.Re) != n || len(f.Im) != n {
		return fmt.Errorf("field %s: expected %d values, got re=%d im=%d", f.Name, n, len(f.Re), len(f.Im))
	}
	return nil
}

// AmpPhase returns per-cell amplitude and phase grids.
func (f *HarmonicField) AmpPhase() (amp, pha []float64) {
	amp = make([]float64, len(f.Re))
	pha = make([]float64, len(f.Re))
	for k := range f.Re {
		amp[k], pha[k] = AmpPhase(f.Re[k], f.Im[k])
	}
	return amp, pha
}

// Composite combines harmonic fields from several runs as the run-length
// weighted mean of their real and imaginary parts. lengths are in days.
func Composite(runs []*HarmonicField, lengths []float64) (*HarmonicField, error) {
	if len(runs) != len(lengths) {
		return nil, fmt.Errorf("%d runs, %d lengths: %w", len(runs), len(lengths), ErrLengthMismatch)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs to combine")
	}
	total := floats.Sum(lengths)
	if total <= 0 {
		return nil, fmt.Errorf("total run length must be positive, got %g", total)
	}

	first := runs[0]
	if err := first.Validate(); err != nil {
		return nil, err
	}
	out := &HarmonicField{
		Name:  first.Name,
		Shape: append([]int(nil), first.Shape...),
		Re:    make([]float64, len(first.Re)),
		Im:    make([]float64, len(first.Im)),
	}
	for k, run := range runs {
		if err := run.Validate(); err != nil {
			return nil, err
		}
		if len(run.Re) != len(out.Re) {
			return nil, fmt.Errorf("run %d has %d cells, expected %d", k, len(run.Re), len(out.Re))
		}
		floats.AddScaled(out.Re, lengths[k], run.Re)
		floats.AddScaled(out.Im, lengths[k], run.Im)
	}
	floats.Scale(1/total, out.Re)
	floats.Scale(1/total, out.Im)
	return out, nil
}

// Comparison holds the distances between an observed and a modelled constituent.
type Comparison struct {
	DF95 float64 // Complex difference (Foreman et al. 1995).
	DM04 float64 // RMS difference over a tidal cycle (Masson and Cummins 2004).
}

// CompareConstituent returns the distances between observed (ao, po) and
// modelled (am, pm) amplitude/phase pairs. Phases are in degrees.
func CompareConstituent(ao, po, am, pm float64) Comparison {
	por := Deg2Rad(po)
	pmr := Deg2Rad(pm)
	dx := ao*math.Cos(por) - am*math.Cos(pmr)
	dy := ao*math.Sin(por) - am*math.Sin(pmr)
	m04 := 0.5*(am*am+ao*ao) - am*ao*math.Cos(pmr-por)
	if m04 < 0 {
		// Rounding can push identical pairs slightly negative.
		m04 = 0
	}
	return Comparison{
		DF95: math.Sqrt(dx*dx + dy*dy),
		DM04: math.Sqrt(m04),
	}
}
