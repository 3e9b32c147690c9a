package domain

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// FitResult holds a least-squares harmonic fit of one series.
type FitResult struct {
	Mean         float64
	Constituents []ConstituentParam
}

// Get returns the fitted parameters of the named constituent.
func (r FitResult) Get(name string) (ConstituentParam, bool) {
	for _, c := range r.Constituents {
		if c.Name == name {
			return c, true
		}
	}
	return ConstituentParam{}, false
}

// Params returns synthesis parameters that reproduce the fit.
func (r FitResult) Params() PredictionParams {
	return PredictionParams{Constituents: r.Constituents, Mean: r.Mean}
}

// RMSResidual returns the root-mean-square difference between the fit and series.
func (r FitResult) RMSResidual(hours, series []float64) float64 {
	model := Synthesize(hours, r.Params())
	diff := make([]float64, 0, len(series))
	for k, v := range series {
		if math.IsNaN(v) {
			continue
		}
		diff = append(diff, v-model[k])
	}
	if len(diff) == 0 {
		return math.NaN()
	}
	return floats.Norm(diff, 2) / math.Sqrt(float64(len(diff)))
}

// FitConstituents solves series(t) = mean + Σ A_k cos(ω_k t - φ_k) by linear
// least squares. hours are offsets from the phase origin. nconst selects the
// first 2, 4, 6 or 8 entries of FitOrder. NaN samples are ignored. A series of
// all zeros yields zero amplitudes and phases.
func FitConstituents(hours, series []float64, nconst int) (FitResult, error) {
	if nconst < 2 || nconst > len(FitOrder) || nconst%2 != 0 {
		return FitResult{}, fmt.Errorf("nconst must be 2, 4, 6 or 8, got %d", nconst)
	}
	if len(hours) != len(series) {
		return FitResult{}, fmt.Errorf("%d times, %d values", len(hours), len(series))
	}
	names := FitOrder[:nconst]

	ts := make([]float64, 0, len(hours))
	ys := make([]float64, 0, len(series))
	allZero := true
	for k, v := range series {
		if math.IsNaN(v) {
			continue
		}
		if v != 0 {
			allZero = false
		}
		ts = append(ts, hours[k])
		ys = append(ys, v)
	}

	result := FitResult{Constituents: make([]ConstituentParam, nconst)}
	for k, name := range names {
		result.Constituents[k] = ConstituentParam{Name: name, SpeedDegPerHr: StandardConstituents[name]}
	}
	if allZero {
		return result, nil
	}

	cols := 2*nconst + 1
	if len(ys) < cols {
		return FitResult{}, fmt.Errorf("need at least %d samples for %d constituents, got %d", cols, nconst, len(ys))
	}

	a := mat.NewDense(len(ys), cols, nil)
	for r, t := range ts {
		a.Set(r, 0, 1)
		for k, c := range result.Constituents {
			arg := Deg2Rad(c.SpeedDegPerHr * t)
			a.Set(r, 1+2*k, math.Cos(arg))
			a.Set(r, 2+2*k, math.Sin(arg))
		}
	}

	var qr mat.QR
	qr.Factorize(a)
	var x mat.VecDense
	if err := qr.SolveVecTo(&x, false, mat.NewVecDense(len(ys), ys)); err != nil {
		return FitResult{}, fmt.Errorf("failed to solve harmonic least squares: %w", err)
	}

	result.Mean = x.AtVec(0)
	for k := range result.Constituents {
		ca := x.AtVec(1 + 2*k)
		sb := x.AtVec(2 + 2*k)
		result.Constituents[k].AmplitudeM = math.Hypot(ca, sb)
		result.Constituents[k].PhaseDeg = NormalizeDeg(Rad2Deg(math.Atan2(sb, ca)))
	}
	return result, nil
}

// FitColumns fits every column independently. columns[c][t] is the value of
// column c at hours[t].
func FitColumns(hours []float64, columns [][]float64, nconst int) ([]FitResult, error) {
	out := make([]FitResult, len(columns))
	for c, series := range columns {
		r, err := FitConstituents(hours, series, nconst)
		if err != nil {
			return nil, fmt.Errorf("column %d: %w", c, err)
		}
		out[c] = r
	}
	return out, nil
}

// EllipseFromFit fits u and v velocity series, applies the nodal corrections
// and returns ellipse parameters per fitted constituent. t is the correction
// time in hours since the Unix epoch.
func EllipseFromFit(hours, u, v []float64, nconst int, corr NodalCorrection, t float64) (map[string]Ellipse, error) {
	if corr == nil {
		corr = IdentityNodalCorrection{}
	}
	uf, err := FitConstituents(hours, u, nconst)
	if err != nil {
		return nil, fmt.Errorf("failed to fit u: %w", err)
	}
	vf, err := FitConstituents(hours, v, nconst)
	if err != nil {
		return nil, fmt.Errorf("failed to fit v: %w", err)
	}
	uc := ApplyCorrection(uf.Constituents, corr, t)
	vc := ApplyCorrection(vf.Constituents, corr, t)

	out := make(map[string]Ellipse, len(uc))
	for k := range uc {
		out[uc[k].Name] = AP2EP(uc[k].AmplitudeM, uc[k].PhaseDeg, vc[k].AmplitudeM, vc[k].PhaseDeg)
	}
	return out, nil
}
