package carbonate

import (
	"errors"
	"fmt"
	"math"
)

// SolveArrays solves one input pair per row. values holds the two input
// series in the order of params; cond holds one Conditions per row. The
// result maps each of the five observable names to a series. Rows that fail
// to converge are NaN; the first such error is returned after all rows are
// processed.
func SolveArrays(params [2]Param, values [2][]float64, cond []Conditions) (map[string][]float64, error) {
	n := len(cond)
	if len(values[0]) != n || len(values[1]) != n {
		return nil, fmt.Errorf("input lengths %d, %d do not match %d conditions", len(values[0]), len(values[1]), n)
	}

	out := make(map[string][]float64, len(AllParams))
	for _, p := range AllParams {
		out[string(p)] = make([]float64, n)
	}

	var firstErr error
	for k := 0; k < n; k++ {
		in, err := NewInput(params, [2]float64{values[0][k], values[1][k]})
		if err != nil {
			return nil, err
		}
		r, err := Solve(in, cond[k])
		if err != nil {
			if !errors.Is(err, ErrNoConvergence) {
				return nil, fmt.Errorf("row %d: %w", k, err)
			}
			if firstErr == nil {
				firstErr = fmt.Errorf("row %d: %w", k, err)
			}
		}
		for _, p := range AllParams {
			out[string(p)][k] = r.Get(p)
		}
	}
	return out, firstErr
}

// Uniform returns n copies of c.
func Uniform(c Conditions, n int) []Conditions {
	out := make([]Conditions, n)
	for k := range out {
		out[k] = c
	}
	return out
}

// Finite reports whether every observable in r is a finite number.
func (r Result) Finite() bool {
	for _, v := range []float64{r.TA, r.TC, r.PH, r.PCO2, r.OmegaA} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
