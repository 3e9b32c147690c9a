// Package interp provides interpolation helpers over monotonic 1-D axes.
package interp

import (
	"fmt"
	"sort"
)

// Axis is a strictly increasing coordinate axis (e.g. depths or latitudes).
type Axis []float64

// Validate checks that the axis has at least two strictly increasing values.
func (a Axis) Validate() error {
	if len(a) < 2 {
		return fmt.Errorf("axis must have at least 2 values, got %d", len(a))
	}
	for i := 1; i < len(a); i++ {
		if a[i] <= a[i-1] {
			return fmt.Errorf("axis must be strictly increasing at index %d", i)
		}
	}
	return nil
}

// Bracket returns the index k and weight w such that x = (1-w)*a[k] + w*a[k+1]
// with w in [0, 1). ok is false outside [a[0], a[len-1]).
//
// Formula:
//
//	w = (x - a[k]) / (a[k+1] - a[k])
func (a Axis) Bracket(x float64) (k int, w float64, ok bool) {
	n := len(a)
	if n < 2 || x < a[0] || x >= a[n-1] {
		return 0, 0, false
	}
	k = sort.Search(n, func(m int) bool { return a[m] > x }) - 1
	w = (x - a[k]) / (a[k+1] - a[k])
	return k, w, true
}

// Linear interpolates values on the axis at x. Points outside the axis are
// an error.
func (a Axis) Linear(values []float64, x float64) (float64, error) {
	if len(values) != len(a) {
		return 0, fmt.Errorf("got %d values for %d axis points", len(values), len(a))
	}
	if n := len(a); n > 0 && x == a[n-1] {
		return values[n-1], nil
	}
	k, w, ok := a.Bracket(x)
	if !ok {
		return 0, fmt.Errorf("x coordinate %.6f is outside axis range", x)
	}
	return (1-w)*values[k] + w*values[k+1], nil
}

// Nearest returns the index of the value nearest to x. Ties go to the lower
// index. Points more than half a spacing beyond either end are rejected.
func (a Axis) Nearest(x float64) (int, bool) {
	n := len(a)
	if n < 2 || x < a[0]-(a[1]-a[0])/2 || x > a[n-1]+(a[n-1]-a[n-2])/2 {
		return 0, false
	}
	k := sort.SearchFloat64s(a, x)
	switch {
	case k == 0:
		return 0, true
	case k == n:
		return n - 1, true
	case x-a[k-1] <= a[k]-x:
		return k - 1, true
	}
	return k, true
}
