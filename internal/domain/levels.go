package domain

import "math"

// FindModelLevel returns the index of the model level closest to depth.
// With fractional set the index is linearly interpolated between neighbouring
// levels; depths above the first level give a negative index and depths below
// the deepest level give the last index.
func FindModelLevel(depth float64, levels []float64, fractional bool) float64 {
	if len(levels) == 0 {
		return math.NaN()
	}
	idx := 0
	best := math.Inf(1)
	for k, z := range levels {
		if d := math.Abs(depth - z); d < best {
			best = d
			idx = k
		}
	}
	if !fractional || len(levels) < 2 {
		return float64(idx)
	}

	switch {
	case depth < levels[idx] && idx == 0:
		return (depth - levels[0]) / (levels[1] - levels[0])
	case depth < levels[idx]:
		return float64(idx) - (levels[idx]-depth)/(levels[idx]-levels[idx-1])
	case depth > levels[idx] && idx < len(levels)-1:
		return float64(idx) + (depth-levels[idx])/(levels[idx+1]-levels[idx])
	default:
		return float64(idx)
	}
}
