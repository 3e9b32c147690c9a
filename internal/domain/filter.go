package domain

import "fmt"

// Filter methods for FilterTimeseries.
const (
	FilterBox     = "box"
	FilterDoodson = "doodson"
)

// DefaultFilterWindow is the window length the Doodson weights are defined for.
const DefaultFilterWindow = 39

// FilterTimeseries applies a symmetric running filter to values. The window
// shrinks near the ends of the record; the first and last samples are
// returned unchanged. The Doodson band-pass requires winlen 39.
func FilterTimeseries(values []float64, winlen int, method string) ([]float64, error) {
	if winlen < 1 {
		return nil, fmt.Errorf("window length must be positive, got %d", winlen)
	}
	w := (winlen - 1) / 2
	weight := make([]float64, w)
	var center float64

	switch method {
	case FilterDoodson:
		if winlen != DefaultFilterWindow {
			return nil, fmt.Errorf("doodson filter requires window length %d, got %d", DefaultFilterWindow, winlen)
		}
		for _, k := range []int{1, 2, 5, 6, 10, 11, 13, 16, 18} {
			weight[k] = 1
		}
		for _, k := range []int{0, 3, 8} {
			weight[k] = 2
		}
		center = 0
	case FilterBox:
		for k := range weight {
			weight[k] = 1
		}
		center = 1
	default:
		return nil, fmt.Errorf("invalid filter method: %s", method)
	}

	n := len(values)
	out := make([]float64, n)
	for i := range values {
		W := min(i, w, n-i-1)
		if W <= 0 {
			out[i] = values[i]
			continue
		}
		sum := center
		for k := 0; k < W; k++ {
			sum += 2 * weight[k]
		}
		acc := center * values[i]
		for k := 0; k < W; k++ {
			acc += weight[k] * (values[i-k-1] + values[i+k+1])
		}
		if sum != 0 {
			acc /= sum
		}
		out[i] = acc
	}
	return out, nil
}
