package match

import (
	"math"
	"sort"
	"strings"

	"go.ngs.io/salishsea-tools/internal/adapter/interp"
	"go.ngs.io/salishsea-tools/internal/mesh"
)

// sample is a weighted set of model levels in one water column. k is the
// level reported for bin-like policies, -1 when none applies.
type sample struct {
	k       int
	levels  []int
	weights []float64
}

var noSample = sample{k: -1}

func (s sample) empty() bool { return len(s.levels) == 0 }

func single(k int) sample {
	return sample{k: k, levels: []int{k}, weights: []float64{1}}
}

// column identifies a water column on one stagger.
type column struct {
	grid   *mesh.Grid
	family mesh.Family
	j, i   int
}

func (c column) ocean(k int) bool {
	return c.grid.Ocean(c.family, k, c.j, c.i)
}

// oceanLevels counts the consecutive water cells from the surface down.
func (c column) oceanLevels() int {
	n := 0
	for n < c.grid.NZ && c.ocean(n) {
		n++
	}
	return n
}

// level returns the single-level sample for k. On land the sample keeps k but
// holds no levels.
func (c column) level(k int) sample {
	if !c.ocean(k) {
		return sample{k: k}
	}
	return single(k)
}

// firstAbove returns the first k with upper[k] > z, or -1.
func firstAbove(upper []float64, z float64) int {
	k := sort.Search(len(upper), func(n int) bool { return upper[n] > z })
	if k == len(upper) {
		return -1
	}
	return k
}

// depthBoundsName returns the depth-bounds variable of a file type, e.g.
// "deptht_bounds" for grid_T and "depthw_bounds" for grid_W.
func depthBoundsName(fileType string) string {
	suffix := "t"
	if idx := strings.LastIndex(fileType, "_"); idx >= 0 {
		suffix = strings.ToLower(fileType[idx+1:])
	}
	return "depth" + suffix + "_bounds"
}

// sampleBin selects the cell whose bounds enclose z. bounds holds
// [lower, upper] pairs per level.
func sampleBin(c column, bounds []float64, z float64) sample {
	upper := make([]float64, len(bounds)/2)
	for k := range upper {
		upper[k] = bounds[2*k+1]
	}
	k := firstAbove(upper, z)
	if k < 0 {
		return noSample
	}
	return c.level(k)
}

// sampleVVLBin is sampleBin with bounds cumulated from the surface using the
// time-varying thicknesses e3t of the column.
func sampleVVLBin(c column, e3t []float64, z float64) sample {
	upper := make([]float64, len(e3t))
	cum := 0.0
	for k, dz := range e3t {
		cum += dz
		upper[k] = cum
	}
	k := firstAbove(upper, z)
	if k < 0 {
		return noSample
	}
	return c.level(k)
}

// sampleVVLZ interpolates linearly between the mid-cell depths of the ocean
// levels of the column. Depths above the first mid-depth take level 0 and
// depths in the lower half of the deepest ocean cell take that cell.
func sampleVVLZ(c column, e3t []float64, z float64) sample {
	n := min(c.oceanLevels(), len(e3t))
	if n == 0 {
		return noSample
	}
	mids := make([]float64, n)
	cum := 0.0
	for k := 0; k < n; k++ {
		mids[k] = cum + e3t[k]/2
		cum += e3t[k]
	}
	switch {
	case z < mids[0]:
		return single(0)
	case z >= mids[n-1]:
		if z <= cum {
			return single(n - 1)
		}
		return noSample
	}
	k, w, _ := interp.Axis(mids).Bracket(z)
	return sample{k: k, levels: []int{k, k + 1}, weights: []float64{1 - w, w}}
}

// sampleFerry takes the surface level.
func sampleFerry(c column) sample {
	return c.level(0)
}

// sampleVertNet selects the ocean cells whose static centres lie in
// [zUpper, zLower], weighted by e3t_0.
func sampleVertNet(c column, zUpper, zLower float64) sample {
	s := sample{k: -1}
	cum := 0.0
	for k := 0; k < c.grid.NZ; k++ {
		dz := c.grid.Thickness(k, c.j, c.i)
		centre := cum + dz/2
		cum += dz
		if centre < zUpper || centre > zLower || !c.ocean(k) || dz <= 0 {
			continue
		}
		s.levels = append(s.levels, k)
		s.weights = append(s.weights, dz)
	}
	return s
}

// weighted combines level values with the sample weights. NaN values
// propagate.
func weighted(s sample, vals []float64) float64 {
	if s.empty() {
		return math.NaN()
	}
	sum, wsum := 0.0, 0.0
	for n, w := range s.weights {
		sum += w * vals[n]
		wsum += w
	}
	if wsum == 0 {
		return math.NaN()
	}
	return sum / wsum
}
