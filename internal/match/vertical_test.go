package match

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/salishsea-tools/internal/mesh"
)

// columnGrid is a single water column with nz levels, the deepest land.
func columnGrid(t *testing.T, nz int) *mesh.Grid {
	t.Helper()
	g, err := mesh.NewGrid(nz, 1, 1, []float64{49}, []float64{-123})
	require.NoError(t, err)
	mask := make([]float64, nz)
	for k := 0; k < nz-1; k++ {
		mask[k] = 1
	}
	require.NoError(t, g.SetMask(mesh.FamilyT, mask))
	g.E3T0 = make([]float64, nz)
	for k := range g.E3T0 {
		g.E3T0[k] = 10
	}
	return g
}

func TestSampleBin(t *testing.T) {
	c := column{grid: columnGrid(t, 3), family: mesh.FamilyT}
	bounds := []float64{0, 10, 10, 20, 20, 30}

	assert.Equal(t, single(0), sampleBin(c, bounds, 0))
	assert.Equal(t, single(0), sampleBin(c, bounds, 9.9))
	assert.Equal(t, single(1), sampleBin(c, bounds, 10))

	land := sampleBin(c, bounds, 25)
	assert.Equal(t, 2, land.k)
	assert.True(t, land.empty())

	assert.True(t, sampleBin(c, bounds, 30).empty())
}

func TestSampleVVLBin(t *testing.T) {
	c := column{grid: columnGrid(t, 3), family: mesh.FamilyT}
	e3t := []float64{2, 4, 6}

	assert.Equal(t, single(0), sampleVVLBin(c, e3t, 1.5))
	assert.Equal(t, single(1), sampleVVLBin(c, e3t, 2))
	assert.True(t, sampleVVLBin(c, e3t, 12).empty())
}

func TestSampleVVLZ(t *testing.T) {
	c := column{grid: columnGrid(t, 4), family: mesh.FamilyT}
	e3t := []float64{10, 10, 10, 10}

	assert.Equal(t, single(0), sampleVVLZ(c, e3t, 2))

	s := sampleVVLZ(c, e3t, 10)
	assert.Equal(t, []int{0, 1}, s.levels)
	assert.InDelta(t, 0.5, s.weights[0], 1e-12)
	assert.InDelta(t, 12.5, weighted(s, []float64{10, 15}), 1e-12)

	// Mid-depths are 5, 15, 25; level 3 is land.
	assert.Equal(t, single(2), sampleVVLZ(c, e3t, 28))
	assert.True(t, sampleVVLZ(c, e3t, 31).empty())
}

func TestSampleFerry(t *testing.T) {
	c := column{grid: columnGrid(t, 2), family: mesh.FamilyT}
	assert.Equal(t, single(0), sampleFerry(c))

	g := columnGrid(t, 2)
	require.NoError(t, g.SetMask(mesh.FamilyT, []float64{0, 0}))
	assert.True(t, sampleFerry(column{grid: g, family: mesh.FamilyT}).empty())
}

func TestSampleVertNet(t *testing.T) {
	g := columnGrid(t, 4)
	g.E3T0 = []float64{2, 4, 6, 8}
	c := column{grid: g, family: mesh.FamilyT}

	// Centres are 1, 4, 9 and 16; the last cell is land.
	s := sampleVertNet(c, 0, 20)
	assert.Equal(t, []int{0, 1, 2}, s.levels)
	assert.InDelta(t, (2*1+4*2+6*3)/12.0, weighted(s, []float64{1, 2, 3}), 1e-12)

	s = sampleVertNet(c, 3, 5)
	assert.Equal(t, []int{1}, s.levels)

	assert.True(t, sampleVertNet(c, 10, 12).empty())
	assert.True(t, math.IsNaN(weighted(sampleVertNet(c, 10, 12), nil)))
}

func TestDepthBoundsName(t *testing.T) {
	assert.Equal(t, "deptht_bounds", depthBoundsName("grid_T"))
	assert.Equal(t, "depthu_bounds", depthBoundsName("grid_U"))
	assert.Equal(t, "depthw_bounds", depthBoundsName("grid_W"))
}
