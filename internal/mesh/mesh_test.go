package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

func TestFamilyOf(t *testing.T) {
	tests := []struct {
		ftype string
		want  Family
		ok    bool
	}{
		{"grid_T", FamilyT, true},
		{"ptrc_T", FamilyT, true},
		{"grid_W", FamilyT, true},
		{"grid_U", FamilyU, true},
		{"grid_V", FamilyV, true},
		{"ops", FamilyT, false},
		{"hrdps_wind", FamilyT, false},
	}
	for _, tt := range tests {
		got, ok := FamilyOf(tt.ftype)
		assert.Equal(t, tt.want, got, tt.ftype)
		assert.Equal(t, tt.ok, ok, tt.ftype)
	}
	assert.Equal(t, "umask", FamilyU.MaskName())
	assert.Equal(t, "fmask", FamilyF.MaskName())
}

func TestLoad(t *testing.T) {
	tmask := []float64{1, 1, 1, 0, 1, 0, 0, 0}
	ds := dataset.NewMemory("mesh.nc").
		Add("nav_lat", []int{2, 2}, []float64{0.5, 0.5, 1.5, 1.5}, nil).
		Add("nav_lon", []int{2, 2}, []float64{0.5, 1.5, 0.5, 1.5}, nil).
		Add("tmask", []int{1, 2, 2, 2}, tmask, nil).
		Add("e3t_0", []int{1, 2, 2, 2}, []float64{10, 10, 10, 10, 10, 10, 10, 10}, nil)

	g, err := Load(ds)
	require.NoError(t, err)

	assert.Equal(t, 2, g.NZ)
	assert.Equal(t, 2, g.NY)
	assert.Equal(t, 2, g.NX)
	assert.True(t, g.Ocean(FamilyT, 0, 0, 0))
	assert.False(t, g.Ocean(FamilyT, 0, 1, 1))
	assert.False(t, g.Ocean(FamilyT, 1, 0, 1))
	assert.True(t, g.Ocean(FamilyU, 1, 1, 1), "missing masks are all water")
	assert.False(t, g.Ocean(FamilyT, 2, 0, 0))
	assert.Equal(t, []bool{true, true, true, false}, g.SurfaceOcean(FamilyT))
	assert.Equal(t, 10.0, g.Thickness(1, 1, 0))

	lat, lon := g.LatLon(1, 0)
	assert.Equal(t, 1.5, lat)
	assert.Equal(t, 0.5, lon)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(dataset.NewMemory("empty.nc"))
	assert.ErrorIs(t, err, dataset.ErrNoVariable)

	ds := dataset.NewMemory("bad.nc").
		Add("nav_lat", []int{2, 2}, []float64{0, 0, 1, 1}, nil).
		Add("nav_lon", []int{2, 2}, []float64{0, 1, 0, 1}, nil).
		Add("e3t_0", []int{3}, []float64{1, 2, 3}, nil)
	_, err = Load(ds)
	assert.Error(t, err)
}
