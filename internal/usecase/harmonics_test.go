package usecase

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/salishsea-tools/internal/config"
	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/locate"
	"go.ngs.io/salishsea-tools/internal/mesh"
)

// harmonicRun is a 2x2 elevation harmonic file with uniform M2 and K1 fields.
func harmonicRun(dir string, m2Re, k1Im float64) *dataset.Memory {
	fill := func(v float64) []float64 { return []float64{v, v, v, v} }
	return dataset.NewMemory(filepath.Join(dir, "Tidal_Harmonics_eta.nc")).
		Add("M2_eta_real", []int{2, 2}, fill(m2Re), nil).
		Add("M2_eta_imag", []int{2, 2}, fill(0), nil).
		Add("K1_eta_real", []int{2, 2}, fill(0), nil).
		Add("K1_eta_imag", []int{2, 2}, fill(k1Im), nil)
}

func testGrid(t *testing.T) *mesh.Grid {
	t.Helper()
	g, err := mesh.NewGrid(1, 2, 2, []float64{49, 49, 50, 50}, []float64{-124, -123, -124, -123})
	require.NoError(t, err)
	return g
}

func TestHarmonicsUseCase_Composite(t *testing.T) {
	logger, _ := test.NewNullLogger()
	opener := dataset.NewMemoryOpener(harmonicRun("/runs/a", 1, -0.1), harmonicRun("/runs/b", 3, -0.3))
	uc := NewHarmonicsUseCase(opener, logger)

	fields, err := uc.Composite(config.HarmonicsConfig{
		Runs:         []string{"/runs/a", "/runs/b"},
		Lengths:      []float64{1, 3},
		Constituents: []string{"M2", "K1"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, fields["M2"].Re[0], 1e-12)
	assert.InDelta(t, -0.25, fields["K1"].Im[3], 1e-12)
	assert.Equal(t, 1, opener.Opens("/runs/a/Tidal_Harmonics_eta.nc"))

	_, err = uc.Composite(config.HarmonicsConfig{
		Runs:         []string{"/runs/a", "/runs/b"},
		Lengths:      []float64{1},
		Constituents: []string{"M2"},
	})
	assert.True(t, errors.Is(err, domain.ErrLengthMismatch))
}

func TestRunLengths_Namelist(t *testing.T) {
	run := t.TempDir()
	nl := "&namdom\n rn_rdt = 40.\n/\n&nam_diaharm\n nit000_han = 1\n nitend_han = 2160\n/\n"
	require.NoError(t, os.WriteFile(filepath.Join(run, "namelist"), []byte(nl), 0o600))

	lengths, err := RunLengths(config.HarmonicsConfig{Runs: []string{run}, Namelists: true})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, lengths[0], 1e-12)

	lengths, err = RunLengths(config.HarmonicsConfig{Runs: []string{run}, Lengths: []float64{7}, Namelists: true})
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, lengths)
}

func TestCompareStations(t *testing.T) {
	g := testGrid(t)
	fields := map[string]*domain.HarmonicField{
		"M2": {Name: "M2_eta", Shape: []int{2, 2}, Re: []float64{0, 0.5, 0, 0}, Im: []float64{0, 0, 0, 0}},
		"K1": {Name: "K1_eta", Shape: []int{2, 2}, Re: []float64{0, 0, 0, 0}, Im: []float64{0, -0.2, 0, 0}},
	}
	stations := []domain.ObservedStation{
		{Number: 1, Name: "Near", Lat: 49.01, Lon: -123.01, M2Amp: 0.5, M2Pha: 0, K1Amp: 0.2, K1Pha: 90},
		{Number: 2, Name: "Far", Lat: 0, Lon: 0, M2Amp: 1, K1Amp: 1},
		{Number: 3, Name: "Gap", Lat: 49.01, Lon: -123.01, M2Amp: math.NaN(), M2Pha: math.NaN(), K1Amp: 0.3, K1Pha: 90},
	}

	rows, err := CompareStations(g, stations, fields, locate.Options{MaxDistanceKm: 50})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.True(t, rows[0].Found)
	assert.Equal(t, 0, rows[0].J)
	assert.Equal(t, 1, rows[0].I)
	assert.InDelta(t, 0.5, rows[0].M2.ModelAmp, 1e-12)
	assert.InDelta(t, 0, rows[0].M2.DF95, 1e-9)
	assert.InDelta(t, 90, rows[0].K1.ModelPha, 1e-9)
	assert.InDelta(t, 0, rows[0].K1.DF95, 1e-9)
	assert.False(t, rows[1].Found)

	summary := Summarize(rows)
	require.Len(t, summary, 2)
	assert.Equal(t, "M2", summary[0].Constituent)
	assert.Equal(t, 1, summary[0].N)
	assert.Equal(t, 2, summary[1].N)
	assert.InDelta(t, 0.05, summary[1].MeanF95, 1e-9)
	assert.InDelta(t, math.Sqrt(0.1*0.1/2), summary[1].RMSF95, 1e-9)

	defaults, err := CompareStations(g, stations, fields, locate.Options{})
	require.NoError(t, err)
	assert.True(t, defaults[0].Found)
	assert.False(t, defaults[1].Found, "a station far beyond the grid spacing is outside the domain")

	delete(fields, "K1")
	_, err = CompareStations(g, stations, fields, locate.Options{})
	assert.Error(t, err)
}

func TestHarmonicsUseCase_CompareFile(t *testing.T) {
	dir := t.TempDir()
	observed := filepath.Join(dir, "obs.csv")
	body := "Site;Lat;Lon;M2 amp;M2 phase (deg UT);K1 amp;K1 phase (deg UT)\n" +
		"Point Atkinson;49.01;123.01;50;0;20;90\n"
	require.NoError(t, os.WriteFile(observed, []byte(body), 0o600))

	logger, _ := test.NewNullLogger()
	uc := NewHarmonicsUseCase(dataset.NewMemoryOpener(harmonicRun("/runs/a", 0.5, -0.2)), logger)
	out := filepath.Join(dir, "compare.csv")
	rows, summary, err := uc.CompareFile(testGrid(t), config.HarmonicsConfig{
		Runs:     []string{"/runs/a"},
		Lengths:  []float64{10},
		Observed: observed,
		Output:   out,
	}, locate.Options{})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.InDelta(t, 0, rows[0].M2.DF95, 1e-9)
	assert.Equal(t, 1, summary[0].N)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "Station Number,Station Name,Longitude,Latitude"))

	_, _, err = uc.CompareFile(testGrid(t), config.HarmonicsConfig{}, locate.Options{})
	assert.Error(t, err)
}

func TestWriteComparisonFile_ReportsWriteFailure(t *testing.T) {
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}
	rows := []domain.StationComparison{{Station: domain.ObservedStation{Number: 1, Name: "A"}}}

	err := writeComparisonFile("/dev/full", rows)
	assert.Error(t, err)

	err = writeComparisonFile(filepath.Join(t.TempDir(), "missing", "out.csv"), rows)
	assert.ErrorContains(t, err, "failed to create comparison file")

	require.NoError(t, writeComparisonFile(filepath.Join(t.TempDir(), "out.csv"), rows))
}
