package nemo

import (
	"fmt"
	"path/filepath"

	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/domain"
)

// Quantity selects a harmonic output field.
type Quantity string

// Harmonic quantities.
const (
	Elevation Quantity = "eta"
	VelocityU Quantity = "u"
	VelocityV Quantity = "v"
)

// harmonicFiles names the per-run harmonic output of each quantity.
var harmonicFiles = map[Quantity]string{
	Elevation: "Tidal_Harmonics_eta.nc",
	VelocityU: "Tidal_Harmonics_U.nc",
	VelocityV: "Tidal_Harmonics_V.nc",
}

// HarmonicStore reads the harmonic fields that NEMO writes per run.
type HarmonicStore struct {
	Opener dataset.Opener
}

// NewHarmonicStore creates a store reading through opener.
func NewHarmonicStore(opener dataset.Opener) *HarmonicStore {
	return &HarmonicStore{Opener: opener}
}

// HarmonicPath returns the harmonic file of a quantity in a run directory.
func HarmonicPath(runDir string, q Quantity) (string, error) {
	name, ok := harmonicFiles[q]
	if !ok {
		return "", fmt.Errorf("unknown harmonic quantity %q", q)
	}
	return filepath.Join(runDir, name), nil
}

// ReadRun reads the fields of the given constituents from one run directory.
// Each file is opened once.
func (s *HarmonicStore) ReadRun(runDir string, q Quantity, constituents []string) (map[string]*domain.HarmonicField, error) {
	path, err := HarmonicPath(runDir, q)
	if err != nil {
		return nil, err
	}
	ds, err := s.Opener.Open(path)
	if err != nil {
		return nil, err
	}
	defer ds.Close() //nolint:errcheck

	out := make(map[string]*domain.HarmonicField, len(constituents))
	for _, c := range constituents {
		f, err := ReadField(ds, c, q)
		if err != nil {
			return nil, err
		}
		out[c] = f
	}
	return out, nil
}

// ReadField reads {C}_{q}_real and {C}_{q}_imag, dropping a leading
// length-one time dimension.
func ReadField(ds dataset.Dataset, constituent string, q Quantity) (*domain.HarmonicField, error) {
	name := fmt.Sprintf("%s_%s", constituent, q)
	re, shape, err := readSqueezed(ds, name+"_real")
	if err != nil {
		return nil, err
	}
	im, imShape, err := readSqueezed(ds, name+"_imag")
	if err != nil {
		return nil, err
	}
	if dataset.Size(shape) != dataset.Size(imShape) {
		return nil, fmt.Errorf("%s real and imaginary parts differ in shape: %v vs %v", name, shape, imShape)
	}
	f := &domain.HarmonicField{Name: name, Shape: shape, Re: re, Im: im}
	return f, f.Validate()
}

func readSqueezed(ds dataset.Dataset, name string) ([]float64, []int, error) {
	shape, err := ds.Shape(name)
	if err != nil {
		return nil, nil, err
	}
	data, err := ds.ReadAll(name)
	if err != nil {
		return nil, nil, err
	}
	if len(shape) > 2 && shape[0] == 1 {
		shape = shape[1:]
	}
	return data, shape, nil
}
