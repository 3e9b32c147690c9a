// Package mesh provides the model grid descriptor read from a mesh-mask file.
package mesh

import (
	"fmt"
	"strings"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

// Family is an Arakawa-C stagger point.
type Family string

// Grid families.
const (
	FamilyT Family = "T"
	FamilyU Family = "U"
	FamilyV Family = "V"
	FamilyF Family = "F"
)

// Families lists every stagger point in mask order.
var Families = []Family{FamilyT, FamilyU, FamilyV, FamilyF}

// FamilyOf returns the stagger family of a file type such as "grid_T" or
// "ptrc_T". W-point files share the T horizontal grid. The second return is
// false when the file type carries no stagger suffix (atmospheric forcing).
func FamilyOf(fileType string) (Family, bool) {
	idx := strings.LastIndex(fileType, "_")
	if idx < 0 {
		return FamilyT, false
	}
	switch strings.ToUpper(fileType[idx+1:]) {
	case "T", "W":
		return FamilyT, true
	case "U":
		return FamilyU, true
	case "V":
		return FamilyV, true
	case "F":
		return FamilyF, true
	}
	return FamilyT, false
}

// MaskName returns the mesh-mask variable for the family, e.g. "tmask".
func (f Family) MaskName() string {
	return strings.ToLower(string(f)) + "mask"
}

// Grid describes the model mesh. 3-D arrays are row-major [NZ, NY, NX] and
// 2-D arrays are [NY, NX].
type Grid struct {
	NZ, NY, NX int

	Lat []float64
	Lon []float64

	// E3T0 is the static cell thickness in metres.
	E3T0 []float64

	masks map[Family][]float64
}

// NewGrid creates a grid with the given horizontal coordinates and every cell
// ocean. lat and lon must have ny*nx elements.
func NewGrid(nz, ny, nx int, lat, lon []float64) (*Grid, error) {
	if nz < 1 || ny < 1 || nx < 1 {
		return nil, fmt.Errorf("invalid grid shape %dx%dx%d", nz, ny, nx)
	}
	if len(lat) != ny*nx || len(lon) != ny*nx {
		return nil, fmt.Errorf("coordinates have %d/%d values, expected %d", len(lat), len(lon), ny*nx)
	}
	return &Grid{NZ: nz, NY: ny, NX: nx, Lat: lat, Lon: lon, masks: make(map[Family][]float64)}, nil
}

// SetMask installs the land/ocean mask of a family (land=0, ocean=1).
func (g *Grid) SetMask(f Family, mask []float64) error {
	if len(mask) != g.NZ*g.NY*g.NX {
		return fmt.Errorf("%s has %d values, expected %d", f.MaskName(), len(mask), g.NZ*g.NY*g.NX)
	}
	g.masks[f] = mask
	return nil
}

// Index returns the row-major offset of (k, j, i).
func (g *Grid) Index(k, j, i int) int {
	return (k*g.NY+j)*g.NX + i
}

// InBounds reports whether (j, i) is a horizontal grid index.
func (g *Grid) InBounds(j, i int) bool {
	return j >= 0 && j < g.NY && i >= 0 && i < g.NX
}

// Ocean reports whether the cell (k, j, i) on the family's grid is water.
// Families without a mask are all water.
func (g *Grid) Ocean(f Family, k, j, i int) bool {
	if k < 0 || k >= g.NZ || !g.InBounds(j, i) {
		return false
	}
	m, ok := g.masks[f]
	if !ok {
		return true
	}
	return m[g.Index(k, j, i)] != 0
}

// SurfaceOcean returns the level-0 water mask of the family as [NY*NX].
func (g *Grid) SurfaceOcean(f Family) []bool {
	out := make([]bool, g.NY*g.NX)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			out[j*g.NX+i] = g.Ocean(f, 0, j, i)
		}
	}
	return out
}

// LatLon returns the coordinates of (j, i).
func (g *Grid) LatLon(j, i int) (lat, lon float64) {
	return g.Lat[j*g.NX+i], g.Lon[j*g.NX+i]
}

// Thickness returns e3t_0 at (k, j, i), or zero when e3t_0 was not loaded.
func (g *Grid) Thickness(k, j, i int) float64 {
	if len(g.E3T0) == 0 {
		return 0
	}
	return g.E3T0[g.Index(k, j, i)]
}

// Candidate variable names for the horizontal coordinates.
var (
	latNames = []string{"nav_lat", "gphit", "lat", "latitude"}
	lonNames = []string{"nav_lon", "glamt", "lon", "longitude"}
)

// Load reads a grid descriptor from a mesh-mask dataset. Masks and e3t_0 are
// optional. A leading length-one time dimension is
// dropped from every variable.
func Load(ds dataset.Dataset) (*Grid, error) {
	lat, latShape, err := readFirst(ds, latNames)
	if err != nil {
		return nil, fmt.Errorf("failed to read latitude: %w", err)
	}
	lon, _, err := readFirst(ds, lonNames)
	if err != nil {
		return nil, fmt.Errorf("failed to read longitude: %w", err)
	}
	if len(latShape) < 2 {
		return nil, fmt.Errorf("expected 2D coordinates in %s, got %dD", ds.Path(), len(latShape))
	}
	ny, nx := latShape[len(latShape)-2], latShape[len(latShape)-1]

	nz := 1
	for _, name := range []string{"tmask", "e3t_0"} {
		if shape, err := ds.Shape(name); err == nil && len(shape) >= 3 {
			nz = shape[len(shape)-3]
			break
		}
	}

	g, err := NewGrid(nz, ny, nx, lat, lon)
	if err != nil {
		return nil, fmt.Errorf("invalid grid in %s: %w", ds.Path(), err)
	}

	for _, f := range Families {
		data, err := readOptional(ds, f.MaskName())
		if err != nil {
			return nil, err
		}
		if data == nil {
			continue
		}
		if err := g.SetMask(f, data); err != nil {
			return nil, fmt.Errorf("invalid mask in %s: %w", ds.Path(), err)
		}
	}

	if g.E3T0, err = readSized(ds, "e3t_0", nz*ny*nx); err != nil {
		return nil, err
	}
	return g, nil
}

func readFirst(ds dataset.Dataset, names []string) ([]float64, []int, error) {
	for _, name := range names {
		if !ds.Has(name) {
			continue
		}
		shape, err := ds.Shape(name)
		if err != nil {
			return nil, nil, err
		}
		data, err := ds.ReadAll(name)
		if err != nil {
			return nil, nil, err
		}
		return data, squeeze(shape), nil
	}
	return nil, nil, fmt.Errorf("tried %v in %s: %w", names, ds.Path(), dataset.ErrNoVariable)
}

func readOptional(ds dataset.Dataset, name string) ([]float64, error) {
	if !ds.Has(name) {
		return nil, nil
	}
	data, err := ds.ReadAll(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	return data, nil
}

func readSized(ds dataset.Dataset, name string, n int) ([]float64, error) {
	data, err := readOptional(ds, name)
	if err != nil || data == nil {
		return nil, err
	}
	if len(data) != n {
		return nil, fmt.Errorf("%s in %s has %d values, expected %d", name, ds.Path(), len(data), n)
	}
	return data, nil
}

// squeeze drops leading length-one dimensions.
func squeeze(shape []int) []int {
	for len(shape) > 2 && shape[0] == 1 {
		shape = shape[1:]
	}
	return shape
}
