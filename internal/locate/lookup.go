package locate

import (
	"fmt"
	"math"

	"go.ngs.io/salishsea-tools/internal/adapter/interp"
	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/domain"
)

// Lookup maps a regular lat/lon bucket grid to model (j, i). Negative
// indices mark buckets with no water.
type Lookup struct {
	Lat []float64 // Increasing bucket centres.
	Lon []float64 // Increasing bucket centres.
	J   []float64 // [len(Lat)*len(Lon)].
	I   []float64 // [len(Lat)*len(Lon)].
}

// LoadLookup reads a lookup table with 1-D lat and lon axes and 2-D j and i
// fields.
func LoadLookup(ds dataset.Dataset) (*Lookup, error) {
	lk := &Lookup{}
	for _, v := range []struct {
		name string
		dst  *[]float64
	}{{"lat", &lk.Lat}, {"lon", &lk.Lon}, {"j", &lk.J}, {"i", &lk.I}} {
		data, err := ds.ReadAll(v.name)
		if err != nil {
			return nil, fmt.Errorf("failed to read lookup %s: %w", v.name, err)
		}
		*v.dst = data
	}
	if err := lk.Validate(); err != nil {
		return nil, fmt.Errorf("invalid lookup %s: %w", ds.Path(), err)
	}
	return lk, nil
}

// Validate checks the axes and field sizes.
func (lk *Lookup) Validate() error {
	if err := interp.Axis(lk.Lat).Validate(); err != nil {
		return fmt.Errorf("lat: %w", err)
	}
	if err := interp.Axis(lk.Lon).Validate(); err != nil {
		return fmt.Errorf("lon: %w", err)
	}
	n := len(lk.Lat) * len(lk.Lon)
	if len(lk.J) != n || len(lk.I) != n {
		return fmt.Errorf("lookup fields have %d/%d values, expected %d", len(lk.J), len(lk.I), n)
	}
	return nil
}

// Find returns the (j, i) of the bucket nearest to (lon, lat).
func (lk *Lookup) Find(lon, lat float64) (j, i int, err error) {
	y, ok := interp.Axis(lk.Lat).Nearest(lat)
	if !ok {
		return -1, -1, fmt.Errorf("latitude %.5f outside lookup: %w", lat, domain.ErrOutsideDomain)
	}
	x, ok := interp.Axis(lk.Lon).Nearest(lon)
	if !ok {
		return -1, -1, fmt.Errorf("longitude %.5f outside lookup: %w", lon, domain.ErrOutsideDomain)
	}
	k := y*len(lk.Lon) + x
	if math.IsNaN(lk.J[k]) || math.IsNaN(lk.I[k]) || lk.J[k] < 0 || lk.I[k] < 0 {
		return -1, -1, fmt.Errorf("(%.5f, %.5f): %w", lon, lat, domain.ErrOnLand)
	}
	return int(lk.J[k]), int(lk.I[k]), nil
}
