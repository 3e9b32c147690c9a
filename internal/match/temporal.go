package match

import (
	"fmt"
	"sort"
	"time"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

// Time variables, in the order they are tried.
var (
	boundsNames = []string{"time_centered_bounds", "time_counter_bounds"}
	centreNames = []string{"time_centered", "time_counter"}
)

// TimeIndex maps instants to the time bins of one file.
type TimeIndex struct {
	Origin time.Time
	// Upper holds the upper edge of each bin in seconds since Origin.
	Upper []float64
}

// ReadTimeIndex reads the time bins of ds. Files with a bounds variable use
// its upper edges; otherwise the edges are the bin centres plus half the
// cadence.
func ReadTimeIndex(ds dataset.Dataset, cadenceHours int) (*TimeIndex, error) {
	axis, err := readOrigin(ds)
	if err != nil {
		return nil, err
	}

	for _, name := range boundsNames {
		if !ds.Has(name) {
			continue
		}
		b, err := ds.ReadAll(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		if len(b)%2 != 0 {
			return nil, fmt.Errorf("%s in %s has %d values, expected pairs", name, ds.Path(), len(b))
		}
		upper := make([]float64, len(b)/2)
		for k := range upper {
			upper[k] = b[2*k+1] * axis.Scale
		}
		return &TimeIndex{Origin: axis.Origin, Upper: upper}, nil
	}

	half := float64(cadenceHours) * 3600 / 2
	for _, name := range centreNames {
		if !ds.Has(name) {
			continue
		}
		c, err := ds.ReadAll(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", name, err)
		}
		upper := make([]float64, len(c))
		for k, v := range c {
			upper[k] = v*axis.Scale + half
		}
		return &TimeIndex{Origin: axis.Origin, Upper: upper}, nil
	}
	return nil, fmt.Errorf("no time variable in %s: %w", ds.Path(), dataset.ErrNoVariable)
}

func readOrigin(ds dataset.Dataset) (dataset.TimeAxis, error) {
	var lastErr error
	for _, name := range centreNames {
		if !ds.Has(name) {
			continue
		}
		axis, err := dataset.ReadTimeAxis(ds, name)
		if err == nil {
			return axis, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no time variable in %s: %w", ds.Path(), dataset.ErrNoVariable)
	}
	return dataset.TimeAxis{}, lastErr
}

// Find returns the first bin whose upper edge lies after t.
func (ti *TimeIndex) Find(t time.Time) (int, bool) {
	s := t.Sub(ti.Origin).Seconds()
	k := sort.Search(len(ti.Upper), func(n int) bool { return ti.Upper[n] > s })
	return k, k < len(ti.Upper)
}
