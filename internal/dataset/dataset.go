// Package dataset provides a read-only view of gridded model files.
//
// A Dataset exposes named variables as row-major float64 arrays together
// with their textual attributes. The netCDF backends live under
// internal/adapter/store/nemo; Memory is used for tests and synthetic grids.
package dataset

import (
	"errors"
	"fmt"
)

// ErrNoVariable is returned when a variable is not present in a dataset.
var ErrNoVariable = errors.New("variable not found")

// Dataset is an open gridded file.
type Dataset interface {
	// Path returns the location the dataset was opened from.
	Path() string
	// Has reports whether the variable exists.
	Has(name string) bool
	// Shape returns the dimension lengths of a variable.
	Shape(name string) ([]int, error)
	// ReadAll reads a whole variable in row-major order.
	ReadAll(name string) ([]float64, error)
	// ReadSlice reads the hyperslab [start, start+count) in row-major order.
	ReadSlice(name string, start, count []int) ([]float64, error)
	// Attr returns a textual attribute of a variable.
	Attr(name, attr string) (string, bool)
	// Close releases the underlying file handle.
	Close() error
}

// Opener opens datasets by path.
type Opener interface {
	Open(path string) (Dataset, error)
}

// OpenerFunc adapts a function to the Opener interface.
type OpenerFunc func(path string) (Dataset, error)

// Open calls f(path).
func (f OpenerFunc) Open(path string) (Dataset, error) {
	return f(path)
}

// ReadAt reads a single element.
func ReadAt(ds Dataset, name string, idx ...int) (float64, error) {
	count := make([]int, len(idx))
	for k := range count {
		count[k] = 1
	}
	vals, err := ds.ReadSlice(name, idx, count)
	if err != nil {
		return 0, err
	}
	return vals[0], nil
}

// Size returns the number of elements in an array of the given shape.
func Size(shape []int) int {
	n := 1
	for _, d := range shape {
		n *= d
	}
	return n
}

// Offset returns the row-major offset of idx in an array of the given shape.
func Offset(shape, idx []int) int {
	off := 0
	for k := range shape {
		off = off*shape[k] + idx[k]
	}
	return off
}

// CheckSlice validates a hyperslab request against a shape.
func CheckSlice(name string, shape, start, count []int) error {
	if len(start) != len(shape) || len(count) != len(shape) {
		return fmt.Errorf("%s: slice rank %d/%d does not match variable rank %d", name, len(start), len(count), len(shape))
	}
	for k := range shape {
		if start[k] < 0 || count[k] < 0 || start[k]+count[k] > shape[k] {
			return fmt.Errorf("%s: slice [%d, %d) out of range for dimension %d of length %d",
				name, start[k], start[k]+count[k], k, shape[k])
		}
	}
	return nil
}

// Extract copies the hyperslab [start, start+count) out of a row-major array.
func Extract(data []float64, shape, start, count []int) []float64 {
	out := make([]float64, 0, Size(count))
	if Size(count) == 0 {
		return out
	}
	if len(shape) == 0 {
		return append(out, data...)
	}
	idx := make([]int, len(shape))
	copy(idx, start)
	for {
		// Copy a contiguous run along the last dimension.
		off := Offset(shape, idx)
		last := len(shape) - 1
		out = append(out, data[off:off+count[last]]...)

		// Advance the multi-index over all but the last dimension.
		k := last - 1
		for ; k >= 0; k-- {
			idx[k]++
			if idx[k] < start[k]+count[k] {
				break
			}
			idx[k] = start[k]
		}
		if k < 0 {
			return out
		}
	}
}
