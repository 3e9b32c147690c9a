// Package nemo reads NEMO model output, mesh-mask, harmonic and namelist
// files.
package nemo

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/fhs/go-netcdf/netcdf"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

// File is a netCDF file opened through libnetcdf.
type File struct {
	path string
	nc   netcdf.Dataset
}

// Open opens a netCDF file read-only.
func Open(path string) (dataset.Dataset, error) {
	nc, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	return &File{path: path, nc: nc}, nil
}

// Path implements dataset.Dataset.
func (f *File) Path() string { return f.path }

// Has implements dataset.Dataset.
func (f *File) Has(name string) bool {
	_, err := f.nc.Var(name)
	return err == nil
}

func (f *File) variable(name string) (netcdf.Var, error) {
	v, err := f.nc.Var(name)
	if err != nil {
		return netcdf.Var{}, fmt.Errorf("%s in %s: %w", name, f.path, dataset.ErrNoVariable)
	}
	return v, nil
}

// Shape implements dataset.Dataset.
func (f *File) Shape(name string) ([]int, error) {
	v, err := f.variable(name)
	if err != nil {
		return nil, err
	}
	return varShape(v)
}

func varShape(v netcdf.Var) ([]int, error) {
	dims, err := v.Dims()
	if err != nil {
		return nil, fmt.Errorf("failed to get dimensions: %w", err)
	}
	shape := make([]int, len(dims))
	for k, d := range dims {
		n, err := d.Len()
		if err != nil {
			return nil, err
		}
		shape[k] = int(n)
	}
	return shape, nil
}

// ReadAll implements dataset.Dataset. Fill values become NaN and packed
// variables are unpacked with scale_factor and add_offset.
func (f *File) ReadAll(name string) ([]float64, error) {
	v, err := f.variable(name)
	if err != nil {
		return nil, err
	}
	shape, err := varShape(v)
	if err != nil {
		return nil, err
	}
	start := make([]int, len(shape))
	return f.read(v, name, start, shape)
}

// ReadSlice implements dataset.Dataset.
func (f *File) ReadSlice(name string, start, count []int) ([]float64, error) {
	v, err := f.variable(name)
	if err != nil {
		return nil, err
	}
	shape, err := varShape(v)
	if err != nil {
		return nil, err
	}
	if err := dataset.CheckSlice(name, shape, start, count); err != nil {
		return nil, err
	}
	return f.read(v, name, start, count)
}

func (f *File) read(v netcdf.Var, name string, start, count []int) ([]float64, error) {
	data, err := readFloat64Slice(v, toUint64(start), toUint64(count))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.path, err)
	}
	fill, hasFill := getFillValue(v)
	scale, offset := packing(v)
	for k, x := range data {
		switch {
		case hasFill && x == fill:
			data[k] = math.NaN()
		default:
			data[k] = x*scale + offset
		}
	}
	return data, nil
}

// Attr implements dataset.Dataset for text attributes.
func (f *File) Attr(name, attr string) (string, bool) {
	v, err := f.nc.Var(name)
	if err != nil {
		return "", false
	}
	return textAttr(v.Attr(attr))
}

// Close implements dataset.Dataset.
func (f *File) Close() error {
	return f.nc.Close()
}

func toUint64(v []int) []uint64 {
	out := make([]uint64, len(v))
	for k, x := range v {
		out[k] = uint64(x)
	}
	return out
}

func textAttr(a netcdf.Attr) (string, bool) {
	if a == (netcdf.Attr{}) {
		return "", false
	}
	if t, err := a.Type(); err != nil || t != netcdf.CHAR {
		return "", false
	}
	n, err := a.Len()
	if err != nil || n == 0 {
		return "", false
	}
	buf := make([]byte, n)
	if err := a.ReadBytes(buf); err != nil {
		return "", false
	}
	return strings.TrimRight(string(buf), "\x00"), true
}

// getFillValue returns the _FillValue or missing_value attribute if present as float64.
func getFillValue(v netcdf.Var) (float64, bool) {
	for _, name := range []string{"_FillValue", "missing_value"} {
		if x, ok := numericAttr(v.Attr(name)); ok {
			return x, true
		}
	}
	return 0, false
}

// packing returns scale_factor and add_offset, defaulting to 1 and 0.
func packing(v netcdf.Var) (scale, offset float64) {
	scale, offset = 1, 0
	if x, ok := numericAttr(v.Attr("scale_factor")); ok {
		scale = x
	}
	if x, ok := numericAttr(v.Attr("add_offset")); ok {
		offset = x
	}
	return scale, offset
}

func numericAttr(a netcdf.Attr) (float64, bool) {
	if a == (netcdf.Attr{}) {
		return 0, false
	}
	if n, err := a.Len(); err != nil || n == 0 {
		return 0, false
	}
	buf64 := make([]float64, 1)
	if err := a.ReadFloat64s(buf64); err == nil {
		return buf64[0], true
	}
	buf32 := make([]float32, 1)
	if err := a.ReadFloat32s(buf32); err == nil {
		return float64(buf32[0]), true
	}
	bufi := make([]int32, 1)
	if err := a.ReadInt32s(bufi); err == nil {
		return float64(bufi[0]), true
	}
	bufs := make([]int16, 1)
	if err := a.ReadInt16s(bufs); err == nil {
		return float64(bufs[0]), true
	}
	return 0, false
}

var errUnsupportedType = errors.New("unsupported var type")

// readFloat64Slice reads a hyperslab of a numeric variable as float64.
func readFloat64Slice(v netcdf.Var, start, count []uint64) ([]float64, error) {
	length := uint64(1)
	for _, c := range count {
		length *= c
	}

	t, err := v.Type()
	if err != nil {
		return nil, fmt.Errorf("failed to get var type: %w", err)
	}
	switch t {
	case netcdf.DOUBLE:
		data := make([]float64, length)
		if err := v.ReadFloat64Slice(data, start, count); err != nil {
			return nil, err
		}
		return data, nil
	case netcdf.FLOAT:
		tmp := make([]float32, length)
		if err := v.ReadFloat32Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.INT:
		tmp := make([]int32, length)
		if err := v.ReadInt32Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.SHORT:
		tmp := make([]int16, length)
		if err := v.ReadInt16Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	case netcdf.BYTE:
		tmp := make([]int8, length)
		if err := v.ReadInt8Slice(tmp, start, count); err != nil {
			return nil, err
		}
		return widen(tmp), nil
	}
	return nil, fmt.Errorf("%w: %v", errUnsupportedType, t)
}

func widen[T int8 | int16 | int32 | float32](in []T) []float64 {
	out := make([]float64, len(in))
	for i, val := range in {
		out[i] = float64(val)
	}
	return out
}
