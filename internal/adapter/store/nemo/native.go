package nemo

import (
	"fmt"
	"math"
	"reflect"
	"sync"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"go.ngs.io/salishsea-tools/internal/dataset"
)

// NativeFile is a netCDF file read with the pure-Go decoder. Variables are
// decoded whole on first use and kept for the life of the handle.
type NativeFile struct {
	path  string
	group api.Group

	mu    sync.Mutex
	names map[string]bool
	vars  map[string]*nativeVar
}

type nativeVar struct {
	shape []int
	data  []float64
	attrs api.AttributeMap
}

// OpenNative opens a netCDF file without libnetcdf.
func OpenNative(path string) (dataset.Dataset, error) {
	g, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	names := make(map[string]bool)
	for _, n := range g.ListVariables() {
		names[n] = true
	}
	return &NativeFile{path: path, group: g, names: names, vars: make(map[string]*nativeVar)}, nil
}

// Path implements dataset.Dataset.
func (f *NativeFile) Path() string { return f.path }

// Has implements dataset.Dataset.
func (f *NativeFile) Has(name string) bool { return f.names[name] }

func (f *NativeFile) load(name string) (*nativeVar, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if v, ok := f.vars[name]; ok {
		return v, nil
	}
	if !f.names[name] {
		return nil, fmt.Errorf("%s in %s: %w", name, f.path, dataset.ErrNoVariable)
	}
	raw, err := f.group.GetVariable(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.path, err)
	}
	shape, data, err := flatten(raw.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.path, err)
	}
	unpack(data, raw.Attributes)
	v := &nativeVar{shape: shape, data: data, attrs: raw.Attributes}
	f.vars[name] = v
	return v, nil
}

// Shape implements dataset.Dataset.
func (f *NativeFile) Shape(name string) ([]int, error) {
	v, err := f.load(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), v.shape...), nil
}

// ReadAll implements dataset.Dataset.
func (f *NativeFile) ReadAll(name string) ([]float64, error) {
	v, err := f.load(name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), v.data...), nil
}

// ReadSlice implements dataset.Dataset.
func (f *NativeFile) ReadSlice(name string, start, count []int) ([]float64, error) {
	v, err := f.load(name)
	if err != nil {
		return nil, err
	}
	if err := dataset.CheckSlice(name, v.shape, start, count); err != nil {
		return nil, err
	}
	return dataset.Extract(v.data, v.shape, start, count), nil
}

// Attr implements dataset.Dataset for text attributes.
func (f *NativeFile) Attr(name, attr string) (string, bool) {
	v, err := f.load(name)
	if err != nil || v.attrs == nil {
		return "", false
	}
	val, ok := v.attrs.Get(attr)
	if !ok {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// Close implements dataset.Dataset.
func (f *NativeFile) Close() error {
	f.group.Close()
	return nil
}

// flatten converts the nested slices returned by the decoder into a shape
// and row-major float64 values. Scalars have an empty shape.
func flatten(values interface{}) ([]int, []float64, error) {
	rv := reflect.ValueOf(values)
	var shape []int
	for t := rv; t.Kind() == reflect.Slice; {
		shape = append(shape, t.Len())
		if t.Len() == 0 {
			break
		}
		t = t.Index(0)
	}
	out := make([]float64, 0, dataset.Size(shape))
	var walk func(v reflect.Value) error
	walk = func(v reflect.Value) error {
		if v.Kind() == reflect.Slice {
			for k := 0; k < v.Len(); k++ {
				if err := walk(v.Index(k)); err != nil {
					return err
				}
			}
			return nil
		}
		x, ok := number(v)
		if !ok {
			return fmt.Errorf("unsupported var type: %v", v.Type())
		}
		out = append(out, x)
		return nil
	}
	if err := walk(rv); err != nil {
		return nil, nil, err
	}
	return shape, out, nil
}

func number(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	}
	return 0, false
}

// unpack applies _FillValue, scale_factor and add_offset in place.
func unpack(data []float64, attrs api.AttributeMap) {
	if attrs == nil {
		return
	}
	fill, hasFill := attrNumber(attrs, "_FillValue")
	if !hasFill {
		fill, hasFill = attrNumber(attrs, "missing_value")
	}
	scale, ok := attrNumber(attrs, "scale_factor")
	if !ok {
		scale = 1
	}
	offset, _ := attrNumber(attrs, "add_offset")
	for k, x := range data {
		if hasFill && x == fill {
			data[k] = math.NaN()
			continue
		}
		data[k] = x*scale + offset
	}
}

func attrNumber(attrs api.AttributeMap, name string) (float64, bool) {
	val, ok := attrs.Get(name)
	if !ok {
		return 0, false
	}
	rv := reflect.ValueOf(val)
	if rv.Kind() == reflect.Slice {
		if rv.Len() == 0 {
			return 0, false
		}
		rv = rv.Index(0)
	}
	return number(rv)
}
