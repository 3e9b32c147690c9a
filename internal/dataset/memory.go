package dataset

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when reading from a closed Memory dataset.
var ErrClosed = errors.New("dataset is closed")

// Variable is an in-memory array with attributes.
type Variable struct {
	Shape []int
	Data  []float64
	Attrs map[string]string
}

// Memory is an in-memory Dataset.
type Memory struct {
	path   string
	vars   map[string]*Variable
	closed bool
}

// NewMemory creates an empty in-memory dataset.
func NewMemory(path string) *Memory {
	return &Memory{path: path, vars: make(map[string]*Variable)}
}

// Add stores a variable and returns m for chaining. It panics when the data
// length does not match the shape.
func (m *Memory) Add(name string, shape []int, data []float64, attrs map[string]string) *Memory {
	if Size(shape) != len(data) {
		panic(fmt.Sprintf("dataset: variable %s has %d values for shape %v", name, len(data), shape))
	}
	if attrs == nil {
		attrs = map[string]string{}
	}
	m.vars[name] = &Variable{Shape: append([]int(nil), shape...), Data: data, Attrs: attrs}
	return m
}

// Path implements Dataset.
func (m *Memory) Path() string { return m.path }

// Has implements Dataset.
func (m *Memory) Has(name string) bool {
	_, ok := m.vars[name]
	return ok
}

func (m *Memory) lookup(name string) (*Variable, error) {
	if m.closed {
		return nil, fmt.Errorf("%s: %w", m.path, ErrClosed)
	}
	v, ok := m.vars[name]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", name, m.path, ErrNoVariable)
	}
	return v, nil
}

// Shape implements Dataset.
func (m *Memory) Shape(name string) ([]int, error) {
	v, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]int(nil), v.Shape...), nil
}

// ReadAll implements Dataset.
func (m *Memory) ReadAll(name string) ([]float64, error) {
	v, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	return append([]float64(nil), v.Data...), nil
}

// ReadSlice implements Dataset.
func (m *Memory) ReadSlice(name string, start, count []int) ([]float64, error) {
	v, err := m.lookup(name)
	if err != nil {
		return nil, err
	}
	if err := CheckSlice(name, v.Shape, start, count); err != nil {
		return nil, err
	}
	return Extract(v.Data, v.Shape, start, count), nil
}

// Attr implements Dataset.
func (m *Memory) Attr(name, attr string) (string, bool) {
	v, ok := m.vars[name]
	if !ok {
		return "", false
	}
	s, ok := v.Attrs[attr]
	return s, ok
}

// Close implements Dataset.
func (m *Memory) Close() error {
	m.closed = true
	return nil
}

// MemoryOpener serves Memory datasets by path and counts opens.
type MemoryOpener struct {
	mu    sync.Mutex
	files map[string]*Memory
	opens map[string]int
}

// NewMemoryOpener creates an opener over the given datasets, keyed by their paths.
func NewMemoryOpener(files ...*Memory) *MemoryOpener {
	o := &MemoryOpener{files: make(map[string]*Memory), opens: make(map[string]int)}
	for _, f := range files {
		o.files[f.path] = f
	}
	return o
}

// Open implements Opener. Reopening a closed dataset makes it readable again.
func (o *MemoryOpener) Open(path string) (Dataset, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	f, ok := o.files[path]
	if !ok {
		return nil, fmt.Errorf("failed to open %s: no such dataset", path)
	}
	o.opens[path]++
	f.closed = false
	return f, nil
}

// Opens returns how many times path has been opened.
func (o *MemoryOpener) Opens(path string) int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.opens[path]
}

// TotalOpens returns the number of opens across all paths.
func (o *MemoryOpener) TotalOpens() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	n := 0
	for _, c := range o.opens {
		n += c
	}
	return n
}
