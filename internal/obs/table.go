// Package obs provides the observation table consumed and produced by the
// model matcher.
//
// A Table is column oriented: the UTC timestamp column dtUTC is held as
// time.Time and every other column as float64, with NaN for missing values.
package obs

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// Well-known column names.
const (
	ColTime   = "dtUTC"
	ColLat    = "Lat"
	ColLon    = "Lon"
	ColZ      = "Z"
	ColZUpper = "Z_upper"
	ColZLower = "Z_lower"
	ColI      = "i"
	ColJ      = "j"
	ColK      = "k"

	// ModelPrefix prefixes the columns holding matched model values.
	ModelPrefix = "mod_"
)

// Record is a single observation row.
type Record struct {
	Time   time.Time
	Values map[string]float64
}

// Table is a set of observation rows.
type Table struct {
	times []time.Time
	cols  map[string][]float64
	order []string
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{cols: make(map[string][]float64)}
}

// FromRecords builds a table from rows. Columns absent from a row are NaN.
func FromRecords(recs []Record) *Table {
	t := NewTable()
	for _, r := range recs {
		t.Append(r)
	}
	return t
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.times) }

// Times returns the dtUTC column.
func (t *Table) Times() []time.Time { return t.times }

// Time returns the timestamp of row r.
func (t *Table) Time(r int) time.Time { return t.times[r] }

// Has reports whether the column exists. dtUTC always exists.
func (t *Table) Has(name string) bool {
	if name == ColTime {
		return true
	}
	_, ok := t.cols[name]
	return ok
}

// Columns returns the float column names in insertion order.
func (t *Table) Columns() []string {
	return append([]string(nil), t.order...)
}

// Column returns the values of a column, or nil if absent.
func (t *Table) Column(name string) []float64 {
	return t.cols[name]
}

// Value returns one cell, NaN if the column is absent.
func (t *Table) Value(name string, r int) float64 {
	col, ok := t.cols[name]
	if !ok {
		return math.NaN()
	}
	return col[r]
}

// Set writes one cell of an existing column.
func (t *Table) Set(name string, r int, v float64) {
	t.cols[name][r] = v
}

// SetColumn adds or replaces a column.
func (t *Table) SetColumn(name string, vals []float64) error {
	if name == ColTime {
		return fmt.Errorf("%s is not a float column", ColTime)
	}
	if len(vals) != t.Len() {
		return fmt.Errorf("column %s has %d values for %d rows", name, len(vals), t.Len())
	}
	if _, ok := t.cols[name]; !ok {
		t.order = append(t.order, name)
	}
	t.cols[name] = vals
	return nil
}

// AddColumn adds a column filled with v and returns it. An existing column is
// returned unchanged.
func (t *Table) AddColumn(name string, v float64) []float64 {
	if col, ok := t.cols[name]; ok {
		return col
	}
	col := make([]float64, t.Len())
	for r := range col {
		col[r] = v
	}
	t.cols[name] = col
	t.order = append(t.order, name)
	return col
}

// Append adds a row. New columns are back-filled with NaN and added in
// lexical order.
func (t *Table) Append(rec Record) {
	var added []string
	for name := range rec.Values {
		if _, ok := t.cols[name]; !ok {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	for _, name := range added {
		t.AddColumn(name, math.NaN())
	}
	t.times = append(t.times, rec.Time.UTC())
	for _, name := range t.order {
		v, ok := rec.Values[name]
		if !ok {
			v = math.NaN()
		}
		t.cols[name] = append(t.cols[name], v)
	}
}

// Row returns row r as a record.
func (t *Table) Row(r int) Record {
	vals := make(map[string]float64, len(t.order))
	for _, name := range t.order {
		vals[name] = t.cols[name][r]
	}
	return Record{Time: t.times[r], Values: vals}
}

// Select returns a new table holding the given rows in the given order.
func (t *Table) Select(rows []int) *Table {
	out := &Table{
		times: make([]time.Time, len(rows)),
		cols:  make(map[string][]float64, len(t.cols)),
		order: append([]string(nil), t.order...),
	}
	for n, r := range rows {
		out.times[n] = t.times[r]
	}
	for _, name := range t.order {
		src := t.cols[name]
		dst := make([]float64, len(rows))
		for n, r := range rows {
			dst[n] = src[r]
		}
		out.cols[name] = dst
	}
	return out
}

// Filter returns a new table with the rows for which keep is true.
func (t *Table) Filter(keep func(r int) bool) *Table {
	rows := make([]int, 0, t.Len())
	for r := 0; r < t.Len(); r++ {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.Select(rows)
}

// Between returns the rows with start <= dtUTC < end.
func (t *Table) Between(start, end time.Time) *Table {
	return t.Filter(func(r int) bool {
		return !t.times[r].Before(start) && t.times[r].Before(end)
	})
}

// DropNaN returns the rows with no NaN in any of the named columns. Absent
// columns are ignored.
func (t *Table) DropNaN(names ...string) *Table {
	cols := make([][]float64, 0, len(names))
	for _, name := range names {
		if col, ok := t.cols[name]; ok {
			cols = append(cols, col)
		}
	}
	return t.Filter(func(r int) bool {
		for _, col := range cols {
			if math.IsNaN(col[r]) {
				return false
			}
		}
		return true
	})
}

// Span returns the earliest and latest timestamps. ok is false for an empty table.
func (t *Table) Span() (first, last time.Time, ok bool) {
	if t.Len() == 0 {
		return time.Time{}, time.Time{}, false
	}
	first, last = t.times[0], t.times[0]
	for _, ts := range t.times[1:] {
		if ts.Before(first) {
			first = ts
		}
		if ts.After(last) {
			last = ts
		}
	}
	return first, last, true
}

// SortBy returns a new table stably sorted by dtUTC and then by the named
// columns that are present, in the order given. NaN sorts last.
func (t *Table) SortBy(keys ...string) *Table {
	cols := make([][]float64, 0, len(keys))
	for _, name := range keys {
		if col, ok := t.cols[name]; ok {
			cols = append(cols, col)
		}
	}
	rows := make([]int, t.Len())
	for r := range rows {
		rows[r] = r
	}
	sort.SliceStable(rows, func(a, b int) bool {
		ra, rb := rows[a], rows[b]
		if !t.times[ra].Equal(t.times[rb]) {
			return t.times[ra].Before(t.times[rb])
		}
		for _, col := range cols {
			va, vb := col[ra], col[rb]
			switch {
			case va == vb, math.IsNaN(va) && math.IsNaN(vb):
				continue
			case math.IsNaN(va):
				return false
			case math.IsNaN(vb):
				return true
			}
			return va < vb
		}
		return false
	})
	return t.Select(rows)
}
