package obs

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

func sample() *Table {
	return FromRecords([]Record{
		{Time: t0.Add(2 * time.Hour), Values: map[string]float64{ColLat: 49, ColLon: -123, ColZ: 10}},
		{Time: t0, Values: map[string]float64{ColLat: 48, ColLon: -123, ColZ: 5}},
		{Time: t0, Values: map[string]float64{ColLat: 48, ColLon: -123, ColZ: 1}},
		{Time: t0.Add(time.Hour), Values: map[string]float64{ColLat: math.NaN(), ColLon: -124, ColZ: 0}},
	})
}

func TestFromRecords(t *testing.T) {
	tbl := FromRecords([]Record{
		{Time: t0, Values: map[string]float64{"b": 1, "a": 2}},
		{Time: t0, Values: map[string]float64{"c": 3}},
	})

	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, []string{"a", "b", "c"}, tbl.Columns())
	assert.True(t, math.IsNaN(tbl.Value("c", 0)))
	assert.True(t, math.IsNaN(tbl.Value("a", 1)))
	assert.Equal(t, 3.0, tbl.Value("c", 1))
	assert.True(t, tbl.Has(ColTime))
	assert.False(t, tbl.Has("d"))
}

func TestSortBy(t *testing.T) {
	sorted := sample().SortBy(ColZ, ColJ, ColI)

	assert.Equal(t, []float64{1, 5, 0, 10}, sorted.Column(ColZ))
	assert.Equal(t, t0, sorted.Time(0))
	assert.Equal(t, t0.Add(2*time.Hour), sorted.Time(3))
}

func TestDropNaNAndBetween(t *testing.T) {
	tbl := sample()

	clean := tbl.DropNaN(ColLat, ColLon, "missing")
	assert.Equal(t, 3, clean.Len())

	win := tbl.Between(t0, t0.Add(2*time.Hour))
	assert.Equal(t, 3, win.Len())

	first, last, ok := tbl.Span()
	require.True(t, ok)
	assert.Equal(t, t0, first)
	assert.Equal(t, t0.Add(2*time.Hour), last)

	_, _, ok = NewTable().Span()
	assert.False(t, ok)
}

func TestSetColumn(t *testing.T) {
	tbl := sample()

	require.NoError(t, tbl.SetColumn("mod_v", []float64{1, 2, 3, 4}))
	assert.Error(t, tbl.SetColumn("mod_v", []float64{1}))
	assert.Error(t, tbl.SetColumn(ColTime, []float64{1, 2, 3, 4}))

	col := tbl.AddColumn(ColJ, -1)
	assert.Equal(t, []float64{-1, -1, -1, -1}, col)
	tbl.Set(ColJ, 2, 7)
	assert.Equal(t, 7.0, tbl.Row(2).Values[ColJ])
}
