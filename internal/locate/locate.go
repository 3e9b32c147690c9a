// Package locate resolves geographic positions to horizontal model grid indices.
package locate

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/mesh"
	"go.ngs.io/salishsea-tools/internal/obs"
)

// Strategy selects how positions are resolved.
type Strategy string

// Locator strategies.
const (
	// StrategyExhaustive searches every ocean cell, memoising unique positions.
	StrategyExhaustive Strategy = "exhaustive"
	// StrategyHint searches a window around the previous match first.
	StrategyHint Strategy = "hint"
	// StrategyLookup selects the nearest bucket of a precomputed lookup table.
	StrategyLookup Strategy = "lookup"
)

// DefaultRadius is the half-width in cells of the prior-hint search window.
const DefaultRadius = 1

// SingleCellToleranceKm is the distance tolerance used on a grid with a
// single horizontal cell, where no spacing can be measured.
const SingleCellToleranceKm = 1.0

// Options configures a Locator.
type Options struct {
	// Family selects the stagger whose surface mask marks candidate cells.
	Family mesh.Family
	// MaxDistanceKm rejects points farther than this from every ocean cell.
	// Zero derives the tolerance from the local grid spacing: the largest
	// distance from the nearest cell to its neighbours. Negative disables
	// the check.
	MaxDistanceKm float64
	// Radius is the prior-hint window half-width; zero means DefaultRadius.
	Radius int
	// Lookup is required by StrategyLookup.
	Lookup *Lookup
	// Quiet suppresses the log line for each dropped observation.
	Quiet  bool
	Logger logrus.FieldLogger
}

// Nearest returns the (j, i) of the ocean cell nearest to (lon, lat) by
// great-circle distance. Ties go to the lowest j, then the lowest i. It fails
// with domain.ErrOnLand when the point lies within tolerance of the grid but
// no ocean cell does, and with domain.ErrOutsideDomain otherwise.
func Nearest(g *mesh.Grid, lon, lat float64, opts Options) (j, i int, err error) {
	return nearestIn(g, g.SurfaceOcean(family(opts)), lon, lat, opts.MaxDistanceKm)
}

func nearestIn(g *mesh.Grid, ocean []bool, lon, lat, tol float64) (int, int, error) {
	bestJ, bestI, best := -1, -1, math.Inf(1)
	anyJ, anyI, anyDist := -1, -1, math.Inf(1)
	for j := 0; j < g.NY; j++ {
		for i := 0; i < g.NX; i++ {
			glat, glon := g.LatLon(j, i)
			d := domain.Haversine(lon, lat, glon, glat)
			if d < anyDist {
				anyJ, anyI, anyDist = j, i, d
			}
			if ocean[j*g.NX+i] && d < best {
				bestJ, bestI, best = j, i, d
			}
		}
	}
	if tol == 0 && anyJ >= 0 {
		tol = cellSpacing(g, anyJ, anyI)
	}
	within := func(d float64) bool { return tol < 0 || d <= tol }
	switch {
	case bestJ >= 0 && within(best):
		return bestJ, bestI, nil
	case within(anyDist):
		return -1, -1, fmt.Errorf("(%.5f, %.5f): %w", lon, lat, domain.ErrOnLand)
	}
	return -1, -1, fmt.Errorf("(%.5f, %.5f) is %.3f km from the grid: %w", lon, lat, anyDist, domain.ErrOutsideDomain)
}

// nearestWindow searches the ±radius window around (hj, hi). ok is false when
// the window holds no acceptable cell or the best cell lies on an interior
// edge of the window, where a closer cell may exist outside it.
func nearestWindow(g *mesh.Grid, ocean []bool, lon, lat float64, hj, hi, radius int, tol float64) (int, int, bool) {
	j0, j1 := max(hj-radius, 0), min(hj+radius, g.NY-1)
	i0, i1 := max(hi-radius, 0), min(hi+radius, g.NX-1)
	bestJ, bestI, best := -1, -1, math.Inf(1)
	for j := j0; j <= j1; j++ {
		for i := i0; i <= i1; i++ {
			if !ocean[j*g.NX+i] {
				continue
			}
			glat, glon := g.LatLon(j, i)
			if d := domain.Haversine(lon, lat, glon, glat); d < best {
				bestJ, bestI, best = j, i, d
			}
		}
	}
	if bestJ < 0 {
		return -1, -1, false
	}
	if tol == 0 {
		tol = cellSpacing(g, bestJ, bestI)
	}
	if tol >= 0 && best > tol {
		return -1, -1, false
	}
	onEdge := (bestJ == j0 && j0 > 0) || (bestJ == j1 && j1 < g.NY-1) ||
		(bestI == i0 && i0 > 0) || (bestI == i1 && i1 < g.NX-1)
	if onEdge {
		return -1, -1, false
	}
	return bestJ, bestI, true
}

// cellSpacing returns the largest great-circle distance in km from cell
// (j, i) to its in-bounds edge neighbours.
func cellSpacing(g *mesh.Grid, j, i int) float64 {
	lat, lon := g.LatLon(j, i)
	spacing, found := 0.0, false
	for _, n := range [4][2]int{{j - 1, i}, {j + 1, i}, {j, i - 1}, {j, i + 1}} {
		if !g.InBounds(n[0], n[1]) {
			continue
		}
		nlat, nlon := g.LatLon(n[0], n[1])
		spacing = max(spacing, domain.Haversine(lon, lat, nlon, nlat))
		found = true
	}
	if !found {
		return SingleCellToleranceKm
	}
	return spacing
}

type position struct{ lon, lat float64 }

type result struct {
	j, i int
	err  error
}

// Locator resolves positions with one strategy.
type Locator struct {
	grid     *mesh.Grid
	strategy Strategy
	opts     Options
	ocean    []bool
	log      logrus.FieldLogger

	memo     map[position]result
	hint     [2]int
	haveHint bool
}

// New creates a Locator over grid g.
func New(g *mesh.Grid, strategy Strategy, opts Options) (*Locator, error) {
	switch strategy {
	case StrategyExhaustive, StrategyHint:
	case StrategyLookup:
		if opts.Lookup == nil {
			return nil, errors.New("lookup strategy requires a lookup table")
		}
	default:
		return nil, fmt.Errorf("unknown locator strategy %q", strategy)
	}
	if opts.Radius <= 0 {
		opts.Radius = DefaultRadius
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Locator{
		grid:     g,
		strategy: strategy,
		opts:     opts,
		ocean:    g.SurfaceOcean(family(opts)),
		log:      log,
		memo:     make(map[position]result),
	}, nil
}

// Locate resolves one position.
func (l *Locator) Locate(lon, lat float64) (j, i int, err error) {
	switch l.strategy {
	case StrategyLookup:
		return l.fromLookup(lon, lat)
	case StrategyHint:
		if l.haveHint {
			if j, i, ok := nearestWindow(l.grid, l.ocean, lon, lat, l.hint[0], l.hint[1], l.opts.Radius, l.opts.MaxDistanceKm); ok {
				l.hint = [2]int{j, i}
				return j, i, nil
			}
		}
		j, i, err = l.exhaustive(lon, lat)
		if err == nil {
			l.hint, l.haveHint = [2]int{j, i}, true
		}
		return j, i, err
	}
	return l.exhaustive(lon, lat)
}

func (l *Locator) exhaustive(lon, lat float64) (int, int, error) {
	key := position{lon, lat}
	if r, ok := l.memo[key]; ok {
		return r.j, r.i, r.err
	}
	j, i, err := nearestIn(l.grid, l.ocean, lon, lat, l.opts.MaxDistanceKm)
	l.memo[key] = result{j, i, err}
	return j, i, err
}

func (l *Locator) fromLookup(lon, lat float64) (int, int, error) {
	j, i, err := l.opts.Lookup.Find(lon, lat)
	if err != nil {
		return -1, -1, err
	}
	if !l.grid.InBounds(j, i) || !l.ocean[j*l.grid.NX+i] {
		return -1, -1, fmt.Errorf("(%.5f, %.5f) maps to (%d, %d): %w", lon, lat, j, i, domain.ErrOnLand)
	}
	return j, i, nil
}

// Apply resolves the Lat/Lon of every row and returns a new table with j and
// i columns. Rows that cannot be resolved are dropped and logged at info
// level unless Quiet is set.
func (l *Locator) Apply(tbl *obs.Table) (*obs.Table, error) {
	if !tbl.Has(obs.ColLat) || !tbl.Has(obs.ColLon) {
		return nil, fmt.Errorf("%v: %w", []string{obs.ColLat, obs.ColLon}, domain.ErrMissingColumn)
	}
	lats, lons := tbl.Column(obs.ColLat), tbl.Column(obs.ColLon)
	keep := make([]int, 0, tbl.Len())
	var js, is []float64
	for r := 0; r < tbl.Len(); r++ {
		j, i, err := l.Locate(lons[r], lats[r])
		if err != nil {
			if !l.opts.Quiet {
				l.log.WithFields(logrus.Fields{
					"lat": lats[r],
					"lon": lons[r],
				}).WithError(err).Info("dropping observation")
			}
			continue
		}
		keep = append(keep, r)
		js = append(js, float64(j))
		is = append(is, float64(i))
	}
	out := tbl.Select(keep)
	if err := out.SetColumn(obs.ColJ, orEmpty(js)); err != nil {
		return nil, err
	}
	if err := out.SetColumn(obs.ColI, orEmpty(is)); err != nil {
		return nil, err
	}
	return out, nil
}

func orEmpty(v []float64) []float64 {
	if v == nil {
		return []float64{}
	}
	return v
}

func family(opts Options) mesh.Family {
	if opts.Family == "" {
		return mesh.FamilyT
	}
	return opts.Family
}
