package match

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/archive"
	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/locate"
	"go.ngs.io/salishsea-tools/internal/mesh"
	"go.ngs.io/salishsea-tools/internal/obs"
)

// DefaultE3TFileType holds the time-varying cell thicknesses for VVL policies.
const DefaultE3TFileType = "grid_T"

// e3tName is the time-varying thickness variable.
const e3tName = "e3t"

// Options configures a match run.
type Options struct {
	Method Method
	// SDim is 3 for depth-resolved variables and 2 for surface fields.
	SDim int

	// VarFileTypes maps each model variable to the file type holding it.
	VarFileTypes map[string]string
	// FileHours maps each file type to its output cadence in hours.
	FileHours map[string]int

	// Start and End bound the observations matched. Zero values are taken
	// from the observation extremes.
	Start, End time.Time

	BaseDir        string
	NameFormat     archive.Format
	FileLengthDays int
	// Indexes overrides the archive index built for a file type.
	Indexes map[string]archive.Index

	Grid    *mesh.Grid
	Locator locate.Strategy
	Locate  locate.Options

	Opener      dataset.Opener
	E3TFileType string
	// MaxOpenFiles caps the number of simultaneously open files. Zero uses
	// the process limit.
	MaxOpenFiles int

	Quiet  bool
	Logger logrus.FieldLogger
}

// Stats describes the file activity of the last run.
type Stats struct {
	// Opens counts opens per file path.
	Opens map[string]int
	// Transitions counts file changes per file type.
	Transitions map[string]int
}

// Matcher runs the match driver with fixed options.
type Matcher struct {
	opts  Options
	log   logrus.FieldLogger
	stats Stats
}

// New validates opts and fills defaults.
func New(opts Options) (*Matcher, error) {
	if _, err := ParseMethod(string(opts.Method)); err != nil {
		return nil, err
	}
	if opts.SDim == 0 {
		opts.SDim = 3
	}
	if opts.SDim != 2 && opts.SDim != 3 {
		return nil, fmt.Errorf("sdim must be 2 or 3, got %d", opts.SDim)
	}
	if opts.Grid == nil {
		return nil, errors.New("match requires a grid descriptor")
	}
	if opts.Opener == nil {
		return nil, errors.New("match requires a dataset opener")
	}
	if opts.Method == MethodVertNet && opts.SDim == 3 && opts.Grid.E3T0 == nil {
		return nil, errors.New("vertNet requires e3t_0 in the mesh")
	}
	if opts.E3TFileType == "" {
		opts.E3TFileType = DefaultE3TFileType
	}
	if opts.Locator == "" {
		opts.Locator = locate.StrategyExhaustive
	}
	if opts.FileLengthDays <= 0 {
		opts.FileLengthDays = 1
	}
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	opts.Locate.Quiet = opts.Locate.Quiet || opts.Quiet
	if opts.Locate.Logger == nil {
		opts.Locate.Logger = log
	}
	return &Matcher{opts: opts, log: log}, nil
}

// Run matches tbl with opts.
func Run(ctx context.Context, tbl *obs.Table, opts Options) (*obs.Table, error) {
	m, err := New(opts)
	if err != nil {
		return nil, err
	}
	return m.Run(ctx, tbl)
}

// Stats returns the file activity of the last run.
func (m *Matcher) Stats() Stats {
	return m.stats
}

// Run returns a copy of tbl, filtered to the run window and sorted by time,
// depth and position, with a mod_<var> column per variable and the resolved
// i and j columns. Bin-like policies add k. Masked cells and rows without a
// time bin hold NaN.
func (m *Matcher) Run(ctx context.Context, tbl *obs.Table) (*obs.Table, error) {
	opts := m.opts
	preIndexed := tbl.Has(obs.ColI) && tbl.Has(obs.ColJ)
	required := RequiredColumns(opts.Method, opts.SDim, preIndexed)
	if err := CheckColumns(tbl, required); err != nil {
		return nil, err
	}

	fileTypes, err := FileTypes(opts.FileHours, opts.VarFileTypes)
	if err != nil {
		return nil, err
	}
	vars := FileTypeVars(opts.VarFileTypes, fileTypes)
	indexTypes := fileTypes
	if m.needsE3T() && !contains(fileTypes, opts.E3TFileType) {
		if _, ok := opts.FileHours[opts.E3TFileType]; !ok {
			return nil, fmt.Errorf("no cadence for %s holding e3t: %w", opts.E3TFileType, domain.ErrUnknownFileType)
		}
		indexTypes = append(append([]string{}, fileTypes...), opts.E3TFileType)
		sort.Strings(indexTypes)
	}

	start, end := opts.Start, opts.End
	if first, last, ok := tbl.Span(); ok {
		if start.IsZero() {
			start = first
		}
		if end.IsZero() {
			end = last.Add(time.Second)
		}
	}
	tbl = tbl.Between(start, end).DropNaN(required...)

	if !preIndexed {
		loc, err := locate.New(opts.Grid, opts.Locator, opts.Locate)
		if err != nil {
			return nil, err
		}
		if tbl, err = loc.Apply(tbl); err != nil {
			return nil, err
		}
	}
	tbl = tbl.SortBy(obs.ColZ, obs.ColJ, obs.ColI)

	m.stats = Stats{Opens: map[string]int{}, Transitions: map[string]int{}}
	if tbl.Len() == 0 {
		m.addColumns(tbl, fileTypes, vars, preIndexed)
		return tbl, nil
	}

	indexes := make(map[string]archive.Index, len(indexTypes))
	for _, ft := range indexTypes {
		if ix, ok := opts.Indexes[ft]; ok {
			indexes[ft] = ix
			continue
		}
		ix, err := archive.Build(archive.Query{
			BaseDir:        opts.BaseDir,
			Format:         opts.NameFormat,
			FileType:       ft,
			CadenceHours:   opts.FileHours[ft],
			FileLengthDays: opts.FileLengthDays,
			Start:          start,
			End:            end,
			Logger:         m.log,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to index %s files: %w", ft, err)
		}
		indexes[ft] = ix
	}

	if opts.Method == MethodVertNet && opts.SDim == 3 {
		for _, ft := range fileTypes {
			if f, _ := mesh.FamilyOf(ft); f == mesh.FamilyU || f == mesh.FamilyV {
				m.log.WithField("filetype", ft).Warn("vertNet averages with T-cell thicknesses on a velocity grid")
				break
			}
		}
	}

	capacity := max(MaxOpenFiles(opts.MaxOpenFiles), len(indexTypes))
	w := &walker{
		m:       m,
		cache:   newHandleCache(opts.Opener, capacity, m.log),
		indexes: indexes,
		cursor:  make(map[string]int, len(indexTypes)),
	}
	for _, ft := range indexTypes {
		w.cursor[ft] = -1
	}

	out := make(map[string][]float64)
	for _, ft := range fileTypes {
		for _, v := range vars[ft] {
			out[v] = tbl.AddColumn(obs.ModelPrefix+v, math.NaN())
		}
	}
	var ks []float64
	if opts.Method.binLike() && opts.SDim == 3 && !preIndexed {
		ks = tbl.AddColumn(obs.ColK, math.NaN())
	}

	runErr := w.walk(ctx, tbl, fileTypes, vars, out, ks, preIndexed)
	closeErr := w.cache.close()
	m.stats.Opens = w.cache.openCounts()
	if runErr != nil {
		return nil, runErr
	}
	if closeErr != nil {
		return nil, fmt.Errorf("failed to close model files: %w", closeErr)
	}
	return tbl, nil
}

func (m *Matcher) needsE3T() bool {
	return m.opts.SDim == 3 && m.opts.Method.vvl()
}

func (m *Matcher) addColumns(tbl *obs.Table, fileTypes []string, vars map[string][]string, preIndexed bool) {
	for _, ft := range fileTypes {
		for _, v := range vars[ft] {
			tbl.AddColumn(obs.ModelPrefix+v, math.NaN())
		}
	}
	if !tbl.Has(obs.ColI) {
		tbl.AddColumn(obs.ColI, math.NaN())
		tbl.AddColumn(obs.ColJ, math.NaN())
	}
	if m.opts.Method.binLike() && m.opts.SDim == 3 && !preIndexed {
		tbl.AddColumn(obs.ColK, math.NaN())
	}
}

// walker holds the per-run file state of the row loop.
type walker struct {
	m       *Matcher
	cache   *handleCache
	indexes map[string]archive.Index
	cursor  map[string]int
}

func (w *walker) walk(ctx context.Context, tbl *obs.Table, fileTypes []string,
	vars map[string][]string, out map[string][]float64, ks []float64, preIndexed bool) error {
	opts := w.m.opts
	js, is := tbl.Column(obs.ColJ), tbl.Column(obs.ColI)

	for r := 0; r < tbl.Len(); r++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		t := tbl.Time(r)
		j, i := int(js[r]), int(is[r])
		if !opts.Grid.InBounds(j, i) {
			w.m.log.WithFields(logrus.Fields{"j": j, "i": i}).Debug("row outside the grid")
			continue
		}

		for _, ft := range fileTypes {
			f, ti, ok, err := w.at(ft, t)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			fam, masked := mesh.FamilyOf(ft)
			if !masked {
				fam = ""
			}
			c := column{grid: opts.Grid, family: fam, j: j, i: i}

			s, err := w.sample(c, f, ti, tbl, r, preIndexed)
			if err != nil {
				return err
			}
			if ks != nil && s.k >= 0 {
				ks[r] = float64(s.k)
			}
			if s.empty() {
				continue
			}
			for _, v := range vars[ft] {
				val, err := w.read(f, v, ti, s, j, i)
				if err != nil {
					return err
				}
				out[v][r] = val
			}
		}
	}
	return nil
}

// at returns the open file and time bin for ft at t. ok is false when no
// file or bin covers t.
func (w *walker) at(ft string, t time.Time) (*openFile, int, bool, error) {
	ix := w.indexes[ft]
	n := sort.Search(len(ix), func(n int) bool { return ix[n].Tn.After(t) })
	if n == len(ix) || !ix[n].Covers(t) {
		w.m.log.WithFields(logrus.Fields{"filetype": ft, "time": t}).Debug("no file covers observation")
		return nil, 0, false, nil
	}
	if cur := w.cursor[ft]; cur != n {
		if cur >= 0 {
			w.cache.release(fileKey{fileType: ft, n: cur})
			w.m.stats.Transitions[ft]++
		}
		w.cursor[ft] = n
	}

	cadence := w.m.opts.FileHours[ft]
	f, err := w.cache.get(fileKey{fileType: ft, n: n}, ix[n].Path, func(f *openFile) error {
		times, err := ReadTimeIndex(f.ds, cadence)
		if err != nil {
			return fmt.Errorf("failed to read times of %s: %w", f.ds.Path(), err)
		}
		f.times = times
		return nil
	})
	if err != nil {
		return nil, 0, false, fmt.Errorf("failed to open %s: %w", ix[n].Path, err)
	}

	ti, ok := f.times.Find(t)
	if !ok {
		w.m.log.WithFields(logrus.Fields{"filetype": ft, "path": ix[n].Path, "time": t}).Debug("no time index for observation")
		return nil, 0, false, nil
	}
	return f, ti, true, nil
}

func (w *walker) sample(c column, f *openFile, ti int, tbl *obs.Table, r int, preIndexed bool) (sample, error) {
	opts := w.m.opts
	if opts.SDim == 2 || opts.Method == MethodFerry {
		return sampleFerry(c), nil
	}
	if opts.Method == MethodVertNet {
		return sampleVertNet(c, tbl.Value(obs.ColZUpper, r), tbl.Value(obs.ColZLower, r)), nil
	}
	if preIndexed {
		k := int(tbl.Value(obs.ColK, r))
		if k < 0 || k >= opts.Grid.NZ {
			return noSample, nil
		}
		return c.level(k), nil
	}

	z := tbl.Value(obs.ColZ, r)
	switch opts.Method {
	case MethodBin:
		bounds, err := w.bounds(f)
		if err != nil {
			return noSample, err
		}
		return sampleBin(c, bounds, z), nil
	case MethodVVLBin, MethodVVLZ:
		e3t, ok, err := w.e3t(tbl.Time(r), c.j, c.i)
		if err != nil || !ok {
			return noSample, err
		}
		if opts.Method == MethodVVLBin {
			return sampleVVLBin(c, e3t, z), nil
		}
		return sampleVVLZ(c, e3t, z), nil
	}
	return noSample, nil
}

// bounds reads the depth bounds of f once per open.
func (w *walker) bounds(f *openFile) ([]float64, error) {
	if f.bounds != nil {
		return f.bounds, nil
	}
	name := depthBoundsName(f.fileType)
	b, err := f.ds.ReadAll(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.ds.Path(), err)
	}
	if len(b)%2 != 0 {
		return nil, fmt.Errorf("%s in %s has %d values, expected pairs", name, f.ds.Path(), len(b))
	}
	f.bounds = b
	return b, nil
}

// e3t reads the time-varying thicknesses of column (j, i) at t.
func (w *walker) e3t(t time.Time, j, i int) ([]float64, bool, error) {
	f, ti, ok, err := w.at(w.m.opts.E3TFileType, t)
	if err != nil || !ok {
		return nil, false, err
	}
	shape, err := w.shape(f, e3tName)
	if err != nil {
		return nil, false, err
	}
	if len(shape) != 4 {
		return nil, false, fmt.Errorf("%s in %s has rank %d, expected 4", e3tName, f.ds.Path(), len(shape))
	}
	vals, err := f.ds.ReadSlice(e3tName, []int{ti, 0, j, i}, []int{1, shape[1], 1, 1})
	if err != nil {
		return nil, false, fmt.Errorf("failed to read %s from %s: %w", e3tName, f.ds.Path(), err)
	}
	return vals, true, nil
}

func (w *walker) shape(f *openFile, name string) ([]int, error) {
	if s, ok := f.shapes[name]; ok {
		return s, nil
	}
	s, err := f.ds.Shape(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from %s: %w", name, f.ds.Path(), err)
	}
	f.shapes[name] = s
	return s, nil
}

// read samples variable v of f at time bin ti. Rank-3 variables are read at
// [t, j, i] and rank-4 variables at [t, k, j, i].
func (w *walker) read(f *openFile, v string, ti int, s sample, j, i int) (float64, error) {
	shape, err := w.shape(f, v)
	if err != nil {
		return math.NaN(), err
	}
	switch len(shape) {
	case 3:
		val, err := dataset.ReadAt(f.ds, v, ti, j, i)
		if err != nil {
			return math.NaN(), fmt.Errorf("failed to read %s from %s: %w", v, f.ds.Path(), err)
		}
		return val, nil
	case 4:
		lo, hi := s.levels[0], s.levels[0]
		for _, k := range s.levels {
			lo, hi = min(lo, k), max(hi, k)
		}
		if hi >= shape[1] {
			return math.NaN(), nil
		}
		col, err := f.ds.ReadSlice(v, []int{ti, lo, j, i}, []int{1, hi - lo + 1, 1, 1})
		if err != nil {
			return math.NaN(), fmt.Errorf("failed to read %s from %s: %w", v, f.ds.Path(), err)
		}
		vals := make([]float64, len(s.levels))
		for n, k := range s.levels {
			vals[n] = col[k-lo]
		}
		return weighted(s, vals), nil
	}
	return math.NaN(), fmt.Errorf("%s in %s has rank %d, expected 3 or 4", v, f.ds.Path(), len(shape))
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
