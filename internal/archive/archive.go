// Package archive indexes the time-partitioned files of a model results archive.
//
// Four naming conventions are supported:
//
//	nowcast  {ddmonyy}/SalishSea_{tres}_{YYYYMMDD}_{YYYYMMDD}_{ftype}.nc
//	long     **/SalishSea_{tres}*{ftype}_{YYYYMMDD}-{YYYYMMDD}.nc
//	glob     **/*_{tres}_{YYYYMMDD}_{YYYYMMDD}_{ftype}.nc
//	forcing  {ftype}_y{YYYY}m{MM}d{DD}.nc
//
// where tres is "1d" for daily cadence and "{n}h" otherwise.
package archive

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/domain"
)

// Format selects a file naming convention.
type Format string

// Naming conventions.
const (
	FormatNowcast Format = "nowcast"
	FormatLong    Format = "long"
	FormatGlob    Format = "glob"
	FormatForcing Format = "forcing"
)

const (
	day        = 24 * time.Hour
	dateLayout = "20060102"
)

// Query describes the files to index.
type Query struct {
	BaseDir        string
	Format         Format
	FileType       string
	CadenceHours   int
	FileLengthDays int
	Start, End     time.Time

	Logger logrus.FieldLogger
}

// Record is one file covering [T0, Tn).
type Record struct {
	Path string
	T0   time.Time
	Tn   time.Time
}

// Covers reports whether t falls inside the record.
func (r Record) Covers(t time.Time) bool {
	return !t.Before(r.T0) && t.Before(r.Tn)
}

// Index is a sorted, non-overlapping sequence of records for one file type.
type Index []Record

// Find returns the record covering t.
func (ix Index) Find(t time.Time) (Record, bool) {
	k := sort.Search(len(ix), func(n int) bool { return ix[n].Tn.After(t) })
	if k < len(ix) && ix[k].Covers(t) {
		return ix[k], true
	}
	return Record{}, false
}

// Resolution returns the tres token used in file names.
func Resolution(cadenceHours int) string {
	if cadenceHours == 24 {
		return "1d"
	}
	return fmt.Sprintf("%dh", cadenceHours)
}

// lookupFunc returns the file that starts on the given day, if any.
type lookupFunc func(start time.Time) (Record, bool)

// Build indexes the files covering [q.Start, q.End). When no file starts on a
// step date it searches back day by day, up to one file length, for a file
// that covers it, and fails with domain.ErrFileNotFound beyond that.
func Build(q Query) (Index, error) {
	if err := q.validate(); err != nil {
		return nil, err
	}
	log := q.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	lookup, pattern, err := q.lookup()
	if err != nil {
		return nil, err
	}

	var ix Index
	t := q.Start.UTC().Truncate(day)
	for t.Before(q.End) {
		earliest := t.AddDate(0, 0, -q.FileLengthDays)
		if n := len(ix); n > 0 && ix[n-1].Tn.After(earliest) {
			earliest = ix[n-1].Tn
		}
		rec, ok := cover(t, earliest, lookup)
		if !ok {
			return nil, fmt.Errorf("%s for %s at %s: %w",
				pattern, q.FileType, t.Format(time.DateOnly), domain.ErrFileNotFound)
		}
		log.WithFields(logrus.Fields{
			"filetype": q.FileType,
			"path":     rec.Path,
		}).Debugf("indexed %s to %s", rec.T0.Format(time.DateOnly), rec.Tn.Format(time.DateOnly))
		ix = append(ix, rec)
		t = rec.Tn
	}
	return ix, nil
}

func cover(t, earliest time.Time, lookup lookupFunc) (Record, bool) {
	for s := t; !s.Before(earliest); s = s.Add(-day) {
		if rec, ok := lookup(s); ok && rec.Covers(t) {
			return rec, true
		}
	}
	return Record{}, false
}

func (q *Query) validate() error {
	if q.BaseDir == "" {
		return errors.New("archive base directory is required")
	}
	if q.FileType == "" {
		return errors.New("file type is required")
	}
	if q.CadenceHours <= 0 {
		return fmt.Errorf("invalid cadence %d h for %s", q.CadenceHours, q.FileType)
	}
	if q.FileLengthDays <= 0 {
		q.FileLengthDays = 1
	}
	if !q.Start.Before(q.End) {
		return fmt.Errorf("empty interval [%s, %s)", q.Start, q.End)
	}
	return nil
}

func (q *Query) lookup() (lookupFunc, string, error) {
	tres := Resolution(q.CadenceHours)
	switch q.Format {
	case FormatNowcast:
		pattern := filepath.Join(q.BaseDir, "{ddmonyy}", fmt.Sprintf("SalishSea_%s_{YYYYMMDD}_{YYYYMMDD}_%s.nc", tres, q.FileType))
		return q.nowcastLookup(tres), pattern, nil
	case FormatForcing:
		pattern := filepath.Join(q.BaseDir, q.FileType+"_y{YYYY}m{MM}d{DD}.nc")
		return q.forcingLookup(), pattern, nil
	case FormatLong:
		re := regexp.MustCompile(`^SalishSea_` + regexp.QuoteMeta(tres) + `.*` +
			regexp.QuoteMeta(q.FileType) + `_(\d{8})-(\d{8})\.nc$`)
		pattern := filepath.Join(q.BaseDir, "**", fmt.Sprintf("SalishSea_%s*%s_{YYYYMMDD}-{YYYYMMDD}.nc", tres, q.FileType))
		lookup, err := scan(q.BaseDir, re)
		return lookup, pattern, err
	case FormatGlob:
		re := regexp.MustCompile(`^.*_` + regexp.QuoteMeta(tres) + `_(\d{8})_(\d{8})_` +
			regexp.QuoteMeta(q.FileType) + `\.nc$`)
		pattern := filepath.Join(q.BaseDir, "**", fmt.Sprintf("*_%s_{YYYYMMDD}_{YYYYMMDD}_%s.nc", tres, q.FileType))
		lookup, err := scan(q.BaseDir, re)
		return lookup, pattern, err
	}
	return nil, "", fmt.Errorf("nam_fmt %q is not defined", q.Format)
}

// DayStamp returns the nowcast results directory name for t, e.g. "05may15".
func DayStamp(t time.Time) string {
	return strings.ToLower(t.Format("02Jan06"))
}

func (q *Query) nowcastLookup(tres string) lookupFunc {
	flen := q.FileLengthDays
	return func(start time.Time) (Record, bool) {
		last := start.AddDate(0, 0, flen-1)
		name := fmt.Sprintf("SalishSea_%s_%s_%s_%s.nc", tres, start.Format(dateLayout), last.Format(dateLayout), q.FileType)
		path := filepath.Join(q.BaseDir, DayStamp(start), name)
		if !isFile(path) {
			return Record{}, false
		}
		return Record{Path: path, T0: start, Tn: start.AddDate(0, 0, flen)}, true
	}
}

func (q *Query) forcingLookup() lookupFunc {
	return func(start time.Time) (Record, bool) {
		name := fmt.Sprintf("%s_y%04dm%02dd%02d.nc", q.FileType, start.Year(), int(start.Month()), start.Day())
		path := filepath.Join(q.BaseDir, name)
		if !isFile(path) {
			return Record{}, false
		}
		return Record{Path: path, T0: start, Tn: start.Add(day)}, true
	}
}

// scan walks baseDir once and indexes every file whose name matches re by the
// first date embedded in it. The second date is the last day covered.
func scan(baseDir string, re *regexp.Regexp) (lookupFunc, error) {
	byStart := make(map[string]Record)
	err := filepath.WalkDir(baseDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		m := re.FindStringSubmatch(d.Name())
		if m == nil {
			return nil
		}
		t0, err := time.Parse(dateLayout, m[1])
		if err != nil {
			return nil
		}
		last, err := time.Parse(dateLayout, m[2])
		if err != nil || last.Before(t0) {
			return nil
		}
		// WalkDir visits in lexical order, so the first match wins.
		if _, ok := byStart[m[1]]; !ok {
			byStart[m[1]] = Record{Path: path, T0: t0, Tn: last.Add(day)}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", baseDir, err)
	}
	return func(start time.Time) (Record, bool) {
		rec, ok := byStart[start.Format(dateLayout)]
		return rec, ok
	}, nil
}

func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
