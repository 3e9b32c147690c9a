// Package sqlite loads bottle and CTD casts from the DFO observation
// database into observation tables.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/obs"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Query selects casts by start time. Variables name ObsTBL columns and become
// table columns of the same name.
type Query struct {
	Start     time.Time
	End       time.Time
	Variables []string
}

// Loader reads the StationTBL and ObsTBL tables.
type Loader struct {
	db *sql.DB
}

// Open opens the database file at path.
func Open(path string) (*Loader, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observation database: %w", err)
	}
	return &Loader{db: db}, nil
}

// New wraps an already opened database.
func New(db *sql.DB) *Loader {
	return &Loader{db: db}
}

// Close closes the database.
func (l *Loader) Close() error {
	return l.db.Close()
}

// Load returns one row per sample with dtUTC, Lat, Lon and Z columns plus the
// requested variables. Z is the sample depth, derived from pressure when the
// depth is missing. A zero Start or End leaves that side of the window open.
func (l *Loader) Load(ctx context.Context, q Query) (*obs.Table, error) {
	cols := make([]string, 0, len(q.Variables))
	for _, v := range q.Variables {
		if !identRe.MatchString(v) {
			return nil, fmt.Errorf("invalid variable name %q", v)
		}
		cols = append(cols, fmt.Sprintf(`o."%s"`, v))
	}

	stmt := `SELECT s.StartYear, s.StartMonth, s.StartDay, s.StartHour, s.Lat, s.Lon, o.Depth, o.Pressure`
	if len(cols) > 0 {
		stmt += ", " + strings.Join(cols, ", ")
	}
	stmt += ` FROM ObsTBL o JOIN StationTBL s ON o.StationTBLID = s.ID`

	var (
		where []string
		args  []any
	)
	if !q.Start.IsZero() {
		where = append(where, "s.StartYear >= ?")
		args = append(args, q.Start.UTC().Year())
	}
	if !q.End.IsZero() {
		where = append(where, "s.StartYear <= ?")
		args = append(args, q.End.UTC().Year())
	}
	if len(where) > 0 {
		stmt += " WHERE " + strings.Join(where, " AND ")
	}
	stmt += " ORDER BY s.ID, o.ID"

	rows, err := l.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	tbl := obs.NewTable()
	for _, name := range append([]string{obs.ColLat, obs.ColLon, obs.ColZ}, q.Variables...) {
		tbl.AddColumn(name, math.NaN())
	}

	for rows.Next() {
		var (
			year, month, day sql.NullInt64
			hour             sql.NullFloat64
			lat, lon         sql.NullFloat64
			depth, pressure  sql.NullFloat64
		)
		vals := make([]sql.NullFloat64, len(q.Variables))
		dest := []any{&year, &month, &day, &hour, &lat, &lon, &depth, &pressure}
		for i := range vals {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		if !year.Valid || !month.Valid || !day.Valid {
			continue
		}

		t := time.Date(int(year.Int64), time.Month(month.Int64), int(day.Int64), 0, 0, 0, 0, time.UTC)
		if hour.Valid {
			t = t.Add(time.Duration(hour.Float64 * float64(time.Hour)))
		}
		if !q.Start.IsZero() && t.Before(q.Start) {
			continue
		}
		if !q.End.IsZero() && !t.Before(q.End) {
			continue
		}

		rec := obs.Record{Time: t, Values: map[string]float64{
			obs.ColLat: orNaN(lat),
			obs.ColLon: orNaN(lon),
			obs.ColZ:   orNaN(depth),
		}}
		if !depth.Valid && pressure.Valid && lat.Valid {
			rec.Values[obs.ColZ] = domain.PressureToDepth(pressure.Float64, lat.Float64)
		}
		for i, name := range q.Variables {
			rec.Values[name] = orNaN(vals[i])
		}
		tbl.Append(rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read observations: %w", err)
	}
	return tbl, nil
}

func orNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
