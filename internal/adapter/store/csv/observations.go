package csv

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/obs"
)

// Layouts accepted for the dtUTC column, tried in order.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ReadObservationsFile reads an observation table from path.
func ReadObservationsFile(path string) (*obs.Table, error) {
	return ReadObservationsFileIn(path, "")
}

// ReadObservationsFileIn reads an observation table from path, taking times
// without an offset as wall-clock times in the named zone.
func ReadObservationsFileIn(path, zone string) (*obs.Table, error) {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observations %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	return ReadObservationsIn(file, zone)
}

// ReadObservations reads a comma-separated observation table with a dtUTC
// column. Every other column is numeric; empty cells and NaN are missing.
// Times without a zone are UTC.
func ReadObservations(r io.Reader) (*obs.Table, error) {
	return ReadObservationsIn(r, "")
}

// ReadObservationsIn is ReadObservations with zoneless times taken in the
// named zone. Times are converted to UTC.
func ReadObservationsIn(r io.Reader, zone string) (*obs.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx, err := columnIndex(header, obs.ColTime)
	if err != nil {
		return nil, err
	}
	tcol := idx[obs.ColTime]

	tbl := obs.NewTable()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		t, err := parseTime(record[tcol], zone)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := obs.Record{Time: t, Values: make(map[string]float64, len(header)-1)}
		for i, name := range header {
			if i == tcol {
				continue
			}
			v, err := parseCell(record[i])
			if err != nil {
				return nil, fmt.Errorf("line %d column %s: %w", line, name, err)
			}
			rec.Values[strings.TrimSpace(name)] = v
		}
		tbl.Append(rec)
	}
	return tbl, nil
}

func parseTime(s, zone string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return domain.UTC(t), nil
	}
	for _, layout := range timeLayouts[1:] {
		t, err := domain.ParseLocal(layout, s, zone)
		if err == nil {
			return t, nil
		}
		var zerr *time.ParseError
		if !errors.As(err, &zerr) {
			return time.Time{}, fmt.Errorf("failed to load zone %q: %w", zone, err)
		}
	}
	return time.Time{}, fmt.Errorf("failed to parse time %q", s)
}

func parseCell(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// WriteObservationsFile writes tbl to path.
func WriteObservationsFile(path string, tbl *obs.Table) error {
	//nolint:gosec // G304: path comes from the command line.
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := WriteObservations(file, tbl); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteObservations writes tbl with dtUTC first, then every column in table
// order. NaN is written as an empty cell.
func WriteObservations(w io.Writer, tbl *obs.Table) error {
	writer := csv.NewWriter(w)
	cols := tbl.Columns()
	if err := writer.Write(append([]string{obs.ColTime}, cols...)); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	row := make([]string, len(cols)+1)
	for r := 0; r < tbl.Len(); r++ {
		row[0] = tbl.Time(r).UTC().Format("2006-01-02 15:04:05")
		for c, name := range cols {
			row[c+1] = formatCell(tbl.Value(name, r))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatCell(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
