// Package csv reads and writes the CSV tables of the evaluation tools:
// observed tidal constituents, observation tables and comparison results.
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

	"go.ngs.io/salishsea-tools/internal/domain"
)

// Missing marks an absent value in observed-constituent tables.
const Missing = 9999

// Column headers of the observed-constituent table.
const (
	colSite  = "Site"
	colLat   = "Lat"
	colLon   = "Lon"
	colM2Amp = "M2 amp"
	colM2Pha = "M2 phase (deg UT)"
	colK1Amp = "K1 amp"
	colK1Pha = "K1 phase (deg UT)"
)

// ConstituentOptions controls how an observed-constituent table is read.
type ConstituentOptions struct {
	// Comma is the field separator; zero means ';'.
	Comma rune
	// WestPositive negates the Lon column.
	WestPositive bool
}

// ConstituentStore loads observed tidal constituents.
type ConstituentStore struct {
	opts ConstituentOptions
}

// NewConstituentStore creates a store with the given options.
func NewConstituentStore(opts ConstituentOptions) *ConstituentStore {
	if opts.Comma == 0 {
		opts.Comma = ';'
	}
	return &ConstituentStore{opts: opts}
}

// LoadFile reads an observed-constituent table from path.
func (s *ConstituentStore) LoadFile(path string) ([]domain.ObservedStation, error) {
	//nolint:gosec // G304: path comes from the run configuration.
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open observed constituents %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()
	return s.Load(file)
}

// Load reads an observed-constituent table. Amplitudes are converted from
// cm to m; 9999 entries become NaN.
func (s *ConstituentStore) Load(r io.Reader) ([]domain.ObservedStation, error) {
	reader := csv.NewReader(r)
	reader.Comma = s.opts.Comma
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	idx, err := columnIndex(header, colSite, colLat, colLon, colM2Amp, colM2Pha, colK1Amp, colK1Pha)
	if err != nil {
		return nil, err
	}

	stations := make([]domain.ObservedStation, 0)
	for n := 1; ; n++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		vals := make(map[string]float64, 6)
		for _, col := range []string{colLat, colLon, colM2Amp, colM2Pha, colK1Amp, colK1Pha} {
			v, err := parseValue(record[idx[col]])
			if err != nil {
				return nil, fmt.Errorf("invalid %s for station %d: %w", col, n, err)
			}
			vals[col] = v
		}
		lon := vals[colLon]
		if s.opts.WestPositive {
			lon = -lon
		}
		stations = append(stations, domain.ObservedStation{
			Number: n,
			Name:   strings.TrimSpace(record[idx[colSite]]),
			Lat:    vals[colLat],
			Lon:    lon,
			M2Amp:  vals[colM2Amp] / 100,
			M2Pha:  vals[colM2Pha],
			K1Amp:  vals[colK1Amp] / 100,
			K1Pha:  vals[colK1Pha],
		})
	}

	if len(stations) == 0 {
		return nil, fmt.Errorf("no stations found in observed constituents")
	}
	return stations, nil
}

func parseValue(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return math.NaN(), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v == Missing {
		return math.NaN(), nil
	}
	return v, nil
}

// columnIndex maps each wanted header to its position.
func columnIndex(header []string, want ...string) (map[string]int, error) {
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(h)] = i
	}
	out := make(map[string]int, len(want))
	var missing []string
	for _, w := range want {
		i, ok := idx[w]
		if !ok {
			missing = append(missing, w)
			continue
		}
		out[w] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("invalid CSV header %v: %v: %w", header, missing, domain.ErrMissingColumn)
	}
	return out, nil
}
