// Package store defines the loaders the use cases read model and observed
// data through.
package store

import (
	"context"

	"go.ngs.io/salishsea-tools/internal/adapter/store/csv"
	"go.ngs.io/salishsea-tools/internal/adapter/store/nemo"
	"go.ngs.io/salishsea-tools/internal/adapter/store/sqlite"
	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/obs"
)

// ConstituentLoader loads observed tidal constituents of tide gauges.
type ConstituentLoader interface {
	// LoadFile reads the stations of a constituent table.
	LoadFile(path string) ([]domain.ObservedStation, error)
}

// HarmonicLoader reads the harmonic fields a model run wrote.
type HarmonicLoader interface {
	// ReadRun reads the fields of the given constituents from a run directory.
	ReadRun(runDir string, q nemo.Quantity, constituents []string) (map[string]*domain.HarmonicField, error)
}

// ObservationLoader loads observation tables from a database.
type ObservationLoader interface {
	Load(ctx context.Context, q sqlite.Query) (*obs.Table, error)
	Close() error
}

var (
	_ ConstituentLoader = (*csv.ConstituentStore)(nil)
	_ HarmonicLoader    = (*nemo.HarmonicStore)(nil)
	_ ObservationLoader = (*sqlite.Loader)(nil)
)
