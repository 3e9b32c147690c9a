// Package usecase orchestrates the evaluation workflows: matching model
// output to observations and comparing model harmonics with tide gauges.
package usecase

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"go.ngs.io/salishsea-tools/internal/adapter/store"
	"go.ngs.io/salishsea-tools/internal/adapter/store/csv"
	"go.ngs.io/salishsea-tools/internal/adapter/store/sqlite"
	"go.ngs.io/salishsea-tools/internal/archive"
	"go.ngs.io/salishsea-tools/internal/config"
	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/locate"
	"go.ngs.io/salishsea-tools/internal/match"
	"go.ngs.io/salishsea-tools/internal/mesh"
	"go.ngs.io/salishsea-tools/internal/obs"
)

// MatchUseCase runs model-observation matches from a run configuration.
type MatchUseCase struct {
	opener dataset.Opener
	log    logrus.FieldLogger
}

// MatchResult is a matched table with the file activity of the run.
type MatchResult struct {
	Table *obs.Table
	Stats match.Stats
}

// NewMatchUseCase creates a use case reading model files through opener.
func NewMatchUseCase(opener dataset.Opener, log logrus.FieldLogger) *MatchUseCase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &MatchUseCase{opener: opener, log: log}
}

// LoadGrid reads the mesh mask at path.
func (uc *MatchUseCase) LoadGrid(path string) (*mesh.Grid, error) {
	if path == "" {
		return nil, fmt.Errorf("mesh path is required")
	}
	ds, err := uc.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mesh: %w", err)
	}
	defer func() { _ = ds.Close() }()
	return mesh.Load(ds)
}

// LoadLookup reads the coarse locator lookup table at path.
func (uc *MatchUseCase) LoadLookup(path string) (*locate.Lookup, error) {
	ds, err := uc.opener.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open lookup: %w", err)
	}
	defer func() { _ = ds.Close() }()
	return locate.LoadLookup(ds)
}

// Options translates cfg into driver options, loading the mesh and lookup.
func (uc *MatchUseCase) Options(cfg config.MatchConfig) (match.Options, error) {
	start, end, err := cfg.Window()
	if err != nil {
		return match.Options{}, err
	}
	grid, err := uc.LoadGrid(cfg.Mesh)
	if err != nil {
		return match.Options{}, err
	}

	opts := match.Options{
		Method:         match.Method(cfg.Method),
		SDim:           cfg.SDim,
		VarFileTypes:   cfg.VarFileTypes,
		FileHours:      cfg.FileHours,
		Start:          start,
		End:            end,
		BaseDir:        cfg.BaseDir,
		NameFormat:     archive.Format(cfg.NameFormat),
		FileLengthDays: cfg.FileLengthDays,
		Grid:           grid,
		Locator:        locate.Strategy(cfg.Locator),
		Locate:         locate.Options{MaxDistanceKm: cfg.MaxDistanceKm},
		Opener:         uc.opener,
		E3TFileType:    cfg.E3TFileType,
		MaxOpenFiles:   cfg.MaxOpenFiles,
		Quiet:          cfg.Quiet,
		Logger:         uc.log,
	}
	if opts.Locator == locate.StrategyLookup {
		if cfg.Lookup == "" {
			return match.Options{}, fmt.Errorf("locator %q needs a lookup file", cfg.Locator)
		}
		if opts.Locate.Lookup, err = uc.LoadLookup(cfg.Lookup); err != nil {
			return match.Options{}, err
		}
	}
	return opts, nil
}

// LoadObservations reads the observation table named by cfg: a CSV table or,
// failing that, the requested variables from a DFO SQLite database.
func (uc *MatchUseCase) LoadObservations(ctx context.Context, cfg config.MatchConfig) (*obs.Table, error) {
	switch {
	case cfg.Observations != "":
		return csv.ReadObservationsFileIn(cfg.Observations, cfg.TimeZone)
	case cfg.Database != "":
		start, end, err := cfg.Window()
		if err != nil {
			return nil, err
		}
		var l store.ObservationLoader
		l, err = sqlite.Open(cfg.Database)
		if err != nil {
			return nil, err
		}
		defer func() { _ = l.Close() }()
		return l.Load(ctx, sqlite.Query{Start: start, End: end, Variables: cfg.Variables})
	}
	return nil, fmt.Errorf("no observations configured")
}

// Run matches tbl against the model output described by cfg.
func (uc *MatchUseCase) Run(ctx context.Context, cfg config.MatchConfig, tbl *obs.Table) (*MatchResult, error) {
	opts, err := uc.Options(cfg)
	if err != nil {
		return nil, err
	}
	m, err := match.New(opts)
	if err != nil {
		return nil, err
	}

	uc.log.WithFields(logrus.Fields{
		"method": cfg.Method,
		"rows":   tbl.Len(),
		"vars":   strings.Join(slices.Sorted(maps.Keys(cfg.VarFileTypes)), ","),
	}).Info("matching observations")

	out, err := m.Run(ctx, tbl)
	if err != nil {
		return nil, err
	}
	return &MatchResult{Table: out, Stats: m.Stats()}, nil
}

// RunFile loads the configured observations, matches them and writes the
// result to cfg.Output when set.
func (uc *MatchUseCase) RunFile(ctx context.Context, cfg config.MatchConfig) (*MatchResult, error) {
	tbl, err := uc.LoadObservations(ctx, cfg)
	if err != nil {
		return nil, err
	}
	res, err := uc.Run(ctx, cfg, tbl)
	if err != nil {
		return nil, err
	}
	if cfg.Output != "" {
		if err := csv.WriteObservationsFile(cfg.Output, res.Table); err != nil {
			return nil, err
		}
		uc.log.WithField("path", cfg.Output).Info("wrote matched observations")
	}
	return res, nil
}
