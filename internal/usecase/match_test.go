package usecase

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"go.ngs.io/salishsea-tools/internal/config"
	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/locate"
	"go.ngs.io/salishsea-tools/internal/obs"
)

func meshFile() *dataset.Memory {
	return dataset.NewMemory("mesh_mask.nc").
		Add("nav_lat", []int{2, 2}, []float64{49, 49, 50, 50}, nil).
		Add("nav_lon", []int{2, 2}, []float64{-124, -123, -124, -123}, nil)
}

func lookupFile() *dataset.Memory {
	return dataset.NewMemory("lookup.nc").
		Add("lat", []int{2}, []float64{49, 50}, nil).
		Add("lon", []int{2}, []float64{-124, -123}, nil).
		Add("j", []int{2, 2}, []float64{0, 0, 1, 1}, nil).
		Add("i", []int{2, 2}, []float64{0, 1, 0, 1}, nil)
}

func matchConfig() config.MatchConfig {
	cfg := config.Default().Match
	cfg.Mesh = "mesh_mask.nc"
	cfg.VarFileTypes = map[string]string{"votemper": "grid_T"}
	cfg.FileHours = map[string]int{"grid_T": 1}
	return cfg
}

func TestMatchUseCase_Options(t *testing.T) {
	logger, _ := test.NewNullLogger()
	uc := NewMatchUseCase(dataset.NewMemoryOpener(meshFile(), lookupFile()), logger)

	cfg := matchConfig()
	cfg.Start = "2015-06-01"
	opts, err := uc.Options(cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, opts.Grid.NY)
	assert.Equal(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), opts.Start)
	assert.Nil(t, opts.Locate.Lookup)

	cfg.Locator = string(locate.StrategyLookup)
	_, err = uc.Options(cfg)
	assert.Error(t, err)

	cfg.Lookup = "lookup.nc"
	opts, err = uc.Options(cfg)
	require.NoError(t, err)
	require.NotNil(t, opts.Locate.Lookup)
	assert.Equal(t, []float64{49, 50}, opts.Locate.Lookup.Lat)

	cfg.Mesh = ""
	_, err = uc.Options(cfg)
	assert.Error(t, err)
}

func TestMatchUseCase_RunEmptyWindow(t *testing.T) {
	logger, _ := test.NewNullLogger()
	uc := NewMatchUseCase(dataset.NewMemoryOpener(meshFile()), logger)

	tbl := obs.FromRecords([]obs.Record{{
		Time:   time.Date(2015, 6, 1, 0, 30, 0, 0, time.UTC),
		Values: map[string]float64{obs.ColLat: 49, obs.ColLon: -123, obs.ColZ: 5},
	}})
	cfg := matchConfig()
	cfg.Start = "2016-01-01"
	cfg.End = "2016-01-02"

	res, err := uc.Run(context.Background(), cfg, tbl)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Table.Len())
	assert.True(t, res.Table.Has("mod_votemper"))
}

func TestMatchUseCase_LoadObservations(t *testing.T) {
	logger, _ := test.NewNullLogger()
	uc := NewMatchUseCase(dataset.NewMemoryOpener(), logger)
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "obs.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("dtUTC,Lat,Lon,Z\n2015-06-01 00:30:00,49,-123,5\n"), 0o600))
	cfg := matchConfig()
	cfg.Observations = csvPath
	tbl, err := uc.LoadObservations(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 1, tbl.Len())

	dbPath := filepath.Join(dir, "obs.sqlite")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	_, err = db.Exec(`
		CREATE TABLE StationTBL (ID INTEGER PRIMARY KEY, Lat REAL, Lon REAL,
			StartYear INTEGER, StartMonth INTEGER, StartDay INTEGER, StartHour REAL);
		CREATE TABLE ObsTBL (ID INTEGER PRIMARY KEY, StationTBLID INTEGER,
			Depth REAL, Pressure REAL, Nitrate REAL);
		INSERT INTO StationTBL VALUES (1, 49.0, -123.5, 2015, 6, 1, 1.0);
		INSERT INTO ObsTBL VALUES (1, 1, 5.0, NULL, 20.0);
		INSERT INTO ObsTBL VALUES (2, 1, 10.0, NULL, 22.0);
	`)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	cfg = matchConfig()
	cfg.Database = dbPath
	cfg.Variables = []string{"Nitrate"}
	tbl, err = uc.LoadObservations(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, 2, tbl.Len())
	assert.Equal(t, 22.0, tbl.Value("Nitrate", 1))

	_, err = uc.LoadObservations(context.Background(), matchConfig())
	assert.Error(t, err)
}
