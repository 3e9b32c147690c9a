package archive

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/salishsea-tools/internal/domain"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, nil, 0o600))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestResolution(t *testing.T) {
	assert.Equal(t, "1d", Resolution(24))
	assert.Equal(t, "1h", Resolution(1))
	assert.Equal(t, "3h", Resolution(3))
	assert.Equal(t, "05may15", DayStamp(date(2015, 5, 5)))
}

func TestBuild_Nowcast(t *testing.T) {
	dir := t.TempDir()
	for _, d := range []string{"05may15/SalishSea_1h_20150505_20150505_grid_T.nc", "06may15/SalishSea_1h_20150506_20150506_grid_T.nc"} {
		touch(t, filepath.Join(dir, d))
	}

	ix, err := Build(Query{
		BaseDir: dir, Format: FormatNowcast, FileType: "grid_T", CadenceHours: 1, FileLengthDays: 1,
		Start: date(2015, 5, 5).Add(3 * time.Hour), End: date(2015, 5, 6).Add(12 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, ix, 2)
	assert.Equal(t, date(2015, 5, 5), ix[0].T0)
	assert.Equal(t, date(2015, 5, 6), ix[0].Tn)
	assert.Equal(t, ix[0].Tn, ix[1].T0)

	rec, ok := ix.Find(date(2015, 5, 6).Add(23 * time.Hour))
	require.True(t, ok)
	assert.Equal(t, filepath.Join(dir, "06may15", "SalishSea_1h_20150506_20150506_grid_T.nc"), rec.Path)
	_, ok = ix.Find(date(2015, 5, 7))
	assert.False(t, ok)
	_, ok = ix.Find(date(2015, 5, 4))
	assert.False(t, ok)
}

func TestBuild_NowcastMissing(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "05may15/SalishSea_1h_20150505_20150505_grid_T.nc"))

	_, err := Build(Query{
		BaseDir: dir, Format: FormatNowcast, FileType: "grid_T", CadenceHours: 1,
		Start: date(2015, 5, 5), End: date(2015, 5, 7),
	})
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestBuild_LongSearchesBack(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "run1", "SalishSea_1h_20150206_20150804_ptrc_T_20150427-20150506.nc"))
	touch(t, filepath.Join(dir, "run1", "sub", "SalishSea_1h_20150206_20150804_ptrc_T_20150507-20150516.nc"))
	touch(t, filepath.Join(dir, "run1", "SalishSea_1h_20150206_20150804_grid_T_20150507-20150516.nc"))

	ix, err := Build(Query{
		BaseDir: dir, Format: FormatLong, FileType: "ptrc_T", CadenceHours: 1, FileLengthDays: 10,
		Start: date(2015, 5, 1), End: date(2015, 5, 10),
	})
	require.NoError(t, err)
	require.Len(t, ix, 2)
	assert.Equal(t, date(2015, 4, 27), ix[0].T0)
	assert.Equal(t, date(2015, 5, 7), ix[0].Tn)
	assert.Equal(t, date(2015, 5, 17), ix[1].Tn)
	assert.Contains(t, ix[1].Path, "ptrc_T_20150507-20150516")
}

func TestBuild_LongTooFarBack(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "SalishSea_1h_20150206_20150804_ptrc_T_20150427-20150506.nc"))

	_, err := Build(Query{
		BaseDir: dir, Format: FormatLong, FileType: "ptrc_T", CadenceHours: 1, FileLengthDays: 10,
		Start: date(2015, 5, 8), End: date(2015, 5, 9),
	})
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestBuild_Glob(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a", "HC201905_1d_20190101_20190102_grid_T.nc"))
	touch(t, filepath.Join(dir, "b", "HC201905_1d_20190103_20190104_grid_T.nc"))
	touch(t, filepath.Join(dir, "b", "HC201905_1h_20190103_20190104_grid_T.nc"))

	ix, err := Build(Query{
		BaseDir: dir, Format: FormatGlob, FileType: "grid_T", CadenceHours: 24, FileLengthDays: 2,
		Start: date(2019, 1, 1), End: date(2019, 1, 5),
	})
	require.NoError(t, err)
	require.Len(t, ix, 2)
	assert.Equal(t, date(2019, 1, 3), ix[1].T0)
	assert.Equal(t, date(2019, 1, 5), ix[1].Tn)
	assert.Contains(t, ix[1].Path, "_1d_")
}

func TestBuild_Forcing(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"ops_y2020m01d01.nc", "ops_y2020m01d02.nc"} {
		touch(t, filepath.Join(dir, name))
	}

	ix, err := Build(Query{
		BaseDir: dir, Format: FormatForcing, FileType: "ops", CadenceHours: 1,
		Start: date(2020, 1, 1), End: date(2020, 1, 2).Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, ix, 2)
	assert.Equal(t, filepath.Join(dir, "ops_y2020m01d02.nc"), ix[1].Path)
}

func TestBuild_InvalidQuery(t *testing.T) {
	_, err := Build(Query{BaseDir: t.TempDir(), Format: "weekly", FileType: "grid_T", CadenceHours: 1,
		Start: date(2020, 1, 1), End: date(2020, 1, 2)})
	assert.Error(t, err)

	_, err = Build(Query{BaseDir: t.TempDir(), Format: FormatNowcast, FileType: "grid_T", CadenceHours: 1,
		Start: date(2020, 1, 2), End: date(2020, 1, 1)})
	assert.Error(t, err)
}
