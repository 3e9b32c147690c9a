package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log_level = "debug"

[match]
basedir = "$EVAL_TEST_ROOT/results"
nam_fmt = "long"
method = "vvlZ"
sdim = 3
mesh = "mesh_mask.nc"
start = "2015-06-01"
end = "2015-06-03 12:00"
max_open_files = 16

[match.var_file_types]
votemper = "grid_T"
vozocrtx = "grid_U"

[match.file_hours]
grid_T = 1
grid_U = 1

[harmonics]
runs = ["/runs/a", "/runs/b"]
lengths = [10.0, 20.0]

[server]
port = "9000"
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("EVAL_TEST_ROOT", "/data")
	cfg, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "/data/results", cfg.Match.BaseDir)
	assert.Equal(t, "long", cfg.Match.NameFormat)
	assert.Equal(t, "vvlZ", cfg.Match.Method)
	assert.Equal(t, 16, cfg.Match.MaxOpenFiles)
	assert.Equal(t, "grid_U", cfg.Match.VarFileTypes["vozocrtx"])
	assert.Equal(t, 1, cfg.Match.FileHours["grid_T"])
	assert.Equal(t, []float64{10, 20}, cfg.Harmonics.Lengths)
	assert.Equal(t, "9000", cfg.Server.Port)

	// Defaults survive for keys the file omits.
	assert.Equal(t, 1, cfg.Match.FileLengthDays)
	assert.Equal(t, "exhaustive", cfg.Match.Locator)
	assert.Equal(t, "release", cfg.Server.GinMode)

	start, end, err := cfg.Match.Window()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 6, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2015, 6, 3, 12, 0, 0, 0, time.UTC), end)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "3000")
	t.Setenv("EVAL_READER", "native")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, "native", cfg.Match.Reader)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.Server.CORSOrigins)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "[match]\nmethd = \"bin\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "match.methd")

	_, err = Load(writeConfig(t, "[match\n"))
	assert.Error(t, err)
}

func TestWindow(t *testing.T) {
	start, end, err := MatchConfig{}.Window()
	require.NoError(t, err)
	assert.True(t, start.IsZero())
	assert.True(t, end.IsZero())

	_, _, err = MatchConfig{Start: "2015-06-02", End: "2015-06-01"}.Window()
	assert.Error(t, err)

	_, _, err = MatchConfig{Start: "June 1"}.Window()
	assert.Error(t, err)
}
