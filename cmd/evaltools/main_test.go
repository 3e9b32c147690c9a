package main

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.ngs.io/salishsea-tools/internal/adapter/store/csv"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCarbonateCmd(t *testing.T) {
	out, err := run(t, "carbonate", "--par1", "TA", "--par2", "TC", "--tp", "0.5", "--tsi", "50", "2300", "2000")
	require.NoError(t, err)
	assert.Contains(t, out, "pH 8.03")

	_, err = run(t, "carbonate", "--par1", "TA", "--par2", "TA", "2300", "2000")
	assert.Error(t, err)
}

func TestPHScaleCmd(t *testing.T) {
	out, err := run(t, "phscale", "8")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "total 8.0000"))
}

func TestEllipseCmd(t *testing.T) {
	out, err := run(t, "ellipse", "1", "0", "0", "0")
	require.NoError(t, err)
	assert.Contains(t, out, "SEMA 1.0000")

	_, err = run(t, "ellipse", "1", "0")
	assert.Error(t, err)
}

func TestFitCmd(t *testing.T) {
	var b strings.Builder
	b.WriteString("dtUTC,ssh\n")
	t0 := time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	for h := 0; h < 24*30; h++ {
		v := 0.5 + math.Cos((28.984106*float64(h)-30)*math.Pi/180)
		fmt.Fprintf(&b, "%s,%.10f\n", t0.Add(time.Duration(h)*time.Hour).Format("2006-01-02 15:04:05"), v)
	}
	path := filepath.Join(t.TempDir(), "ssh.csv")
	require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o600))

	out, err := run(t, "fit", "--file", path, "--column", "ssh")
	require.NoError(t, err)
	assert.Contains(t, out, "mean 0.5000")
	assert.Contains(t, out, "M2   amplitude 1.0000  phase 30.00")

	_, err = run(t, "fit", "--file", path, "--column", "missing")
	assert.Error(t, err)

	out, err = run(t, "fit", "--file", path, "--column", "ssh", "--nodal", "lunar")
	require.NoError(t, err)
	assert.Contains(t, out, "M2   amplitude")
	assert.NotContains(t, out, "M2   amplitude 1.0000", "lunar-node factor scales M2 in 2015")

	_, err = run(t, "fit", "--file", path, "--column", "ssh", "--nodal", "equilibrium")
	assert.Error(t, err)

	residuals := filepath.Join(t.TempDir(), "fit.csv")
	_, err = run(t, "fit", "--file", path, "--column", "ssh", "-o", residuals)
	require.NoError(t, err)
	tbl, err := csv.ReadObservationsFile(residuals)
	require.NoError(t, err)
	require.Equal(t, 24*30, tbl.Len())
	assert.InDelta(t, 0.5+math.Cos(-30*math.Pi/180), tbl.Value("ssh_fit", 0), 1e-6)
	for _, r := range tbl.Column("ssh_residual") {
		assert.InDelta(t, 0, r, 1e-6)
	}
}
