package nemo

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Namelist holds the scalar entries of a Fortran namelist file, keyed by
// group and then by lower-case name.
type Namelist map[string]map[string]string

// ParseNamelist reads "&group ... /" blocks of key = value pairs. Comments
// start with "!". Array and repeated entries keep their last value.
func ParseNamelist(r io.Reader) (Namelist, error) {
	nl := make(Namelist)
	var group string
	sc := bufio.NewScanner(r)
	for line := 1; sc.Scan(); line++ {
		text := sc.Text()
		if k := strings.Index(text, "!"); k >= 0 {
			text = text[:k]
		}
		text = strings.TrimSpace(text)
		switch {
		case text == "":
			continue
		case strings.HasPrefix(text, "&"):
			group = strings.ToLower(strings.TrimSpace(text[1:]))
			if _, ok := nl[group]; !ok {
				nl[group] = make(map[string]string)
			}
			continue
		case text == "/":
			group = ""
			continue
		}
		if group == "" {
			continue
		}
		for _, entry := range strings.Split(strings.TrimSuffix(text, "/"), ",") {
			key, val, ok := strings.Cut(entry, "=")
			if !ok {
				continue
			}
			nl[group][strings.ToLower(strings.TrimSpace(key))] = strings.Trim(strings.TrimSpace(val), `'"`)
		}
		if strings.HasSuffix(text, "/") {
			group = ""
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read namelist: %w", err)
	}
	return nl, nil
}

// Float returns a numeric entry. Fortran double exponents (1.d0) are accepted.
func (nl Namelist) Float(group, key string) (float64, error) {
	g, ok := nl[strings.ToLower(group)]
	if !ok {
		return 0, fmt.Errorf("namelist group %s not found", group)
	}
	s, ok := g[strings.ToLower(key)]
	if !ok {
		return 0, fmt.Errorf("namelist entry %s/%s not found", group, key)
	}
	s = strings.NewReplacer("d", "e", "D", "e").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s/%s: %w", group, key, err)
	}
	return v, nil
}

// RunLength returns the harmonic analysis length of a run in days:
// (nitend_han - nit000_han + 1) * rn_rdt.
func (nl Namelist) RunLength() (float64, error) {
	dt, err := nl.Float("namdom", "rn_rdt")
	if err != nil {
		return 0, err
	}
	start, err := nl.Float("nam_diaharm", "nit000_han")
	if err != nil {
		return 0, err
	}
	end, err := nl.Float("nam_diaharm", "nitend_han")
	if err != nil {
		return 0, err
	}
	return (end - start + 1) * dt / 86400, nil
}

// RunLength reads the namelist of a run directory and returns its length in
// days.
func RunLength(runDir string) (float64, error) {
	f, err := os.Open(filepath.Join(runDir, "namelist"))
	if err != nil {
		return 0, fmt.Errorf("failed to open namelist: %w", err)
	}
	defer f.Close() //nolint:errcheck

	nl, err := ParseNamelist(f)
	if err != nil {
		return 0, err
	}
	return nl.RunLength()
}
