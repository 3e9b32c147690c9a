// Package config loads run configuration from TOML files with environment
// overrides.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config is a complete run configuration.
type Config struct {
	LogLevel  string          `toml:"log_level"`
	Match     MatchConfig     `toml:"match"`
	Harmonics HarmonicsConfig `toml:"harmonics"`
	Server    ServerConfig    `toml:"server"`
}

// MatchConfig configures a model-observation match run.
type MatchConfig struct {
	BaseDir        string            `toml:"basedir"`
	NameFormat     string            `toml:"nam_fmt"`
	FileLengthDays int               `toml:"file_length_days"`
	Method         string            `toml:"method"`
	SDim           int               `toml:"sdim"`
	Locator        string            `toml:"locator"`
	MaxDistanceKm  float64           `toml:"max_distance_km"`
	Mesh           string            `toml:"mesh"`
	Lookup         string            `toml:"lookup"`
	VarFileTypes   map[string]string `toml:"var_file_types"`
	FileHours      map[string]int    `toml:"file_hours"`
	E3TFileType    string            `toml:"e3t_file_type"`
	Start          string            `toml:"start"`
	End            string            `toml:"end"`
	Quiet          bool              `toml:"quiet"`
	MaxOpenFiles   int               `toml:"max_open_files"`
	Reader         string            `toml:"reader"`

	// Observations is a CSV table; Database is a DFO SQLite file. Exactly
	// one is used, CSV first.
	Observations string   `toml:"observations"`
	Database     string   `toml:"database"`
	Variables    []string `toml:"variables"`
	Output       string   `toml:"output"`
	// TimeZone names the zone of observation times written without an
	// offset. Empty means UTC.
	TimeZone     string   `toml:"tz"`
}

// HarmonicsConfig configures harmonic composites and comparisons.
type HarmonicsConfig struct {
	Runs      []string  `toml:"runs"`
	Lengths   []float64 `toml:"lengths"`
	// Namelists takes run lengths from each run's namelist when Lengths is
	// empty.
	Namelists bool      `toml:"namelists"`

	Constituents []string `toml:"constituents"`
	Quantity     string   `toml:"quantity"`
	Observed     string   `toml:"observed"`
	Output       string   `toml:"output"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        string   `toml:"port"`
	GinMode     string   `toml:"gin_mode"`
	CORSOrigins []string `toml:"cors_origins"`
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Match: MatchConfig{
			NameFormat:     "nowcast",
			FileLengthDays: 1,
			Method:         "bin",
			SDim:           3,
			Locator:        "exhaustive",
			Reader:         "libnetcdf",
		},
		Harmonics: HarmonicsConfig{
			Constituents: []string{"M2", "K1"},
			Quantity:     "eta",
		},
		Server: ServerConfig{
			Port:    "8080",
			GinMode: "release",
		},
	}
}

// Load reads the TOML file at path over the defaults and applies environment
// overrides. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		//nolint:gosec // G304: configuration path is supplied by the operator.
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := Decode(string(data), cfg); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	cfg.expand()
	return cfg, nil
}

// Decode parses TOML into cfg, rejecting unknown keys.
func Decode(data string, cfg *Config) error {
	md, err := toml.Decode(data, cfg)
	if err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("unknown config keys: %s", strings.Join(keys, ", "))
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.GinMode = getEnv("GIN_MODE", c.Server.GinMode)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.CORSOrigins = strings.Split(origins, ",")
	}
	c.Match.BaseDir = getEnv("EVAL_BASEDIR", c.Match.BaseDir)
	c.Match.Mesh = getEnv("EVAL_MESH", c.Match.Mesh)
	c.Match.Reader = getEnv("EVAL_READER", c.Match.Reader)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
}

// expand substitutes environment variables in paths.
func (c *Config) expand() {
	for _, p := range []*string{
		&c.Match.BaseDir, &c.Match.Mesh, &c.Match.Lookup,
		&c.Match.Observations, &c.Match.Database, &c.Match.Output,
		&c.Harmonics.Observed, &c.Harmonics.Output,
	} {
		*p = os.ExpandEnv(*p)
	}
	for i := range c.Harmonics.Runs {
		c.Harmonics.Runs[i] = os.ExpandEnv(c.Harmonics.Runs[i])
	}
}

// Window parses the start and end times. Empty values give zero times.
func (m MatchConfig) Window() (start, end time.Time, err error) {
	if start, err = ParseTime(m.Start); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid start: %w", err)
	}
	if end, err = ParseTime(m.End); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid end: %w", err)
	}
	if !start.IsZero() && !end.IsZero() && !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("end %s is not after start %s", m.End, m.Start)
	}
	return start, end, nil
}

// ParseTime parses a UTC time in one of the accepted layouts. An empty string
// gives the zero time.
func ParseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// getEnv retrieves an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
