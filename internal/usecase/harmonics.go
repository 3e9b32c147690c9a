package usecase

import (
	"fmt"
	"math"
	"os"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"

	"go.ngs.io/salishsea-tools/internal/adapter/store"
	"go.ngs.io/salishsea-tools/internal/adapter/store/csv"
	"go.ngs.io/salishsea-tools/internal/adapter/store/nemo"
	"go.ngs.io/salishsea-tools/internal/config"
	"go.ngs.io/salishsea-tools/internal/dataset"
	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/locate"
	"go.ngs.io/salishsea-tools/internal/mesh"
)

// compareConstituents are the constituents reported per tide gauge.
var compareConstituents = []string{"M2", "K1"}

// HarmonicsUseCase combines and evaluates model harmonic output.
type HarmonicsUseCase struct {
	harmonics    store.HarmonicLoader
	constituents store.ConstituentLoader
	log          logrus.FieldLogger
}

// Summary aggregates the distances of one constituent over all stations
// with finite values.
type Summary struct {
	Constituent string
	N           int
	MeanF95     float64
	RMSF95      float64
	MeanM04     float64
	RMSM04      float64
}

// NewHarmonicsUseCase creates a use case reading harmonic files through opener.
func NewHarmonicsUseCase(opener dataset.Opener, log logrus.FieldLogger) *HarmonicsUseCase {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &HarmonicsUseCase{
		harmonics:    nemo.NewHarmonicStore(opener),
		constituents: csv.NewConstituentStore(csv.ConstituentOptions{WestPositive: true}),
		log:          log,
	}
}

// RunLengths returns the configured run lengths in days, reading them from
// each run's namelist when cfg.Namelists is set and no lengths are given.
func RunLengths(cfg config.HarmonicsConfig) ([]float64, error) {
	if len(cfg.Lengths) > 0 || !cfg.Namelists {
		return cfg.Lengths, nil
	}
	lengths := make([]float64, len(cfg.Runs))
	for k, run := range cfg.Runs {
		days, err := nemo.RunLength(run)
		if err != nil {
			return nil, err
		}
		lengths[k] = days
	}
	return lengths, nil
}

// Composite reads every run once and returns the run-length weighted fields
// of each constituent.
func (uc *HarmonicsUseCase) Composite(cfg config.HarmonicsConfig) (map[string]*domain.HarmonicField, error) {
	lengths, err := RunLengths(cfg)
	if err != nil {
		return nil, err
	}
	if len(lengths) != len(cfg.Runs) {
		return nil, fmt.Errorf("%d runs, %d lengths: %w", len(cfg.Runs), len(lengths), domain.ErrLengthMismatch)
	}
	q := nemo.Quantity(cfg.Quantity)
	if q == "" {
		q = nemo.Elevation
	}

	perConst := make(map[string][]*domain.HarmonicField, len(cfg.Constituents))
	for k, run := range cfg.Runs {
		fields, err := uc.harmonics.ReadRun(run, q, cfg.Constituents)
		if err != nil {
			return nil, err
		}
		uc.log.WithFields(logrus.Fields{"run": run, "days": lengths[k]}).Debug("read harmonic run")
		for _, c := range cfg.Constituents {
			perConst[c] = append(perConst[c], fields[c])
		}
	}

	out := make(map[string]*domain.HarmonicField, len(perConst))
	for c, runs := range perConst {
		f, err := domain.Composite(runs, lengths)
		if err != nil {
			return nil, fmt.Errorf("failed to combine %s: %w", c, err)
		}
		out[c] = f
	}
	return out, nil
}

// CompareStations places each station on the grid and compares its observed
// M2 and K1 constituents with the model fields. fields must hold M2 and K1
// elevation harmonics on the grid's (j, i) layout.
func CompareStations(g *mesh.Grid, stations []domain.ObservedStation, fields map[string]*domain.HarmonicField, opts locate.Options) ([]domain.StationComparison, error) {
	ap := make(map[string][2][]float64, len(compareConstituents))
	for _, c := range compareConstituents {
		f, ok := fields[c]
		if !ok {
			return nil, fmt.Errorf("no model field for %s", c)
		}
		if dataset.Size(f.Shape) != g.NY*g.NX {
			return nil, fmt.Errorf("field %s has shape %v, grid is %dx%d", f.Name, f.Shape, g.NY, g.NX)
		}
		amp, pha := f.AmpPhase()
		ap[c] = [2][]float64{amp, pha}
	}

	rows := make([]domain.StationComparison, len(stations))
	for k, st := range stations {
		rows[k].Station = st
		j, i, err := locate.Nearest(g, st.Lon, st.Lat, opts)
		if err != nil {
			continue
		}
		cell := j*g.NX + i
		rows[k].Found, rows[k].J, rows[k].I = true, j, i
		rows[k].M2 = domain.Compare(st.M2Amp, st.M2Pha, ap["M2"][0][cell], ap["M2"][1][cell])
		rows[k].K1 = domain.Compare(st.K1Amp, st.K1Pha, ap["K1"][0][cell], ap["K1"][1][cell])
	}
	return rows, nil
}

// Summarize returns the mean and RMS distances per constituent. Stations not
// found or with missing observations are skipped.
func Summarize(rows []domain.StationComparison) []Summary {
	out := make([]Summary, 0, len(compareConstituents))
	for _, c := range compareConstituents {
		var f95, m04 []float64
		for _, r := range rows {
			if !r.Found {
				continue
			}
			cc := r.M2
			if c == "K1" {
				cc = r.K1
			}
			if math.IsNaN(cc.DF95) || math.IsNaN(cc.DM04) {
				continue
			}
			f95 = append(f95, cc.DF95)
			m04 = append(m04, cc.DM04)
		}
		s := Summary{Constituent: c, N: len(f95)}
		if s.N == 0 {
			s.MeanF95, s.RMSF95, s.MeanM04, s.RMSM04 = math.NaN(), math.NaN(), math.NaN(), math.NaN()
		} else {
			s.MeanF95, s.RMSF95 = stat.Mean(f95, nil), rms(f95)
			s.MeanM04, s.RMSM04 = stat.Mean(m04, nil), rms(m04)
		}
		out = append(out, s)
	}
	return out
}

func rms(x []float64) float64 {
	sq := make([]float64, len(x))
	for k, v := range x {
		sq[k] = v * v
	}
	return math.Sqrt(stat.Mean(sq, nil))
}

// CompareFile runs the tide-gauge comparison of cfg: observed constituents
// from cfg.Observed, model fields combined over cfg.Runs, output to
// cfg.Output when set.
func (uc *HarmonicsUseCase) CompareFile(g *mesh.Grid, cfg config.HarmonicsConfig, opts locate.Options) ([]domain.StationComparison, []Summary, error) {
	if cfg.Observed == "" {
		return nil, nil, fmt.Errorf("observed constituent file is required")
	}
	stations, err := uc.constituents.LoadFile(cfg.Observed)
	if err != nil {
		return nil, nil, err
	}

	cfg.Quantity = string(nemo.Elevation)
	cfg.Constituents = compareConstituents
	fields, err := uc.Composite(cfg)
	if err != nil {
		return nil, nil, err
	}
	rows, err := CompareStations(g, stations, fields, opts)
	if err != nil {
		return nil, nil, err
	}
	summary := Summarize(rows)
	for _, s := range summary {
		uc.log.WithFields(logrus.Fields{
			"constituent": s.Constituent,
			"stations":    s.N,
			"mean_f95":    s.MeanF95,
			"rms_m04":     s.RMSM04,
		}).Info("harmonic comparison")
	}

	if cfg.Output != "" {
		if err := writeComparisonFile(cfg.Output, rows); err != nil {
			return nil, nil, err
		}
	}
	return rows, summary, nil
}

func writeComparisonFile(path string, rows []domain.StationComparison) error {
	//nolint:gosec // G304: output path is supplied by the operator.
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create comparison file: %w", err)
	}
	if err := csv.WriteComparison(f, rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write comparison file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close comparison file: %w", err)
	}
	return nil
}
