package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"go.ngs.io/salishsea-tools/internal/adapter/store/csv"
	"go.ngs.io/salishsea-tools/internal/carbonate"
	"go.ngs.io/salishsea-tools/internal/config"
	"go.ngs.io/salishsea-tools/internal/domain"
)

// series reads one column of an observation CSV with its sample times.
func series(path, column, zone string) ([]time.Time, []float64, error) {
	tbl, err := csv.ReadObservationsFileIn(path, zone)
	if err != nil {
		return nil, nil, err
	}
	if !tbl.Has(column) {
		return nil, nil, fmt.Errorf("%s: %w", column, domain.ErrMissingColumn)
	}
	return tbl.Times(), tbl.Column(column), nil
}

// hoursSince returns the offsets of times from origin in hours. A zero origin
// uses the first time.
func hoursSince(times []time.Time, origin time.Time) []float64 {
	if origin.IsZero() && len(times) > 0 {
		origin = times[0]
	}
	return domain.HoursSince(origin, times)
}

func parseFloats(args []string) ([]float64, error) {
	out := make([]float64, len(args))
	for k, s := range args {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q: %w", s, err)
		}
		out[k] = v
	}
	return out, nil
}

// nodalCorrection resolves a --nodal choice. The nowcast table also fixes
// the phase origin.
func nodalCorrection(name string) (domain.NodalCorrection, time.Time, error) {
	switch name {
	case "", "none":
		return domain.IdentityNodalCorrection{}, time.Time{}, nil
	case "nowcast":
		table := domain.NowcastCorrections()
		return table, table.RefTime, nil
	case "lunar":
		return domain.LunarNodeCorrection{}, time.Time{}, nil
	}
	return nil, time.Time{}, fmt.Errorf("unknown nodal correction %q", name)
}

func newFitCmd(*app) *cobra.Command {
	var (
		file, column, origin string
		zone, nodal, output  string
		nconst               int
	)
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit tidal constituents to a time series.",
		Long: `fit solves for the mean and the amplitude and phase of 2, 4, 6 or 8
constituents in one column of an observation CSV. --nodal applies nowcast or
lunar-node corrections to the reported constituents. --output writes the
table with <column>_fit and <column>_residual columns reconstructed from
the fit.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			corr, t0, err := nodalCorrection(nodal)
			if err != nil {
				return err
			}
			if origin != "" {
				if t0, err = config.ParseTime(origin); err != nil {
					return err
				}
			}
			tbl, err := csv.ReadObservationsFileIn(file, zone)
			if err != nil {
				return err
			}
			if !tbl.Has(column) {
				return fmt.Errorf("%s: %w", column, domain.ErrMissingColumn)
			}
			times, vals := tbl.Times(), tbl.Column(column)
			if len(times) == 0 {
				return fmt.Errorf("no samples in %s", file)
			}
			if t0.IsZero() {
				t0 = times[0]
			}
			hours := hoursSince(times, t0)
			res, err := domain.FitConstituents(hours, vals, nconst)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "mean %.4f  rms residual %.4f\n", res.Mean, res.RMSResidual(hours, vals))
			for _, c := range domain.ApplyCorrection(res.Constituents, corr, domain.HoursSinceEpoch(times[0])) {
				fmt.Fprintf(out, "%-4s amplitude %.4f  phase %.2f\n", c.Name, c.AmplitudeM, c.PhaseDeg)
			}
			if output == "" {
				return nil
			}

			params := res.Params()
			params.ReferenceTime = t0
			fit := make([]float64, len(times))
			residual := make([]float64, len(times))
			for k, p := range domain.PredictAt(times, params) {
				fit[k] = p.Value
				residual[k] = vals[k] - p.Value
			}
			if err := tbl.SetColumn(column+"_fit", fit); err != nil {
				return err
			}
			if err := tbl.SetColumn(column+"_residual", residual); err != nil {
				return err
			}
			return csv.WriteObservationsFile(output, tbl)
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&file, "file", "", "observation CSV with a dtUTC column")
	flags.StringVar(&column, "column", "", "column to fit")
	flags.StringVar(&origin, "origin", "", "phase origin (UTC); defaults to the first sample")
	flags.StringVar(&zone, "tz", "", "zone of sample times without an offset")
	flags.StringVar(&nodal, "nodal", "none", "nodal correction: none, nowcast or lunar")
	flags.StringVarP(&output, "output", "o", "", "write the series with fit and residual columns")
	flags.IntVar(&nconst, "nconst", 2, "number of constituents: 2, 4, 6 or 8")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newEllipseCmd(*app) *cobra.Command {
	var (
		file, uCol, vCol string
		zone             string
		nodal            string
		nconst           int
		nowcast          bool
	)
	cmd := &cobra.Command{
		Use:   "ellipse [au pu av pv]",
		Short: "Compute tidal current ellipse parameters.",
		Long: `ellipse converts u and v amplitudes and phases into ellipse parameters.
With --file it instead fits constituents to the u and v columns of an
observation CSV; --nowcast references phases to the nowcast run origin and
applies its nodal corrections, and --nodal lunar applies lunar-node ones.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if file == "" {
				if len(args) != 4 {
					return errors.New("expected au pu av pv or --file")
				}
				v, err := parseFloats(args)
				if err != nil {
					return err
				}
				printEllipse(out, "", domain.AP2EP(v[0], v[1], v[2], v[3]))
				return nil
			}

			times, u, err := series(file, uCol, zone)
			if err != nil {
				return err
			}
			_, v, err := series(file, vCol, zone)
			if err != nil {
				return err
			}
			if nowcast {
				nodal = "nowcast"
			}
			corr, origin, err := nodalCorrection(nodal)
			if err != nil {
				return err
			}
			if len(times) == 0 {
				return fmt.Errorf("no samples in %s", file)
			}
			hours := hoursSince(times, origin)
			ellipses, err := domain.EllipseFromFit(hours, u, v, nconst, corr, domain.HoursSinceEpoch(times[0]))
			if err != nil {
				return err
			}
			names := make([]string, 0, len(ellipses))
			for name := range ellipses {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				printEllipse(out, name, ellipses[name])
			}
			return nil
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&file, "file", "", "observation CSV with u and v columns")
	flags.StringVar(&uCol, "u", "u", "eastward velocity column")
	flags.StringVar(&vCol, "v", "v", "northward velocity column")
	flags.IntVar(&nconst, "nconst", 2, "number of constituents: 2, 4, 6 or 8")
	flags.BoolVar(&nowcast, "nowcast", false, "apply nowcast nodal corrections")
	flags.StringVar(&nodal, "nodal", "none", "nodal correction: none, nowcast or lunar")
	flags.StringVar(&zone, "tz", "", "zone of sample times without an offset")
	return cmd
}

func printEllipse(w io.Writer, name string, e domain.Ellipse) {
	if name != "" {
		fmt.Fprintf(w, "%-4s ", name)
	}
	fmt.Fprintf(w, "SEMA %.4f  SEMI %.4f  ECC %.4f  INC %.2f  PHA %.2f\n", e.SEMA, e.SEMI, e.ECC, e.INC, e.PHA)
}

func newFilterCmd(*app) *cobra.Command {
	var (
		file, column, method string
		zone                 string
		winlen               int
	)
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Remove the tides from a time series.",
		Long: `filter applies a box or Doodson running filter to one column of an
observation CSV and writes the table with a <column>_filtered column.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			tbl, err := csv.ReadObservationsFileIn(file, zone)
			if err != nil {
				return err
			}
			if !tbl.Has(column) {
				return fmt.Errorf("%s: %w", column, domain.ErrMissingColumn)
			}
			filtered, err := domain.FilterTimeseries(tbl.Column(column), winlen, method)
			if err != nil {
				return err
			}
			if err := tbl.SetColumn(column+"_filtered", filtered); err != nil {
				return err
			}
			return csv.WriteObservations(cmd.OutOrStdout(), tbl)
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&file, "file", "", "observation CSV with a dtUTC column")
	flags.StringVar(&column, "column", "", "column to filter")
	flags.StringVar(&method, "method", domain.FilterDoodson, "filter: box or doodson")
	flags.IntVar(&winlen, "winlen", domain.DefaultFilterWindow, "window length in samples")
	flags.StringVar(&zone, "tz", "", "zone of sample times without an offset")
	_ = cmd.MarkFlagRequired("file")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newCarbonateCmd(*app) *cobra.Command {
	var (
		params [2]string
		cond   carbonate.Conditions
	)
	cmd := &cobra.Command{
		Use:   "carbonate v1 v2",
		Short: "Solve the carbonate system from two parameters.",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			var ps [2]carbonate.Param
			for k, s := range params {
				if ps[k], err = carbonate.ParseParam(s); err != nil {
					return err
				}
			}
			in, err := carbonate.NewInput(ps, [2]float64{v[0], v[1]})
			if err != nil {
				return err
			}
			r, err := carbonate.Solve(in, cond)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "TA %.2f  TC %.2f  pH %.4f  pCO2 %.2f  OmegaA %.4f  OmegaC %.4f\n",
				r.TA, r.TC, r.PH, r.PCO2, r.OmegaA, r.OmegaC)
			return nil
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&params[0], "par1", "TA", "first parameter: TA, TC, pH, pCO2 or OmegaA")
	flags.StringVar(&params[1], "par2", "TC", "second parameter")
	flags.Float64VarP(&cond.T, "temp", "t", 25, "in situ temperature (°C)")
	flags.Float64VarP(&cond.S, "sal", "s", 35, "practical salinity")
	flags.Float64VarP(&cond.P, "pres", "p", 0, "pressure (dbar)")
	flags.Float64Var(&cond.TP, "tp", 0, "total phosphate (µmol/kg)")
	flags.Float64Var(&cond.TSi, "tsi", 0, "total silicate (µmol/kg)")
	return cmd
}

func newPHScaleCmd(*app) *cobra.Command {
	var (
		scale   string
		t, s, p float64
	)
	cmd := &cobra.Command{
		Use:   "phscale pH",
		Short: "Express a pH on the total, free, seawater and NBS scales.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := parseFloats(args)
			if err != nil {
				return err
			}
			sc, err := carbonate.PHOnAllScales(v[0], carbonate.Scale(scale), t, s, p)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "total %.4f  free %.4f  seawater %.4f  NBS %.4f\n",
				sc.Total, sc.Free, sc.Seawater, sc.NBS)
			return nil
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&scale, "scale", string(carbonate.ScaleTotal), "scale of the input pH")
	flags.Float64VarP(&t, "temp", "t", 25, "temperature (°C)")
	flags.Float64VarP(&s, "sal", "s", 35, "practical salinity")
	flags.Float64VarP(&p, "pres", "p", 0, "pressure (dbar)")
	return cmd
}
