package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/spf13/cobra"

	"go.ngs.io/salishsea-tools/internal/domain"
	"go.ngs.io/salishsea-tools/internal/locate"
	"go.ngs.io/salishsea-tools/internal/usecase"
)

func newCompositeCmd(a *app) *cobra.Command {
	var j, i int
	cmd := &cobra.Command{
		Use:   "composite [run directories...]",
		Short: "Combine harmonic output of several runs.",
		Long: `composite weights the real and imaginary harmonic coefficients of each
run by its length and prints the combined amplitude and phase at one grid
cell. Run lengths come from harmonics.lengths or, with harmonics.namelists,
from each run's namelist.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Harmonics
			if len(args) > 0 {
				cfg.Runs = args
			}
			opener, err := a.opener()
			if err != nil {
				return err
			}
			fields, err := usecase.NewHarmonicsUseCase(opener, a.log).Composite(cfg)
			if err != nil {
				return err
			}

			names := make([]string, 0, len(fields))
			for name := range fields {
				names = append(names, name)
			}
			sort.Strings(names)
			out := cmd.OutOrStdout()
			for _, name := range names {
				f := fields[name]
				nx := f.Shape[len(f.Shape)-1]
				cell := j*nx + i
				if j < 0 || i < 0 || i >= nx || cell >= len(f.Re) {
					return fmt.Errorf("cell (%d, %d) outside field %s %v", j, i, f.Name, f.Shape)
				}
				amp, pha := domain.AmpPhase(f.Re[cell], f.Im[cell])
				fmt.Fprintf(out, "%-4s amplitude %.4f  phase %.2f\n", name, amp, pha)
			}
			return nil
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().IntVar(&j, "j", 0, "grid row")
	cmd.Flags().IntVar(&i, "i", 0, "grid column")
	return cmd
}

func newCompareCmd(a *app) *cobra.Command {
	var observed, output string
	cmd := &cobra.Command{
		Use:   "compare [run directories...]",
		Short: "Compare model M2 and K1 elevation harmonics with tide gauges.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := a.cfg.Harmonics
			if len(args) > 0 {
				cfg.Runs = args
			}
			if observed != "" {
				cfg.Observed = observed
			}
			if output != "" {
				cfg.Output = output
			}

			opener, err := a.opener()
			if err != nil {
				return err
			}
			grid, err := usecase.NewMatchUseCase(opener, a.log).LoadGrid(a.cfg.Match.Mesh)
			if err != nil {
				return err
			}
			opts := locate.Options{MaxDistanceKm: a.cfg.Match.MaxDistanceKm, Logger: a.log}
			rows, summary, err := usecase.NewHarmonicsUseCase(opener, a.log).CompareFile(grid, cfg, opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			found := 0
			for _, r := range rows {
				if r.Found {
					found++
				}
			}
			fmt.Fprintf(out, "%d of %d stations on the model grid\n", found, len(rows))
			for _, s := range summary {
				if s.N == 0 || math.IsNaN(s.MeanF95) {
					fmt.Fprintf(out, "%s: no stations\n", s.Constituent)
					continue
				}
				fmt.Fprintf(out, "%s: n=%d  mean D_F95 %.4f  RMS D_F95 %.4f  mean D_M04 %.4f  RMS D_M04 %.4f\n",
					s.Constituent, s.N, s.MeanF95, s.RMSF95, s.MeanM04, s.RMSM04)
			}
			return nil
		},
		DisableAutoGenTag: true,
	}
	cmd.Flags().StringVar(&observed, "observed", "", "observed constituent table (overrides harmonics.observed)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "comparison CSV (overrides harmonics.output)")
	return cmd
}
