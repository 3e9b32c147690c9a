package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"go.ngs.io/salishsea-tools/internal/usecase"
)

func newMatchCmd(a *app) *cobra.Command {
	var (
		observations string
		output       string
		method       string
		start, end   string
		zone         string
	)
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match observations to model output.",
		Long: `match finds the model value at the time and place of every observation
and writes the observation table with a mod_<var> column per model variable.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.cfg.Match
			if observations != "" {
				cfg.Observations = observations
			}
			if output != "" {
				cfg.Output = output
			}
			if method != "" {
				cfg.Method = method
			}
			if start != "" {
				cfg.Start = start
			}
			if end != "" {
				cfg.End = end
			}
			if zone != "" {
				cfg.TimeZone = zone
			}

			opener, err := a.opener()
			if err != nil {
				return err
			}
			res, err := usecase.NewMatchUseCase(opener, a.log).RunFile(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "matched %d observations\n", res.Table.Len())
			paths := make([]string, 0, len(res.Stats.Opens))
			for p := range res.Stats.Opens {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			for _, p := range paths {
				fmt.Fprintf(out, "  %s opened %d time(s)\n", p, res.Stats.Opens[p])
			}
			return nil
		},
		DisableAutoGenTag: true,
	}
	flags := cmd.Flags()
	flags.StringVar(&observations, "obs", "", "observation CSV (overrides match.observations)")
	flags.StringVarP(&output, "output", "o", "", "output CSV (overrides match.output)")
	flags.StringVar(&method, "method", "", "vertical policy: bin, vvlBin, vvlZ, ferry or vertNet")
	flags.StringVar(&start, "start", "", "first time to match (UTC)")
	flags.StringVar(&end, "end", "", "end of the match window (UTC, exclusive)")
	flags.StringVar(&zone, "tz", "", "zone of observation times without an offset")
	return cmd
}
