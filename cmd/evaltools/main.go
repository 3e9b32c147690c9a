// Command evaltools evaluates Salish Sea model output against observations.
package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"go.ngs.io/salishsea-tools/internal/adapter/store/nemo"
	"go.ngs.io/salishsea-tools/internal/config"
	"go.ngs.io/salishsea-tools/internal/dataset"
)

const version = "0.1.0"

// app holds state shared by the subcommands.
type app struct {
	configPath string
	verbose    bool
	reader     string

	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: logrus.New()}
	a.log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	root := &cobra.Command{
		Use:   "evaltools",
		Short: "Evaluate ocean model output against observations.",
		Long: `evaltools matches model output to observations, combines and compares
tidal harmonics, fits constituents to time series and solves the carbonate
system. Run options are read from a TOML file given with --config; the
environment variables EVAL_BASEDIR, EVAL_MESH, EVAL_READER and LOG_LEVEL
override it.`,
		Version:           version,
		SilenceUsage:      true,
		DisableAutoGenTag: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "TOML configuration file")
	flags.BoolVar(&a.verbose, "verbose", false, "log debug output")
	flags.StringVar(&a.reader, "reader", "", "netCDF reader: libnetcdf or native")

	root.AddCommand(
		newMatchCmd(a),
		newCompositeCmd(a),
		newCompareCmd(a),
		newFitCmd(a),
		newEllipseCmd(a),
		newFilterCmd(a),
		newCarbonateCmd(a),
		newPHScaleCmd(a),
	)
	return root
}

// setup loads the configuration and applies the global flags.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if flags.Changed("reader") {
		cfg.Match.Reader = a.reader
	}
	a.cfg = cfg

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	if a.verbose {
		level = logrus.DebugLevel
	}
	a.log.SetLevel(level)
	return nil
}

func (a *app) opener() (dataset.Opener, error) {
	return nemo.NewOpener(a.cfg.Match.Reader)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
