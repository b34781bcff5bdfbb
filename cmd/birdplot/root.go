package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/birdplot/internal/adapters/toolchain"
	"github.com/okian/birdplot/internal/config"
	"github.com/okian/birdplot/internal/domain/geometry"
	"github.com/okian/birdplot/pkg/logger"
	"github.com/okian/birdplot/pkg/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

// app carries what every sub-command shares.
type app struct {
	out    io.Writer
	logOut io.Writer
	runner toolchain.Runner

	configPath string
	logLevel   string

	cfg  *config.Config
	log  logger.Logger
	axes geometry.AxisTable // shared by rendering and overlap so both agree
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "birdplot",
		Short: "Bird personality charts and PNG batch optimisation",
		Long: "birdplot renders radar, comparison and quadrant charts from Dove/Eagle/Owl/Peacock\n" +
			"scores, reports how much two profiles overlap, and shrinks PNG files in place.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		Version:           version,
		PersistentPreRunE: a.setup,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
	}
	root.SetOut(a.out)

	f := root.PersistentFlags()
	f.StringVar(&a.configPath, "config", "", "YAML config file (default $"+config.EnvConfig+")")
	f.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")

	root.AddCommand(newChartCmd(a), newOverlapCmd(a), newOptimizeCmd(a))
	return root
}

// setup loads the configuration and initialises logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context(), a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if err := logger.InitWith(a.logOut, cfg.LogLevel); err != nil {
		return fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	a.cfg = cfg
	a.log = logger.Get().Named(cmd.Name())
	a.axes = geometry.DefaultAxes()
	return nil
}

// finish records the run and flushes metrics to the configured textfile.
func (a *app) finish(cmd *cobra.Command, start time.Time) {
	end := time.Now()
	metrics.RecordRun(cmd.Name(), end.Sub(start).Seconds(), end.Unix())
	if a.cfg == nil || a.cfg.MetricsTextfile == "" {
		return
	}
	if err := metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.log.Warn(cmd.Context(), "metrics not written", logger.String("path", a.cfg.MetricsTextfile), logger.Error(err))
	}
}
