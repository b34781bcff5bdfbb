package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/birdplot/internal/adapters/csvload"
	"github.com/okian/birdplot/internal/adapters/render"
	service "github.com/okian/birdplot/internal/app"
	"github.com/okian/birdplot/pkg/logger"
)

type chartFlags struct {
	data      string
	graphType string
	outputDir string
}

func newChartCmd(a *app) *cobra.Command {
	var flags chartFlags
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Render radar or scatter charts from a score CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runChart(cmd, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.data, "data", "data.csv", "score CSV file")
	f.StringVar(&flags.graphType, "graph-type", "scatter", "chart set to draw: scatter or radar")
	f.StringVar(&flags.outputDir, "output-dir", ".", "directory receiving the PNG files")
	return cmd
}

func (a *app) runChart(cmd *cobra.Command, flags chartFlags) error {
	ctx := cmd.Context()
	defer a.finish(cmd, time.Now())

	cfg := a.cfg
	if cmd.Flags().Changed("data") {
		cfg.Data = flags.data
	}
	if cmd.Flags().Changed("graph-type") {
		cfg.GraphType = flags.graphType
	}
	if cmd.Flags().Changed("output-dir") {
		cfg.OutputDir = flags.outputDir
	}

	graph, err := service.ParseGraphType(cfg.GraphType)
	if err != nil {
		return err
	}
	records, err := csvload.New(csvload.WithLogger(a.log)).Load(ctx, cfg.Data)
	if err != nil {
		return err
	}
	rd, err := render.New(ctx, cfg.RenderSettings(),
		render.WithLogger(a.log),
		render.WithAxes(a.axes),
	)
	if err != nil {
		return err
	}
	sink, err := service.NewDirSink(cfg.OutputDir)
	if err != nil {
		return err
	}

	svc := service.New(rd, sink,
		service.WithWorkers(cfg.Workers),
		service.WithLogger(a.log),
		service.WithAxes(a.axes),
	)
	res, err := svc.Charts(ctx, graph, records)
	for _, s := range res.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.ID, s.Reason)
	}
	for _, f := range res.Files {
		fmt.Fprintln(cmd.OutOrStdout(), filepath.Join(sink.Dir(), f))
	}
	if err != nil {
		return err
	}
	a.log.Info(ctx, "charts done",
		logger.String("graph_type", string(graph)),
		logger.Int("files", len(res.Files)),
		logger.Int("skipped", len(res.Skipped)),
	)
	return nil
}
