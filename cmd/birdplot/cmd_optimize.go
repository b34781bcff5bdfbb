package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/birdplot/internal/optimizer"
	"github.com/okian/birdplot/pkg/logger"
)

type optimizeFlags struct {
	mode    string
	workers int
}

func newOptimizeCmd(a *app) *cobra.Command {
	var flags optimizeFlags
	cmd := &cobra.Command{
		Use:   "optimize [ROOT...]",
		Short: "Shrink PNG files under each root in place",
		Long: "optimize walks every ROOT (default: the current directory) and shrinks each PNG.\n" +
			"quantize mode runs the palette quantiser then a lossless re-compressor;\n" +
			"strip mode strips metadata, caps the size and reduces bit depth.\n" +
			"A failure on one file never stops the others. A missing tool or an\n" +
			"unreadable ROOT exits 1.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runOptimize(cmd, args, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.mode, "mode", string(optimizer.ModeQuantize), "quantize or strip")
	f.IntVar(&flags.workers, "workers", 0, "parallel jobs (default from config)")
	return cmd
}

func (a *app) runOptimize(cmd *cobra.Command, roots []string, flags optimizeFlags) error {
	ctx := cmd.Context()
	defer a.finish(cmd, time.Now())

	s := a.cfg.OptimizerSettings()
	if cmd.Flags().Changed("mode") {
		mode, err := optimizer.ParseMode(flags.mode)
		if err != nil {
			return err
		}
		s.Mode = mode
	}
	if cmd.Flags().Changed("workers") {
		s.Workers = flags.workers
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}

	opt, err := optimizer.New(a.runner, s, optimizer.WithLogger(a.log))
	if err != nil {
		return err
	}
	sum, err := opt.Run(ctx, roots)
	if errors.Is(err, optimizer.ErrMissingTool) || errors.Is(err, optimizer.ErrDiscover) {
		a.log.Error(ctx, "cannot optimize", logger.Error(err))
		return err
	}
	if err != nil {
		a.log.Warn(ctx, "optimization interrupted", logger.Error(err))
	}

	_, werr := fmt.Fprintf(cmd.OutOrStdout(),
		"found %d, processed %d, skipped %d, failed %d, saved %d bytes\n",
		sum.Found, sum.Processed, sum.Skipped, sum.Failed, sum.BytesSaved)
	return werr
}
