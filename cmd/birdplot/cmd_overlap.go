package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/okian/birdplot/internal/adapters/csvload"
	"github.com/okian/birdplot/internal/adapters/render"
	service "github.com/okian/birdplot/internal/app"
)

// Output formats for the overlap command.
const (
	formatText = "text"
	formatYAML = "yaml"
)

var errOverlapFlags = errors.New("overlap: --a and --b must be given together")

type overlapFlags struct {
	data   string
	a, b   string
	format string
}

func newOverlapCmd(a *app) *cobra.Command {
	var flags overlapFlags
	cmd := &cobra.Command{
		Use:   "overlap",
		Short: "Print the score-polygon overlap for one pair or for every pair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runOverlap(cmd, flags)
		},
	}
	f := cmd.Flags()
	f.StringVar(&flags.data, "data", "data.csv", "score CSV file")
	f.StringVar(&flags.a, "a", "", "first record name")
	f.StringVar(&flags.b, "b", "", "second record name")
	f.StringVar(&flags.format, "format", formatText, "output format: text or yaml")
	return cmd
}

func (a *app) runOverlap(cmd *cobra.Command, flags overlapFlags) error {
	ctx := cmd.Context()
	defer a.finish(cmd, time.Now())

	format := strings.ToLower(flags.format)
	if format != formatText && format != formatYAML {
		return fmt.Errorf("overlap: unknown format %q (want text or yaml)", flags.format)
	}
	if (flags.a == "") != (flags.b == "") {
		return errOverlapFlags
	}

	cfg := a.cfg
	if cmd.Flags().Changed("data") {
		cfg.Data = flags.data
	}
	records, err := csvload.New(csvload.WithLogger(a.log)).Load(ctx, cfg.Data)
	if err != nil {
		return err
	}

	// Overlap needs no renderer or sink.
	svc := service.New(nil, nil, service.WithLogger(a.log), service.WithAxes(a.axes))
	out := cmd.OutOrStdout()

	if flags.a != "" {
		p, err := svc.PairOverlap(ctx, records, flags.a, flags.b)
		if err != nil {
			return err
		}
		if format == formatYAML {
			return writeYAML(out, p)
		}
		_, err = fmt.Fprintln(out, render.FormatOverlap(p.Percent))
		return err
	}

	rep, err := svc.OverlapReport(ctx, records)
	if err != nil {
		return err
	}
	if format == formatYAML {
		return writeYAML(out, rep)
	}
	for _, s := range rep.Skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s: %s\n", s.ID, s.Reason)
	}
	for _, p := range rep.Pairs {
		if _, err := fmt.Fprintf(out, "%s vs %s: %s\n", p.A, p.B, render.FormatOverlap(p.Percent)); err != nil {
			return err
		}
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
