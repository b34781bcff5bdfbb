// Package service turns loaded score records into chart files and overlap
// reports.
package service

import (
	"context"
	"fmt"
	"io"
	"runtime"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/birdplot/internal/domain/dedupe"
	"github.com/okian/birdplot/internal/domain/geometry"
	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/pkg/logger"
	"github.com/okian/birdplot/pkg/metrics"
)

// GraphType selects which chart set a run produces.
type GraphType string

// Supported graph types.
const (
	GraphRadar   GraphType = "radar"
	GraphScatter GraphType = "scatter"
)

// ParseGraphType accepts radar or scatter in any case.
func ParseGraphType(s string) (GraphType, error) {
	switch GraphType(strings.ToLower(strings.TrimSpace(s))) {
	case GraphRadar:
		return GraphRadar, nil
	case GraphScatter:
		return GraphScatter, nil
	default:
		return "", fmt.Errorf("%w: %q (want radar or scatter)", ErrUnknownGraphType, s)
	}
}

// Output file names.
const (
	teamAverageBase = "radar_chart_team_average"
	scatterFile     = "scatter_chart_all.png"
)

// Skip reasons reported in Result and metrics.
const (
	reasonIncomplete = "incomplete"
)

// Renderer draws charts. render.Renderer satisfies it.
type Renderer interface {
	Radar(w io.Writer, r model.ScoreRecord) error
	Comparison(w io.Writer, a, b model.ScoreRecord, overlap float64) error
	Scatter(w io.Writer, records []model.ScoreRecord) ([]model.ScoreRecord, error)
}

// Skipped names a record left out of a run and why.
type Skipped struct {
	ID     string `yaml:"id"`
	Reason string `yaml:"reason"`
}

// Result lists the files a run wrote, in generation order.
type Result struct {
	Files   []string
	Skipped []Skipped
}

// Service produces chart sets.
type Service struct {
	renderer Renderer
	sink     Sink
	axes     geometry.AxisTable
	workers  int
	logger   logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkers bounds how many charts render at once.
func WithWorkers(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithAxes overrides the axis table used for overlap computation.
func WithAxes(t geometry.AxisTable) Option {
	return func(s *Service) {
		if t.Len() > 0 {
			s.axes = t
		}
	}
}

// New constructs a Service writing through sink.
func New(renderer Renderer, sink Sink, opts ...Option) *Service {
	s := &Service{
		renderer: renderer,
		sink:     sink,
		axes:     geometry.DefaultAxes(),
		workers:  runtime.NumCPU(),
		logger:   logger.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Charts produces the chart set for graph type g.
func (s *Service) Charts(ctx context.Context, g GraphType, records []model.ScoreRecord) (Result, error) {
	switch g {
	case GraphRadar:
		return s.RadarSet(ctx, records)
	case GraphScatter:
		return s.ScatterChart(ctx, records)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrUnknownGraphType, g)
	}
}

// chartJob is one file to render.
type chartJob struct {
	file string
	kind string
	draw func(w io.Writer) error
}

// RadarSet writes, for every complete record, its own radar and a comparison
// with the team average, then a comparison for every pair of records, and
// finally the team average radar.
func (s *Service) RadarSet(ctx context.Context, records []model.ScoreRecord) (Result, error) {
	complete, skipped := s.partition(ctx, records)
	avg, ok := model.TeamAverage(complete)
	if !ok {
		return Result{Skipped: skipped}, ErrNoRecords
	}

	// The team chart keeps its fixed name; a record whose safe name collides
	// with it gets a suffix instead.
	names := newNamer()
	teamFile := names.unique(teamAverageBase)

	var jobs []chartJob
	for _, r := range complete {
		safe := model.SafeName(r.ID())
		jobs = append(jobs,
			chartJob{
				file: names.unique("radar_chart_" + safe),
				kind: "radar",
				draw: func(w io.Writer) error { return s.renderer.Radar(w, r) },
			},
			s.comparisonJob(names.unique("radar_chart_comparison_"+safe+"_vs_TeamAvg"), r, avg),
		)
	}
	for i := 0; i < len(complete); i++ {
		for j := i + 1; j < len(complete); j++ {
			a, b := complete[i], complete[j]
			name := "radar_chart_comparison_" + model.SafeName(a.ID()) + "_" + model.SafeName(b.ID())
			jobs = append(jobs, s.comparisonJob(names.unique(name), a, b))
		}
	}
	jobs = append(jobs, chartJob{
		file: teamFile,
		kind: "radar",
		draw: func(w io.Writer) error { return s.renderer.Radar(w, avg) },
	})

	files, err := s.run(ctx, jobs)
	return Result{Files: files, Skipped: skipped}, err
}

// ScatterChart writes one quadrant chart with every complete record.
func (s *Service) ScatterChart(ctx context.Context, records []model.ScoreRecord) (Result, error) {
	complete, skipped := s.partition(ctx, records)
	if len(complete) == 0 {
		return Result{Skipped: skipped}, ErrNoRecords
	}

	files, err := s.run(ctx, []chartJob{{
		file: scatterFile,
		kind: "scatter",
		draw: func(w io.Writer) error {
			_, err := s.renderer.Scatter(w, complete)
			return err
		},
	}})
	return Result{Files: files, Skipped: skipped}, err
}

func (s *Service) comparisonJob(file string, a, b model.ScoreRecord) chartJob {
	return chartJob{
		file: file,
		kind: "comparison",
		draw: func(w io.Writer) error {
			pct, err := geometry.Overlap(s.axes, a, b)
			if err != nil {
				return err
			}
			metrics.RecordOverlap(pct)
			return s.renderer.Comparison(w, a, b, pct)
		},
	}
}

// partition splits records into complete ones and skip entries, logging
// every incomplete record.
func (s *Service) partition(ctx context.Context, records []model.ScoreRecord) ([]model.ScoreRecord, []Skipped) {
	var (
		complete []model.ScoreRecord
		skipped  []Skipped
	)
	for _, r := range records {
		if r.Complete() {
			complete = append(complete, r)
			continue
		}
		missing := make([]string, 0, len(model.Axes))
		for _, a := range r.Missing() {
			missing = append(missing, a.String())
		}
		s.logger.Warn(ctx, "skipping incomplete record",
			logger.String("id", r.ID()),
			logger.String("missing", strings.Join(missing, ",")),
		)
		metrics.RecordRecordSkipped(reasonIncomplete)
		skipped = append(skipped, Skipped{ID: r.ID(), Reason: reasonIncomplete + ": missing " + strings.Join(missing, ", ")})
	}
	return complete, skipped
}

// run renders jobs concurrently, at most s.workers at a time. The first
// failure cancels the remaining jobs. Files are reported in job order.
func (s *Service) run(ctx context.Context, jobs []chartJob) ([]string, error) {
	written := make([]string, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)

	for i, job := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			if err := s.write(job); err != nil {
				metrics.RecordErrorByComponent("render", job.kind)
				s.logger.Error(gctx, "chart failed", logger.String("file", job.file), logger.Error(err))
				return fmt.Errorf("%s: %w", job.file, err)
			}
			took := time.Since(start)
			metrics.RecordChartRendered(job.kind, float64(took.Milliseconds()))
			s.logger.Info(gctx, "chart written", logger.String("file", job.file), logger.Duration("took", took))
			written[i] = job.file
			return nil
		})
	}
	err := g.Wait()

	files := make([]string, 0, len(jobs))
	for _, f := range written {
		if f != "" {
			files = append(files, f)
		}
	}
	return files, err
}

func (s *Service) write(job chartJob) error {
	w, err := s.sink.Create(job.file)
	if err != nil {
		return err
	}
	if err := job.draw(w); err != nil {
		discard(w)
		return err
	}
	return w.Close()
}

// namer hands out unique file names. Distinct ids can share a safe name
// ("A/B" and "A_B"); later ones get a numeric suffix.
type namer struct {
	seen dedupe.Deduper
}

func newNamer() *namer {
	return &namer{seen: dedupe.NewInMemoryDeduper()}
}

func (n *namer) unique(base string) string {
	ctx := context.Background()
	name := base
	for i := 2; n.seen.SeenAndRecord(ctx, name); i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	return name + ".png"
}
