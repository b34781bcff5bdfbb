// Package optimizer shrinks PNG files in place by driving external tools
// over a bounded queue and worker pool.
package optimizer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/okian/birdplot/internal/adapters/mq/queue"
	"github.com/okian/birdplot/internal/adapters/mq/worker"
	"github.com/okian/birdplot/internal/adapters/toolchain"
	"github.com/okian/birdplot/internal/domain/dedupe"
	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/pkg/logger"
	"github.com/okian/birdplot/pkg/metrics"
)

// File results, also used as metric labels.
const (
	resultProcessed = "processed"
	resultSkipped   = "skipped"
	resultFailed    = "failed"
)

// Summary reports what a run did.
type Summary struct {
	Found      int   `yaml:"found"`
	Processed  int   `yaml:"processed"`
	Skipped    int   `yaml:"skipped"`
	Failed     int   `yaml:"failed"`
	BytesSaved int64 `yaml:"bytes_saved"`
}

// Optimizer runs one mode over a set of directory trees.
type Optimizer struct {
	settings Settings
	runner   toolchain.Runner
	logger   logger.Logger

	processed, skipped, failed atomic.Int64
	saved                      atomic.Int64
}

// Option configures an Optimizer.
type Option func(*Optimizer)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(o *Optimizer) {
		if l != nil {
			o.logger = l
		}
	}
}

// New validates s and returns an Optimizer using runner for every tool.
func New(runner toolchain.Runner, s Settings, opts ...Option) (*Optimizer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	o := &Optimizer{settings: s, runner: runner, logger: logger.Discard()}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

// CheckTools confirms every tool the mode needs is on PATH.
func (o *Optimizer) CheckTools() error {
	var missing []string
	for _, t := range o.settings.tools() {
		if _, err := o.runner.LookPath(t); err != nil {
			missing = append(missing, t)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingTool, strings.Join(missing, ", "))
	}
	return nil
}

// Discover walks every root and returns one job per matching file. Files
// reached twice, through overlapping roots or symlinks, are listed once.
func (o *Optimizer) Discover(ctx context.Context, roots []string) ([]model.Job, error) {
	seen := dedupe.NewInMemoryDeduper()
	var jobs []model.Job

	for _, root := range roots {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() || !strings.EqualFold(filepath.Ext(path), o.settings.Extension) {
				return nil
			}
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil {
				o.logger.Warn(ctx, "cannot resolve file", logger.String("path", path), logger.Error(err))
				return nil
			}
			if resolved, err = filepath.Abs(resolved); err != nil {
				return err
			}
			if seen.SeenAndRecord(ctx, resolved) {
				return nil
			}
			info, err := os.Stat(resolved)
			if err != nil || !info.Mode().IsRegular() {
				return nil
			}
			jobs = append(jobs, model.Job{ID: uuid.NewString(), Path: resolved, Size: info.Size()})
			return nil
		})
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if err != nil {
			return nil, fmt.Errorf("%w: walk %s: %w", ErrDiscover, root, err)
		}
	}
	return jobs, nil
}

// Run checks the tools, discovers files under roots and optimises them.
// Per-file failures are counted in the summary and never abort the run.
func (o *Optimizer) Run(ctx context.Context, roots []string) (Summary, error) {
	if err := o.CheckTools(); err != nil {
		return Summary{}, err
	}
	o.processed.Store(0)
	o.skipped.Store(0)
	o.failed.Store(0)
	o.saved.Store(0)

	jobs, err := o.Discover(ctx, roots)
	if err != nil {
		return Summary{}, err
	}
	q := queue.NewInMemoryQueue(queue.WithCapacity(o.settings.QueueSize))
	pool := worker.NewPool(o.settings.Workers, q, o, worker.WithPoolLogger(o.logger))
	o.logger.Info(ctx, "optimizing files",
		logger.String("mode", string(o.settings.Mode)),
		logger.Int("files", len(jobs)),
		logger.Int("workers", pool.Size()),
	)
	pool.Start(ctx)

	var runErr error
	for _, j := range jobs {
		if err := q.Enqueue(ctx, j); err != nil {
			runErr = err
			break
		}
	}
	_ = q.Close()

	drained := make(chan struct{})
	go func() {
		pool.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		o.logger.Warn(ctx, "interrupted, stopping after files in hand")
		if err := pool.Shutdown(context.WithoutCancel(ctx)); err != nil {
			o.logger.Error(ctx, "worker shutdown", logger.Error(err))
		}
		<-drained
		runErr = ctx.Err()
	}

	sum := o.summary(len(jobs))
	o.logger.Info(ctx, "optimization finished",
		logger.Int("processed", sum.Processed),
		logger.Int("skipped", sum.Skipped),
		logger.Int("failed", sum.Failed),
		logger.Int64("bytes_saved", sum.BytesSaved),
	)
	return sum, runErr
}

func (o *Optimizer) summary(found int) Summary {
	return Summary{
		Found:      found,
		Processed:  int(o.processed.Load()),
		Skipped:    int(o.skipped.Load()),
		Failed:     int(o.failed.Load()),
		BytesSaved: o.saved.Load(),
	}
}

// Process optimises one file. It satisfies worker.Processor.
func (o *Optimizer) Process(ctx context.Context, j model.Job) error {
	var err error
	switch o.settings.Mode {
	case ModeStrip:
		err = o.strip(ctx, j)
	default:
		err = o.quantize(ctx, j)
	}

	switch {
	case err == nil:
		o.processed.Add(1)
		metrics.RecordFileOptimized(resultProcessed)
		o.recordSaving(ctx, j)
	case errors.Is(err, ErrQuantize):
		o.skipped.Add(1)
		metrics.RecordFileOptimized(resultSkipped)
	default:
		o.failed.Add(1)
		metrics.RecordFileOptimized(resultFailed)
	}
	return err
}

// quantize writes the quantised image next to the original, moves it into
// place, then re-compresses the result losslessly.
func (o *Optimizer) quantize(ctx context.Context, j model.Job) error {
	s := o.settings
	tmp := j.Path + "." + j.ID + ".tmp"

	_, err := o.runner.Run(ctx, s.Quantizer,
		"--quality="+s.Quality, "--force", "--skip-if-larger", "--strip",
		"--output", tmp, "--", j.Path)
	if err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %s: %w", ErrQuantize, j.Path, err)
	}
	if err := os.Rename(tmp, j.Path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", j.Path, err)
	}

	if _, err := o.runner.Run(ctx, s.Compressor,
		"-o", strconv.Itoa(s.CompressorLevel), "--strip", "safe", "--quiet", j.Path); err != nil {
		o.logger.Warn(ctx, "recompress failed", logger.String("path", j.Path), logger.Error(err))
		metrics.RecordErrorByComponent("optimizer", "recompress")
	}
	return nil
}

// strip removes metadata, caps the longest side and reduces depth to 8 bits.
func (o *Optimizer) strip(ctx context.Context, j model.Job) error {
	s := o.settings
	dim := strconv.Itoa(s.MaxDimension)
	if _, err := o.runner.Run(ctx, s.Stripper,
		"-strip", "-resize", dim+"x"+dim+">", "-depth", "8", j.Path); err != nil {
		return fmt.Errorf("strip %s: %w", j.Path, err)
	}
	return nil
}

func (o *Optimizer) recordSaving(ctx context.Context, j model.Job) {
	info, err := os.Stat(j.Path)
	if err != nil {
		return
	}
	delta := j.Size - info.Size()
	o.saved.Add(delta)
	metrics.RecordBytesSaved(delta)
	o.logger.Debug(ctx, "file optimized",
		logger.String("path", j.Path),
		logger.Int64("before", j.Size),
		logger.Int64("after", info.Size()),
	)
}
