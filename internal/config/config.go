// Package config defines birdplot configuration and how it is layered:
// defaults, then an optional YAML file, then BIRDPLOT_ environment variables.
package config

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/birdplot/internal/adapters/render"
	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/internal/optimizer"
	"github.com/okian/birdplot/pkg/logger"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Data is the score CSV read by chart and overlap.
	Data string `koanf:"data"`

	// GraphType is radar or scatter.
	GraphType string `koanf:"graph_type"`

	// OutputDir receives the chart files.
	OutputDir string `koanf:"output_dir"`

	// Workers bounds concurrent renders and optimiser jobs.
	Workers int `koanf:"workers"`

	// MetricsTextfile, when set, receives the run's metrics in
	// node-exporter textfile format.
	MetricsTextfile string `koanf:"metrics_textfile"`

	Chart     Chart     `koanf:"chart"`
	Optimizer Optimizer `koanf:"optimizer"`
}

// Chart holds the chart look.
type Chart struct {
	Width              int     `koanf:"width"`
	Height             int     `koanf:"height"`
	MaxValue           float64 `koanf:"max_value"`
	GridStep           float64 `koanf:"grid_step"`
	PlacementReference float64 `koanf:"placement_reference"`
	BirdsDir           string  `koanf:"birds_dir"`
	BirdSize           int     `koanf:"bird_size"`
	Alpha              float64 `koanf:"alpha"`
	Colors             Colors  `koanf:"colors"`
}

// Colors are hex colours per bird.
type Colors struct {
	Dove    string `koanf:"dove"`
	Eagle   string `koanf:"eagle"`
	Owl     string `koanf:"owl"`
	Peacock string `koanf:"peacock"`
}

// Optimizer configures the PNG optimiser.
type Optimizer struct {
	Mode            string `koanf:"mode"`
	Extension       string `koanf:"extension"`
	Quantizer       string `koanf:"quantizer"`
	Quality         string `koanf:"quality"`
	Compressor      string `koanf:"compressor"`
	CompressorLevel int    `koanf:"compressor_level"`
	Stripper        string `koanf:"stripper"`
	MaxDimension    int    `koanf:"max_dimension"`
	QueueSize       int    `koanf:"queue_size"`
}

// New returns a Config holding the defaults.
func New(_ context.Context) *Config {
	rs := render.DefaultSettings()
	opt := optimizer.DefaultSettings()
	return &Config{
		LogLevel:  "info",
		Data:      "data.csv",
		GraphType: "scatter",
		OutputDir: ".",
		Workers:   runtime.NumCPU(),
		Chart: Chart{
			Width:              rs.Width,
			Height:             rs.Height,
			MaxValue:           rs.MaxValue,
			GridStep:           rs.GridStep,
			PlacementReference: rs.PlacementReference,
			BirdsDir:           rs.BirdsDir,
			BirdSize:           rs.BirdSize,
			Alpha:              rs.Alpha,
			Colors: Colors{
				Dove:    rs.Colors[model.Dove],
				Eagle:   rs.Colors[model.Eagle],
				Owl:     rs.Colors[model.Owl],
				Peacock: rs.Colors[model.Peacock],
			},
		},
		Optimizer: Optimizer{
			Mode:            string(opt.Mode),
			Extension:       opt.Extension,
			Quantizer:       opt.Quantizer,
			Quality:         opt.Quality,
			Compressor:      opt.Compressor,
			CompressorLevel: opt.CompressorLevel,
			Stripper:        opt.Stripper,
			MaxDimension:    opt.MaxDimension,
			QueueSize:       opt.QueueSize,
		},
	}
}

// RenderSettings maps the chart section onto renderer settings.
func (c *Config) RenderSettings() render.Settings {
	ch := c.Chart
	return render.Settings{
		Width:              ch.Width,
		Height:             ch.Height,
		MaxValue:           ch.MaxValue,
		GridStep:           ch.GridStep,
		PlacementReference: ch.PlacementReference,
		BirdsDir:           ch.BirdsDir,
		BirdSize:           ch.BirdSize,
		Alpha:              ch.Alpha,
		Colors: map[model.Axis]string{
			model.Dove:    ch.Colors.Dove,
			model.Eagle:   ch.Colors.Eagle,
			model.Owl:     ch.Colors.Owl,
			model.Peacock: ch.Colors.Peacock,
		},
	}
}

// OptimizerSettings maps the optimizer section onto optimiser settings.
func (c *Config) OptimizerSettings() optimizer.Settings {
	o := c.Optimizer
	return optimizer.Settings{
		Mode:            optimizer.Mode(strings.ToLower(strings.TrimSpace(o.Mode))),
		Extension:       o.Extension,
		Quantizer:       o.Quantizer,
		Quality:         o.Quality,
		Compressor:      o.Compressor,
		CompressorLevel: o.CompressorLevel,
		Stripper:        o.Stripper,
		MaxDimension:    o.MaxDimension,
		Workers:         c.Workers,
		QueueSize:       o.QueueSize,
	}
}

// Validate checks every section.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: log_level: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(strings.TrimSpace(c.GraphType)) {
	case "radar", "scatter":
	default:
		return fmt.Errorf("%w: graph_type %q (want radar or scatter)", ErrInvalidConfig, c.GraphType)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if err := c.RenderSettings().Validate(); err != nil {
		return fmt.Errorf("%w: chart: %w", ErrInvalidConfig, err)
	}
	opt := c.OptimizerSettings()
	if err := opt.Validate(); err != nil {
		return fmt.Errorf("%w: optimizer: %w", ErrInvalidConfig, err)
	}
	return nil
}
