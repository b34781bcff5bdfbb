package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/birdplot/internal/config"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BIRDPLOT_GRAPH_TYPE", "radar")
			_ = os.Setenv("BIRDPLOT_WORKERS", "3")
			_ = os.Setenv("BIRDPLOT_CHART__MAX_VALUE", "30")
			_ = os.Setenv("BIRDPLOT_CHART__COLORS__OWL", "#123456")
			_ = os.Setenv("BIRDPLOT_OPTIMIZER__QUEUE_SIZE", "8")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.GraphType, convey.ShouldEqual, "radar")
				convey.So(cfg.Workers, convey.ShouldEqual, 3)
				convey.So(cfg.Chart.MaxValue, convey.ShouldEqual, 30.0)
				convey.So(cfg.Chart.Colors.Owl, convey.ShouldEqual, "#123456")
				convey.So(cfg.Optimizer.QueueSize, convey.ShouldEqual, 8)
			})

			convey.Convey("Then untouched nested keys keep their defaults", func() {
				convey.So(cfg.Chart.GridStep, convey.ShouldEqual, 5.0)
				convey.So(cfg.Chart.Colors.Dove, convey.ShouldEqual, "#2e8b57")
			})
		})

		convey.Convey("When loading config with YAML file named by the environment", func() {
			yamlContent := `
data: scores.csv
output_dir: charts
chart:
  width: 800
  height: 600
  birds_dir: assets/birds
optimizer:
  mode: strip
  max_dimension: 512
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIRDPLOT_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Data, convey.ShouldEqual, "scores.csv")
				convey.So(cfg.OutputDir, convey.ShouldEqual, "charts")
				convey.So(cfg.Chart.Width, convey.ShouldEqual, 800)
				convey.So(cfg.Chart.Height, convey.ShouldEqual, 600)
				convey.So(cfg.Chart.BirdsDir, convey.ShouldEqual, "assets/birds")
				convey.So(cfg.Optimizer.Mode, convey.ShouldEqual, "strip")
				convey.So(cfg.Optimizer.MaxDimension, convey.ShouldEqual, 512)
			})

			convey.Convey("Then missing fields keep their defaults", func() {
				convey.So(cfg.GraphType, convey.ShouldEqual, "scatter")
				convey.So(cfg.Chart.MaxValue, convey.ShouldEqual, 25.0)
			})
		})

		convey.Convey("When an explicit path and the environment both name a file", func() {
			fromEnv := createTempConfigFile("data: env.csv\n")
			fromFlag := createTempConfigFile("data: flag.csv\n")
			defer func() { _ = os.Remove(fromEnv); _ = os.Remove(fromFlag) }()

			_ = os.Setenv("BIRDPLOT_CONFIG", fromEnv)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, fromFlag)

			convey.Convey("Then the explicit path wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Data, convey.ShouldEqual, "flag.csv")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile("graph_type: radar\nworkers: 2\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BIRDPLOT_WORKERS", "6")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.GraphType, convey.ShouldEqual, "radar") // From file
				convey.So(cfg.Workers, convey.ShouldEqual, 6)         // Overridden by env
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			clearConfigEnvVars()

			cfg, err := config.Load(ctx, tmpFile)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx, "/non/existent/file.yaml")

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When a value fails validation", func() {
			_ = os.Setenv("BIRDPLOT_CHART__ALPHA", "2")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx, "")

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	envVars := []string{
		"BIRDPLOT_CONFIG",
		"BIRDPLOT_GRAPH_TYPE",
		"BIRDPLOT_WORKERS",
		"BIRDPLOT_CHART__MAX_VALUE",
		"BIRDPLOT_CHART__COLORS__OWL",
		"BIRDPLOT_CHART__ALPHA",
		"BIRDPLOT_OPTIMIZER__QUEUE_SIZE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "birdplot-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
