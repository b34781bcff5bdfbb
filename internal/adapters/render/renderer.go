// Package render draws radar, comparison and quadrant charts as PNG images.
//
// Vector work goes through go-chart's raster renderer; bird images and the
// generation date are composited on the resulting bitmap afterwards.
package render

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"time"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/draw"

	"github.com/okian/birdplot/internal/domain/geometry"
	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/pkg/logger"
)

// Renderer draws charts. It is safe for concurrent use: every call builds
// its own canvas and only reads the shared settings, font and images.
type Renderer struct {
	settings Settings
	axes     geometry.AxisTable
	palette  palette
	font     *truetype.Font
	birds    map[model.Axis]image.Image
	log      logger.Logger
	now      func() time.Time
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(rd *Renderer) {
		if l != nil {
			rd.log = l
		}
	}
}

// WithAxes overrides the axis table.
func WithAxes(t geometry.AxisTable) Option {
	return func(rd *Renderer) {
		if t.Len() > 0 {
			rd.axes = t
		}
	}
}

// WithClock sets the time source for the date stamp.
func WithClock(now func() time.Time) Option {
	return func(rd *Renderer) {
		if now != nil {
			rd.now = now
		}
	}
}

// New validates settings, loads the font and any bird images.
func New(ctx context.Context, s Settings, opts ...Option) (*Renderer, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	f, err := chart.GetDefaultFont()
	if err != nil {
		return nil, fmt.Errorf("load font: %w", err)
	}

	rd := &Renderer{
		settings: s,
		axes:     geometry.DefaultAxes(),
		palette:  newPalette(s),
		font:     f,
		log:      logger.Discard(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(rd)
	}
	rd.birds = loadBirds(ctx, rd.log, s.BirdsDir)
	return rd, nil
}

// Radar draws a single record's score polygon.
func (rd *Renderer) Radar(w io.Writer, r model.ScoreRecord) error {
	poly, err := geometry.BuildPolygon(rd.axes, r)
	if err != nil {
		return err
	}
	labels, err := geometry.ValueLabels(rd.axes, r)
	if err != nil {
		return err
	}

	return rd.draw(w, func(c *canvas) {
		rd.quadrants(c)
		rd.radarGrid(c)
		c.polygon(poly, colorPrimary.WithAlpha(shapeFillAlpha), colorPrimary)
		for _, p := range poly {
			c.marker(p, colorMarker)
		}
		for _, l := range labels {
			c.textAt(formatScore(l.Value), l.At, fontValue, colorText)
		}
		c.title(r.Title())
	})
}

// Comparison draws two records on one radar and captions their overlap.
func (rd *Renderer) Comparison(w io.Writer, a, b model.ScoreRecord, overlap float64) error {
	pa, err := geometry.BuildPolygon(rd.axes, a)
	if err != nil {
		return err
	}
	pb, err := geometry.BuildPolygon(rd.axes, b)
	if err != nil {
		return err
	}

	return rd.draw(w, func(c *canvas) {
		rd.quadrants(c)
		rd.radarGrid(c)
		c.polygon(pa, colorPrimary.WithAlpha(shapeFillAlpha), colorPrimary)
		c.polygon(pb, colorSecondary.WithAlpha(shapeFillAlpha), colorSecondary)
		for _, p := range pa {
			c.marker(p, colorPrimary)
		}
		for _, p := range pb {
			c.marker(p, colorSecondary)
		}
		rd.legend(c, []legendEntry{
			{title: a.Title(), color: colorPrimary},
			{title: b.Title(), color: colorSecondary},
		})
		c.title(a.ID() + " vs " + b.ID())
		c.caption(FormatOverlap(overlap))
	})
}

// Scatter places every complete record on the quadrant chart. Incomplete
// records are left out and reported in the returned slice.
func (rd *Renderer) Scatter(w io.Writer, records []model.ScoreRecord) ([]model.ScoreRecord, error) {
	type placed struct {
		label string
		at    geometry.Point
	}
	var (
		points  []placed
		skipped []model.ScoreRecord
	)
	limit := rd.settings.MaxValue
	for _, r := range records {
		p, err := geometry.Place(rd.axes, r)
		if err != nil {
			skipped = append(skipped, r)
			continue
		}
		points = append(points, placed{
			label: r.Title(),
			at:    geometry.CompressPoint(p, limit, rd.settings.PlacementReference),
		})
	}

	err := rd.draw(w, func(c *canvas) {
		rd.quadrants(c)
		c.line(geometry.Point{X: -c.max}, geometry.Point{X: c.max}, colorGrid, 1, dashLong)
		c.line(geometry.Point{Y: -c.max}, geometry.Point{Y: c.max}, colorGrid, 1, dashLong)
		rd.quadrantTitles(c)
		rd.axisLabels(c)
		for _, p := range points {
			rd.nameBox(c, p.label, p.at)
		}
		c.title("Personality Distribution (Bird Parameters)")
	})
	return skipped, err
}

// FormatOverlap renders a percentage the way charts and reports show it.
func FormatOverlap(pct float64) string {
	return fmt.Sprintf("Overlap: %.0f%%", pct)
}

func formatScore(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%.1f", v)
}

// draw runs paint on a fresh canvas, composites the overlays and writes PNG.
func (rd *Renderer) draw(w io.Writer, paint func(c *canvas)) error {
	s := rd.settings
	cr, err := chart.PNG(s.Width, s.Height)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	c := newCanvas(cr, rd.font, s.Width, s.Height, s.MaxValue)
	c.background(drawing.ColorWhite)
	paint(c)

	var iw chart.ImageWriter
	if err := cr.Save(&iw); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	img, err := iw.Image()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	dst, ok := img.(draw.Image)
	if !ok {
		rgba := image.NewRGBA(img.Bounds())
		draw.Draw(rgba, rgba.Bounds(), img, img.Bounds().Min, draw.Src)
		dst = rgba
	}

	drawBirds(dst, c, rd.birds, s.BirdSize)
	stampDate(dst, rd.now())

	if err := png.Encode(w, dst); err != nil {
		return fmt.Errorf("%w: %w", ErrEncode, err)
	}
	return nil
}
