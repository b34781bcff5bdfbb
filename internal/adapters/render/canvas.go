package render

import (
	"math"

	"github.com/golang/freetype/truetype"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/birdplot/internal/domain/geometry"
)

// Layout in pixels around the square plot area.
const (
	minCanvas    = 200
	marginTop    = 80
	marginBottom = 50
	marginSide   = 40
)

// Font sizes in points.
const (
	fontTitle   = 16
	fontCaption = 13
	fontLabel   = 11
	fontValue   = 10
)

// canvas wraps a go-chart renderer with a mapping from score units to pixels.
// The plot area is the square [-max, max] x [-max, max] centred horizontally.
type canvas struct {
	r    chart.Renderer
	font *truetype.Font

	width, height int
	plot          chart.Box
	cx, cy        int
	scale         float64 // pixels per score unit
	max           float64
}

func newCanvas(r chart.Renderer, font *truetype.Font, width, height int, maxValue float64) *canvas {
	side := min(width-2*marginSide, height-marginTop-marginBottom)
	left := (width - side) / 2
	plot := chart.Box{Top: marginTop, Left: left, Right: left + side, Bottom: marginTop + side}
	cx, cy := plot.Center()

	r.SetFont(font)
	return &canvas{
		r:      r,
		font:   font,
		width:  width,
		height: height,
		plot:   plot,
		cx:     cx,
		cy:     cy,
		scale:  float64(side) / (2 * maxValue),
		max:    maxValue,
	}
}

// px maps a point in score units to pixel coordinates. Screen y grows down.
func (c *canvas) px(p geometry.Point) (int, int) {
	return c.cx + int(math.Round(p.X*c.scale)), c.cy - int(math.Round(p.Y*c.scale))
}

func (c *canvas) background(col drawing.Color) {
	c.fillRect(chart.Box{Top: 0, Left: 0, Right: c.width, Bottom: c.height}, col)
}

func (c *canvas) fillRect(b chart.Box, col drawing.Color) {
	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(b.Left, b.Top)
	c.r.LineTo(b.Right, b.Top)
	c.r.LineTo(b.Right, b.Bottom)
	c.r.LineTo(b.Left, b.Bottom)
	c.r.Close()
	c.r.Fill()
}

// line strokes a segment between two points in score units.
func (c *canvas) line(a, b geometry.Point, col drawing.Color, width float64, dash []float64) {
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width)
	c.r.SetStrokeDashArray(dash)
	x0, y0 := c.px(a)
	x1, y1 := c.px(b)
	c.r.MoveTo(x0, y0)
	c.r.LineTo(x1, y1)
	c.r.Stroke()
}

// circle strokes a circle of radius r score units around the origin.
func (c *canvas) circle(r float64, col drawing.Color, width float64, dash []float64) {
	rad := r * c.scale
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(width)
	c.r.SetStrokeDashArray(dash)
	c.r.MoveTo(c.cx+int(math.Round(rad)), c.cy)
	c.r.ArcTo(c.cx, c.cy, rad, rad, 0, 2*math.Pi)
	c.r.Stroke()
}

// polygon fills and outlines a closed ring given in score units.
func (c *canvas) polygon(p geometry.Polygon, fill, stroke drawing.Color) {
	if len(p) == 0 {
		return
	}
	c.r.ResetStyle()
	c.r.SetFillColor(fill)
	c.r.SetStrokeColor(stroke)
	c.r.SetStrokeWidth(2)
	x, y := c.px(p[0])
	c.r.MoveTo(x, y)
	for _, pt := range p[1:] {
		x, y = c.px(pt)
		c.r.LineTo(x, y)
	}
	c.r.Close()
	c.r.FillStroke()
}

// marker draws a small x centred on p.
func (c *canvas) marker(p geometry.Point, col drawing.Color) {
	const arm = 4
	x, y := c.px(p)
	c.r.ResetStyle()
	c.r.SetStrokeColor(col)
	c.r.SetStrokeWidth(1.5)
	c.r.MoveTo(x-arm, y-arm)
	c.r.LineTo(x+arm, y+arm)
	c.r.Stroke()
	c.r.MoveTo(x-arm, y+arm)
	c.r.LineTo(x+arm, y-arm)
	c.r.Stroke()
}

// roundedBox fills a rounded rectangle centred on (x, y) in pixels.
func (c *canvas) roundedBox(x, y, w, h, radius int, col drawing.Color) {
	l, t, r, b := x-w/2, y-h/2, x+w/2, y+h/2
	c.r.ResetStyle()
	c.r.SetFillColor(col)
	c.r.SetStrokeWidth(0)
	c.r.MoveTo(l+radius, t)
	c.r.LineTo(r-radius, t)
	c.r.QuadCurveTo(r, t, r, t+radius)
	c.r.LineTo(r, b-radius)
	c.r.QuadCurveTo(r, b, r-radius, b)
	c.r.LineTo(l+radius, b)
	c.r.QuadCurveTo(l, b, l, b-radius)
	c.r.LineTo(l, t+radius)
	c.r.QuadCurveTo(l, t, l+radius, t)
	c.r.Close()
	c.r.Fill()
}

// measure returns the pixel size of text at the given size.
func (c *canvas) measure(text string, size float64) (int, int) {
	c.r.ResetStyle()
	c.r.SetFontSize(size)
	b := c.r.MeasureText(text)
	return b.Width(), b.Height()
}

// textCentered draws text centred on the pixel (x, y).
func (c *canvas) textCentered(text string, x, y int, size float64, col drawing.Color) {
	w, h := c.measure(text, size)
	c.r.SetFontColor(col)
	c.r.Text(text, x-w/2, y+h/2)
}

// textAt centres text on a point in score units.
func (c *canvas) textAt(text string, p geometry.Point, size float64, col drawing.Color) {
	x, y := c.px(p)
	c.textCentered(text, x, y, size, col)
}

// textVertical draws text centred on (x, y) reading bottom-to-top when up is
// true and top-to-bottom otherwise.
func (c *canvas) textVertical(text string, x, y int, size float64, col drawing.Color, up bool) {
	w, h := c.measure(text, size)
	c.r.SetFontColor(col)
	if up {
		c.r.SetTextRotation(-math.Pi / 2)
		c.r.Text(text, x+h/2, y+w/2)
	} else {
		c.r.SetTextRotation(math.Pi / 2)
		c.r.Text(text, x-h/2, y-w/2)
	}
	c.r.ClearTextRotation()
}

// title draws the chart heading above the plot area.
func (c *canvas) title(text string) {
	c.textCentered(text, c.width/2, marginTop/3, fontTitle, colorText)
}

// caption draws a smaller line under the title.
func (c *canvas) caption(text string) {
	c.textCentered(text, c.width/2, marginTop*2/3, fontCaption, colorText)
}
