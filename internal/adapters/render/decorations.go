package render

import (
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/birdplot/internal/domain/geometry"
	"github.com/okian/birdplot/internal/domain/model"
)

// Quadrant names on the scatter chart, keyed by the bird owning the corner.
var quadrantNames = map[model.Axis]string{
	model.Dove:    "Supportive & Caring",
	model.Peacock: "Talkative & Dramatic",
	model.Eagle:   "Controlling & Forceful",
	model.Owl:     "Analytical & Logical",
}

// Behaviour described by each side of the scatter chart.
const (
	labelTop    = "Warm & Friendly, People-oriented"
	labelBottom = "Cold & Aloof, Task-oriented"
	labelLeft   = "Confident, Assertive, Bold"
	labelRight  = "Shy, Non-assertive, Retiring"
)

const sideLabelGap = 16

// quadrants tints the four quarters of the plot area with the bird colours.
func (rd *Renderer) quadrants(c *canvas) {
	p := c.plot
	tint := rd.palette.quadrant
	c.fillRect(chart.Box{Top: p.Top, Left: c.cx, Right: p.Right, Bottom: c.cy}, tint[model.Dove])
	c.fillRect(chart.Box{Top: p.Top, Left: p.Left, Right: c.cx, Bottom: c.cy}, tint[model.Peacock])
	c.fillRect(chart.Box{Top: c.cy, Left: p.Left, Right: c.cx, Bottom: p.Bottom}, tint[model.Eagle])
	c.fillRect(chart.Box{Top: c.cy, Left: c.cx, Right: p.Right, Bottom: p.Bottom}, tint[model.Owl])
}

// radarGrid draws the diagonals, the axis cross and the dashed score circles.
func (rd *Renderer) radarGrid(c *canvas) {
	m := c.max
	c.line(geometry.Point{X: -m, Y: -m}, geometry.Point{X: m, Y: m}, colorGrid, 1, nil)
	c.line(geometry.Point{X: -m, Y: m}, geometry.Point{X: m, Y: -m}, colorGrid, 1, nil)
	c.line(geometry.Point{X: -m}, geometry.Point{X: m}, colorAxis, 1, nil)
	c.line(geometry.Point{Y: -m}, geometry.Point{Y: m}, colorAxis, 1, nil)

	step := rd.settings.GridStep
	for r := step; r <= m+1e-9; r += step {
		c.circle(r, colorCircle, 1, dashShort)
	}
}

func (rd *Renderer) quadrantTitles(c *canvas) {
	m := c.max
	spots := map[model.Axis]geometry.Point{
		model.Dove:    {X: m / 2, Y: m * 0.96},
		model.Peacock: {X: -m / 2, Y: m * 0.96},
		model.Eagle:   {X: -m / 2, Y: -m * 0.96},
		model.Owl:     {X: m / 2, Y: -m * 0.96},
	}
	for _, a := range model.Axes {
		c.textAt(quadrantNames[a], spots[a], fontLabel, colorText)
	}
}

func (rd *Renderer) axisLabels(c *canvas) {
	p := c.plot
	c.textCentered(labelTop, c.cx, p.Top-sideLabelGap, fontLabel, colorText)
	c.textCentered(labelBottom, c.cx, p.Bottom+sideLabelGap, fontLabel, colorText)
	c.textVertical(labelLeft, p.Left-sideLabelGap, c.cy, fontLabel, colorText, true)
	c.textVertical(labelRight, p.Right+sideLabelGap, c.cy, fontLabel, colorText, false)
}

// nameBox draws a record label in a rounded box centred on at.
func (rd *Renderer) nameBox(c *canvas, label string, at geometry.Point) {
	w, h := c.measure(label, fontLabel)
	x, y := c.px(at)
	c.roundedBox(x, y, w+16, h+10, 6, colorNameBox)
	c.textCentered(label, x, y, fontLabel, drawing.ColorBlack)
}

type legendEntry struct {
	title string
	color drawing.Color
}

// legend lists entries in the top-left corner of the plot area.
func (rd *Renderer) legend(c *canvas, entries []legendEntry) {
	const (
		swatch = 12
		row    = 20
		pad    = 12
	)
	// Keep clear of the corner image.
	top := c.plot.Top + pad
	if len(rd.birds) > 0 {
		top += rd.settings.BirdSize / 2
	}
	for i, e := range entries {
		y := top + i*row
		x := c.plot.Left + pad
		c.fillRect(chart.Box{Top: y, Left: x, Right: x + swatch, Bottom: y + swatch}, e.color)
		_, h := c.measure(e.title, fontLabel)
		c.r.SetFontColor(colorText)
		c.r.Text(e.title, x+swatch+6, y+swatch/2+h/2)
	}
}
