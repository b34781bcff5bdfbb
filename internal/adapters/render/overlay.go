package render

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/okian/birdplot/internal/domain/geometry"
	"github.com/okian/birdplot/internal/domain/model"
	"github.com/okian/birdplot/pkg/logger"
)

// Corner of the plot area each bird image sits on, in units of MaxValue.
var birdCorners = map[model.Axis]geometry.Point{
	model.Peacock: {X: -1, Y: 1},
	model.Eagle:   {X: -1, Y: -1},
	model.Dove:    {X: 1, Y: 1},
	model.Owl:     {X: 1, Y: -1},
}

// loadBirds reads <dir>/<bird>.png for every axis. Unreadable or missing
// images are logged and left out; charts are drawn without them.
func loadBirds(ctx context.Context, log logger.Logger, dir string) map[model.Axis]image.Image {
	birds := make(map[model.Axis]image.Image, len(model.Axes))
	if dir == "" {
		return birds
	}
	for _, a := range model.Axes {
		path := filepath.Join(dir, strings.ToLower(a.String())+".png")
		img, err := decodePNG(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Warn(ctx, "bird image not found", logger.String("path", path))
		case err != nil:
			log.Warn(ctx, "bird image unreadable", logger.String("path", path), logger.Error(err))
		default:
			birds[a] = img
		}
	}
	return birds
}

func decodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	return png.Decode(f)
}

// drawBirds scales each image to fit a size x size box centred on its corner.
func drawBirds(dst draw.Image, c *canvas, birds map[model.Axis]image.Image, size int) {
	if size <= 0 {
		return
	}
	for _, a := range model.Axes {
		img, ok := birds[a]
		if !ok {
			continue
		}
		corner := birdCorners[a]
		x, y := c.px(geometry.Point{X: corner.X * c.max, Y: corner.Y * c.max})

		sb := img.Bounds()
		w, h := size, size
		if sb.Dx() > sb.Dy() {
			h = size * sb.Dy() / sb.Dx()
		} else if sb.Dy() > sb.Dx() {
			w = size * sb.Dx() / sb.Dy()
		}
		rect := image.Rect(x-w/2, y-h/2, x-w/2+w, y-h/2+h)
		draw.CatmullRom.Scale(dst, rect, img, sb, draw.Over, nil)
	}
}

// stampDate writes "Generated: YYYY-MM-DD" at the bottom right.
func stampDate(dst draw.Image, now time.Time) {
	text := "Generated: " + now.Format(time.DateOnly)
	b := dst.Bounds()
	d := &font.Drawer{Dst: dst, Src: image.NewUniform(color.RGBA{R: 60, G: 60, B: 60, A: 255}), Face: basicfont.Face7x13}
	tw := d.MeasureString(text).Ceil()
	d.Dot = fixed.Point26_6{X: fixed.I(b.Max.X - tw - 10), Y: fixed.I(b.Max.Y - 10)}
	d.DrawString(text)
}
