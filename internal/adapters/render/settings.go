package render

import (
	"fmt"
	"math"
	"strings"

	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/okian/birdplot/internal/domain/model"
)

// Default chart settings.
const (
	DefaultWidth              = 1000
	DefaultHeight             = 1000
	DefaultMaxValue           = 25.0
	DefaultGridStep           = 5.0
	DefaultPlacementReference = 20.0
	DefaultBirdSize           = 90
	DefaultAlpha              = 0.2
)

// Settings controls the look of every chart.
type Settings struct {
	Width, Height int

	// MaxValue is the half-width of the plotted square in score units.
	MaxValue float64
	// GridStep is the radius step between radar grid circles.
	GridStep float64
	// PlacementReference is the tanh scale used to fit scatter placements.
	PlacementReference float64

	// BirdsDir holds dove.png, eagle.png, owl.png and peacock.png.
	// Empty disables the corner images.
	BirdsDir string
	BirdSize int

	// Alpha is the opacity of the quadrant tints, in [0, 1].
	Alpha float64
	// Colors maps each bird to its quadrant tint as #rgb or #rrggbb.
	Colors map[model.Axis]string
}

// DefaultSettings returns settings that produce the standard chart layout.
func DefaultSettings() Settings {
	return Settings{
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		MaxValue:           DefaultMaxValue,
		GridStep:           DefaultGridStep,
		PlacementReference: DefaultPlacementReference,
		BirdsDir:           "birds",
		BirdSize:           DefaultBirdSize,
		Alpha:              DefaultAlpha,
		Colors: map[model.Axis]string{
			model.Dove:    "#2e8b57",
			model.Eagle:   "#d62728",
			model.Owl:     "#1f77b4",
			model.Peacock: "#ffbf00",
		},
	}
}

// Validate reports the first problem with s.
func (s Settings) Validate() error {
	switch {
	case s.Width < minCanvas || s.Height < minCanvas:
		return fmt.Errorf("%w: canvas %dx%d is smaller than %dx%d", ErrInvalidSettings, s.Width, s.Height, minCanvas, minCanvas)
	case !(s.MaxValue > 0) || math.IsInf(s.MaxValue, 0):
		return fmt.Errorf("%w: max_value must be positive", ErrInvalidSettings)
	case !(s.GridStep > 0):
		return fmt.Errorf("%w: grid_step must be positive", ErrInvalidSettings)
	case s.PlacementReference < 0:
		return fmt.Errorf("%w: placement_reference must not be negative", ErrInvalidSettings)
	case s.Alpha < 0 || s.Alpha > 1:
		return fmt.Errorf("%w: alpha %v outside [0, 1]", ErrInvalidSettings, s.Alpha)
	case s.BirdSize < 0:
		return fmt.Errorf("%w: bird_size must not be negative", ErrInvalidSettings)
	}
	for _, a := range model.Axes {
		if _, err := ParseHexColor(s.Colors[a]); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidSettings, a, err)
		}
	}
	return nil
}

// ParseHexColor parses #rgb or #rrggbb (the # is optional).
func ParseHexColor(s string) (drawing.Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 3 && len(hex) != 6 {
		return drawing.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	for _, c := range hex {
		if !strings.ContainsRune("0123456789abcdefABCDEF", c) {
			return drawing.Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
		}
	}
	return drawing.ColorFromHex(hex), nil
}

// palette is the resolved colour set for one Renderer.
type palette struct {
	quadrant map[model.Axis]drawing.Color
}

func newPalette(s Settings) palette {
	p := palette{quadrant: make(map[model.Axis]drawing.Color, len(model.Axes))}
	alpha := uint8(math.Round(s.Alpha * 255))
	for _, a := range model.Axes {
		c, _ := ParseHexColor(s.Colors[a])
		p.quadrant[a] = c.WithAlpha(alpha)
	}
	return p
}

// Fixed colours and strokes.
var (
	colorGrid      = drawing.Color{R: 128, G: 128, B: 128, A: 255}
	colorAxis      = drawing.ColorBlack
	colorCircle    = drawing.ColorBlack.WithAlpha(51)
	colorMarker    = drawing.ColorBlack
	colorText      = drawing.Color{R: 34, G: 34, B: 34, A: 255}
	colorNameBox   = drawing.Color{R: 173, G: 216, B: 230, A: 204}
	colorPrimary   = drawing.Color{R: 31, G: 119, B: 180, A: 255}
	colorSecondary = drawing.Color{R: 255, G: 127, B: 14, A: 255}

	shapeFillAlpha = uint8(110)
	dashLong       = []float64{6, 4}
	dashShort      = []float64{3, 3}
)
