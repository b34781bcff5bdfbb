package geometry

import (
	"math"

	"github.com/okian/birdplot/internal/domain/model"
)

// Place locates a record on the shared quadrant chart as the vector sum of
// its scores along the axis directions. The √2 factor turns the diagonal
// unit vectors into ±1 components, so
//
//	X = (Dove + Owl) - (Peacock + Eagle)
//	Y = (Peacock + Dove) - (Eagle + Owl)
//
// The result depends on r alone.
func Place(t AxisTable, r model.ScoreRecord) (Point, error) {
	poly, err := BuildPolygon(t, r)
	if err != nil {
		return Point{}, err
	}
	var p Point
	for _, v := range poly {
		p.X += v.X * math.Sqrt2
		p.Y += v.Y * math.Sqrt2
	}
	return p, nil
}

// Compress maps v smoothly into (-limit, limit) with limit·tanh(v/reference).
// A non-positive reference leaves v clamped to the limit instead.
func Compress(v, limit, reference float64) float64 {
	if reference <= 0 {
		return math.Max(-limit, math.Min(limit, v))
	}
	return limit * math.Tanh(v/reference)
}

// CompressPoint applies Compress to both coordinates.
func CompressPoint(p Point, limit, reference float64) Point {
	return Point{
		X: Compress(p.X, limit, reference),
		Y: Compress(p.Y, limit, reference),
	}
}
