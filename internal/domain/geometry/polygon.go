package geometry

import (
	"fmt"
	"math"

	"github.com/okian/birdplot/internal/domain/model"
)

// Tolerances for comparing derived coordinates.
const (
	pointEpsilon = 1e-9
	areaEpsilon  = 1e-9
	labelOffset  = 0.1 // fraction of the largest score used to push value labels off the polygon
)

// Point is a Cartesian coordinate in score units.
type Point struct {
	X, Y float64
}

// Near reports whether two points coincide within pointEpsilon.
func (p Point) Near(q Point) bool {
	return math.Abs(p.X-q.X) <= pointEpsilon && math.Abs(p.Y-q.Y) <= pointEpsilon
}

// Polygon is an implicitly closed ring of vertices: the last vertex joins the first.
type Polygon []Point

// Equal reports whether both polygons have the same vertices in the same order.
func (p Polygon) Equal(q Polygon) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if !p[i].Near(q[i]) {
			return false
		}
	}
	return true
}

// BuildPolygon places one vertex per axis at radius = score along the axis
// angle, in table order. A record missing any axis yields ErrIncompleteRecord.
func BuildPolygon(t AxisTable, r model.ScoreRecord) (Polygon, error) {
	poly := make(Polygon, 0, t.Len())
	for _, pos := range t.positions {
		v, ok := r.Score(pos.Axis)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no %s score", model.ErrIncompleteRecord, r.ID(), pos.Axis)
		}
		poly = append(poly, polar(v, pos.Angle))
	}
	return poly, nil
}

// Area is the absolute shoelace area. Rings with fewer than three vertices,
// or whose vertices are collinear, have area 0.
func Area(p Polygon) float64 {
	if len(p) < 3 {
		return 0
	}
	a := math.Abs(signedArea(p))
	if a <= areaEpsilon {
		return 0
	}
	return a
}

// Label is a value annotation next to a polygon vertex.
type Label struct {
	Axis  model.Axis
	Value float64
	At    Point
}

// ValueLabels positions one label per vertex, nudged perpendicular to the
// axis by a tenth of the largest score so the text clears the outline.
func ValueLabels(t AxisTable, r model.ScoreRecord) ([]Label, error) {
	maxScore := 0.0
	for _, a := range model.Axes {
		v, ok := r.Score(a)
		if !ok {
			return nil, fmt.Errorf("%w: %q has no %s score", model.ErrIncompleteRecord, r.ID(), a)
		}
		maxScore = math.Max(maxScore, v)
	}

	off := labelOffset * maxScore
	labels := make([]Label, 0, t.Len())
	for _, pos := range t.positions {
		v, _ := r.Score(pos.Axis)
		at := polar(v, pos.Angle)
		at.X -= math.Sin(pos.Angle) * off
		at.Y += math.Cos(pos.Angle) * off
		labels = append(labels, Label{Axis: pos.Axis, Value: v, At: at})
	}
	return labels, nil
}

func polar(r, theta float64) Point {
	return Point{X: r * math.Cos(theta), Y: r * math.Sin(theta)}
}

// compact drops consecutive duplicate vertices, including a last vertex
// equal to the first. Zero scores collapse vertices onto the origin.
func compact(p Polygon) Polygon {
	out := make(Polygon, 0, len(p))
	for _, pt := range p {
		if len(out) > 0 && out[len(out)-1].Near(pt) {
			continue
		}
		out = append(out, pt)
	}
	for len(out) > 1 && out[len(out)-1].Near(out[0]) {
		out = out[:len(out)-1]
	}
	return out
}
