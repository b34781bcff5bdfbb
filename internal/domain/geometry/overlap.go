package geometry

import (
	"math"

	"github.com/okian/birdplot/internal/domain/model"
)

const fullOverlap = 100

// Overlap returns the share of the smaller polygon covered by the other one,
// as a percentage in [0, 100]:
//
//	100 * area(A ∩ B) / min(area(A), area(B))
//
// The denominator is always the smaller area, which makes the value
// symmetric: Overlap(a, b) == Overlap(b, a). A polygon with zero area
// overlaps nothing (0%).
func Overlap(t AxisTable, a, b model.ScoreRecord) (float64, error) {
	pa, err := BuildPolygon(t, a)
	if err != nil {
		return 0, err
	}
	pb, err := BuildPolygon(t, b)
	if err != nil {
		return 0, err
	}
	return PolygonOverlap(pa, pb), nil
}

// PolygonOverlap is Overlap for polygons that are already built.
func PolygonOverlap(a, b Polygon) float64 {
	ref := math.Min(Area(a), Area(b))
	if ref == 0 {
		return 0
	}
	if a.Equal(b) {
		return fullOverlap
	}

	var shared float64
	for _, ring := range Intersection(a, b) {
		shared += Area(ring)
	}

	pct := fullOverlap * shared / ref
	return math.Max(0, math.Min(fullOverlap, pct))
}

// Intersection returns the rings of A ∩ B, clipping A against each edge of
// B in turn (Sutherland-Hodgman). B must be convex. Score polygons always
// are: each vertex sits on one of four orthogonal rays and the chord between
// its neighbours passes through the origin. The result has at most one ring.
func Intersection(a, b Polygon) []Polygon {
	subject, clip := compact(a), compact(b)
	if len(subject) < 3 || len(clip) < 3 || Area(clip) == 0 {
		return nil
	}
	if signedArea(clip) < 0 {
		clip = reversed(clip)
	}

	out := subject
	for i := range clip {
		e0, e1 := clip[i], clip[(i+1)%len(clip)]
		if e0.Near(e1) {
			continue
		}
		out = clipEdge(out, e0, e1)
		if len(out) == 0 {
			return nil
		}
	}

	out = compact(out)
	if Area(out) == 0 {
		return nil
	}
	return []Polygon{out}
}

// clipEdge keeps the part of p left of the directed line e0->e1.
func clipEdge(p Polygon, e0, e1 Point) Polygon {
	side := func(q Point) float64 {
		return (e1.X-e0.X)*(q.Y-e0.Y) - (e1.Y-e0.Y)*(q.X-e0.X)
	}

	out := make(Polygon, 0, len(p)+1)
	prev := p[len(p)-1]
	sp := side(prev)
	for _, cur := range p {
		sc := side(cur)
		prevIn, curIn := sp >= -pointEpsilon, sc >= -pointEpsilon
		if curIn != prevIn {
			t := sp / (sp - sc)
			out = append(out, Point{X: prev.X + t*(cur.X-prev.X), Y: prev.Y + t*(cur.Y-prev.Y)})
		}
		if curIn {
			out = append(out, cur)
		}
		prev, sp = cur, sc
	}
	return out
}

func signedArea(p Polygon) float64 {
	var sum float64
	for i := range p {
		j := (i + 1) % len(p)
		sum += p[i].X*p[j].Y - p[j].X*p[i].Y
	}
	return sum / 2
}

func reversed(p Polygon) Polygon {
	out := make(Polygon, len(p))
	for i, pt := range p {
		out[len(p)-1-i] = pt
	}
	return out
}
