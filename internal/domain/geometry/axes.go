// Package geometry builds score polygons and measures their areas and overlaps.
//
// Everything here is pure: functions take an AxisTable and records by value
// and return fresh results, so they are safe to call from any goroutine.
package geometry

import (
	"math"

	"github.com/okian/birdplot/internal/domain/model"
)

// AxisPosition pins an axis to a direction on the chart.
type AxisPosition struct {
	Axis  model.Axis
	Angle float64 // radians, counter-clockwise from +x
}

// AxisTable is the fixed drawing order of the axes. The zero value is not
// usable; obtain one from DefaultAxes.
type AxisTable struct {
	positions [len(model.Axes)]AxisPosition
}

// DefaultAxes returns the table used for every chart: starting at -45° and
// turning counter-clockwise, Owl (bottom right), Dove (top right),
// Peacock (top left), Eagle (bottom left).
func DefaultAxes() AxisTable {
	order := [...]model.Axis{model.Owl, model.Dove, model.Peacock, model.Eagle}
	var t AxisTable
	for i, a := range order {
		t.positions[i] = AxisPosition{
			Axis:  a,
			Angle: -math.Pi/4 + float64(i)*math.Pi/2,
		}
	}
	return t
}

// Positions returns the axes in drawing order.
func (t AxisTable) Positions() []AxisPosition {
	out := make([]AxisPosition, len(t.positions))
	copy(out, t.positions[:])
	return out
}

// Angle returns the direction assigned to an axis.
func (t AxisTable) Angle(axis model.Axis) (float64, bool) {
	for _, p := range t.positions {
		if p.Axis == axis {
			return p.Angle, true
		}
	}
	return 0, false
}

// Len is the number of axes in the table.
func (t AxisTable) Len() int { return len(t.positions) }
