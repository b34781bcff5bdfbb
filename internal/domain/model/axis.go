package model

import (
	"strconv"
	"strings"
)

// Axis is one of the four fixed personality dimensions.
type Axis int

// The four birds. The numeric values carry no ordering meaning; the
// drawing order lives in geometry.AxisTable.
const (
	Dove Axis = iota
	Eagle
	Owl
	Peacock
)

// Axes lists every axis in declaration order.
var Axes = [...]Axis{Dove, Eagle, Owl, Peacock}

var axisNames = [...]string{
	Dove:    "Dove",
	Eagle:   "Eagle",
	Owl:     "Owl",
	Peacock: "Peacock",
}

// String returns the column name used for the axis.
func (a Axis) String() string {
	if a < 0 || int(a) >= len(axisNames) {
		return "Axis(" + strconv.Itoa(int(a)) + ")"
	}
	return axisNames[a]
}

// ParseAxis resolves a column header to an axis, ignoring case and surrounding space.
func ParseAxis(name string) (Axis, bool) {
	name = strings.TrimSpace(name)
	for _, a := range Axes {
		if strings.EqualFold(axisNames[a], name) {
			return a, true
		}
	}
	return 0, false
}
