package gcode

import (
	"fmt"
	"math"
)

const (
	mmPerInch = 25.4
)

type Units byte

const (
	MM   Units = iota // G21
	Inch              // G20
)

func (u Units) String() string {
	if u == Inch {
		return "inch"
	}
	return "mm"
}

// Code returns the gcode which selects the units.
func (u Units) Code() Code {
	if u == Inch {
		return G20
	}
	return G21
}

// ScaleUnits returns the factor which converts a length in from units to to units.
func ScaleUnits(from, to Units) float64 {
	if from == to {
		return 1.0
	} else if from == MM {
		return 1.0 / mmPerInch
	}
	return mmPerInch
}

// Position is a point in machine space. An axis which has not been specified is NaN. The
// linear axes, X, Y, and Z, are in Units; the rotary axes, A, B, and C, are in degrees.
type Position struct {
	X, Y, Z float64
	A, B, C float64
	Units   Units
}

// NewPosition returns a position with the rotary axes unspecified.
func NewPosition(x, y, z float64, units Units) Position {
	return Position{
		X:     x,
		Y:     y,
		Z:     z,
		A:     math.NaN(),
		B:     math.NaN(),
		C:     math.NaN(),
		Units: units,
	}
}

// UnknownPosition returns a position with every axis unspecified.
func UnknownPosition(units Units) Position {
	return NewPosition(math.NaN(), math.NaN(), math.NaN(), units)
}

func (pos Position) String() string {
	return fmt.Sprintf("{x: %g, y: %g, z: %g, a: %g, b: %g, c: %g, %s}", pos.X, pos.Y, pos.Z,
		pos.A, pos.B, pos.C, pos.Units)
}

// In returns pos converted to units. The rotary axes are not scaled.
func (pos Position) In(units Units) Position {
	if pos.Units == units {
		return pos
	}
	scale := ScaleUnits(pos.Units, units)
	pos.X *= scale
	pos.Y *= scale
	pos.Z *= scale
	pos.Units = units
	return pos
}

// Distance returns the length of the straight line from pos to other in the units of pos.
func (pos Position) Distance(other Position) float64 {
	other = other.In(pos.Units)
	dx := other.X - pos.X
	dy := other.Y - pos.Y
	dz := other.Z - pos.Z
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

func (pos Position) Add(other Position) Position {
	other = other.In(pos.Units)
	return Position{
		X:     pos.X + other.X,
		Y:     pos.Y + other.Y,
		Z:     pos.Z + other.Z,
		A:     pos.A + other.A,
		B:     pos.B + other.B,
		C:     pos.C + other.C,
		Units: pos.Units,
	}
}

func (pos Position) Sub(other Position) Position {
	other = other.In(pos.Units)
	return Position{
		X:     pos.X - other.X,
		Y:     pos.Y - other.Y,
		Z:     pos.Z - other.Z,
		A:     pos.A - other.A,
		B:     pos.B - other.B,
		C:     pos.C - other.C,
		Units: pos.Units,
	}
}

// HasRotation reports whether any rotary axis is specified.
func (pos Position) HasRotation() bool {
	return !math.IsNaN(pos.A) || !math.IsNaN(pos.B) || !math.IsNaN(pos.C)
}

// Equal compares two positions axis by axis; two unspecified axes are equal.
func (pos Position) Equal(other Position) bool {
	other = other.In(pos.Units)
	return sameAxis(pos.X, other.X) && sameAxis(pos.Y, other.Y) && sameAxis(pos.Z, other.Z) &&
		sameAxis(pos.A, other.A) && sameAxis(pos.B, other.B) && sameAxis(pos.C, other.C)
}

func sameAxis(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return math.IsNaN(a) && math.IsNaN(b)
	}
	return a == b
}
