package gcode

import (
	"errors"
	"fmt"
	"math"
)

// Slack allowed when an arc radius is a little too small to reach the end point.
const minimumDelta = 0.0005

type Plane byte

const (
	XYPlane Plane = iota // G17
	ZXPlane              // G18
	YZPlane              // G19
)

func (pl Plane) Code() Code {
	switch pl {
	case XYPlane:
		return G17
	case ZXPlane:
		return G18
	case YZPlane:
		return G19
	default:
		panic(fmt.Sprintf("unexpected plane: %d", pl))
	}
}

func (pl Plane) String() string {
	switch pl {
	case XYPlane:
		return "XY"
	case ZXPlane:
		return "ZX"
	case YZPlane:
		return "YZ"
	default:
		return fmt.Sprintf("Plane(%d)", pl)
	}
}

// Arc describes the circular part of a G2 or G3 move. Center is in the same units as the move.
type Arc struct {
	Center    Position
	Radius    float64
	Clockwise bool
	Plane     Plane
}

// toArcPlane maps pos so that the arc is drawn in the XY plane, with Z being the axis of
// rotation.
func (pl Plane) toArcPlane(pos Position) Position {
	switch pl {
	case XYPlane:
		return pos
	case ZXPlane:
		pos.X, pos.Y, pos.Z = pos.Z, pos.X, pos.Y
		return pos
	case YZPlane:
		pos.X, pos.Y, pos.Z = pos.Y, pos.Z, pos.X
		return pos
	default:
		panic(fmt.Sprintf("unexpected plane: %d", pl))
	}
}

func (pl Plane) fromArcPlane(pos Position) Position {
	switch pl {
	case XYPlane:
		return pos
	case ZXPlane:
		pos.X, pos.Y, pos.Z = pos.Y, pos.Z, pos.X
		return pos
	case YZPlane:
		pos.X, pos.Y, pos.Z = pos.Z, pos.X, pos.Y
		return pos
	default:
		panic(fmt.Sprintf("unexpected plane: %d", pl))
	}
}

func hypot(pos1, pos2 Position) float64 {
	return math.Hypot(pos1.X-pos2.X, pos1.Y-pos2.Y)
}

// radiusCenter expects the positions to be mapped to the arc plane. A negative radius selects
// the arc of more than 180 degrees.
func radiusCenter(curPos, endPos Position, radius float64, clockwise bool) (Position, error) {
	if curPos.X == endPos.X && curPos.Y == endPos.Y {
		return Position{}, errors.New("expected endpoint different than current with radius")
	}

	dist := hypot(curPos, endPos)
	delta := dist - math.Abs(radius)*2
	if delta > minimumDelta {
		return Position{}, errors.New("radius too small")
	} else if delta > 0.0 {
		dist = math.Abs(radius) * 2
	}

	theta := math.Atan2(endPos.Y-curPos.Y, endPos.X-curPos.X)
	if (clockwise && radius > 0.0) || (!clockwise && radius < 0.0) {
		theta -= (math.Pi / 2.0)
	} else {
		theta += (math.Pi / 2.0)
	}

	offset := math.Abs(radius) * math.Cos(math.Asin(dist/(math.Abs(radius)*2)))
	return Position{
		X:     ((curPos.X + endPos.X) / 2) + offset*math.Cos(theta),
		Y:     ((curPos.Y + endPos.Y) / 2) + offset*math.Sin(theta),
		Z:     curPos.Z,
		A:     math.NaN(),
		B:     math.NaN(),
		C:     math.NaN(),
		Units: curPos.Units,
	}, nil
}

// arcAngle returns the angle of pos around center in [0, 2*pi).
func arcAngle(center, pos Position) float64 {
	angle := math.Atan2(pos.Y-center.Y, pos.X-center.X)
	if angle < 0.0 {
		angle += math.Pi * 2
	}
	return angle
}

// arcSweep returns the angle swept going from angle to endAngle; equal angles are a full
// circle.
func arcSweep(angle, endAngle float64, clockwise bool) float64 {
	if angle == endAngle {
		return math.Pi * 2
	} else if angle < endAngle {
		if clockwise {
			return math.Pi*2 - (endAngle - angle)
		}
		return endAngle - angle
	}

	if clockwise {
		return angle - endAngle
	}
	return math.Pi*2 - (angle - endAngle)
}

// ArcLength returns the length of the path of an arc, including any helical travel.
func ArcLength(start, end Position, arc Arc) float64 {
	end = end.In(start.Units)
	cur := arc.Plane.toArcPlane(start)
	fin := arc.Plane.toArcPlane(end)
	center := arc.Plane.toArcPlane(arc.Center.In(start.Units))

	sweep := arcSweep(arcAngle(center, cur), arcAngle(center, fin), arc.Clockwise)
	return math.Hypot(sweep*arc.Radius, fin.Z-cur.Z)
}

// ExpandArc samples an arc from start to end into ceil(length / segmentLength) points, each no
// more than segmentLength from the one before. The start is not included; the last point is
// end. segmentLength is in the units of start.
func ExpandArc(start, end Position, arc Arc, segmentLength float64) []Position {
	end = end.In(start.Units)
	cur := arc.Plane.toArcPlane(start)
	fin := arc.Plane.toArcPlane(end)
	center := arc.Plane.toArcPlane(arc.Center.In(start.Units))

	angle := arcAngle(center, cur)
	sweep := arcSweep(angle, arcAngle(center, fin), arc.Clockwise)
	normal := fin.Z - cur.Z

	numSteps := 1
	if segmentLength > 0.0 {
		travel := math.Hypot(sweep*arc.Radius, normal)
		numSteps = int(math.Ceil(travel / segmentLength))
		if numSteps < 1 {
			numSteps = 1
		}
	}

	angleDir := 1.0
	if arc.Clockwise {
		angleDir = -1.0
	}

	points := make([]Position, 0, numSteps)
	for step := 1; step < numSteps; step += 1 {
		t := float64(step) / float64(numSteps)
		pos := Position{
			X:     center.X + arc.Radius*math.Cos(angle+t*sweep*angleDir),
			Y:     center.Y + arc.Radius*math.Sin(angle+t*sweep*angleDir),
			Z:     cur.Z + t*normal,
			A:     lerp(cur.A, fin.A, t),
			B:     lerp(cur.B, fin.B, t),
			C:     lerp(cur.C, fin.C, t),
			Units: start.Units,
		}
		points = append(points, arc.Plane.fromArcPlane(pos))
	}

	return append(points, end)
}

func lerp(from, to, t float64) float64 {
	if math.IsNaN(from) {
		return to
	}
	return from + (to-from)*t
}
