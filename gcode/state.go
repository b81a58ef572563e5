package gcode

import (
	"strings"
)

// State is the modal state of a gcode interpreter after a command. It is a plain value:
// assigning it copies it.
type State struct {
	CurrentPoint  Position
	CommandNumber int

	Units           Units
	DistanceMode    Code // G90 or G91
	ArcDistanceMode Code // G90.1 or G91.1
	Plane           Plane
	MotionMode      Code
	FeedMode        Code // G93, G94, or G95
	WorkOffset      Code // G54 to G59.3

	Feed         float64
	SpindleSpeed float64
	Spindle      Code // M3, M4, M5, or Unknown if never set
	Coolant      Code // M7, M8, M9, or Unknown if never set
	Tool         int
}

// NewState returns the power on state: mm, absolute, incremental arc centers, XY plane, and
// units per minute feed in the first work offset, at the origin.
func NewState() State {
	return State{
		CurrentPoint:    NewPosition(0.0, 0.0, 0.0, MM),
		Units:           MM,
		DistanceMode:    G90,
		ArcDistanceMode: G91_1,
		Plane:           XYPlane,
		MotionMode:      G0,
		FeedMode:        G94,
		WorkOffset:      G54,
	}
}

func (s State) Copy() State {
	return s
}

func (s State) IsAbsolute() bool {
	return s.DistanceMode != G91
}

func (s State) IsAbsoluteArc() bool {
	return s.ArcDistanceMode == G90_1
}

// ToGcode returns the modal codes which restore the state: units, distance, arc distance,
// feed mode, work offset, and plane.
func (s State) ToGcode() string {
	var sb strings.Builder
	sb.WriteString(string(s.Units.Code()))
	sb.WriteString(string(orDefault(s.DistanceMode, G90)))
	sb.WriteString(string(orDefault(s.ArcDistanceMode, G91_1)))
	sb.WriteString(string(orDefault(s.FeedMode, G94)))
	sb.WriteString(string(orDefault(s.WorkOffset, G54)))
	sb.WriteString(string(s.Plane.Code()))
	return sb.String()
}

func orDefault(c, def Code) Code {
	if c == Unknown {
		return def
	}
	return c
}
