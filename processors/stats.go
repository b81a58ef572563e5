package processors

import (
	"math"

	"github.com/leftmike/gcodeproc/gcode"
)

// Stats passes commands through unchanged while collecting the bounds of the moves, in mm, and
// the number of commands.
type Stats struct {
	min      gcode.Position
	max      gcode.Position
	commands int
}

func NewStats() *Stats {
	st := &Stats{}
	st.Reset()
	return st
}

func (st *Stats) Reset() {
	st.min = gcode.UnknownPosition(gcode.MM)
	st.max = gcode.UnknownPosition(gcode.MM)
	st.commands = 0
}

func (st *Stats) Process(command string, state gcode.State) ([]string, error) {
	if gcode.RemoveComment(command) == "" {
		return single(command), nil
	}

	cmds, err := gcode.ProcessCommand(command, state.CommandNumber, state, false)
	if err != nil {
		return nil, err
	}
	for _, cmd := range cmds {
		if cmd.End == nil {
			continue
		}
		st.include(cmd.Start.In(gcode.MM))
		st.include(cmd.End.In(gcode.MM))
	}
	st.commands += 1
	return single(command), nil
}

func (st *Stats) include(pos gcode.Position) {
	st.min.X, st.max.X = bound(st.min.X, st.max.X, pos.X)
	st.min.Y, st.max.Y = bound(st.min.Y, st.max.Y, pos.Y)
	st.min.Z, st.max.Z = bound(st.min.Z, st.max.Z, pos.Z)
}

func bound(lo, hi, v float64) (float64, float64) {
	if math.IsNaN(v) {
		return lo, hi
	}
	if math.IsNaN(lo) || v < lo {
		lo = v
	}
	if math.IsNaN(hi) || v > hi {
		hi = v
	}
	return lo, hi
}

// Min returns the smallest X, Y, and Z reached, in mm; axes which never moved are NaN.
func (st *Stats) Min() gcode.Position {
	return st.min
}

// Max returns the largest X, Y, and Z reached, in mm.
func (st *Stats) Max() gcode.Position {
	return st.max
}

// CommandCount returns the number of commands, not counting empty lines and comments.
func (st *Stats) CommandCount() int {
	return st.commands
}

func (st *Stats) Help() string {
	return "Collects the bounds of the moves and the number of commands."
}
