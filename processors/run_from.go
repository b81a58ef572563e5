package processors

import (
	"fmt"
	"math"
	"strings"

	"github.com/leftmike/gcodeproc/gcode"
)

// RunFrom skips the commands before a line number and then restores the state they would have
// left the machine in: modal codes, a safe Z, the XY position, spindle, coolant, speed, and
// feed, and finally the Z, before the first command which is run.
type RunFrom struct {
	line   int
	interp *gcode.Interpreter
	maxZ   float64 // mm
	done   bool
}

func NewRunFrom(line int) *RunFrom {
	rf := &RunFrom{line: line}
	rf.Reset()
	return rf
}

// Reset forgets the skipped commands; the position starts out unknown.
func (rf *RunFrom) Reset() {
	initial := gcode.NewState()
	initial.CurrentPoint = gcode.UnknownPosition(gcode.MM)
	rf.interp = gcode.NewInterpreter(initial)
	rf.maxZ = math.NaN()
	rf.done = false
}

func (rf *RunFrom) Process(command string, state gcode.State) ([]string, error) {
	if rf.line <= 0 || rf.done {
		return single(command), nil
	}

	if state.CommandNumber < rf.line {
		_, err := rf.interp.AddCommand(command, state.CommandNumber)
		if err != nil {
			return nil, err
		}
		pos := rf.interp.State().CurrentPoint.In(gcode.MM)
		if !math.IsNaN(pos.Z) && (math.IsNaN(rf.maxZ) || pos.Z > rf.maxZ) {
			rf.maxZ = pos.Z
		}
		return nil, nil
	}

	s := rf.interp.State()
	target, err := gcode.NormalizeCommand(command, s, gcode.DefaultDecimals)
	if err != nil {
		return nil, err
	}
	rf.done = true

	pos := s.CurrentPoint.In(s.Units)
	ret := []string{s.ToGcode()}
	if !math.IsNaN(rf.maxZ) {
		ret = append(ret, "G0Z"+formatNumber(rf.maxZ*gcode.ScaleUnits(gcode.MM, s.Units)))
	}

	var xy string
	if !math.IsNaN(pos.X) {
		xy += "X" + formatNumber(pos.X)
	}
	if !math.IsNaN(pos.Y) {
		xy += "Y" + formatNumber(pos.Y)
	}
	ret = append(ret, "G0"+xy)

	var sb strings.Builder
	if s.Spindle == gcode.M3 || s.Spindle == gcode.M4 {
		sb.WriteString(string(s.Spindle))
	}
	if s.Coolant == gcode.M7 || s.Coolant == gcode.M8 {
		sb.WriteString(string(s.Coolant))
	}
	fmt.Fprintf(&sb, "S%sF%s", formatNumber(s.SpindleSpeed), formatNumber(s.Feed))
	ret = append(ret, sb.String())

	if !math.IsNaN(pos.Z) {
		ret = append(ret, "G1Z"+formatNumber(pos.Z))
	}
	return append(ret, target), nil
}

func formatNumber(v float64) string {
	return gcode.FormatNumber(v, gcode.DefaultDecimals)
}

func (rf *RunFrom) Help() string {
	return fmt.Sprintf("Skips to line %d, restoring the machine state first.", rf.line)
}
