package processors

import (
	"fmt"
	"math"

	"github.com/leftmike/gcodeproc/gcode"
)

// Simplifier drops G1 moves which are shorter than a minimum length. Only lines made up of
// nothing but the move, in absolute distance mode, are dropped; the following move then starts
// from the end of the last move which was kept.
type Simplifier struct {
	minLength float64 // mm
}

func NewSimplifier(minSegmentLengthMM float64) (*Simplifier, error) {
	if minSegmentLengthMM < 0 {
		return nil, invalidArgument("minimum segment length must not be negative: %g",
			minSegmentLengthMM)
	}
	return &Simplifier{minLength: minSegmentLengthMM}, nil
}

func (s *Simplifier) Process(command string, state gcode.State) ([]string, error) {
	if s.minLength == 0 {
		return single(command), nil
	}

	words, err := gcode.ParseWords(command)
	if err != nil {
		return nil, err
	}
	for _, w := range words {
		switch w.Letter {
		case 'G', 'X', 'Y', 'Z', 'A', 'B', 'C':
			if !gcode.IsMotionWord(w) {
				return single(command), nil
			}
		default:
			return single(command), nil
		}
	}

	cmds, err := gcode.ProcessCommand(command, state.CommandNumber, state, false)
	if err != nil {
		return nil, err
	}
	if len(cmds) != 1 {
		return single(command), nil
	}
	cmd := cmds[0]
	if cmd.Code != gcode.G1 || cmd.End == nil || !cmd.State.IsAbsolute() {
		return single(command), nil
	}

	length := cmd.Start.Distance(*cmd.End)
	if math.IsNaN(length) || length >= s.minLength*gcode.ScaleUnits(gcode.MM, cmd.State.Units) {
		return single(command), nil
	}
	return nil, nil
}

func (s *Simplifier) Help() string {
	return fmt.Sprintf("Removes G1 moves shorter than %g mm.", s.minLength)
}
