package processors

import (
	"fmt"

	"github.com/leftmike/gcodeproc/gcode"
)

// ArcExpander replaces each G2 and G3 arc with G1 lines no longer than a segment length.
type ArcExpander struct {
	convertToLines bool
	length         float64 // mm
	decimals       int
}

func NewArcExpander(convertToLines bool, segmentLengthMM float64, decimals int) (*ArcExpander,
	error) {

	if segmentLengthMM <= 0 {
		return nil, invalidArgument("segment length must be positive: %g", segmentLengthMM)
	}
	return &ArcExpander{
		convertToLines: convertToLines,
		length:         segmentLengthMM,
		decimals:       decimals,
	}, nil
}

// Process returns the words of the line which are not part of the arc, if any, followed by
// the lines of the arc; the feed of the line goes on the first of them.
func (ae *ArcExpander) Process(command string, state gcode.State) ([]string, error) {
	cmd, err := motionCommand(command, state)
	if err != nil {
		return nil, err
	}
	if cmd == nil || cmd.Arc == nil || cmd.End == nil {
		return single(command), nil
	}
	if !ae.convertToLines {
		return nil, fmt.Errorf("%w: expanding arcs into smaller arcs", ErrNotImplemented)
	}

	rest, feed, err := splitLine(command, cmd.Code)
	if err != nil {
		return nil, err
	}

	var ret []string
	if rest != "" {
		ret = append(ret, rest)
	}

	length := ae.length * gcode.ScaleUnits(gcode.MM, cmd.State.Units)
	points := gcode.ExpandArc(cmd.Start, *cmd.End, *cmd.Arc, length)
	return append(ret, linesTo(gcode.G1, cmd.Start, points, cmd.State.IsAbsolute(), feed,
		ae.decimals)...), nil
}

func (ae *ArcExpander) Help() string {
	return fmt.Sprintf("Expands arcs into lines of at most %g mm.", ae.length)
}
