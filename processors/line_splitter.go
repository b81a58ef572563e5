package processors

import (
	"fmt"
	"math"

	"github.com/leftmike/gcodeproc/gcode"
)

// LineSplitter breaks long G0 and G1 moves into equal segments.
type LineSplitter struct {
	maxLength float64 // mm
	decimals  int
}

func NewLineSplitter(maxSegmentLengthMM float64, decimals int) (*LineSplitter, error) {
	if maxSegmentLengthMM <= 0 {
		return nil, invalidArgument("segment length must be positive: %g", maxSegmentLengthMM)
	}
	return &LineSplitter{
		maxLength: maxSegmentLengthMM,
		decimals:  decimals,
	}, nil
}

func (ls *LineSplitter) Process(command string, state gcode.State) ([]string, error) {
	cmd, err := motionCommand(command, state)
	if err != nil {
		return nil, err
	}
	if cmd == nil || cmd.End == nil || (cmd.Code != gcode.G0 && cmd.Code != gcode.G1) {
		return single(command), nil
	}

	maxLength := ls.maxLength * gcode.ScaleUnits(gcode.MM, cmd.State.Units)
	length := cmd.Start.Distance(*cmd.End)
	if math.IsNaN(length) || length <= maxLength {
		return single(command), nil
	}

	rest, feed, err := splitLine(command, cmd.Code)
	if err != nil {
		return nil, err
	}

	var ret []string
	if rest != "" {
		ret = append(ret, rest)
	}

	n := int(math.Ceil(length / maxLength))
	points := make([]gcode.Position, 0, n)
	for i := 1; i < n; i += 1 {
		points = append(points, interpolate(cmd.Start, *cmd.End, float64(i)/float64(n)))
	}
	points = append(points, *cmd.End)

	return append(ret, linesTo(cmd.Code, cmd.Start, points, cmd.State.IsAbsolute(), feed,
		ls.decimals)...), nil
}

func (ls *LineSplitter) Help() string {
	return fmt.Sprintf("Splits lines longer than %g mm into equal segments.", ls.maxLength)
}
