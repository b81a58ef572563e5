package processors

import (
	"fmt"
	"math"

	"github.com/leftmike/gcodeproc/gcode"
)

// Arcs are expanded into lines of this length before they are transformed.
const transformArcSegmentMM = 0.1

type pointTransform interface {
	apply(pos gcode.Position) gcode.Position
	invert(pos gcode.Position) gcode.Position
	identity() bool
}

type transformer struct {
	t        pointTransform
	decimals int
}

// process transforms the motion of command. state is in the frame of the commands given to the
// processor, not in the transformed frame.
func (tr transformer) process(command string, state gcode.State) ([]string, error) {
	if tr.t.identity() {
		return single(command), nil
	}

	cmd, err := motionCommand(command, state)
	if err != nil {
		return nil, err
	}
	if cmd == nil || cmd.End == nil {
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

	code := cmd.Code
	var points []gcode.Position
	if cmd.Arc != nil {
		code = gcode.G1
		points = gcode.ExpandArc(cmd.Start, *cmd.End, *cmd.Arc,
			transformArcSegmentMM*gcode.ScaleUnits(gcode.MM, cmd.State.Units))
	} else {
		points = []gcode.Position{*cmd.End}
	}
	for i := range points {
		points[i] = tr.t.apply(points[i])
	}

	return append(ret, linesTo(code, tr.t.apply(cmd.Start), points, cmd.State.IsAbsolute(), feed,
		tr.decimals)...), nil
}

func (tr transformer) toOutput(pos gcode.Position) gcode.Position {
	if tr.t.identity() {
		return pos
	}
	return tr.t.apply(pos)
}

func (tr transformer) toInput(pos gcode.Position) gcode.Position {
	if tr.t.identity() {
		return pos
	}
	return tr.t.invert(pos)
}

type rotation struct {
	center gcode.Position
	sin    float64
	cos    float64
	zero   bool
}

func newRotation(center gcode.Position, degrees float64) rotation {
	radians := degrees * math.Pi / 180
	return rotation{
		center: center,
		sin:    math.Sin(radians),
		cos:    math.Cos(radians),
		zero:   degrees == 0,
	}
}

func (r rotation) rotate(pos gcode.Position, sin float64) gcode.Position {
	c := r.center.In(pos.Units)
	dx := pos.X - c.X
	dy := pos.Y - c.Y
	pos.X = c.X + dx*r.cos - dy*sin
	pos.Y = c.Y + dx*sin + dy*r.cos
	return pos
}

func (r rotation) apply(pos gcode.Position) gcode.Position {
	return r.rotate(pos, r.sin)
}

func (r rotation) invert(pos gcode.Position) gcode.Position {
	return r.rotate(pos, -r.sin)
}

func (r rotation) identity() bool {
	return r.zero
}

// Rotate turns the XY plane about a center point. Arcs become lines.
type Rotate struct {
	transformer
	degrees float64
}

func NewRotate(center gcode.Position, degrees float64, decimals int) (*Rotate, error) {
	if math.IsNaN(center.X) || math.IsNaN(center.Y) {
		return nil, invalidArgument("rotation center must have X and Y")
	}
	if math.IsNaN(degrees) || math.IsInf(degrees, 0) {
		return nil, invalidArgument("rotation angle: %g", degrees)
	}
	return &Rotate{
		transformer: transformer{t: newRotation(center, degrees), decimals: decimals},
		degrees:     degrees,
	}, nil
}

func (r *Rotate) Process(command string, state gcode.State) ([]string, error) {
	return r.process(command, state)
}

func (r *Rotate) Help() string {
	return fmt.Sprintf("Rotates the XY plane by %g degrees.", r.degrees)
}

type translation struct {
	offset gcode.Position
}

func (tl translation) move(pos gcode.Position, sign float64) gcode.Position {
	off := tl.offset.In(pos.Units)
	pos.X += sign * off.X
	pos.Y += sign * off.Y
	pos.Z += sign * off.Z
	return pos
}

func (tl translation) apply(pos gcode.Position) gcode.Position {
	return tl.move(pos, 1)
}

func (tl translation) invert(pos gcode.Position) gcode.Position {
	return tl.move(pos, -1)
}

func (tl translation) identity() bool {
	return tl.offset.X == 0 && tl.offset.Y == 0 && tl.offset.Z == 0
}

// Translate moves every point by an offset. Arcs become lines.
type Translate struct {
	transformer
	offset gcode.Position
}

func NewTranslate(offset gcode.Position, decimals int) (*Translate, error) {
	if math.IsNaN(offset.X) {
		offset.X = 0
	}
	if math.IsNaN(offset.Y) {
		offset.Y = 0
	}
	if math.IsNaN(offset.Z) {
		offset.Z = 0
	}
	return &Translate{
		transformer: transformer{t: translation{offset: offset}, decimals: decimals},
		offset:      offset,
	}, nil
}

func (tl *Translate) Process(command string, state gcode.State) ([]string, error) {
	return tl.process(command, state)
}

func (tl *Translate) Help() string {
	return fmt.Sprintf("Translates by X%g Y%g Z%g %s.", tl.offset.X, tl.offset.Y, tl.offset.Z,
		tl.offset.Units)
}
