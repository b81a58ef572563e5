package gcode

import (
	"math"
	"sort"
	"strings"
)

// Command is one code of a line together with its effect: the geometry of a move and the
// state after it is executed.
type Command struct {
	Code  Code
	Line  int
	Start Position
	End   *Position // nil if the code does not move
	Arc   *Arc      // set for G2 and G3 moves
	Rapid bool
	Probe bool
	ZOnly bool
	Feed  float64 // feed rate in effect for the code
	State State
}

// ProcessCommand interprets a single line starting from state, which is not modified. The
// codes are returned in the order they execute: modal group by modal group with motion last.
// Unless includeNonMotion is set, only the codes which consume the axis words of the line are
// returned. Axis words without a motion code use the motion mode of state; unknown codes are
// ignored.
func ProcessCommand(command string, line int, state State, includeNonMotion bool) ([]Command,
	error) {

	words, err := ParseWords(command)
	if err != nil {
		return nil, err
	}

	var (
		gcodes  []Code
		motions int
		hasAxis bool
		feed    *Word
		speed   *Word
		tool    *Word
	)
	for i, w := range words {
		switch w.Letter {
		case 'G', 'M':
			c := LookupCode(w.Letter, strings.TrimPrefix(w.Number, "+"))
			if c == Unknown {
				continue
			}
			if c.Group() == MotionGroup {
				motions += 1
			}
			gcodes = append(gcodes, c)
		case 'F':
			if feed != nil {
				return nil, parseError(command, "multiple F words")
			}
			feed = &words[i]
		case 'S':
			if speed != nil {
				return nil, parseError(command, "multiple S words")
			}
			speed = &words[i]
		case 'T':
			tool = &words[i]
		case 'X', 'Y', 'Z', 'A', 'B', 'C':
			hasAxis = true
		}
	}

	if motions > 1 {
		return nil, &ParseError{Command: command, Reason: ErrMultipleMotion.Error(),
			Err: ErrMultipleMotion}
	}
	if feed != nil {
		gcodes = append(gcodes, F)
	}
	if speed != nil {
		gcodes = append(gcodes, S)
	}
	if tool != nil {
		gcodes = append(gcodes, T)
	}

	if hasAxis {
		var consumed bool
		for _, c := range gcodes {
			if c.ConsumesMotion() {
				consumed = true
				break
			}
		}
		if !consumed && state.MotionMode != Unknown {
			gcodes = append(gcodes, state.MotionMode)
		}
	}

	sort.SliceStable(gcodes, func(i, j int) bool {
		return gcodes[i].order() < gcodes[j].order()
	})

	state.CommandNumber = line
	var cmds []Command
	for _, c := range gcodes {
		cmd := Command{Code: c, Line: line, Start: state.CurrentPoint}

		switch c {
		case F:
			state.Feed = feed.Value
		case S:
			state.SpindleSpeed = speed.Value
		case T:
			state.Tool = int(tool.Value)
		case M3, M4, M5:
			state.Spindle = c
		case M7, M8, M9:
			state.Coolant = c
		case G17:
			state.Plane = XYPlane
		case G18:
			state.Plane = ZXPlane
		case G19:
			state.Plane = YZPlane
		case G20:
			state.Units = Inch
			state.CurrentPoint = state.CurrentPoint.In(Inch)
		case G21:
			state.Units = MM
			state.CurrentPoint = state.CurrentPoint.In(MM)
		case G90, G91:
			state.DistanceMode = c
		case G90_1, G91_1:
			state.ArcDistanceMode = c
		case G93, G94, G95:
			state.FeedMode = c
		case G54, G55, G56, G57, G58, G59, G59_1, G59_2, G59_3:
			state.WorkOffset = c
		case G28, G30:
			// Move through the intermediate point; the predefined position is not known.
			if hasAxis {
				end := nextPoint(words, state)
				cmd.End = &end
				cmd.Rapid = true
				state.CurrentPoint = end
			}
		default:
			if c.Group() != MotionGroup {
				break
			}

			state.MotionMode = c
			if c == G80 {
				break
			}
			if !hasAxis {
				if !c.MotionOptional() {
					return nil, parseError(command, "missing axis words for %s", c)
				}
				break
			}

			end := nextPoint(words, state)
			cmd.End = &end
			switch c {
			case G0:
				cmd.Rapid = true
			case G2, G3:
				arc, err := arcCenter(command, words, state, end, c == G2)
				if err != nil {
					return nil, err
				}
				cmd.Arc = arc
			case G38_2, G38_3, G38_4, G38_5:
				cmd.Probe = true
			}
			cmd.ZOnly = cmd.Start.X == end.X && cmd.Start.Y == end.Y && cmd.Start.Z != end.Z
			state.CurrentPoint = end
		}

		cmd.Feed = state.Feed
		cmd.State = state
		if includeNonMotion || c.ConsumesMotion() {
			cmds = append(cmds, cmd)
		}
	}

	return cmds, nil
}

// nextPoint applies the axis words of a line to the current point of state.
func nextPoint(words []Word, state State) Position {
	pos := state.CurrentPoint.In(state.Units)
	absolute := state.IsAbsolute()

	for _, w := range words {
		var axis *float64
		switch w.Letter {
		case 'X':
			axis = &pos.X
		case 'Y':
			axis = &pos.Y
		case 'Z':
			axis = &pos.Z
		case 'A':
			axis = &pos.A
		case 'B':
			axis = &pos.B
		case 'C':
			axis = &pos.C
		default:
			continue
		}

		if absolute {
			*axis = w.Value
		} else {
			*axis += w.Value
		}
	}

	return pos
}

func arcCenter(command string, words []Word, state State, end Position, clockwise bool) (*Arc,
	error) {

	start := state.CurrentPoint.In(state.Units)
	plane := state.Plane

	var (
		radius    float64
		hasRadius bool
		hasOffset bool
	)
	center := start
	center.A, center.B, center.C = math.NaN(), math.NaN(), math.NaN()
	for _, w := range words {
		var axis, origin *float64
		switch w.Letter {
		case 'R':
			radius = w.Value
			hasRadius = true
			continue
		case 'I':
			axis, origin = &center.X, &start.X
		case 'J':
			axis, origin = &center.Y, &start.Y
		case 'K':
			axis, origin = &center.Z, &start.Z
		default:
			continue
		}

		hasOffset = true
		if state.IsAbsoluteArc() {
			*axis = w.Value
		} else {
			*axis = *origin + w.Value
		}
	}

	if hasRadius {
		c, err := radiusCenter(plane.toArcPlane(start), plane.toArcPlane(end), radius, clockwise)
		if err != nil {
			return nil, parseError(command, "%s", err)
		}
		return &Arc{
			Center:    plane.fromArcPlane(c),
			Radius:    math.Abs(radius),
			Clockwise: clockwise,
			Plane:     plane,
		}, nil
	} else if hasOffset {
		return &Arc{
			Center:    center,
			Radius:    hypot(plane.toArcPlane(start), plane.toArcPlane(center)),
			Clockwise: clockwise,
			Plane:     plane,
		}, nil
	}

	return nil, parseError(command, "expected center point or radius for arc")
}

// Interpreter tracks the state of a program one line at a time.
type Interpreter struct {
	initial State
	state   State
}

func NewInterpreter(initial State) *Interpreter {
	return &Interpreter{
		initial: initial,
		state:   initial,
	}
}

// AddCommand interprets command as line number line and advances the state. On error the state
// is unchanged.
func (in *Interpreter) AddCommand(command string, line int) ([]Command, error) {
	cmds, err := ProcessCommand(command, line, in.state, true)
	if err != nil {
		return nil, err
	}

	if len(cmds) > 0 {
		in.state = cmds[len(cmds)-1].State
	}
	in.state.CommandNumber = line
	return cmds, nil
}

func (in *Interpreter) State() State {
	return in.state
}

// Reset returns the interpreter to the state it was created with.
func (in *Interpreter) Reset() {
	in.state = in.initial
}
