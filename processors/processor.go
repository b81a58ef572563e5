// Package processors rewrites gcode programs one command at a time. Each Processor consumes a
// single command, together with the state of the program before it, and returns the commands
// which replace it. A Pipeline chains processors together.
package processors

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/leftmike/gcodeproc/gcode"
)

type Processor interface {
	// Process returns the commands which replace command; state is the state of the program
	// before command.
	Process(command string, state gcode.State) ([]string, error)

	// Help returns a one line description of the processor and its settings.
	Help() string
}

// Resetter is implemented by processors which keep state from one command to the next.
type Resetter interface {
	Reset()
}

// Name returns the type name of a processor, such as ArcExpander.
func Name(p Processor) string {
	s := fmt.Sprintf("%T", p)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}

// motionCommand returns the only command of a line which consumes its axis words, or nil if
// the line has none.
func motionCommand(command string, state gcode.State) (*gcode.Command, error) {
	cmds, err := gcode.ProcessCommand(command, state.CommandNumber, state, false)
	if errors.Is(err, gcode.ErrMultipleMotion) {
		return nil, fmt.Errorf("%w: %q", ErrMultipleCommands, command)
	} else if err != nil {
		return nil, err
	}

	switch len(cmds) {
	case 0:
		return nil, nil
	case 1:
		return &cmds[0], nil
	}
	return nil, fmt.Errorf("%w: %q", ErrMultipleCommands, command)
}

// splitLine returns the words of command which are not part of its motion, without any F word
// and without code, and the F word. code is the code which consumes the axis words; it is only
// found in the rest of the line when it is not a motion code, such as G28.
func splitLine(command string, code gcode.Code) (string, string, error) {
	words, err := gcode.ParseWords(command)
	if err != nil {
		return "", "", err
	}

	_, rest := gcode.SplitMotion(words)
	var feed string
	if w, ok := gcode.FindWord(rest, 'F'); ok {
		feed = w.String()
	}

	var kept []gcode.Word
	for _, w := range gcode.RemoveLetters(rest, "F") {
		if w.Letter == 'G' && gcode.LookupCode('G', strings.TrimPrefix(w.Number, "+")) == code {
			continue
		}
		kept = append(kept, w)
	}
	return gcode.JoinWords(kept), feed, nil
}

// linesTo returns a command moving to each of points in turn, starting at start. The feed is
// appended to the first command.
func linesTo(code gcode.Code, start gcode.Position, points []gcode.Position, absolute bool,
	feed string, decimals int) []string {

	ret := make([]string, 0, len(points))
	prev := start
	for i, pos := range points {
		line := gcode.GenerateLineFromPoints(code, prev, pos, absolute, decimals)
		if i == 0 {
			line += feed
		}
		ret = append(ret, line)
		prev = pos
	}
	return ret
}

func interpolate(from, to gcode.Position, t float64) gcode.Position {
	to = to.In(from.Units)
	return gcode.Position{
		X:     lerp(from.X, to.X, t),
		Y:     lerp(from.Y, to.Y, t),
		Z:     lerp(from.Z, to.Z, t),
		A:     lerp(from.A, to.A, t),
		B:     lerp(from.B, to.B, t),
		C:     lerp(from.C, to.C, t),
		Units: from.Units,
	}
}

func lerp(from, to, t float64) float64 {
	if math.IsNaN(from) {
		return to
	}
	return from + (to-from)*t
}

func single(command string) []string {
	return []string{command}
}
