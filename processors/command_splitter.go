package processors

import (
	"github.com/leftmike/gcodeproc/gcode"
)

// CommandSplitter splits lines holding several commands, such as G1X1Y1M3S500, into one line
// per command. Comments and whitespace are dropped from lines which are split.
type CommandSplitter struct{}

func (CommandSplitter) Process(command string, state gcode.State) ([]string, error) {
	return gcode.SplitCommand(command)
}

func (CommandSplitter) Help() string {
	return "Splits lines into one command per line."
}
