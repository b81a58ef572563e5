package processors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/leftmike/gcodeproc/gcode"
)

// CommentProcessor removes comments: text in parentheses, which may be nested, and anything
// after ; or %.
type CommentProcessor struct{}

func (CommentProcessor) Process(command string, state gcode.State) ([]string, error) {
	return single(gcode.RemoveComment(command)), nil
}

func (CommentProcessor) Help() string {
	return "Removes comments."
}

// WhitespaceProcessor removes all whitespace.
type WhitespaceProcessor struct{}

func (WhitespaceProcessor) Process(command string, state gcode.State) ([]string, error) {
	return single(strings.Join(strings.Fields(command), "")), nil
}

func (WhitespaceProcessor) Help() string {
	return "Removes whitespace."
}

// EmptyLineRemover drops commands which are empty or all whitespace.
type EmptyLineRemover struct{}

func (EmptyLineRemover) Process(command string, state gcode.State) ([]string, error) {
	if strings.TrimSpace(command) == "" {
		return nil, nil
	}
	return single(command), nil
}

func (EmptyLineRemover) Help() string {
	return "Removes empty lines."
}

var decimalRegexp = regexp.MustCompile(`-?\d*\.\d+`)

// DecimalProcessor rounds numbers to a maximum number of fraction digits. Zero disables it.
type DecimalProcessor struct {
	decimals int
}

func NewDecimalProcessor(decimals int) *DecimalProcessor {
	return &DecimalProcessor{decimals: decimals}
}

func (dp *DecimalProcessor) Process(command string, state gcode.State) ([]string, error) {
	if dp.decimals <= 0 {
		return single(command), nil
	}

	return single(decimalRegexp.ReplaceAllStringFunc(command, func(num string) string {
		if len(num)-strings.IndexByte(num, '.')-1 <= dp.decimals {
			return num
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil {
			return num
		}
		return gcode.FormatNumber(v, dp.decimals)
	})), nil
}

func (dp *DecimalProcessor) Help() string {
	return fmt.Sprintf("Rounds numbers to %d decimal places.", dp.decimals)
}

var feedRegexp = regexp.MustCompile(`([Ff])\s*(\d*\.?\d+)`)

// FeedOverrideProcessor scales every feed rate by a percentage. Zero disables it.
type FeedOverrideProcessor struct {
	percent float64
}

func NewFeedOverrideProcessor(percent float64) *FeedOverrideProcessor {
	return &FeedOverrideProcessor{percent: percent}
}

func (fo *FeedOverrideProcessor) Process(command string, state gcode.State) ([]string, error) {
	if fo.percent <= 0 {
		return single(command), nil
	}

	return single(feedRegexp.ReplaceAllStringFunc(command, func(s string) string {
		m := feedRegexp.FindStringSubmatch(s)
		v, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			return s
		}
		return m[1] + gcode.FormatNumber(v*fo.percent/100, gcode.DefaultDecimals)
	})), nil
}

func (fo *FeedOverrideProcessor) Help() string {
	return fmt.Sprintf("Scales feed rates to %g%%.", fo.percent)
}

// CommandLengthProcessor fails on commands longer than a controller can buffer.
type CommandLengthProcessor struct {
	max int
}

func NewCommandLengthProcessor(max int) (*CommandLengthProcessor, error) {
	if max <= 0 {
		return nil, invalidArgument("command length must be positive: %d", max)
	}
	return &CommandLengthProcessor{max: max}, nil
}

func (cl *CommandLengthProcessor) Process(command string, state gcode.State) ([]string, error) {
	if len(command) > cl.max {
		return nil, fmt.Errorf("%w: %d > %d: %q", ErrCommandTooLong, len(command), cl.max,
			command)
	}
	return single(command), nil
}

func (cl *CommandLengthProcessor) Help() string {
	return fmt.Sprintf("Fails on commands longer than %d characters.", cl.max)
}

var m30Regexp = regexp.MustCompile(`(?i)M0*30([^0-9.]|$)`)

// M30Processor removes M30, program end and rewind, so the controller keeps running.
type M30Processor struct{}

func (M30Processor) Process(command string, state gcode.State) ([]string, error) {
	return single(strings.TrimSpace(m30Regexp.ReplaceAllString(command, "${1}"))), nil
}

func (M30Processor) Help() string {
	return "Removes M30 commands."
}

var spindleOnRegexp = regexp.MustCompile(`(?i)M0*[34]([^0-9.]|$)`)

// SpindleOnDweller adds a dwell after the spindle is started, to give it time to spin up.
type SpindleOnDweller struct {
	duration float64 // seconds
}

func NewSpindleOnDweller(seconds float64) (*SpindleOnDweller, error) {
	if seconds < 0 {
		return nil, invalidArgument("dwell duration must not be negative: %g", seconds)
	}
	return &SpindleOnDweller{duration: seconds}, nil
}

func (sd *SpindleOnDweller) Process(command string, state gcode.State) ([]string, error) {
	if spindleOnRegexp.MatchString(gcode.RemoveComment(command)) {
		return []string{command, "G4P" + gcode.FormatNumber(sd.duration, gcode.DefaultDecimals)},
			nil
	}
	return single(command), nil
}

func (sd *SpindleOnDweller) Help() string {
	return fmt.Sprintf("Dwells %g seconds after starting the spindle.", sd.duration)
}
