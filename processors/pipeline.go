package processors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/leftmike/gcodeproc/gcode"
)

// StageEvent describes one pass of a processor over the commands of a line.
type StageEvent struct {
	Stage     int
	Processor string
	Line      int // command number of the line
	In        int // commands given to the processor
	Out       int // commands returned by it
	Duration  time.Duration
}

// Hooks are called as a line moves through the pipeline. Either may be nil.
type Hooks struct {
	OnStage func(StageEvent)
	OnError func(StageEvent, error)
}

// framer is implemented by processors which move the commands they are given into another
// coordinate frame.
type framer interface {
	toOutput(pos gcode.Position) gcode.Position
	toInput(pos gcode.Position) gcode.Position
}

// Sink receives the output of ProcessAll, one command at a time.
type Sink func(command string) error

// Pipeline runs each command through a sequence of processors. The commands returned by one
// processor are given to the next.
type Pipeline struct {
	processors []Processor
	hooks      Hooks
	logger     *slog.Logger
}

type Option func(*Pipeline)

func WithHooks(hooks Hooks) Option {
	return func(p *Pipeline) {
		p.hooks = hooks
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

func (p *Pipeline) Add(procs ...Processor) {
	p.processors = append(p.processors, procs...)
}

func (p *Pipeline) Len() int {
	return len(p.processors)
}

func (p *Pipeline) Processors() []Processor {
	return append([]Processor(nil), p.processors...)
}

// Reset resets every processor which keeps state from one command to the next; it must be
// called before the pipeline is used for another program.
func (p *Pipeline) Reset() {
	for _, proc := range p.processors {
		if r, ok := proc.(Resetter); ok {
			r.Reset()
		}
	}
}

// Process runs command, with state being the state of the program before it, through each of
// the processors. A processor is given only the commands which came out of the previous
// processor; it never sees its own output. Within a pass, the state given to the processor
// follows the commands it has already returned.
//
// The current point of state is in the frame of the output of the pipeline. Each processor gets
// it mapped back through the transforms at or after its stage, so it sees positions in the
// frame of the commands it is given.
func (p *Pipeline) Process(command string, state gcode.State) ([]string, error) {
	lines := []string{command}
	for stage, proc := range p.processors {
		evt := StageEvent{
			Stage:     stage,
			Processor: Name(proc),
			Line:      state.CommandNumber,
			In:        len(lines),
		}
		start := time.Now()

		working := p.inputFrame(stage, state)
		var out []string
		for _, line := range lines {
			// An expanded arc leaves the motion mode of its last segment in the working state,
			// which is not the mode the next command of the line was written against.
			working.MotionMode = state.MotionMode

			res, err := proc.Process(line, working)
			if err == nil {
				working, err = advanceStage(proc, res, working)
			}
			if err != nil {
				evt.Out = len(out)
				evt.Duration = time.Since(start)
				return nil, p.stageError(evt, line, err)
			}
			out = append(out, res...)
		}

		evt.Out = len(out)
		evt.Duration = time.Since(start)
		if p.hooks.OnStage != nil {
			p.hooks.OnStage(evt)
		}
		lines = out
	}
	return lines, nil
}

// inputFrame returns a copy of state with the current point in the frame of the commands given
// to the processor at stage.
func (p *Pipeline) inputFrame(stage int, state gcode.State) gcode.State {
	working := state.Copy()
	for i := len(p.processors) - 1; i >= stage; i -= 1 {
		if f, ok := p.processors[i].(framer); ok {
			working.CurrentPoint = f.toInput(working.CurrentPoint)
		}
	}
	return working
}

// advanceStage re-parses the commands returned by proc. The commands of a transform are in its
// output frame, while state stays in its input frame.
func advanceStage(proc Processor, commands []string, state gcode.State) (gcode.State, error) {
	f, ok := proc.(framer)
	if !ok {
		return advance(commands, state)
	}

	state.CurrentPoint = f.toOutput(state.CurrentPoint)
	state, err := advance(commands, state)
	state.CurrentPoint = f.toInput(state.CurrentPoint)
	return state, err
}

// advance re-parses commands to find the state after them.
func advance(commands []string, state gcode.State) (gcode.State, error) {
	for _, cmd := range commands {
		cmds, err := gcode.ProcessCommand(cmd, state.CommandNumber, state, true)
		if err != nil {
			return state, err
		}
		if len(cmds) > 0 {
			state = cmds[len(cmds)-1].State
		}
	}
	return state, nil
}

func (p *Pipeline) stageError(evt StageEvent, command string, err error) error {
	p.logger.Debug("processor failed", "stage", evt.Stage, "processor", evt.Processor,
		"line", evt.Line, "command", command, "error", err)
	if p.hooks.OnError != nil {
		p.hooks.OnError(evt, err)
	}
	return &StageError{
		Stage:     evt.Stage,
		Processor: evt.Processor,
		Command:   command,
		Err:       err,
	}
}

// ProcessAll runs a program through the pipeline, handing each command of the output to sink.
// The command number of each line is its index in lines. The state of the program is tracked
// from the output, starting with initial, and is returned. The context is checked between lines.
func (p *Pipeline) ProcessAll(ctx context.Context, lines []string, initial gcode.State,
	sink Sink) (gcode.State, error) {

	interp := gcode.NewInterpreter(initial)
	for num, line := range lines {
		if err := ctx.Err(); err != nil {
			return interp.State(), err
		}

		state := interp.State()
		state.CommandNumber = num
		out, err := p.Process(line, state)
		if err != nil {
			return interp.State(), fmt.Errorf("line %d: %w", num, err)
		}

		for _, cmd := range out {
			if _, err := interp.AddCommand(cmd, num); err != nil {
				return interp.State(), fmt.Errorf("line %d: %w", num, err)
			}
			if err := sink(cmd); err != nil {
				return interp.State(), err
			}
		}
	}
	return interp.State(), nil
}
