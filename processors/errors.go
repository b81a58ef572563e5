package processors

import (
	"errors"
	"fmt"
)

var (
	ErrMultipleCommands = errors.New("more than one motion command on the line")
	ErrNotImplemented   = errors.New("not implemented")
	ErrUnexpectedArc    = errors.New("unexpected arc")
	ErrMeshShape        = errors.New("invalid surface mesh")
	ErrCommandTooLong   = errors.New("command too long")
	ErrInvalidArgument  = errors.New("invalid argument")
)

// MeshShapeError describes why a surface mesh can not be used.
type MeshShapeError struct {
	Reason string
}

func (e *MeshShapeError) Error() string {
	return fmt.Sprintf("%s: %s", ErrMeshShape, e.Reason)
}

func (e *MeshShapeError) Is(target error) bool {
	return target == ErrMeshShape
}

// StageError is returned by a Pipeline when one of its processors fails.
type StageError struct {
	Stage     int    // index of the processor in the pipeline
	Processor string // name of the processor
	Command   string // the command given to the processor
	Err       error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %d (%s): %q: %v", e.Stage, e.Processor, e.Command, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

func invalidArgument(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}
