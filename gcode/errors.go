package gcode

import (
	"errors"
	"fmt"
)

// ErrParse is matched by every ParseError.
var ErrParse = errors.New("gcode parse error")

// ErrMultipleMotion is the cause of a ParseError for a line with more than one motion code.
var ErrMultipleMotion = errors.New("multiple motion commands")

// ParseError is returned when a command can not be interpreted.
type ParseError struct {
	Command string
	Reason  string
	Err     error // cause, if the failure has one
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %q", e.Reason, e.Command)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseError(command string, format string, args ...interface{}) error {
	return &ParseError{Command: command, Reason: fmt.Sprintf(format, args...)}
}
