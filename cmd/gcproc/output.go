package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/leftmike/gcodeproc/processors"
)

func printError(w io.Writer, err error) {
	out := termenv.NewOutput(w)
	fmt.Fprintf(w, "%s %v\n", out.String("Error:").Foreground(termenv.ANSIRed).Bold(), err)

	var se *processors.StageError
	if errors.As(err, &se) {
		fmt.Fprintf(w, "  %s %s\n", out.String("command:").Faint(), se.Command)
	}
}

func printStats(w io.Writer, st *processors.Stats) {
	out := termenv.NewOutput(w)
	lo := st.Min()
	hi := st.Max()
	fmt.Fprintf(w, "%s %d\n", out.String("commands:").Bold(), st.CommandCount())
	fmt.Fprintf(w, "%s X %g..%g  Y %g..%g  Z %g..%g (mm)\n", out.String("bounds:").Bold(),
		lo.X, hi.X, lo.Y, hi.Y, lo.Z, hi.Z)
}
