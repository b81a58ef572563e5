package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/leftmike/gcodeproc/config"
	"github.com/leftmike/gcodeproc/gcode"
	"github.com/leftmike/gcodeproc/metrics"
	"github.com/leftmike/gcodeproc/processors"
)

var runOpts runOptions

var runCmd = &cobra.Command{
	Use:   "run [file...]",
	Short: "Process gcode files, or stdin, to stdout",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		var w io.Writer = cmd.OutOrStdout()
		if runOpts.output != "" {
			f, err := os.Create(runOpts.output)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		if len(args) == 0 {
			return runProgram(ctx, cmd.InOrStdin(), w, cmd.ErrOrStderr())
		}
		for _, arg := range args {
			f, err := os.Open(arg)
			if err != nil {
				return err
			}
			err = runProgram(ctx, f, w, cmd.ErrOrStderr())
			f.Close()
			if err != nil {
				return fmt.Errorf("%s: %w", arg, err)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	addRunFlags(runCmd.Flags(), &runOpts)
}

func readLines(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	return lines, scanner.Err()
}

func runProgram(ctx context.Context, r io.Reader, w, errw io.Writer) error {
	logger, err := opts.logger()
	if err != nil {
		return err
	}
	chain, err := opts.chain()
	if err != nil {
		return err
	}

	pipelineOpts := []processors.Option{processors.WithLogger(logger)}
	reg := prometheus.NewRegistry()
	if runOpts.metrics {
		collector, err := metrics.New(reg)
		if err != nil {
			return err
		}
		pipelineOpts = append(pipelineOpts, processors.WithHooks(collector.Hooks()))
	}

	p, err := config.Build(chain, pipelineOpts...)
	if err != nil {
		return err
	}
	if runOpts.fromLine > 0 {
		p.Add(processors.NewRunFrom(runOpts.fromLine))
	}
	var st *processors.Stats
	if runOpts.stats {
		st = processors.NewStats()
		p.Add(st)
	}

	lines, err := readLines(r)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	state, err := p.ProcessAll(ctx, lines, gcode.NewState(), func(command string) error {
		_, err := fmt.Fprintln(bw, command)
		return err
	})
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if err != nil {
		return err
	}
	logger.Info("processed program", "lines", len(lines), "stages", p.Len(),
		"position", state.CurrentPoint)

	if st != nil {
		printStats(errw, st)
	}
	if runOpts.metrics {
		return metrics.WriteText(errw, reg)
	}
	return nil
}
