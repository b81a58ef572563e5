package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/gcodeproc/gcode"
	"github.com/leftmike/gcodeproc/processors"
)

func TestReadLines(t *testing.T) {
	cases := []struct {
		s    string
		want []string
	}{
		{s: "", want: nil},
		{s: "G0 X1", want: []string{"G0 X1"}},
		{s: "G0 X1\n\nG1 Y2\n", want: []string{"G0 X1", "", "G1 Y2"}},
		{s: "G0 X1\r\nG1 Y2\r\n", want: []string{"G0 X1", "G1 Y2"}},
	}

	for _, c := range cases {
		lines, err := readLines(strings.NewReader(c.s))
		require.NoError(t, err)
		assert.Equal(t, c.want, lines, "readLines(%q)", c.s)
	}

	_, err := readLines(strings.NewReader(strings.Repeat("X", 2*1024*1024)))
	assert.Error(t, err)
}

func withOptions(t *testing.T, g globalOptions, r runOptions) {
	t.Helper()

	savedOpts, savedRunOpts := opts, runOpts
	opts, runOpts = g, r
	t.Cleanup(func() {
		opts, runOpts = savedOpts, savedRunOpts
	})
}

func TestRunProgram(t *testing.T) {
	withOptions(t, globalOptions{logLevel: "error"}, runOptions{stats: true})

	var out, errOut bytes.Buffer
	err := runProgram(context.Background(),
		strings.NewReader("G21 (mm)\nG0 X1.234567 Y2\n\nG1 X5 M30\n"), &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "G21\nG0X1.2346Y2\nG1X5\n", out.String())
	assert.Contains(t, errOut.String(), "3")
	assert.Contains(t, errOut.String(), "X 0..5")
}

func TestRunProgramConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
processors:
  - name: WhitespaceProcessor
  - name: LineSplitter
    args:
      max_segment_length: 5
`), 0644))
	withOptions(t, globalOptions{configPath: path, logLevel: "error"},
		runOptions{metrics: true})

	var out, errOut bytes.Buffer
	err := runProgram(context.Background(), strings.NewReader("G1 X10\n"), &out, &errOut)
	require.NoError(t, err)
	assert.Equal(t, "G1X5Y0Z0\nG1X10Y0Z0\n", out.String())
	assert.Contains(t, errOut.String(),
		`gcodeproc_stage_commands_out_total{processor="LineSplitter",stage="1"} 2`)
}

func TestRunProgramErrors(t *testing.T) {
	withOptions(t, globalOptions{logLevel: "error"}, runOptions{})

	var out, errOut bytes.Buffer
	err := runProgram(context.Background(),
		strings.NewReader("G0 X1\nG0 X1111.1111 Y2222.2222 Z3333.3333 F1000.5 S20000.5 M3 M8\n"), &out, &errOut)
	require.Error(t, err)
	var se *processors.StageError
	require.True(t, errors.As(err, &se))
	assert.True(t, errors.Is(err, processors.ErrCommandTooLong))
	assert.Equal(t, "CommandLengthProcessor", se.Processor)

	var buf bytes.Buffer
	printError(&buf, err)
	assert.Contains(t, buf.String(), "Error:")
	assert.Contains(t, buf.String(), "command too long")

	withOptions(t, globalOptions{logLevel: "loud"}, runOptions{})
	err = runProgram(context.Background(), strings.NewReader("G0 X1\n"), &out, &errOut)
	assert.Error(t, err)

	withOptions(t, globalOptions{configPath: "missing.yaml"}, runOptions{})
	err = runProgram(context.Background(), strings.NewReader("G0 X1\n"), &out, &errOut)
	assert.Error(t, err)
}

func TestProcessorsMarkdown(t *testing.T) {
	md, err := processorsMarkdown([]string{"CommentProcessor", "LineSplitter"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Processors\n"))
	assert.Contains(t, md, "\n## CommentProcessor\n\nRemoves comments.\n")
	assert.Contains(t, md, "| `max_segment_length` | 1 | longest segment in mm |\n")
	assert.Equal(t, 1, strings.Count(md, "| argument |"))

	_, err = processorsMarkdown([]string{"NoSuchProcessor"})
	assert.Error(t, err)

	var buf bytes.Buffer
	require.NoError(t, render(&buf, md))
	assert.Equal(t, md, buf.String())
}

func TestPrintStats(t *testing.T) {
	st := processors.NewStats()
	_, err := st.Process("G0 X-1 Y2", gcode.NewState())
	require.NoError(t, err)

	var buf bytes.Buffer
	printStats(&buf, st)
	assert.Contains(t, buf.String(), "X -1..0  Y 0..2  Z 0..0")
}
