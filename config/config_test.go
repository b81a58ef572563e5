package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/gcodeproc/config"
	"github.com/leftmike/gcodeproc/gcode"
	"github.com/leftmike/gcodeproc/processors"
)

const chainYAML = `
macros:
  ToolChange: "G91 X0 Y0;"
processors:
  - name: CommentProcessor
  - name: ArcExpander
    args:
      segment_length: 0.5
  - name: FeedOverrideProcessor
    optional: true
    enabled: false
    args:
      percent: 50
  - name: MeshLeveler
    args:
      units: mm
      mesh:
        - [{x: 0, y: 0, z: 0}, {x: 0, y: 10, z: 1}]
        - [{x: 10, y: 0, z: 2}, {x: 10, y: 10, z: 3}]
  - name: PatternRemover
    args:
      pattern: "s/M6\\s*T([0-9]+)/%ToolChange%"
`

const chainJSON = `{
  "processors": [
    {"name": "WhitespaceProcessor"},
    {"name": "DecimalProcessor", "args": {"decimals": "2"}},
    {"name": "SpindleOnDweller", "enabled": false, "args": {"duration": 1}}
  ]
}`

func names(p *processors.Pipeline) []string {
	var ret []string
	for _, proc := range p.Processors() {
		ret = append(ret, processors.Name(proc))
	}
	return ret
}

func TestParseYAML(t *testing.T) {
	f, err := config.Parse([]byte(chainYAML), "yaml")
	require.NoError(t, err)
	assert.Equal(t, "G91 X0 Y0;", f.Macros["ToolChange"])
	require.Len(t, f.Processors, 5)

	p, err := config.Build(f)
	require.NoError(t, err)
	assert.Equal(t,
		[]string{"CommentProcessor", "ArcExpander", "MeshLeveler", "PatternRemover"}, names(p))

	lines, err := p.Process("G1 X10 Y10 Z0", gcode.NewState())
	require.NoError(t, err)
	assert.Equal(t, []string{"G1X10Y10Z3"}, lines)

	lines, err = p.Process("M6 T2 (change)", gcode.NewState())
	require.NoError(t, err)
	assert.Equal(t, []string{"G91 X0 Y0;"}, lines)
}

func TestParseJSON(t *testing.T) {
	f, err := config.Parse([]byte(chainJSON), "json")
	require.NoError(t, err)

	// Only optional processors may be disabled.
	p, err := config.Build(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"WhitespaceProcessor", "DecimalProcessor", "SpindleOnDweller"},
		names(p))

	lines, err := p.Process("G1 X1.23456 M3", gcode.NewState())
	require.NoError(t, err)
	assert.Equal(t, []string{"G1X1.23M3", "G4P1"}, lines)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	yamlPath := filepath.Join(dir, "chain.yaml")
	jsonPath := filepath.Join(dir, "chain.json")
	require.NoError(t, os.WriteFile(yamlPath, []byte(chainYAML), 0644))
	require.NoError(t, os.WriteFile(jsonPath, []byte(chainJSON), 0644))

	f, err := config.Load(yamlPath)
	require.NoError(t, err)
	assert.Len(t, f.Processors, 5)

	f, err = config.Load(jsonPath)
	require.NoError(t, err)
	assert.Len(t, f.Processors, 3)

	_, err = config.Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		data   string
		format string
		err    error
	}{
		{data: "processors: [", format: "yaml"},
		{data: "{", format: "json"},
		{data: "processors: []", format: "toml", err: config.ErrUnknownFormat},
		{data: "processors:\n  - args: {}\n", format: "yaml"},
	}

	for _, c := range cases {
		_, err := config.Parse([]byte(c.data), c.format)
		if err == nil {
			t.Errorf("Parse(%q, %s) did not fail", c.data, c.format)
		} else if c.err != nil && !errors.Is(err, c.err) {
			t.Errorf("Parse(%q, %s) got %s want %s", c.data, c.format, err, c.err)
		}
	}
}

func TestBuildErrors(t *testing.T) {
	cases := []struct {
		pc  config.ProcessorConfig
		err error
	}{
		{pc: config.ProcessorConfig{Name: "Frobnicator"}, err: config.ErrUnknownProcessor},
		{
			pc: config.ProcessorConfig{
				Name: "ArcExpander",
				Args: map[string]any{"segment_length": 0},
			},
			err: processors.ErrInvalidArgument,
		},
		{
			pc: config.ProcessorConfig{
				Name: "LineSplitter",
				Args: map[string]any{"segment": 1},
			},
			err: processors.ErrInvalidArgument,
		},
		{
			pc: config.ProcessorConfig{
				Name: "CommentProcessor",
				Args: map[string]any{"extra": true},
			},
			err: processors.ErrInvalidArgument,
		},
		{
			pc: config.ProcessorConfig{
				Name: "PatternRemover",
				Args: map[string]any{"pattern": "s/M6/%Missing%"},
			},
			err: processors.ErrInvalidArgument,
		},
		{
			pc: config.ProcessorConfig{
				Name: "MeshLeveler",
				Args: map[string]any{"mesh": []any{}},
			},
			err: processors.ErrMeshShape,
		},
		{
			pc: config.ProcessorConfig{
				Name: "Translate",
				Args: map[string]any{"units": "furlong"},
			},
			err: processors.ErrInvalidArgument,
		},
	}

	for _, c := range cases {
		_, err := config.Build(config.File{Processors: []config.ProcessorConfig{c.pc}})
		if !errors.Is(err, c.err) {
			t.Errorf("Build(%s) got %v want %s", c.pc.Name, err, c.err)
		}
	}
}

func TestDefault(t *testing.T) {
	p, err := config.Build(config.Default())
	require.NoError(t, err)
	assert.Equal(t, 6, p.Len())

	cases := []struct {
		s     string
		lines []string
	}{
		{s: "G0 X1.234567 (move)", lines: []string{"G0X1.2346"}},
		{s: "; only a comment", lines: nil},
		{s: "M30", lines: nil},
	}

	for _, c := range cases {
		lines, err := p.Process(c.s, gcode.NewState())
		if err != nil {
			t.Errorf("Process(%q) failed with %s", c.s, err)
		} else {
			assert.Equal(t, c.lines, lines, c.s)
		}
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range config.Names() {
		help, err := config.Help(name)
		require.NoError(t, err)
		assert.NotEmpty(t, help, name)

		_, err = config.Args(name)
		require.NoError(t, err)

		// Every processor builds from its defaults, except those which need arguments.
		proc, err := config.NewProcessor(name, nil, nil)
		switch name {
		case "MeshLeveler", "PatternRemover":
			assert.Error(t, err, name)
		default:
			require.NoError(t, err, name)
			assert.Equal(t, name, processors.Name(proc))
		}
	}

	_, err := config.Help("Frobnicator")
	assert.ErrorIs(t, err, config.ErrUnknownProcessor)
}
