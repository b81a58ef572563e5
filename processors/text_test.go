package processors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/gcodeproc/processors"
)

type textCase struct {
	s     string
	lines []string
}

func testText(t *testing.T, p processors.Processor, cases []textCase) {
	t.Helper()

	for _, c := range cases {
		lines, err := p.Process(c.s, origin())
		if err != nil {
			t.Errorf("%s: Process(%q) failed with %s", processors.Name(p), c.s, err)
		} else {
			assert.Equal(t, c.lines, lines, "%s: %q", processors.Name(p), c.s)
		}
	}
}

func TestCommentProcessor(t *testing.T) {
	testText(t, processors.CommentProcessor{}, []textCase{
		{s: "G0 (move) X1", lines: []string{"G0 X1"}},
		{s: "G0 X1 ; note", lines: []string{"G0 X1"}},
		{s: "(only a comment)", lines: []string{""}},
		{s: "G1 X1 (outer (inner) outer) Y2", lines: []string{"G1 X1 Y2"}},
		{s: "%", lines: []string{""}},
		{s: "G0 X1", lines: []string{"G0 X1"}},
	})
}

func TestWhitespaceProcessor(t *testing.T) {
	testText(t, processors.WhitespaceProcessor{}, []textCase{
		{s: "G0 X1  Y2\t", lines: []string{"G0X1Y2"}},
		{s: "  ", lines: []string{""}},
		{s: "G0X1", lines: []string{"G0X1"}},
	})
}

func TestIdempotent(t *testing.T) {
	cases := []string{
		"G0 (move) X1",
		"G1 X1 Y2 ; note",
		" G1  X1\tY2 ",
	}

	for _, p := range []processors.Processor{
		processors.CommentProcessor{},
		processors.WhitespaceProcessor{},
	} {
		for _, c := range cases {
			once, err := p.Process(c, origin())
			require.NoError(t, err)
			twice, err := p.Process(once[0], origin())
			require.NoError(t, err)
			assert.Equal(t, once, twice, "%s: %q", processors.Name(p), c)
		}
	}
}

func TestEmptyLineRemover(t *testing.T) {
	testText(t, processors.EmptyLineRemover{}, []textCase{
		{s: "", lines: nil},
		{s: " \t", lines: nil},
		{s: "G0 X1", lines: []string{"G0 X1"}},
	})
}

func TestDecimalProcessor(t *testing.T) {
	testText(t, processors.NewDecimalProcessor(2), []textCase{
		{s: "G1 X1.23456", lines: []string{"G1 X1.23"}},
		{s: "G1 X1.2 Y-3.4567", lines: []string{"G1 X1.2 Y-3.46"}},
		{s: "G1 X-0.001", lines: []string{"G1 X0"}},
		{s: "G1 X10", lines: []string{"G1 X10"}},
	})
	testText(t, processors.NewDecimalProcessor(0), []textCase{
		{s: "G1 X1.23456", lines: []string{"G1 X1.23456"}},
	})
}

func TestFeedOverrideProcessor(t *testing.T) {
	testText(t, processors.NewFeedOverrideProcessor(50), []textCase{
		{s: "G1 X1 F100", lines: []string{"G1 X1 F50"}},
		{s: "G1 X1 f 250.5", lines: []string{"G1 X1 f125.25"}},
		{s: "G1 X1", lines: []string{"G1 X1"}},
	})
	testText(t, processors.NewFeedOverrideProcessor(0), []textCase{
		{s: "G1 X1 F100", lines: []string{"G1 X1 F100"}},
	})
}

func TestCommandLengthProcessor(t *testing.T) {
	cl, err := processors.NewCommandLengthProcessor(10)
	require.NoError(t, err)

	lines, err := cl.Process("G1X1", origin())
	require.NoError(t, err)
	assert.Equal(t, []string{"G1X1"}, lines)

	_, err = cl.Process("G1X1.2345Y2.3456", origin())
	assert.ErrorIs(t, err, processors.ErrCommandTooLong)

	_, err = processors.NewCommandLengthProcessor(0)
	assert.ErrorIs(t, err, processors.ErrInvalidArgument)
}

func TestM30Processor(t *testing.T) {
	testText(t, processors.M30Processor{}, []textCase{
		{s: "M30", lines: []string{""}},
		{s: "m030", lines: []string{""}},
		{s: "G1 X1 M30", lines: []string{"G1 X1"}},
		{s: "M300", lines: []string{"M300"}},
		{s: "M3", lines: []string{"M3"}},
	})
}

func TestSpindleOnDweller(t *testing.T) {
	sd, err := processors.NewSpindleOnDweller(2.5)
	require.NoError(t, err)

	testText(t, sd, []textCase{
		{s: "M3 S1000", lines: []string{"M3 S1000", "G4P2.5"}},
		{s: "M4", lines: []string{"M4", "G4P2.5"}},
		{s: "M03", lines: []string{"M03", "G4P2.5"}},
		{s: "M30", lines: []string{"M30"}},
		{s: "M5", lines: []string{"M5"}},
		{s: "(M3)", lines: []string{"(M3)"}},
	})

	_, err = processors.NewSpindleOnDweller(-1)
	assert.ErrorIs(t, err, processors.ErrInvalidArgument)
}

func TestCommandSplitter(t *testing.T) {
	testText(t, processors.CommandSplitter{}, []textCase{
		{s: "G1X1Y1M3S500", lines: []string{"G1X1Y1", "M3S500"}},
		{s: "G0 X1 G1 Y2", lines: []string{"G0X1", "G1Y2"}},
		{s: "G1 X1 S500 T2", lines: []string{"G1X1", "S500", "T2"}},
		{s: "M6 T2", lines: []string{"M6T2"}},
		{s: "G1 X1 F100", lines: []string{"G1X1F100"}},
		{s: "(comment)", lines: []string{"(comment)"}},
	})
}

func TestPatternRemover(t *testing.T) {
	macros := map[string]string{"Macro #1": "G91 X0 Y0;"}

	cases := []struct {
		pattern string
		s       string
		lines   []string
	}{
		{pattern: `^[mM]6\s*[tT]([0-9]+)$`, s: "G90NOR", lines: []string{"G90NOR"}},
		{pattern: `^[mM]6\s*[tT]([0-9]+)$`, s: "M6 T12", lines: []string{""}},
		{pattern: `^[mM]6\s*[tT]([0-9]+)$`, s: "M6T12", lines: []string{""}},
		{pattern: `s/^[mM]6\s*[tT]([0-9]+)$/M123`, s: "G1X1NOS", lines: []string{"G1X1NOS"}},
		{pattern: `s/M6T[0-9]+/M123SED`, s: "M6T12", lines: []string{"M123SED"}},
		{pattern: `s/^[mM]6\s*[tT]([0-9]+)`, s: "M6T12S1000", lines: []string{"S1000"}},
		{pattern: `s/M6\s*T([0-9]+)/T${1}M6`, s: "M6 T7", lines: []string{"T7M6"}},
		{pattern: `s/M6\s*T([0-9]+)/%Macro #1%`, s: "M6 T113", lines: []string{"G91 X0 Y0;"}},
	}

	for _, c := range cases {
		pr, err := processors.NewPatternRemover(c.pattern, macros)
		if err != nil {
			t.Errorf("NewPatternRemover(%q) failed with %s", c.pattern, err)
			continue
		}
		lines, err := pr.Process(c.s, origin())
		if err != nil {
			t.Errorf("Process(%q) failed with %s", c.s, err)
		} else {
			assert.Equal(t, c.lines, lines, "%s: %q", c.pattern, c.s)
		}
	}

	_, err := processors.NewPatternRemover(`s/M6/%Missing%`, macros)
	assert.ErrorIs(t, err, processors.ErrInvalidArgument)
	_, err = processors.NewPatternRemover(`s/[/x`, nil)
	assert.ErrorIs(t, err, processors.ErrInvalidArgument)
}
