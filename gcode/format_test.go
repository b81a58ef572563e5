package gcode_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leftmike/gcodeproc/gcode"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		v        float64
		decimals int
		want     string
	}{
		{1.23456, 2, "1.23"},
		{1.23456, 4, "1.2346"},
		{1.0, 4, "1"},
		{10, 4, "10"},
		{-2.5, 4, "-2.5"},
		{-0.00001, 4, "0"},
		{0, 4, "0"},
		{1.5, -1, "1.5"},
		{100, 0, "100"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, gcode.FormatNumber(c.v, c.decimals), "FormatNumber(%g, %d)", c.v,
			c.decimals)
	}
}

func TestGenerateLineFromPoints(t *testing.T) {
	nan := math.NaN()
	cases := []struct {
		code       gcode.Code
		start, end gcode.Position
		absolute   bool
		want       string
	}{
		{gcode.G1, gcode.NewPosition(0, 0, 0, gcode.MM), gcode.NewPosition(1, 2, 3, gcode.MM),
			true, "G1X1Y2Z3"},
		{gcode.G1, gcode.NewPosition(1, 1, 1, gcode.MM), gcode.NewPosition(2, 3, 1, gcode.MM),
			false, "G1X1Y2Z0"},
		{gcode.G0, gcode.UnknownPosition(gcode.MM), gcode.NewPosition(1, nan, nan, gcode.MM),
			true, "G0X1"},
		{gcode.G1, gcode.NewPosition(0, 0, 0, gcode.Inch), gcode.NewPosition(25.4, 0, 0, gcode.MM),
			true, "G1X1Y0Z0"},
		{gcode.G1, gcode.NewPosition(0, 0, 0, gcode.MM),
			gcode.Position{X: 1, Y: 1.000049, Z: 0, A: 90, B: nan, C: nan}, true,
			"G1X1Y1Z0A90"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, gcode.GenerateLineFromPoints(c.code, c.start, c.end, c.absolute,
			gcode.DefaultDecimals))
	}
}

func TestExtractMotion(t *testing.T) {
	cases := []struct {
		s, motion, rest string
	}{
		{"G17 G20 G02 X5 Y0 R12 S1300", "G02X5Y0R12", "G17G20S1300"},
		{"G1 X1 Y1 F100", "G1X1Y1", "F100"},
		{"X1 Y1", "X1Y1", ""},
		{"M3 S1000", "", "M3S1000"},
		{"G38.2 Z-10 F10 (touch off)", "G38.2Z-10", "F10"},
		{"G2 X1 Y1 I1 J0 K0 P2", "G2X1Y1I1J0K0", "P2"},
	}

	for _, c := range cases {
		motion, rest, err := gcode.ExtractMotion(c.s)
		require.NoError(t, err, c.s)
		assert.Equal(t, c.motion, motion, c.s)
		assert.Equal(t, c.rest, rest, c.s)
	}
}

func TestOverrideAxis(t *testing.T) {
	cases := []struct {
		s      string
		letter byte
		v      float64
		want   string
	}{
		{"G1 X1 Z2", 'Z', 3.5, "G1X1Z3.5"},
		{"G1 X1", 'Z', -1, "G1X1Z-1"},
		{"G0 X1 Y2 F100", 'Y', 0.123456, "G0X1Y0.1235F100"},
	}

	for _, c := range cases {
		got, err := gcode.OverrideAxis(c.s, c.letter, c.v, gcode.DefaultDecimals)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, c.s)
	}

	_, err := gcode.OverrideAxis("G1 X", 'Z', 1, gcode.DefaultDecimals)
	assert.ErrorIs(t, err, gcode.ErrParse)
}

func TestRemoveComment(t *testing.T) {
	cases := []struct {
		s, want string
	}{
		{"G0 (move) X1", "G0 X1"},
		{"G0 X1 ; note", "G0 X1"},
		{"G0 X1 % note", "G0 X1"},
		{"(a (b) c)G1", "G1"},
		{"(comment) G1", "G1"},
		{"G1 X1", "G1 X1"},
		{"(only a comment)", ""},
		{"G1 (open", "G1"},
		{"", ""},
	}

	for _, c := range cases {
		got := gcode.RemoveComment(c.s)
		assert.Equal(t, c.want, got, c.s)
		assert.Equal(t, got, gcode.RemoveComment(got), "idempotent: %s", c.s)
	}
}

func TestParseComment(t *testing.T) {
	cases := []struct {
		s, want string
	}{
		{"G0 (move) X1 ; note", "move note"},
		{"(a (b) c)G1", "a (b) c"},
		{"G1 X1", ""},
		{"; just a note", "just a note"},
	}

	for _, c := range cases {
		assert.Equal(t, c.want, gcode.ParseComment(c.s), c.s)
	}
}

func TestSplitCommand(t *testing.T) {
	cases := []struct {
		s    string
		want []string
	}{
		{"G1X1Y1M3S500", []string{"G1X1Y1", "M3S500"}},
		{"G21 G90 G0 X1", []string{"G21", "G90", "G0X1"}},
		{"M6 T2", []string{"M6T2"}},
		{"S100 T1", []string{"S100", "T1"}},
		{"(just a comment)", []string{"(just a comment)"}},
	}

	for _, c := range cases {
		got, err := gcode.SplitCommand(c.s)
		if err != nil {
			t.Errorf("SplitCommand(%q) failed with %s", c.s, err)
		} else {
			assert.Equal(t, c.want, got, c.s)
		}
	}
}

func TestNormalizeCommand(t *testing.T) {
	state := gcode.NewState()
	state.MotionMode = gcode.G1
	state.Feed = 100
	state.SpindleSpeed = 1000

	cases := []struct {
		s, want string
	}{
		{"X1 Y2", "F100S1000G1X1Y2"},
		{"G0 Y11", "F100S1000G0Y11"},
		{"X1 F50 M8", "F50S1000G1X1M8"},
		{"M5", "F100S1000M5"},
	}

	for _, c := range cases {
		got, err := gcode.NormalizeCommand(c.s, state, gcode.DefaultDecimals)
		if err != nil {
			t.Errorf("NormalizeCommand(%q) failed with %s", c.s, err)
		} else if got != c.want {
			t.Errorf("NormalizeCommand(%q) got %s want %s", c.s, got, c.want)
		}
	}
}
