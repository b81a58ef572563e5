package gcode

import (
	"strings"
)

// Code is a G or M code, such as G1 or G38.2, or one of the single letter codes F, S, and T.
type Code string

type ModalGroup byte

const (
	UnknownGroup ModalGroup = iota
	NonModalGroup
	MotionGroup
	PlaneGroup
	DistanceGroup
	ArcDistanceGroup
	FeedModeGroup
	UnitsGroup
	CutterGroup
	ToolLengthGroup
	CannedCycleGroup
	WorkOffsetGroup
	ControlGroup
	SpindleSpeedModeGroup
	StoppingGroup
	SpindleGroup
	CoolantGroup
	OverrideGroup
	FeedRateGroup
	SpindleSpeedGroup
	ToolGroup
)

const (
	Unknown Code = ""

	G4    Code = "G4"
	G10   Code = "G10"
	G28   Code = "G28"
	G30   Code = "G30"
	G53   Code = "G53"
	G92   Code = "G92"
	G92_1 Code = "G92.1"
	G92_2 Code = "G92.2"
	G92_3 Code = "G92.3"

	G0    Code = "G0"
	G1    Code = "G1"
	G2    Code = "G2"
	G3    Code = "G3"
	G33   Code = "G33"
	G38_2 Code = "G38.2"
	G38_3 Code = "G38.3"
	G38_4 Code = "G38.4"
	G38_5 Code = "G38.5"
	G73   Code = "G73"
	G76   Code = "G76"
	G80   Code = "G80"
	G81   Code = "G81"
	G82   Code = "G82"
	G83   Code = "G83"
	G84   Code = "G84"
	G85   Code = "G85"
	G86   Code = "G86"
	G87   Code = "G87"
	G88   Code = "G88"
	G89   Code = "G89"

	G17 Code = "G17"
	G18 Code = "G18"
	G19 Code = "G19"

	G90   Code = "G90"
	G91   Code = "G91"
	G90_1 Code = "G90.1"
	G91_1 Code = "G91.1"

	G93 Code = "G93"
	G94 Code = "G94"
	G95 Code = "G95"

	G20 Code = "G20"
	G21 Code = "G21"

	G40 Code = "G40"
	G41 Code = "G41"
	G42 Code = "G42"

	G43   Code = "G43"
	G43_1 Code = "G43.1"
	G49   Code = "G49"

	G98 Code = "G98"
	G99 Code = "G99"

	G54   Code = "G54"
	G55   Code = "G55"
	G56   Code = "G56"
	G57   Code = "G57"
	G58   Code = "G58"
	G59   Code = "G59"
	G59_1 Code = "G59.1"
	G59_2 Code = "G59.2"
	G59_3 Code = "G59.3"

	G61   Code = "G61"
	G61_1 Code = "G61.1"
	G64   Code = "G64"

	G96 Code = "G96"
	G97 Code = "G97"

	M0  Code = "M0"
	M1  Code = "M1"
	M2  Code = "M2"
	M30 Code = "M30"
	M60 Code = "M60"

	M3 Code = "M3"
	M4 Code = "M4"
	M5 Code = "M5"

	M7 Code = "M7"
	M8 Code = "M8"
	M9 Code = "M9"

	M48 Code = "M48"
	M49 Code = "M49"

	F Code = "F"
	S Code = "S"
	T Code = "T"
)

type codeInfo struct {
	group ModalGroup

	// axisWords is set for the non-modal codes which use the axis words of the line.
	axisWords bool

	// motionOptional is set for the codes which may appear without any axis words.
	motionOptional bool
}

var (
	codes = map[Code]codeInfo{
		G4:    {group: NonModalGroup},
		G10:   {group: NonModalGroup, axisWords: true},
		G28:   {group: NonModalGroup, axisWords: true, motionOptional: true},
		G30:   {group: NonModalGroup, axisWords: true, motionOptional: true},
		G53:   {group: NonModalGroup},
		G92:   {group: NonModalGroup, axisWords: true},
		G92_1: {group: NonModalGroup},
		G92_2: {group: NonModalGroup},
		G92_3: {group: NonModalGroup},

		G0:    {group: MotionGroup, motionOptional: true},
		G1:    {group: MotionGroup, motionOptional: true},
		G2:    {group: MotionGroup, motionOptional: true},
		G3:    {group: MotionGroup, motionOptional: true},
		G33:   {group: MotionGroup},
		G38_2: {group: MotionGroup},
		G38_3: {group: MotionGroup},
		G38_4: {group: MotionGroup},
		G38_5: {group: MotionGroup},
		G73:   {group: MotionGroup},
		G76:   {group: MotionGroup},
		G80:   {group: MotionGroup, motionOptional: true},
		G81:   {group: MotionGroup},
		G82:   {group: MotionGroup},
		G83:   {group: MotionGroup},
		G84:   {group: MotionGroup},
		G85:   {group: MotionGroup},
		G86:   {group: MotionGroup},
		G87:   {group: MotionGroup},
		G88:   {group: MotionGroup},
		G89:   {group: MotionGroup},

		G17: {group: PlaneGroup},
		G18: {group: PlaneGroup},
		G19: {group: PlaneGroup},

		G90:   {group: DistanceGroup},
		G91:   {group: DistanceGroup},
		G90_1: {group: ArcDistanceGroup},
		G91_1: {group: ArcDistanceGroup},

		G93: {group: FeedModeGroup},
		G94: {group: FeedModeGroup},
		G95: {group: FeedModeGroup},

		G20: {group: UnitsGroup},
		G21: {group: UnitsGroup},

		G40: {group: CutterGroup},
		G41: {group: CutterGroup},
		G42: {group: CutterGroup},

		G43:   {group: ToolLengthGroup},
		G43_1: {group: ToolLengthGroup},
		G49:   {group: ToolLengthGroup},

		G98: {group: CannedCycleGroup},
		G99: {group: CannedCycleGroup},

		G54:   {group: WorkOffsetGroup},
		G55:   {group: WorkOffsetGroup},
		G56:   {group: WorkOffsetGroup},
		G57:   {group: WorkOffsetGroup},
		G58:   {group: WorkOffsetGroup},
		G59:   {group: WorkOffsetGroup},
		G59_1: {group: WorkOffsetGroup},
		G59_2: {group: WorkOffsetGroup},
		G59_3: {group: WorkOffsetGroup},

		G61:   {group: ControlGroup},
		G61_1: {group: ControlGroup},
		G64:   {group: ControlGroup},

		G96: {group: SpindleSpeedModeGroup},
		G97: {group: SpindleSpeedModeGroup},

		M0:  {group: StoppingGroup},
		M1:  {group: StoppingGroup},
		M2:  {group: StoppingGroup},
		M30: {group: StoppingGroup},
		M60: {group: StoppingGroup},

		M3: {group: SpindleGroup},
		M4: {group: SpindleGroup},
		M5: {group: SpindleGroup},

		M7: {group: CoolantGroup},
		M8: {group: CoolantGroup},
		M9: {group: CoolantGroup},

		M48: {group: OverrideGroup},
		M49: {group: OverrideGroup},

		F: {group: FeedRateGroup},
		S: {group: SpindleSpeedGroup},
		T: {group: ToolGroup},
	}

	// The order in which the codes of a single line are executed; motion is always last.
	executionOrder = map[ModalGroup]int{
		FeedModeGroup:         1,
		FeedRateGroup:         2,
		SpindleSpeedGroup:     3,
		ToolGroup:             4,
		SpindleGroup:          5,
		CoolantGroup:          6,
		OverrideGroup:         7,
		PlaneGroup:            8,
		UnitsGroup:            9,
		CutterGroup:           10,
		ToolLengthGroup:       11,
		WorkOffsetGroup:       12,
		ControlGroup:          13,
		SpindleSpeedModeGroup: 14,
		DistanceGroup:         15,
		ArcDistanceGroup:      16,
		CannedCycleGroup:      17,
		StoppingGroup:         18,
		NonModalGroup:         19,
		MotionGroup:           20,
	}
)

// LookupCode returns the code for a letter and the number which follows it, as written, such
// as "G", "01". Leading zeros are ignored. Unknown codes return Unknown.
func LookupCode(letter byte, num string) Code {
	num = strings.TrimLeft(num, "0")
	if num == "" || num[0] == '.' {
		num = "0" + num
	}
	if i := strings.IndexByte(num, '.'); i >= 0 {
		num = strings.TrimRight(num, "0")
		num = strings.TrimSuffix(num, ".")
	}

	c := Code(string(upcaseByte(letter)) + num)
	if _, ok := codes[c]; !ok {
		return Unknown
	}
	return c
}

func (c Code) Group() ModalGroup {
	return codes[c].group
}

// ConsumesMotion reports whether the code uses the axis words of the line.
func (c Code) ConsumesMotion() bool {
	info := codes[c]
	return info.group == MotionGroup || info.axisWords
}

// MotionOptional reports whether the code may be used without any axis words.
func (c Code) MotionOptional() bool {
	return codes[c].motionOptional
}

func (c Code) String() string {
	return string(c)
}

func (c Code) order() int {
	return executionOrder[c.Group()]
}
