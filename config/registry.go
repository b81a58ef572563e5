package config

import (
	"fmt"
	"sort"

	"github.com/mitchellh/mapstructure"

	"github.com/leftmike/gcodeproc/gcode"
	"github.com/leftmike/gcodeproc/processors"
)

// Arg describes one argument of a processor.
type Arg struct {
	Name        string `json:"name"`
	Default     string `json:"default,omitempty"`
	Description string `json:"description"`
}

type entry struct {
	help  string
	args  []Arg
	build func(args map[string]any, macros map[string]string) (processors.Processor, error)
}

type arcSettings struct {
	SegmentLength  float64 `mapstructure:"segment_length"`
	ConvertToLines bool    `mapstructure:"convert_to_lines"`
	Decimals       int     `mapstructure:"decimals"`
}

type lineSettings struct {
	MaxSegmentLength float64 `mapstructure:"max_segment_length"`
	Decimals         int     `mapstructure:"decimals"`
}

type meshPoint struct {
	X float64 `mapstructure:"x"`
	Y float64 `mapstructure:"y"`
	Z float64 `mapstructure:"z"`
}

type meshSettings struct {
	MaterialHeight float64       `mapstructure:"material_surface_height"`
	Units          string        `mapstructure:"units"`
	Mesh           [][]meshPoint `mapstructure:"mesh"`
	Decimals       int           `mapstructure:"decimals"`
}

type rotateSettings struct {
	CenterX  float64 `mapstructure:"center_x"`
	CenterY  float64 `mapstructure:"center_y"`
	Degrees  float64 `mapstructure:"degrees"`
	Units    string  `mapstructure:"units"`
	Decimals int     `mapstructure:"decimals"`
}

type translateSettings struct {
	X        float64 `mapstructure:"x"`
	Y        float64 `mapstructure:"y"`
	Z        float64 `mapstructure:"z"`
	Units    string  `mapstructure:"units"`
	Decimals int     `mapstructure:"decimals"`
}

var registry = map[string]entry{
	"ArcExpander": {
		help: "Expands G2 and G3 arcs into G1 lines.",
		args: []Arg{
			{"segment_length", "1", "length of each line in mm"},
			{"convert_to_lines", "true", "must be true; arcs can not be split into smaller arcs"},
			{"decimals", "4", "fraction digits in generated commands"},
		},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			s := arcSettings{SegmentLength: 1, ConvertToLines: true, Decimals: gcode.DefaultDecimals}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewArcExpander(s.ConvertToLines, s.SegmentLength, s.Decimals)
		},
	},
	"LineSplitter": {
		help: "Splits long G0 and G1 moves into equal segments.",
		args: []Arg{
			{"max_segment_length", "1", "longest segment in mm"},
			{"decimals", "4", "fraction digits in generated commands"},
		},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			s := lineSettings{MaxSegmentLength: 1, Decimals: gcode.DefaultDecimals}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewLineSplitter(s.MaxSegmentLength, s.Decimals)
		},
	},
	"Simplifier": {
		help: "Removes G1 moves shorter than a minimum length.",
		args: []Arg{{"min_segment_length", "0.1", "shortest move kept in mm; 0 keeps every move"}},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			var s struct {
				MinSegmentLength float64 `mapstructure:"min_segment_length"`
			}
			s.MinSegmentLength = 0.1
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewSimplifier(s.MinSegmentLength)
		},
	},
	"MeshLeveler": {
		help: "Adjusts Z to follow a measured surface mesh.",
		args: []Arg{
			{"mesh", "", "grid of measured points: a list of columns, each a list of {x, y, z}"},
			{"units", "mm", "units of the mesh: mm or inch"},
			{"material_surface_height", "0", "Z of the material surface in mm"},
			{"decimals", "4", "fraction digits in generated commands"},
		},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			s := meshSettings{Units: "mm", Decimals: gcode.DefaultDecimals}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			units, err := parseUnits(s.Units)
			if err != nil {
				return nil, err
			}

			mesh := make([][]gcode.Position, len(s.Mesh))
			for i := range s.Mesh {
				for _, pt := range s.Mesh[i] {
					mesh[i] = append(mesh[i], gcode.NewPosition(pt.X, pt.Y, pt.Z, units))
				}
			}
			return processors.NewMeshLeveler(s.MaterialHeight, mesh, s.Decimals)
		},
	},
	"Rotate": {
		help: "Rotates the XY plane about a center point; arcs become lines.",
		args: []Arg{
			{"degrees", "0", "counterclockwise rotation"},
			{"center_x", "0", "X of the center"},
			{"center_y", "0", "Y of the center"},
			{"units", "mm", "units of the center: mm or inch"},
			{"decimals", "4", "fraction digits in generated commands"},
		},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			s := rotateSettings{Units: "mm", Decimals: gcode.DefaultDecimals}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			units, err := parseUnits(s.Units)
			if err != nil {
				return nil, err
			}
			return processors.NewRotate(gcode.NewPosition(s.CenterX, s.CenterY, 0, units),
				s.Degrees, s.Decimals)
		},
	},
	"Translate": {
		help: "Moves every point by an offset; arcs become lines.",
		args: []Arg{
			{"x", "0", "X offset"},
			{"y", "0", "Y offset"},
			{"z", "0", "Z offset"},
			{"units", "mm", "units of the offset: mm or inch"},
			{"decimals", "4", "fraction digits in generated commands"},
		},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			s := translateSettings{Units: "mm", Decimals: gcode.DefaultDecimals}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			units, err := parseUnits(s.Units)
			if err != nil {
				return nil, err
			}
			return processors.NewTranslate(gcode.NewPosition(s.X, s.Y, s.Z, units), s.Decimals)
		},
	},
	"RunFrom": {
		help: "Skips to a line, first restoring the state the skipped lines leave behind.",
		args: []Arg{{"line", "0", "number of the first line to run, counting from 0; 0 runs everything"}},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			var s struct {
				Line int `mapstructure:"line"`
			}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			if s.Line < 0 {
				return nil, fmt.Errorf("%w: line must not be negative: %d",
					processors.ErrInvalidArgument, s.Line)
			}
			return processors.NewRunFrom(s.Line), nil
		},
	},
	"CommentProcessor":    simple("Removes comments.", processors.CommentProcessor{}),
	"WhitespaceProcessor": simple("Removes whitespace.", processors.WhitespaceProcessor{}),
	"EmptyLineRemover":    simple("Removes empty lines.", processors.EmptyLineRemover{}),
	"M30Processor":        simple("Removes M30 commands.", processors.M30Processor{}),
	"CommandSplitter": simple("Splits lines into one command per line.",
		processors.CommandSplitter{}),
	"Stats": {
		help: "Collects the bounds of the moves and the number of commands.",
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			if err := decode(args, &struct{}{}); err != nil {
				return nil, err
			}
			return processors.NewStats(), nil
		},
	},
	"DecimalProcessor": {
		help: "Rounds numbers to a number of decimal places.",
		args: []Arg{{"decimals", "4", "fraction digits kept; 0 leaves numbers alone"}},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			var s struct {
				Decimals int `mapstructure:"decimals"`
			}
			s.Decimals = gcode.DefaultDecimals
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewDecimalProcessor(s.Decimals), nil
		},
	},
	"FeedOverrideProcessor": {
		help: "Scales feed rates by a percentage.",
		args: []Arg{{"percent", "100", "new feed rate as a percentage of the old"}},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			var s struct {
				Percent float64 `mapstructure:"percent"`
			}
			s.Percent = 100
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewFeedOverrideProcessor(s.Percent), nil
		},
	},
	"CommandLengthProcessor": {
		help: "Fails on commands longer than a controller can buffer.",
		args: []Arg{{"length", "50", "longest command in characters"}},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			var s struct {
				Length int `mapstructure:"length"`
			}
			s.Length = 50
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewCommandLengthProcessor(s.Length)
		},
	},
	"SpindleOnDweller": {
		help: "Dwells after the spindle is started.",
		args: []Arg{{"duration", "2.5", "seconds to dwell"}},
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			var s struct {
				Duration float64 `mapstructure:"duration"`
			}
			s.Duration = 2.5
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			return processors.NewSpindleOnDweller(s.Duration)
		},
	},
	"PatternRemover": {
		help: "Removes, or with s/pattern/replacement replaces, text matching a regular expression.",
		args: []Arg{{"pattern", "", "regular expression; a replacement of %Name% uses a macro"}},
		build: func(args map[string]any, macros map[string]string) (processors.Processor, error) {
			var s struct {
				Pattern string `mapstructure:"pattern"`
			}
			if err := decode(args, &s); err != nil {
				return nil, err
			}
			if s.Pattern == "" {
				return nil, fmt.Errorf("%w: missing pattern", processors.ErrInvalidArgument)
			}
			return processors.NewPatternRemover(s.Pattern, macros)
		},
	},
}

func simple(help string, proc processors.Processor) entry {
	return entry{
		help: help,
		build: func(args map[string]any, _ map[string]string) (processors.Processor, error) {
			if err := decode(args, &struct{}{}); err != nil {
				return nil, err
			}
			return proc, nil
		},
	}
}

// decode fills out from args; numbers given as strings are accepted, unknown arguments are not.
func decode(args map[string]any, out any) error {
	if len(args) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(args); err != nil {
		return fmt.Errorf("%w: %s", processors.ErrInvalidArgument, err)
	}
	return nil
}

func parseUnits(s string) (gcode.Units, error) {
	switch s {
	case "mm", "":
		return gcode.MM, nil
	case "inch", "in":
		return gcode.Inch, nil
	}
	return gcode.MM, fmt.Errorf("%w: units must be mm or inch: %s", processors.ErrInvalidArgument,
		s)
}

// Names returns the names of the processors, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Help returns a description of the named processor.
func Help(name string) (string, error) {
	e, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownProcessor, name)
	}
	return e.help, nil
}

// Args returns the arguments the named processor accepts.
func Args(name string) ([]Arg, error) {
	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcessor, name)
	}
	return e.args, nil
}
