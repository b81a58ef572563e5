// Package config loads processor chains from YAML or JSON files and builds them into a
// pipeline.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leftmike/gcodeproc/processors"
)

var (
	ErrUnknownProcessor = errors.New("unknown processor")
	ErrUnknownFormat    = errors.New("unknown config format")
)

// File is a processor chain: the processors in the order they run, and the macros which
// PatternRemover replacements may refer to as %Name%.
type File struct {
	Macros     map[string]string `yaml:"macros,omitempty" json:"macros,omitempty"`
	Processors []ProcessorConfig `yaml:"processors" json:"processors"`
}

// ProcessorConfig names a processor and its arguments. Only optional processors may be
// disabled; a processor is enabled unless Enabled is false.
type ProcessorConfig struct {
	Name     string         `yaml:"name" json:"name"`
	Enabled  *bool          `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	Optional *bool          `yaml:"optional,omitempty" json:"optional,omitempty"`
	Args     map[string]any `yaml:"args,omitempty" json:"args,omitempty"`
}

func (pc ProcessorConfig) active() bool {
	if pc.Optional == nil || !*pc.Optional {
		return true
	}
	return pc.Enabled == nil || *pc.Enabled
}

// Load reads a chain from path; files ending in .json are JSON and everything else is YAML.
func Load(path string) (File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to read config: %w", err)
	}

	format := "yaml"
	if strings.ToLower(filepath.Ext(path)) == ".json" {
		format = "json"
	}
	f, err := Parse(data, format)
	if err != nil {
		return File{}, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a chain in format, either json or yaml.
func Parse(data []byte, format string) (File, error) {
	var f File
	switch strings.ToLower(format) {
	case "json":
		if err := json.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("failed to parse json config: %w", err)
		}
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return File{}, fmt.Errorf("failed to parse yaml config: %w", err)
		}
	default:
		return File{}, fmt.Errorf("%w: %s", ErrUnknownFormat, format)
	}

	for i, pc := range f.Processors {
		if pc.Name == "" {
			return File{}, fmt.Errorf("processor %d: missing name", i)
		}
	}
	return f, nil
}

// Default is the chain used when no config is given.
func Default() File {
	return File{
		Processors: []ProcessorConfig{
			{Name: "CommentProcessor"},
			{Name: "WhitespaceProcessor"},
			{Name: "DecimalProcessor", Args: map[string]any{"decimals": 4}},
			{Name: "M30Processor"},
			{Name: "EmptyLineRemover"},
			{Name: "CommandLengthProcessor", Args: map[string]any{"length": 50}},
		},
	}
}

// Build constructs the processors of f, skipping disabled ones, and adds them to a new
// pipeline.
func Build(f File, opts ...processors.Option) (*processors.Pipeline, error) {
	p := processors.New(opts...)
	for i, pc := range f.Processors {
		if !pc.active() {
			continue
		}

		proc, err := NewProcessor(pc.Name, pc.Args, f.Macros)
		if err != nil {
			return nil, fmt.Errorf("processor %d (%s): %w", i, pc.Name, err)
		}
		p.Add(proc)
	}
	return p, nil
}

// NewProcessor constructs the named processor from its arguments.
func NewProcessor(name string, args map[string]any, macros map[string]string) (
	processors.Processor, error) {

	e, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProcessor, name)
	}
	return e.build(args, macros)
}
