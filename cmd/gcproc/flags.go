package main

import (
	"log/slog"

	flag "github.com/spf13/pflag"

	"github.com/leftmike/gcodeproc/config"
	"github.com/leftmike/gcodeproc/internal/logging"
)

type globalOptions struct {
	configPath string
	logLevel   string
	verbose    int
}

func addGlobalFlags(fs *flag.FlagSet, g *globalOptions) {
	fs.StringVarP(&g.configPath, "config", "c", "",
		"Processor chain (YAML or JSON); the default chain when empty")
	fs.StringVar(&g.logLevel, "log-level", "warn", "Log level: debug, info, warn, or error")
	fs.CountVarP(&g.verbose, "verbose", "v", "Increase verbosity (repeatable)")
}

// logger uses --log-level, lowered by one level for each -v.
func (g *globalOptions) logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(g.logLevel)
	if err != nil {
		return nil, err
	}
	level -= slog.Level(4 * g.verbose)
	if level < slog.LevelDebug {
		level = slog.LevelDebug
	}
	return logging.New(level), nil
}

func (g *globalOptions) chain() (config.File, error) {
	if g.configPath == "" {
		return config.Default(), nil
	}
	return config.Load(g.configPath)
}

type runOptions struct {
	fromLine int
	stats    bool
	metrics  bool
	output   string
}

func addRunFlags(fs *flag.FlagSet, r *runOptions) {
	fs.IntVarP(&r.fromLine, "from-line", "f", 0,
		"Skip to this line, counting from 0, restoring the machine state first")
	fs.BoolVar(&r.stats, "stats", false, "Print the bounds and command count to stderr")
	fs.BoolVar(&r.metrics, "metrics", false, "Print pipeline metrics to stderr")
	fs.StringVarP(&r.output, "output", "o", "", "Write to this file instead of stdout")
}
