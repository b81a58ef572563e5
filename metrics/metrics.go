// Package metrics counts the commands flowing through each stage of a pipeline.
package metrics

import (
	"fmt"
	"io"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/leftmike/gcodeproc/processors"
)

const namespace = "gcodeproc"

type Collector struct {
	commandsIn  *prometheus.CounterVec
	commandsOut *prometheus.CounterVec
	errors      *prometheus.CounterVec
	expansion   *prometheus.HistogramVec
	duration    *prometheus.HistogramVec
}

// New creates a collector and registers it with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	labels := []string{"stage", "processor"}
	c := &Collector{
		commandsIn: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_commands_in_total",
				Help:      "Commands given to a pipeline stage.",
			},
			labels,
		),
		commandsOut: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_commands_out_total",
				Help:      "Commands returned by a pipeline stage.",
			},
			labels,
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stage_errors_total",
				Help:      "Lines which failed in a pipeline stage.",
			},
			labels,
		),
		expansion: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_expansion_ratio",
				Help:      "Commands out per command in, for each line through a stage.",
				Buckets:   []float64{0, 0.5, 1, 2, 5, 10, 50, 100, 1000},
			},
			labels,
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent by a stage on a line.",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 10, 7),
			},
			labels,
		),
	}

	for _, col := range []prometheus.Collector{c.commandsIn, c.commandsOut, c.errors, c.expansion,
		c.duration} {

		if err := reg.Register(col); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}
	return c, nil
}

// Hooks returns pipeline hooks which record into c.
func (c *Collector) Hooks() processors.Hooks {
	return processors.Hooks{
		OnStage: c.stage,
		OnError: func(evt processors.StageEvent, err error) {
			c.errors.WithLabelValues(strconv.Itoa(evt.Stage), evt.Processor).Inc()
		},
	}
}

func (c *Collector) stage(evt processors.StageEvent) {
	stage := strconv.Itoa(evt.Stage)
	c.commandsIn.WithLabelValues(stage, evt.Processor).Add(float64(evt.In))
	c.commandsOut.WithLabelValues(stage, evt.Processor).Add(float64(evt.Out))
	if evt.In > 0 {
		c.expansion.WithLabelValues(stage, evt.Processor).Observe(float64(evt.Out) /
			float64(evt.In))
	}
	c.duration.WithLabelValues(stage, evt.Processor).Observe(evt.Duration.Seconds())
}

// WriteText writes everything gathered by g in the Prometheus text format.
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
