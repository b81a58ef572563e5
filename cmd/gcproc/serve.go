package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/leftmike/gcodeproc/config"
	"github.com/leftmike/gcodeproc/gcode"
	"github.com/leftmike/gcodeproc/metrics"
	"github.com/leftmike/gcodeproc/processors"
)

const maxProgramSize = 32 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Process gcode over HTTP",
	Long: `Starts an HTTP server which runs programs posted to /process through the processor
chain. /preview returns a 3D view of the processed toolpath, /processors describes the
processors, and /metrics exposes Prometheus metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetString("port")

		logger, err := opts.logger()
		if err != nil {
			return err
		}
		chain, err := opts.chain()
		if err != nil {
			return err
		}
		// Fail now rather than on the first request.
		if _, err := config.Build(chain); err != nil {
			return err
		}

		handler, err := newHandler(chain, logger, prometheus.NewRegistry())
		if err != nil {
			return err
		}
		srv := &http.Server{
			Addr:              ":" + port,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting server", "addr", srv.Addr)
			serverErrors <- srv.ListenAndServe()
		}()

		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		select {
		case err := <-serverErrors:
			return fmt.Errorf("server: %w", err)

		case sig := <-shutdown:
			logger.Info("shutting down", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown failed", "error", err)
				return srv.Close()
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("port", "p", "8080", "Port to listen on")
}

type server struct {
	chain     config.File
	logger    *slog.Logger
	collector *metrics.Collector
}

func newHandler(chain config.File, logger *slog.Logger, reg *prometheus.Registry) (http.Handler,
	error) {

	collector, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}
	s := &server{
		chain:     chain,
		logger:    logger,
		collector: collector,
	}

	r := chi.NewRouter()
	r.Post("/process", s.process)
	r.Post("/preview", s.preview)
	r.Get("/processors", s.listProcessors)
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r, nil
}

// pipeline builds a new pipeline for each request, since processors keep state for a run.
func (s *server) pipeline(r *http.Request) (*processors.Pipeline, error) {
	p, err := config.Build(s.chain, processors.WithLogger(s.logger),
		processors.WithHooks(s.collector.Hooks()))
	if err != nil {
		return nil, err
	}

	if v := r.URL.Query().Get("from_line"); v != "" {
		line, err := strconv.Atoi(v)
		if err != nil || line < 0 {
			return nil, fmt.Errorf("%w: from_line: %q", processors.ErrInvalidArgument, v)
		}
		p.Add(processors.NewRunFrom(line))
	}
	return p, nil
}

func (s *server) run(w http.ResponseWriter, r *http.Request, p *processors.Pipeline,
	sink processors.Sink) bool {

	lines, err := readLines(http.MaxBytesReader(w, r.Body, maxProgramSize))
	if err != nil {
		http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
		return false
	}

	_, err = p.ProcessAll(r.Context(), lines, gcode.NewState(), sink)
	if err != nil {
		s.logger.Debug("program failed", "error", err)
		http.Error(w, err.Error(), errorStatus(err))
		return false
	}
	return true
}

func errorStatus(err error) int {
	var se *processors.StageError
	switch {
	case errors.As(err, &se), errors.Is(err, gcode.ErrParse):
		return http.StatusUnprocessableEntity
	case errors.Is(err, processors.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *server) process(w http.ResponseWriter, r *http.Request) {
	p, err := s.pipeline(r)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}

	var out strings.Builder
	ok := s.run(w, r, p, func(command string) error {
		out.WriteString(command)
		out.WriteByte('\n')
		return nil
	})
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	io.WriteString(w, out.String())
}

func (s *server) preview(w http.ResponseWriter, r *http.Request) {
	p, err := s.pipeline(r)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	st := processors.NewStats()
	p.Add(st)

	tp := newToolpath()
	if !s.run(w, r, p, tp.add) {
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		title = "toolpath"
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := writePreview(w, title, tp, st); err != nil {
		s.logger.Error("preview failed", "error", err)
	}
}

type processorInfo struct {
	Name string       `json:"name"`
	Help string       `json:"help"`
	Args []config.Arg `json:"args,omitempty"`
}

func (s *server) listProcessors(w http.ResponseWriter, r *http.Request) {
	var infos []processorInfo
	for _, name := range config.Names() {
		help, _ := config.Help(name)
		args, _ := config.Args(name)
		infos = append(infos, processorInfo{Name: name, Help: help, Args: args})
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		s.logger.Error("encoding processors failed", "error", err)
	}
}
