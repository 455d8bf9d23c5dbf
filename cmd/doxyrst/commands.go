package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/doxyrst/internal/config"
	"github.com/dgallion1/doxyrst/internal/metrics"
	"github.com/dgallion1/doxyrst/internal/pipeline"
)

// InputArgs are the positional arguments shared by build and clean.
type InputArgs struct {
	SphinxSource string   `arg:"" name:"sphinx-source" help:"Sphinx source directory." type:"existingdir"`
	SphinxOutput string   `arg:"" name:"sphinx-output" help:"Sphinx output directory." type:"path"`
	Inputs       []string `arg:"" name:"input" help:"Doxygen html output directory or Doxyfile." type:"path"`
}

func (a InputArgs) request(force bool) pipeline.Request {
	return pipeline.Request{
		SphinxSource: a.SphinxSource,
		SphinxOutput: a.SphinxOutput,
		Inputs:       a.Inputs,
		Force:        force,
	}
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	InputArgs `embed:""`

	Force         bool `short:"f" help:"Regenerate every page regardless of recorded hashes."`
	Workers       int  `short:"j" help:"Parallel conversion workers (default: number of CPUs)."`
	Watch         bool `short:"w" help:"Keep running and rebuild when the Doxygen output changes."`
	SkipResources bool `name:"skip-resources" help:"Do not copy html resources to the Sphinx output."`
}

func (c *BuildCmd) Run(cli *CLI) error {
	cfg, log, err := setup(cli)
	if err != nil {
		return err
	}
	if c.Force {
		cfg.Force = true
	}
	if c.Workers > 0 {
		cfg.Workers = c.Workers
	}
	if c.SkipResources {
		cfg.SkipResources = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := newRunner(cfg, log, nil)
	req := c.request(cfg.Force)
	start := time.Now()
	sums, err := runner.Build(ctx, req)
	logTotals(log, "build", sums, time.Since(start))
	if err != nil && (!c.Watch || pipeline.IsFatal(err)) {
		return err
	}
	if !c.Watch {
		return nil
	}
	if err != nil {
		log.Warn("initial build had failures; watching anyway", "error", err)
	}

	dirs, err := pipeline.ResolveInputs(req, log)
	if err != nil {
		return err
	}
	return pipeline.NewWatcher(runner, req, cfg.WatchDebounce, log).Watch(ctx, dirs)
}

// CleanCmd implements the 'clean' command.
type CleanCmd struct {
	InputArgs `embed:""`

	SkipResources bool `name:"skip-resources" help:"Leave provisioned html resources in place."`
}

func (c *CleanCmd) Run(cli *CLI) error {
	cfg, log, err := setup(cli)
	if err != nil {
		return err
	}
	if c.SkipResources {
		cfg.SkipResources = true
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := time.Now()
	sums, err := newRunner(cfg, log, nil).Clean(ctx, c.request(false))
	logTotals(log, "clean", sums, time.Since(start))
	return err
}

// setup loads configuration and installs the process logger.
func setup(cli *CLI) (config.Config, *slog.Logger, error) {
	cfg, err := config.Load(cli.Config)
	if err != nil {
		return cfg, slog.Default(), fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, slog.Default(), fmt.Errorf("invalid configuration: %w", err)
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	var log *slog.Logger
	if cfg.LogFormat == "json" {
		log = slog.New(slog.NewJSONHandler(os.Stderr, opts))
	} else {
		log = slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	slog.SetDefault(log)
	return cfg, log, nil
}

func newRunner(cfg config.Config, log *slog.Logger, rec metrics.Recorder) *pipeline.Runner {
	b := pipeline.NewBuilder(pipeline.Options{
		Workers:      cfg.Workers,
		Force:        cfg.Force,
		ContentClass: cfg.ContentClass,
	}, log, rec, nil)
	return pipeline.NewRunner(b, pipeline.RunnerOptions{
		SkipResources: cfg.SkipResources,
		SassBinary:    cfg.SassBinary,
		SassTimeout:   cfg.SassTimeout,
	}, log)
}

func logTotals(log *slog.Logger, op string, sums []pipeline.Summary, d time.Duration) {
	var total pipeline.Summary
	for _, s := range sums {
		total.Scanned += s.Scanned
		total.Converted += s.Converted
		total.Skipped += s.Skipped
		total.Failed += s.Failed
		total.Removed += s.Removed
		total.Dummies += s.Dummies
		total.Resources += s.Resources
	}
	log.Info(op+" complete",
		"directories", len(sums),
		"html_files", total.Scanned,
		"converted", total.Converted,
		"unchanged", total.Skipped,
		"failed", total.Failed,
		"removed", total.Removed,
		"structural_dummies", total.Dummies,
		"resources", total.Resources,
		"duration", d.Round(time.Millisecond),
	)
}
