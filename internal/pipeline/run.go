package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dgallion1/doxyrst/internal/doxygen"
	"github.com/dgallion1/doxyrst/internal/resources"
)

// Request names the inputs of one build or clean run. Each input is a
// Doxygen html output directory or a Doxyfile.
type Request struct {
	SphinxSource string   `json:"sphinx_source"`
	SphinxOutput string   `json:"sphinx_output"`
	Inputs       []string `json:"inputs"`
	Force        bool     `json:"force"`
}

func (r Request) Validate() error {
	if r.SphinxSource == "" {
		return errors.New("sphinx_source is required")
	}
	if r.SphinxOutput == "" {
		return errors.New("sphinx_output is required")
	}
	if len(r.Inputs) == 0 {
		return errors.New("at least one input is required")
	}
	return nil
}

// ResolveInputs turns the request inputs into html directories. Doxyfile
// settings are validated; recommended settings that are not met are
// logged as warnings.
func ResolveInputs(req Request, log *slog.Logger) ([]string, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	var dirs []string
	for _, in := range req.Inputs {
		info, err := os.Stat(in)
		if err != nil {
			return nil, fmt.Errorf("input %s: %w", in, err)
		}
		if info.IsDir() {
			if err := (doxygen.OutputPathValidator{}).Validate(in); err != nil {
				return nil, err
			}
			abs, err := filepath.Abs(in)
			if err != nil {
				return nil, err
			}
			dirs = append(dirs, abs)
			continue
		}

		settings, err := doxygen.ReadDoxyfile(in)
		if err != nil {
			return nil, err
		}
		report, err := doxygen.SettingsValidator{}.Validate(in, settings, req.SphinxSource)
		if err != nil {
			return nil, err
		}
		for _, h := range report.Hints() {
			log.Warn(h.String(), "doxyfile", in)
		}
		dirs = append(dirs, report.HTMLDir)
	}
	return dirs, nil
}

// RunnerOptions control resource provisioning around builds.
type RunnerOptions struct {
	SkipResources bool
	SassBinary    string
	SassTimeout   time.Duration
}

// Runner executes requests: it builds or cleans each input directory and
// provisions the html resources to the Sphinx output tree.
type Runner struct {
	builder *Builder
	opts    RunnerOptions
	log     *slog.Logger
}

func NewRunner(b *Builder, opts RunnerOptions, log *slog.Logger) *Runner {
	return &Runner{builder: b, opts: opts, log: log}
}

// Builder returns the builder the runner converts with.
func (r *Runner) Builder() *Builder { return r.builder }

func (r *Runner) provider(req Request) (*resources.Provider, error) {
	if r.opts.SkipResources {
		return nil, nil
	}
	mapper, err := resources.NewDirectoryMapper(req.SphinxSource, req.SphinxOutput)
	if err != nil {
		return nil, err
	}
	scoper := resources.NewCSSScoper("."+r.builder.opts.ContentClass, r.opts.SassBinary, r.opts.SassTimeout)
	return resources.NewProvider(mapper, scoper, r.log), nil
}

// Build converts every input of req. A fatal error in one directory stops
// the run; per-file failures are collected and the run continues.
func (r *Runner) Build(ctx context.Context, req Request) ([]Summary, error) {
	dirs, err := ResolveInputs(req, r.log)
	if err != nil {
		return nil, err
	}
	provider, err := r.provider(req)
	if err != nil {
		return nil, err
	}

	var summaries []Summary
	var errs []error
	for _, dir := range dirs {
		sum, err := r.buildDir(ctx, dir, req.Force, provider)
		summaries = append(summaries, sum)
		if err != nil {
			errs = append(errs, err)
			if IsFatal(err) {
				break
			}
		}
	}
	return summaries, errors.Join(errs...)
}

func (r *Runner) buildDir(ctx context.Context, dir string, force bool, provider *resources.Provider) (Summary, error) {
	sum, err := r.builder.build(ctx, dir, r.builder.opts.Force || force)
	if err != nil && IsFatal(err) {
		return sum, err
	}
	if provider == nil {
		return sum, err
	}

	copied, perr := provider.Provide(ctx, dir)
	sum.Resources = len(copied)
	r.builder.recorder.AddResourcesCopied(len(copied))
	if perr != nil {
		return sum, errors.Join(err, fmt.Errorf("provide resources for %s: %w", dir, perr))
	}
	r.log.Info("resources provided", "dir", dir, "copied", len(copied))
	return sum, err
}

// Clean removes generated rst files and provisioned resources for every
// input of req.
func (r *Runner) Clean(ctx context.Context, req Request) ([]Summary, error) {
	dirs, err := ResolveInputs(req, r.log)
	if err != nil {
		return nil, err
	}
	provider, err := r.provider(req)
	if err != nil {
		return nil, err
	}

	var summaries []Summary
	var errs []error
	for _, dir := range dirs {
		sum, err := r.builder.Clean(ctx, dir)
		if err != nil {
			errs = append(errs, err)
		}
		if provider != nil {
			deleted, perr := provider.Cleanup(dir)
			sum.Resources = len(deleted)
			if perr != nil {
				errs = append(errs, fmt.Errorf("clean resources for %s: %w", dir, perr))
			}
		}
		summaries = append(summaries, sum)
		if IsFatal(err) {
			break
		}
	}
	return summaries, errors.Join(errs...)
}
