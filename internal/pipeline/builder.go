// Package pipeline converts Doxygen html directories into rst files.
package pipeline

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/dgallion1/doxyrst/internal/classify"
	"github.com/dgallion1/doxyrst/internal/metrics"
	"github.com/dgallion1/doxyrst/internal/parser"
	"github.com/dgallion1/doxyrst/internal/toc"
	"github.com/dgallion1/doxyrst/internal/writer"
)

// Options tune a Builder.
type Options struct {
	Workers      int
	Force        bool
	ContentClass string
}

// Builder converts every html file of a directory. One Builder may run
// builds for several directories, one after another.
type Builder struct {
	opts       Options
	normalizer *classify.Normalizer
	log        *slog.Logger
	recorder   metrics.Recorder
	stats      *ConversionStats
}

// NewBuilder returns a builder. rec and stats may be nil.
func NewBuilder(opts Options, log *slog.Logger, rec metrics.Recorder, stats *ConversionStats) *Builder {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ContentClass == "" {
		opts.ContentClass = writer.DefaultContentClass
	}
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	if stats == nil {
		stats = NewConversionStats(time.Hour)
	}
	return &Builder{
		opts:       opts,
		normalizer: classify.NewNormalizer(classify.DefaultChain()),
		log:        log,
		recorder:   rec,
		stats:      stats,
	}
}

// Stats returns the builder's rolling conversion statistics.
func (b *Builder) Stats() *ConversionStats { return b.stats }

// Recorder returns the metrics recorder the builder reports to.
func (b *Builder) Recorder() metrics.Recorder { return b.recorder }

// Summary counts what one directory build or clean did.
type Summary struct {
	Dir        string        `json:"dir"`
	Scanned    int           `json:"scanned"`
	Converted  int           `json:"converted"`
	Skipped    int           `json:"skipped"`
	Failed     int           `json:"failed"`
	WithMarkup int           `json:"with_markup"`
	Dummies    int           `json:"structural_dummies"`
	Removed    int           `json:"removed"`
	Resources  int           `json:"resources"`
	Errors     []string      `json:"errors,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
}

// FileError is a failure converting or cleaning one file.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string { return e.Path + ": " + e.Err.Error() }
func (e *FileError) Unwrap() error { return e.Err }

// IsFatal reports whether err stopped a build as a whole rather than
// failing individual files. Per-file failures arrive as a join of
// *FileError values.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var fe *FileError
	return !errors.As(err, &fe)
}

type outcome int

const (
	outcomeConverted outcome = iota
	outcomeSkipped
	outcomeFailed
)

type fileResult struct {
	path     string
	outcome  outcome
	formats  classify.Formats
	duration time.Duration
	err      error
}

// Build converts htmlDir using the builder's Force setting.
func (b *Builder) Build(ctx context.Context, htmlDir string) (Summary, error) {
	return b.build(ctx, htmlDir, b.opts.Force)
}

func (b *Builder) build(ctx context.Context, htmlDir string, force bool) (Summary, error) {
	start := time.Now()
	log := b.log.With("dir", htmlDir)
	sum := Summary{Dir: htmlDir}

	index, err := toc.Load(htmlDir)
	if err != nil {
		return sum, err
	}
	dummies, err := index.WriteStructuralDummies(b.opts.ContentClass)
	if err != nil {
		return sum, err
	}
	sum.Dummies = len(dummies)

	files, err := htmlFiles(htmlDir)
	if err != nil {
		return sum, err
	}
	sum.Scanned = len(files)
	log.Info("building", "files", len(files), "workers", b.opts.Workers, "force", force)

	p := parser.NewDoxygenParser(b.normalizer)
	w := writer.NewRstWriter(index, b.opts.ContentClass)
	results := runPool(ctx, b.opts.Workers, files, func(path string) fileResult {
		return b.convert(p, w, path, force)
	})

	var failed []*FileError
	markup := make(map[classify.Format]int)
	for _, r := range results {
		switch r.outcome {
		case outcomeSkipped:
			sum.Skipped++
			b.recorder.ObserveFile(metrics.FileSkipped, r.duration)
		case outcomeConverted:
			sum.Converted++
			if !r.formats.Empty() {
				sum.WithMarkup++
			}
			for f := range r.formats {
				markup[f]++
			}
			b.recorder.ObserveFile(metrics.FileConverted, r.duration)
			b.stats.Record(r.duration, false)
		case outcomeFailed:
			sum.Failed++
			failed = append(failed, &FileError{Path: r.path, Err: r.err})
			b.recorder.ObserveFile(metrics.FileFailed, r.duration)
			b.stats.Record(r.duration, true)
			log.Error("conversion failed", "file", r.path, "error", r.err)
		}
	}
	for f, n := range markup {
		b.recorder.IncSnippets(string(f), n)
	}
	sort.Slice(failed, func(i, j int) bool { return failed[i].Path < failed[j].Path })
	for _, fe := range failed {
		sum.Errors = append(sum.Errors, fe.Error())
	}

	sum.Duration = time.Since(start)
	b.recorder.ObserveBuild(htmlDir, sum.Duration, len(failed) > 0)
	log.Info("build finished",
		"converted", sum.Converted,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"with_markup", sum.WithMarkup,
		"structural_dummies", sum.Dummies,
		"duration", sum.Duration.Round(time.Millisecond),
	)

	if err := ctx.Err(); err != nil {
		return sum, fmt.Errorf("build %s: %w", htmlDir, err)
	}
	return sum, joinFileErrors(failed)
}

// convert handles one html file. The rst target is rewritten only when
// the recorded hash differs from the html content hash or force is set.
func (b *Builder) convert(p *parser.DoxygenParser, w *writer.RstWriter, path string, force bool) fileResult {
	start := time.Now()
	res := fileResult{path: path}
	fail := func(err error) fileResult {
		res.outcome = outcomeFailed
		res.err = err
		res.duration = time.Since(start)
		return res
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fail(err)
	}
	hash := ContentHashHex(data)
	target := RstTarget(path)

	if !force {
		recorded, err := RecordedHash(target)
		if err != nil {
			return fail(err)
		}
		if recorded == hash {
			res.outcome = outcomeSkipped
			res.duration = time.Since(start)
			b.log.Debug("unchanged", "file", path)
			return res
		}
	}

	parsed, err := p.ParseReader(bytes.NewReader(data), path)
	if err != nil {
		return fail(err)
	}
	if _, err := w.Write(parsed, target, hash); err != nil {
		return fail(err)
	}
	res.outcome = outcomeConverted
	res.formats = parsed.Formats
	res.duration = time.Since(start)
	b.log.Debug("converted", "file", path, "formats", parsed.Formats.Sorted())
	return res
}

// Clean removes the rst files a build of htmlDir produced.
func (b *Builder) Clean(ctx context.Context, htmlDir string) (Summary, error) {
	start := time.Now()
	log := b.log.With("dir", htmlDir)
	sum := Summary{Dir: htmlDir}

	files, err := htmlFiles(htmlDir)
	if err != nil {
		return sum, err
	}
	sum.Scanned = len(files)

	var failed []*FileError
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return sum, fmt.Errorf("clean %s: %w", htmlDir, err)
		}
		target := RstTarget(f)
		err := os.Remove(target)
		switch {
		case err == nil:
			sum.Removed++
			b.recorder.ObserveFile(metrics.FileCleaned, 0)
		case errors.Is(err, os.ErrNotExist):
		default:
			failed = append(failed, &FileError{Path: target, Err: err})
		}
	}

	if index, err := toc.Load(htmlDir); err != nil {
		log.Warn("navigation unavailable, structural dummies kept", "error", err)
	} else {
		removed, err := index.RemoveStructuralDummies()
		sum.Dummies = len(removed)
		if err != nil {
			failed = append(failed, &FileError{Path: htmlDir, Err: err})
		}
	}

	for _, fe := range failed {
		sum.Errors = append(sum.Errors, fe.Error())
	}
	sum.Failed = len(failed)
	sum.Duration = time.Since(start)
	log.Info("clean finished", "removed", sum.Removed, "structural_dummies", sum.Dummies, "failed", sum.Failed)
	return sum, joinFileErrors(failed)
}

// RstTarget returns the rst path generated for an html file.
func RstTarget(htmlPath string) string {
	return strings.TrimSuffix(htmlPath, filepath.Ext(htmlPath)) + ".rst"
}

func joinFileErrors(failed []*FileError) error {
	errs := make([]error, len(failed))
	for i, fe := range failed {
		errs[i] = fe
	}
	return errors.Join(errs...)
}

func htmlFiles(dir string) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.html"))
	if err != nil {
		return nil, fmt.Errorf("list html files: %w", err)
	}
	sort.Strings(files)
	return files, nil
}
