package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dgallion1/doxyrst/internal/toc"
)

// Watcher rebuilds html directories after Doxygen rewrites them.
type Watcher struct {
	runner   *Runner
	req      Request
	debounce time.Duration
	log      *slog.Logger

	// rebuilt is called after each rebuild; tests use it to synchronize.
	rebuilt func(dir string, sum Summary, err error)
}

func NewWatcher(r *Runner, req Request, debounce time.Duration, log *slog.Logger) *Watcher {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Watcher{runner: r, req: req, debounce: debounce, log: log}
}

// Watch blocks until ctx is done. Changes to html pages or navigation
// data schedule a rebuild of their directory once events have been
// quiet for the debounce interval.
func (w *Watcher) Watch(ctx context.Context, dirs []string) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	defer fw.Close()

	for _, d := range dirs {
		if err := fw.Add(d); err != nil {
			return fmt.Errorf("watch %s: %w", d, err)
		}
	}
	provider, err := w.runner.provider(w.req)
	if err != nil {
		return err
	}
	w.log.Info("watching for changes", "dirs", len(dirs), "debounce", w.debounce)

	pending := make(map[string]bool)
	fire := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(ev) {
				continue
			}
			w.log.Debug("change detected", "file", ev.Name, "op", ev.Op.String())
			pending[filepath.Dir(ev.Name)] = true
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case fire <- struct{}{}:
				default:
				}
			})
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watcher error", "error", err)
		case <-fire:
			changed := make([]string, 0, len(pending))
			for d := range pending {
				changed = append(changed, d)
			}
			clear(pending)
			sort.Strings(changed)
			for _, dir := range changed {
				w.log.Info("rebuilding", "dir", dir)
				sum, err := w.runner.buildDir(ctx, dir, false, provider)
				if err != nil {
					w.log.Error("rebuild failed", "dir", dir, "error", err)
				}
				if w.rebuilt != nil {
					w.rebuilt(dir, sum, err)
				}
			}
		}
	}
}

func relevantEvent(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	name := filepath.Base(ev.Name)
	return name == toc.MenuDataFile || strings.HasSuffix(name, ".html")
}
