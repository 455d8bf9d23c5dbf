package resources

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//go:embed assets/custom.scss
var customStyles string

var provisionPatterns = []string{"*.css", "*.js", "*.map", "*.md5", "*.svg", "*.png", "search/*.*"}

// Provider copies Doxygen html resources to the Sphinx output tree.
type Provider struct {
	mapper DirectoryMapper
	scoper *CSSScoper
	log    *slog.Logger
}

func NewProvider(mapper DirectoryMapper, scoper *CSSScoper, log *slog.Logger) *Provider {
	return &Provider{mapper: mapper, scoper: scoper, log: log}
}

// Provide copies the resources of htmlDir whose name or size differ from
// what the output already holds, then scopes copied Doxygen stylesheets.
// It returns the copied target paths.
func (p *Provider) Provide(ctx context.Context, htmlDir string) ([]string, error) {
	target, err := p.mapper.Map(htmlDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(target, 0o755); err != nil {
		return nil, fmt.Errorf("create resource dir: %w", err)
	}

	copied, err := copyIfDifferent(htmlDir, target, provisionPatterns)
	if err != nil {
		return copied, err
	}
	p.log.Debug("resources copied", "dir", target, "count", len(copied))

	for _, path := range copied {
		if err := ctx.Err(); err != nil {
			return copied, err
		}
		switch filepath.Base(path) {
		case "doxygen.css":
			err = p.scoper.Scope(ctx, path, strings.Split(customStyles, "\n"), func(css string) string {
				return strings.ReplaceAll(css, "code.JavaDocCode\n", "code.JavaDocCode {\n")
			})
		case "doxygen-awesome.css":
			err = p.scoper.Scope(ctx, path, nil, func(css string) string {
				return strings.ReplaceAll(css, "invert()", `#{"invert()"}`)
			})
		default:
			continue
		}
		if err != nil {
			return copied, fmt.Errorf("scope %s: %w", path, err)
		}
		p.log.Debug("stylesheet scoped", "file", path, "selector", p.scoper.Selector)
	}
	return copied, nil
}

// Cleanup removes what Provide copied for htmlDir along with the scss
// files scoping left behind.
func (p *Provider) Cleanup(htmlDir string) ([]string, error) {
	target, err := p.mapper.Map(htmlDir)
	if err != nil {
		return nil, err
	}
	sources, err := multiGlob(htmlDir, provisionPatterns)
	if err != nil {
		return nil, err
	}
	candidates := make([]string, 0, len(sources))
	for _, src := range sources {
		rel, err := filepath.Rel(htmlDir, src)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, filepath.Join(target, rel))
	}
	scss, err := filepath.Glob(filepath.Join(target, "*.scss"))
	if err != nil {
		return nil, err
	}
	candidates = append(candidates, scss...)

	var deleted []string
	var errs []error
	for _, path := range candidates {
		err := os.Remove(path)
		switch {
		case err == nil:
			deleted = append(deleted, path)
		case errors.Is(err, fs.ErrNotExist):
		default:
			errs = append(errs, err)
		}
	}
	p.log.Debug("resources removed", "dir", target, "count", len(deleted))
	return deleted, errors.Join(errs...)
}

func multiGlob(dir string, patterns []string) ([]string, error) {
	var out []string
	for _, pat := range patterns {
		matches, err := filepath.Glob(filepath.Join(dir, pat))
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", pat, err)
		}
		for _, m := range matches {
			if info, err := os.Stat(m); err == nil && info.Mode().IsRegular() {
				out = append(out, m)
			}
		}
	}
	sort.Strings(out)
	return out, nil
}

// copyIfDifferent copies files matching patterns from src to dst unless a
// target with the same name and size already exists.
func copyIfDifferent(src, dst string, patterns []string) ([]string, error) {
	sources, err := multiGlob(src, patterns)
	if err != nil {
		return nil, err
	}
	var copied []string
	for _, from := range sources {
		rel, err := filepath.Rel(src, from)
		if err != nil {
			return copied, err
		}
		to := filepath.Join(dst, rel)
		same, err := sameNameAndSize(from, to)
		if err != nil {
			return copied, err
		}
		if same {
			continue
		}
		if err := copyFile(from, to); err != nil {
			return copied, err
		}
		copied = append(copied, to)
	}
	return copied, nil
}

func sameNameAndSize(from, to string) (bool, error) {
	a, err := os.Stat(from)
	if err != nil {
		return false, err
	}
	b, err := os.Stat(to)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return a.Size() == b.Size(), nil
}

func copyFile(from, to string) error {
	if err := os.MkdirAll(filepath.Dir(to), 0o755); err != nil {
		return err
	}
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(to)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("copy %s: %w", from, err)
	}
	return out.Close()
}
