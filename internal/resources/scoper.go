package resources

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// PrerequisiteError reports that the sass compiler is not installed.
type PrerequisiteError struct {
	Binary string
	Err    error
}

func (e *PrerequisiteError) Error() string {
	return fmt.Sprintf("sass compiler %q not found; install dart-sass (https://sass-lang.com/install) and put it on PATH", e.Binary)
}

func (e *PrerequisiteError) Unwrap() error { return e.Err }

// ToolError reports a sass run that failed.
type ToolError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("sass %s: %v", strings.Join(e.Args, " "), e.Err)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// CSSScoper nests a stylesheet under a selector by compiling a wrapper
// scss file with dart-sass.
type CSSScoper struct {
	Selector string
	Binary   string
	Timeout  time.Duration
}

func NewCSSScoper(selector, binary string, timeout time.Duration) *CSSScoper {
	if binary == "" {
		binary = "sass"
	}
	return &CSSScoper{Selector: selector, Binary: binary, Timeout: timeout}
}

// Scope rewrites stylesheet in place. The original is kept as
// <name>.original.scss, patch (if set) edits its text, and extra rules are
// appended to the wrapper before compiling.
func (s *CSSScoper) Scope(ctx context.Context, stylesheet string, extra []string, patch func(string) string) error {
	base := strings.TrimSuffix(stylesheet, ".css")
	original := base + ".original.scss"
	wrapper := base + ".scss"

	if err := os.Remove(original); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.Rename(stylesheet, original); err != nil {
		return fmt.Errorf("move stylesheet: %w", err)
	}
	if patch != nil {
		if err := rewriteFile(original, patch); err != nil {
			return err
		}
	}

	lines := []string{
		s.Selector + " {",
		`   @import "` + filepath.Base(original) + `";`,
		"}",
		"",
	}
	lines = append(lines, extra...)
	if err := os.WriteFile(wrapper, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return fmt.Errorf("write scss wrapper: %w", err)
	}

	if err := s.compile(ctx, wrapper, stylesheet); err != nil {
		return err
	}

	// Variables live on the html element and only work unscoped.
	return rewriteFile(stylesheet, func(css string) string {
		return strings.ReplaceAll(css, s.Selector+" html {", "html {")
	})
}

func (s *CSSScoper) compile(ctx context.Context, scss, css string) error {
	if _, err := exec.LookPath(s.Binary); err != nil {
		return &PrerequisiteError{Binary: s.Binary, Err: err}
	}
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	args := []string{scss, css}
	cmd := exec.CommandContext(ctx, s.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return &PrerequisiteError{Binary: s.Binary, Err: err}
		}
		return &ToolError{Args: args, Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}
	return nil
}

func rewriteFile(path string, edit func(string) string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(edit(string(data))), 0o644)
}
