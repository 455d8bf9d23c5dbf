// Package writer renders parsed pages as reStructuredText files.
package writer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dgallion1/doxyrst/internal/parser"
	"github.com/dgallion1/doxyrst/internal/rst"
)

// ErrUnterminatedSnippet is returned when a block snippet has no closing
// tag before the end of the document. It signals a normalizer defect.
var ErrUnterminatedSnippet = errors.New("unterminated block snippet")

// DefaultContentClass is the container class wrapping page content.
const DefaultContentClass = "doxygen-content"

// hashKey names the meta field holding the source content hash.
const hashKey = ":doxyrst-hash:"

// TocProvider supplies toctree lines for a document.
type TocProvider interface {
	TocLinesFor(docname string) []string
}

// RstWriter writes one .rst file per parsed page.
type RstWriter struct {
	toc          TocProvider
	contentClass string
}

// NewRstWriter returns a writer. toc may be nil.
func NewRstWriter(toc TocProvider, contentClass string) *RstWriter {
	if contentClass == "" {
		contentClass = DefaultContentClass
	}
	return &RstWriter{toc: toc, contentClass: contentClass}
}

// Write renders res into target, recording hash in the first line.
// Nothing is written when rendering fails.
func (w *RstWriter) Write(res *parser.Result, target, hash string) (string, error) {
	docname := strings.TrimSuffix(filepath.Base(target), filepath.Ext(target))

	title := res.DocumentTitle
	if strings.EqualFold(docname, "index") {
		title = res.Project
	}

	lines := []string{HashLine(hash), "", ".. title:: " + res.MetaTitle, ""}
	lines = append(lines, rst.Heading(rst.Escape(title), '=')...)
	lines = append(lines, "")
	if w.toc != nil {
		lines = append(lines, w.toc.TocLinesFor(docname)...)
	}

	var content []string
	if res.ContainsMarkup() {
		var err error
		content, err = MixedContent(res.Tree)
		if err != nil {
			return "", fmt.Errorf("%s: %w", res.File, err)
		}
	} else {
		content = rst.RawHTMLFile(filepath.Base(res.File))
	}
	lines = append(lines, rst.Container(w.contentClass, content)...)

	if err := WriteLines(target, lines); err != nil {
		return "", err
	}
	return target, nil
}

// HashLine renders the first line of a generated file.
func HashLine(hash string) string {
	return ".. meta:: " + hashKey + " " + hash
}

// ParseHashLine extracts the hash from a line written by HashLine.
func ParseHashLine(line string) (string, bool) {
	if !strings.HasPrefix(line, ".. meta::") {
		return "", false
	}
	i := strings.LastIndex(line, ":")
	hash := strings.TrimSpace(line[i+1:])
	return hash, hash != ""
}

// WriteLines writes lines joined by newlines through a temporary file
// renamed into place.
func WriteLines(target string, lines []string) error {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".doxyrst-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", target, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.WriteString(strings.Join(lines, "\n") + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", target, err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("rename into %s: %w", target, err)
	}
	return nil
}
