// Package parser reads Doxygen generated html pages and normalizes their
// embedded markup.
package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/dgallion1/doxyrst/internal/classify"
	"github.com/dgallion1/doxyrst/internal/doctree"
)

// Parser turns one html page into a Result.
type Parser interface {
	Parse(path string) (*Result, error)
}

// Result is a parsed and normalized page.
type Result struct {
	File          string // source html path
	Project       string // text before the first ":" of the meta title
	MetaTitle     string // full <title> text
	DocumentTitle string // text after the last ":" of the meta title
	Formats       classify.Formats
	Tree          *doctree.Tree
}

// ContainsMarkup reports whether normalization produced any snippet.
func (r *Result) ContainsMarkup() bool {
	return !r.Formats.Empty()
}

// DoxygenParser parses pages with a shared Normalizer.
type DoxygenParser struct {
	normalizer *classify.Normalizer
}

// NewDoxygenParser returns a parser that normalizes with n.
func NewDoxygenParser(n *classify.Normalizer) *DoxygenParser {
	return &DoxygenParser{normalizer: n}
}

// Parse reads and normalizes the page at path.
func (p *DoxygenParser) Parse(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return p.ParseReader(f, path)
}

// ParseReader normalizes the page read from r; path is recorded as the
// result's source file.
func (p *DoxygenParser) ParseReader(r io.Reader, path string) (*Result, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := goquery.NewDocumentFromNode(doc).Find("head > title").First()
	if title.Length() == 0 {
		return nil, fmt.Errorf("%s: no <title> element", path)
	}
	meta := strings.TrimSpace(title.Text())
	project, docTitle := SplitMetaTitle(meta)

	tree := doctree.FromHTML(doc)
	formats := p.normalizer.Normalize(tree)

	return &Result{
		File:          path,
		Project:       project,
		MetaTitle:     meta,
		DocumentTitle: docTitle,
		Formats:       formats,
		Tree:          tree,
	}, nil
}

// SplitMetaTitle splits a Doxygen page title such as "Project: Page" into
// the project name and the document title. Without a colon both are the
// whole title.
func SplitMetaTitle(meta string) (project, title string) {
	parts := strings.Split(meta, ":")
	return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[len(parts)-1])
}
