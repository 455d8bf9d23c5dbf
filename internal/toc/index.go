package toc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/dgallion1/doxyrst/internal/doxygen"
	"github.com/dgallion1/doxyrst/internal/rst"
	"github.com/dgallion1/doxyrst/internal/writer"
)

// MenuDataFile is the Doxygen navigation data file in an html directory.
const MenuDataFile = "menudata.js"

// Index is the navigation tree of one html directory. It is read-only
// once Load returns and safe for concurrent TocLinesFor calls.
type Index struct {
	dir     string
	root    *MenuEntry
	dummies []*MenuEntry
	lookup  map[string]*MenuEntry
}

// Load reads menudata.js from htmlDir. Structural dummies get their
// docname suffixed with their title so they do not collide with the
// page they stand in for.
func Load(htmlDir string) (*Index, error) {
	data, err := doxygen.ReadJSDataFile(filepath.Join(htmlDir, MenuDataFile))
	if err != nil {
		return nil, fmt.Errorf("load navigation: %w", err)
	}
	root, err := buildTree(data)
	if err != nil {
		return nil, fmt.Errorf("load navigation: %s: %w", MenuDataFile, err)
	}

	idx := &Index{dir: htmlDir, root: root, lookup: make(map[string]*MenuEntry)}
	lower := cases.Lower(language.Und) // a Caser is not safe for concurrent use
	all := flatten(root)
	for _, e := range all {
		if e.StructuralDummy {
			e.Docname = e.Docname + "_" + lower.String(strings.ReplaceAll(e.Title, " ", "_"))
			idx.dummies = append(idx.dummies, e)
		}
	}
	for _, e := range all {
		if !e.IsLeaf() {
			idx.lookup[e.Docname] = e
		}
	}
	return idx, nil
}

// Root returns the navigation root (the main page).
func (idx *Index) Root() *MenuEntry { return idx.root }

// Lookup returns the non-leaf entry for docname.
func (idx *Index) Lookup(docname string) (*MenuEntry, bool) {
	e, ok := idx.lookup[docname]
	return e, ok
}

// TocLinesFor renders a hidden toctree for docname, or nil when the
// document has no navigation children.
func (idx *Index) TocLinesFor(docname string) []string {
	e, ok := idx.lookup[docname]
	if !ok || e.IsLeaf() {
		return nil
	}
	return rst.Toctree(e.Title, 2, true, childEntries(e))
}

func childEntries(e *MenuEntry) []string {
	out := make([]string, 0, len(e.Children))
	for _, c := range e.Children {
		out = append(out, rst.TocEntry(c.Title, c.Docname))
	}
	return out
}

// DummyFiles lists the rst files WriteStructuralDummies produces.
func (idx *Index) DummyFiles() []string {
	out := make([]string, 0, len(idx.dummies))
	for _, d := range idx.dummies {
		out = append(out, filepath.Join(idx.dir, d.Docname+".rst"))
	}
	return out
}

// WriteStructuralDummies writes one toctree page per structural dummy,
// wrapped in the chrome of index.html. The template is only read when
// there is something to write.
func (idx *Index) WriteStructuralDummies(contentClass string) ([]string, error) {
	if len(idx.dummies) == 0 {
		return nil, nil
	}
	chrome, err := LoadPageChrome(filepath.Join(idx.dir, "index.html"))
	if err != nil {
		return nil, err
	}

	written := make([]string, 0, len(idx.dummies))
	for _, d := range idx.dummies {
		path := filepath.Join(idx.dir, d.Docname+".rst")
		if err := writer.WriteLines(path, dummyPage(d, chrome, contentClass)); err != nil {
			return written, fmt.Errorf("write structural dummy %q: %w", d.Title, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// RemoveStructuralDummies deletes the files WriteStructuralDummies writes.
func (idx *Index) RemoveStructuralDummies() ([]string, error) {
	var removed []string
	for _, path := range idx.DummyFiles() {
		err := os.Remove(path)
		if err == nil {
			removed = append(removed, path)
			continue
		}
		if !os.IsNotExist(err) {
			return removed, fmt.Errorf("remove structural dummy: %w", err)
		}
	}
	return removed, nil
}

func dummyPage(d *MenuEntry, chrome PageChrome, contentClass string) []string {
	lines := []string{".. title:: " + d.Title, ""}
	lines = append(lines, rst.Heading(d.Title, '-')...)
	lines = append(lines, "")

	content := rst.RawHTML(chrome.PrefixWithTitle(d.Title))
	content = append(content, rst.Toctree("", 4, false, childEntries(d))...)
	content = append(content, rst.RawHTML(chrome.Suffix)...)
	return append(lines, rst.Container(contentClass, content)...)
}
