package writer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/doxyrst/internal/classify"
	"github.com/dgallion1/doxyrst/internal/doctree"
	"github.com/dgallion1/doxyrst/internal/parser"
)

type stubToc map[string][]string

func (s stubToc) TocLinesFor(docname string) []string { return s[docname] }

func parse(t *testing.T, dir, name, src string) *parser.Result {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	res, err := parser.NewDoxygenParser(classify.NewNormalizer(classify.DefaultChain())).Parse(path)
	require.NoError(t, err)
	return res
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestWriteRawFilePassthrough(t *testing.T) {
	dir := t.TempDir()
	res := parse(t, dir, "plain.html", `<html><head><title>Demo: Plain_Page</title></head><body><p>x</p></body></html>`)
	target := filepath.Join(dir, "plain.rst")

	got, err := NewRstWriter(nil, "").Write(res, target, "abc123")
	require.NoError(t, err)
	assert.Equal(t, target, got)

	assert.Equal(t, []string{
		".. meta:: :doxyrst-hash: abc123",
		"",
		".. title:: Demo: Plain_Page",
		"",
		`Plain\_Page`,
		"===========",
		"",
		".. container:: doxygen-content",
		"",
		"",
		"   .. raw:: html",
		"      :file: plain.html",
	}, readLines(t, target))
}

func TestWriteIndexUsesProjectTitleAndToc(t *testing.T) {
	dir := t.TempDir()
	res := parse(t, dir, "index.html", `<html><head><title>Demo: Main Page</title></head><body></body></html>`)
	toc := stubToc{"index": {".. toctree::", "   :maxdepth: 2", "", "   Files <files>", ""}}

	_, err := NewRstWriter(toc, "").Write(res, filepath.Join(dir, "index.rst"), "h")
	require.NoError(t, err)

	lines := readLines(t, filepath.Join(dir, "index.rst"))
	assert.Equal(t, "Demo", lines[4])
	assert.Equal(t, "====", lines[5])
	assert.Equal(t, ".. toctree::", lines[7])
	assert.Equal(t, "   Files <files>", lines[10])
	assert.Equal(t, ".. container:: doxygen-content", lines[12])
}

func TestWriteMixedContent(t *testing.T) {
	dir := t.TempDir()
	res := parse(t, dir, "page.html", `<html><head><title>Demo: Page</title></head><body>`+
		"<p>Intro</p><pre>{rst}\n.. note::\n   a &lt;b&gt;</pre><p>Outro</p></body></html>")
	target := filepath.Join(dir, "page.rst")

	_, err := NewRstWriter(nil, "scoped").Write(res, target, "h")
	require.NoError(t, err)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, ".. container:: scoped\n")
	assert.Contains(t, out, "\n   .. note::\n      a <b>\n")
	assert.Contains(t, out, "<p>Intro</p>")
	assert.Contains(t, out, "<p>Outro</p>")
	assert.NotContains(t, out, "<snippet")
	assert.NotContains(t, out, ":file:")
}

func TestWriteUnterminatedSnippetWritesNothing(t *testing.T) {
	dir := t.TempDir()
	res := parse(t, dir, "page.html", `<html><head><title>Demo: Page</title></head><body><pre>{rst}
.. note:: x</pre></body></html>`)
	// A snippet without its trailing newline leaves the close tag mid-line.
	snippet := res.Tree.Find(classify.SnippetTag)
	require.NotEqual(t, doctree.None, snippet)
	res.Tree.Node(snippet).Text = "\n.. note:: x"

	target := filepath.Join(dir, "page.rst")
	_, err := NewRstWriter(nil, "").Write(res, target, "h")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnterminatedSnippet)
	assert.NoFileExists(t, target)
}

func TestParseHashLine(t *testing.T) {
	hash, ok := ParseHashLine(HashLine("deadbeef"))
	assert.True(t, ok)
	assert.Equal(t, "deadbeef", hash)

	_, ok = ParseHashLine(":orphan:")
	assert.False(t, ok)
	_, ok = ParseHashLine(".. meta:: :doxyrst-hash:")
	assert.False(t, ok)
}
