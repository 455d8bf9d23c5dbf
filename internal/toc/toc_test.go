package toc

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nestedMenu = `var menudata={children:[
{text:"Main Page",url:"index.html"},
{text:"Namespaces",url:"namespaces.html",children:[
{text:"Namespace List",url:"namespaces.html"},
{text:"Namespace Members",url:"namespacemembers.html",children:[
{text:"All",url:"namespacemembers.html",children:[
{text:"a",url:"namespacemembers.html#index_a"},
{text:"b",url:"namespacemembers.html#index_b"}]},
{text:"Functions",url:"namespacemembers_func.html"}]}]},
{text:"Files",url:"files.html",children:[
{text:"File List",url:"files.html"}]}]}
`

const indexPage = `<html><head><title>Demo: Main Page</title></head><body>
<div id="top"><div class="header">
  <div class="headertitle"><div class="title">Demo Documentation</div></div>
</div><!--header-->
<div class="contents">
<p>Welcome</p>
</div><!-- contents -->
<hr class="footer"/>
</body></html>
`

func writeDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestDocnameFromURL(t *testing.T) {
	assert.Equal(t, "namespacemembers", DocnameFromURL("namespacemembers.html#index_a"))
	assert.Equal(t, "index", DocnameFromURL("index.html"))
	assert.Equal(t, "classfoo_1_1bar", DocnameFromURL("classfoo_1_1bar.html"))
}

func TestLoadDeduplicatesAnchors(t *testing.T) {
	idx, err := Load(writeDir(t, map[string]string{MenuDataFile: nestedMenu}))
	require.NoError(t, err)

	root := idx.Root()
	assert.Equal(t, "index", root.Docname)
	require.Len(t, root.Children, 2)

	namespaces := root.Children[0]
	assert.True(t, namespaces.StructuralDummy)
	assert.Equal(t, "namespaces_namespaces", namespaces.Docname)

	members := namespaces.Children[1]
	assert.True(t, members.StructuralDummy)
	assert.Equal(t, "namespacemembers_namespace_members", members.Docname)

	all := members.Children[0]
	assert.Equal(t, "namespacemembers", all.Docname)
	assert.True(t, all.IsLeaf(), "anchor-only children collapse")
	assert.False(t, all.StructuralDummy)

	files := root.Children[1]
	assert.True(t, files.IsLeaf())
	assert.False(t, files.StructuralDummy)
}

func TestLoadConcurrent(t *testing.T) {
	dir := writeDir(t, map[string]string{MenuDataFile: nestedMenu})

	var wg sync.WaitGroup
	docnames := make([]string, 8)
	errs := make([]error, 8)
	for i := range docnames {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx, err := Load(dir)
			errs[i] = err
			if err == nil {
				docnames[i] = idx.Root().Children[0].Children[1].Docname
			}
		}()
	}
	wg.Wait()

	for i := range docnames {
		require.NoError(t, errs[i])
		assert.Equal(t, "namespacemembers_namespace_members", docnames[i])
	}
}

func TestTocLinesFor(t *testing.T) {
	idx, err := Load(writeDir(t, map[string]string{MenuDataFile: nestedMenu}))
	require.NoError(t, err)

	assert.Equal(t, []string{
		".. toctree::",
		"   :caption: Main Page",
		"   :maxdepth: 2",
		"   :hidden:",
		"",
		"   Namespaces <namespaces_namespaces>",
		"   Files <files>",
		"",
	}, idx.TocLinesFor("index"))

	assert.Nil(t, idx.TocLinesFor("files"))
	assert.Nil(t, idx.TocLinesFor("namespaces"))
	assert.Nil(t, idx.TocLinesFor("unknown"))
	assert.NotNil(t, idx.TocLinesFor("namespacemembers_namespace_members"))
}

func TestWriteStructuralDummies(t *testing.T) {
	dir := writeDir(t, map[string]string{MenuDataFile: nestedMenu, "index.html": indexPage})
	idx, err := Load(dir)
	require.NoError(t, err)

	written, err := idx.WriteStructuralDummies("doxygen-content")
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "namespaces_namespaces.rst"),
		filepath.Join(dir, "namespacemembers_namespace_members.rst"),
	}, written)
	assert.Equal(t, written, idx.DummyFiles())

	data, err := os.ReadFile(written[0])
	require.NoError(t, err)
	page := string(data)
	assert.True(t, strings.HasPrefix(page, ".. title:: Namespaces\n\nNamespaces\n----------\n"))
	assert.Contains(t, page, `<div class="title">Namespaces</div>`)
	assert.Contains(t, page, "   .. toctree::\n      :maxdepth: 4\n\n      Namespace List <namespaces>\n      Namespace Members <namespacemembers_namespace_members>\n")
	assert.Contains(t, page, "      </div><!-- contents --><hr class=\"footer\"/></body></html>\n")
	assert.NotContains(t, page, "Welcome")

	removed, err := idx.RemoveStructuralDummies()
	require.NoError(t, err)
	assert.Len(t, removed, 2)
	assert.NoFileExists(t, written[0])
}

func TestWriteStructuralDummiesBadTemplate(t *testing.T) {
	dir := writeDir(t, map[string]string{MenuDataFile: nestedMenu, "index.html": "<html><body>custom</body></html>"})
	idx, err := Load(dir)
	require.NoError(t, err)

	_, err = idx.WriteStructuralDummies("doxygen-content")
	var terr *TemplateError
	assert.True(t, errors.As(err, &terr))
}

func TestNoDummiesSkipsTemplate(t *testing.T) {
	dir := writeDir(t, map[string]string{MenuDataFile: `var menudata={children:[
{text:"Main Page",url:"index.html"},
{text:"Files",url:"files.html"}]}`})
	idx, err := Load(dir)
	require.NoError(t, err)

	written, err := idx.WriteStructuralDummies("doxygen-content")
	require.NoError(t, err)
	assert.Empty(t, written)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(t.TempDir())
	assert.Error(t, err)

	_, err = Load(writeDir(t, map[string]string{MenuDataFile: `var menudata={children:[]}`}))
	assert.Error(t, err)

	_, err = Load(writeDir(t, map[string]string{MenuDataFile: `var menudata={children:[{url:"x.html"}]}`}))
	assert.Error(t, err)
}

func TestParsePageChrome(t *testing.T) {
	chrome, ok := ParsePageChrome(indexPage)
	require.True(t, ok)
	assert.True(t, strings.HasSuffix(chrome.Prefix, `<!--header--><div class="contents">`))
	assert.Contains(t, chrome.PrefixWithTitle("X"), `<div class="title">X</div>`)
	assert.NotContains(t, chrome.Prefix, "\n")

	_, ok = ParsePageChrome(indexPage + indexPage)
	assert.False(t, ok)
}
