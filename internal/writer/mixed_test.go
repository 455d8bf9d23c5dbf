package writer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/doxyrst/internal/classify"
	"github.com/dgallion1/doxyrst/internal/doctree"
)

func TestLinearizeInlineAfterTrailingSpace(t *testing.T) {
	out, err := Linearize([]string{
		"<div>Lorem ipsum pretext ",
		`<snippet format="rst:inline">:doc:` + "`x`" + `</snippet>`,
		" posttext</div>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{
		".. raw:: html",
		"",
		"   <div>Lorem ipsum pretext&nbsp;",
		"",
		":doc:`x`",
		"",
		".. raw:: html",
		"",
		"    posttext</div>",
		"",
	}, out)
}

func TestLinearizeInlineUnescapes(t *testing.T) {
	out, err := Linearize([]string{`<snippet format="rst:inline">:math:` + "`a &lt; b`" + `</snippet>`})
	require.NoError(t, err)
	assert.Equal(t, []string{":math:`a < b`", ""}, out)
}

func TestLinearizeBlock(t *testing.T) {
	out, err := Linearize([]string{
		`<snippet format="rst:block">`,
		"  .. note::",
		"     a &amp; b",
		"</snippet>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{".. note::", "   a & b", ""}, out)
}

func TestLinearizeUntypedSnippetIsBlock(t *testing.T) {
	out, err := Linearize([]string{`<snippet format="rst">`, "text", "</snippet>"})
	require.NoError(t, err)
	assert.Equal(t, []string{"text", ""}, out)
}

func TestLinearizeJoinsOpaqueLines(t *testing.T) {
	out, err := Linearize([]string{"<div>", "<p>a</p>", "</div>"})
	require.NoError(t, err)
	assert.Equal(t, []string{".. raw:: html", "", "   <div> <p>a</p> </div>", ""}, out)
}

func TestLinearizeSkipsEmptyBuffers(t *testing.T) {
	out, err := Linearize([]string{
		`<snippet format="rst:block">`, "a", "</snippet>",
		"  ",
		`<snippet format="rst:block">`, "b", "</snippet>",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "", "b", ""}, out)
}

func TestLinearizeUnterminatedBlock(t *testing.T) {
	_, err := Linearize([]string{"<p>", `<snippet format="rst:block">`, ".. note:: x"})
	assert.ErrorIs(t, err, ErrUnterminatedSnippet)
}

func TestLinearizeInlineSpanningLines(t *testing.T) {
	out, err := Linearize([]string{
		`<snippet format="rst:inline">:doc:` + "`a",
		"  b`</snippet> tail",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{":doc:`a b`", "", ".. raw:: html", "", "    tail", ""}, out)
}

func TestLinearizeUnterminatedInline(t *testing.T) {
	_, err := Linearize([]string{`<snippet format="rst:inline">:doc:` + "`a", "b`"})
	assert.ErrorIs(t, err, ErrUnterminatedSnippet)
}

func TestMixedContentInlineRoleWithLineBreaks(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"break inside role", "<p>See <code>:doc:`Home\n page` now</code> ok</p>", ":doc:`Home page` now"},
		{"break after role", "<p>See <code>:doc:`Home` and\nmore</code> ok</p>", ":doc:`Home` and more"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tree, err := doctree.Parse(strings.NewReader("<html><head></head><body>" + tt.body + "</body></html>"))
			require.NoError(t, err)
			formats := classify.NewNormalizer(classify.DefaultChain()).Normalize(tree)
			assert.True(t, formats.Has(classify.FormatInline))

			out, err := MixedContent(tree)
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
			assert.Contains(t, strings.Join(out, "\n"), "ok</div>")
		})
	}
}

func TestMixedContentJoinsAdjacentBlocks(t *testing.T) {
	tree, err := doctree.Parse(strings.NewReader("<html><head></head><body>" +
		"<pre>{rst}\n.. a::</pre><pre>{rst}\n.. b::</pre></body></html>"))
	require.NoError(t, err)
	classify.NewNormalizer(classify.DefaultChain()).Normalize(tree)

	out, err := MixedContent(tree)
	require.NoError(t, err)
	assert.Equal(t, []string{
		".. raw:: html",
		"",
		"   <html><head></head><body>",
		"",
		".. a::",
		"",
		".. b::",
		"",
		".. raw:: html",
		"",
		"   </body></html>",
		"",
	}, out)
}
