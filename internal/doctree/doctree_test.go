package doctree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *Tree {
	t.Helper()
	tree, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	return tree
}

func TestTextTailModel(t *testing.T) {
	tree := mustParse(t, `<html><body><p>before <b>bold</b> after <i>it</i>!</p></body></html>`)

	p := tree.Find("p")
	require.NotEqual(t, None, p)
	assert.Equal(t, "before ", tree.Node(p).Text)

	kids := tree.ElementChildren(p)
	require.Len(t, kids, 2)
	assert.Equal(t, "bold", tree.Node(kids[0]).Text)
	assert.Equal(t, " after ", tree.Node(kids[0]).Tail)
	assert.Equal(t, "!", tree.Node(kids[1]).Tail)
	assert.Equal(t, "before bold after it!", tree.TextContent(p))
}

func TestRenderRoundTrip(t *testing.T) {
	src := `<!DOCTYPE html><html><head><title>A &amp; B</title></head>` +
		`<body><!-- header --><div class="x" id="y">a<br>b</div><script>if (a < b) {}</script></body></html>`
	tree := mustParse(t, src)
	assert.Equal(t, src, tree.String())
}

func TestRenderEscapesText(t *testing.T) {
	tree := mustParse(t, `<html><head></head><body><code>a &lt; b</code></body></html>`)
	code := tree.Find("code")
	assert.Equal(t, "a < b", tree.Node(code).Text)
	assert.Equal(t, "<code>a &lt; b</code>", tree.RenderNode(code))
}

func TestRemoveChildrenDetaches(t *testing.T) {
	tree := mustParse(t, `<html><body><pre>x<code>y</code>z</pre>tail</body></html>`)
	pre := tree.Find("pre")
	code := tree.Find("code")
	tree.Node(pre).Tail = "tail"

	tree.RemoveChildren(pre)

	assert.True(t, tree.Detached(code))
	assert.False(t, tree.Detached(pre))
	assert.Empty(t, tree.Node(pre).Text)
	assert.Equal(t, "tail", tree.Node(pre).Tail)
	assert.Equal(t, None, tree.Find("code"))
}

func TestPreviousSibling(t *testing.T) {
	tree := mustParse(t, `<html><body><div><a>1</a><!--c--><b>2</b></div></body></html>`)
	b := tree.Find("b")
	prev := tree.PreviousSibling(b)
	require.NotEqual(t, None, prev)
	assert.Equal(t, CommentNode, tree.Node(prev).Kind)

	a := tree.Find("a")
	assert.Equal(t, None, tree.PreviousSibling(a))
}

func TestElementsDocumentOrder(t *testing.T) {
	tree := mustParse(t, `<html><body><pre><code>1</code></pre><div><code>2</code></div></body></html>`)
	ids := tree.Elements(map[string]bool{"code": true, "pre": true, "div": true})
	var tags []string
	for _, id := range ids {
		tags = append(tags, tree.Node(id).Tag)
	}
	assert.Equal(t, []string{"pre", "code", "div", "code"}, tags)
}

func TestClasses(t *testing.T) {
	tree := New()
	div := tree.NewElement("div")
	tree.AppendChild(tree.Root(), div)

	assert.False(t, tree.HasClass(div, "a"))
	tree.AddClass(div, "a")
	tree.AddClass(div, "b")
	tree.AddClass(div, "a")

	v, ok := tree.Attr(div, "class")
	require.True(t, ok)
	assert.Equal(t, "a b", v)
	assert.True(t, tree.HasClass(div, "b"))
}
