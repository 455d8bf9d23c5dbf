package classify

import (
	"strings"

	"github.com/dgallion1/doxyrst/internal/doctree"
)

// ensureNewlineBefore makes the character data just before id end in a
// newline: the previous sibling's tail, or the parent's text when id is
// the first child.
func ensureNewlineBefore(t *doctree.Tree, id doctree.NodeID) {
	if prev := t.PreviousSibling(id); prev != doctree.None {
		n := t.Node(prev)
		if !strings.HasSuffix(n.Tail, "\n") {
			n.Tail += "\n"
		}
		return
	}
	parent := t.Node(id).Parent
	if parent == doctree.None {
		return
	}
	n := t.Node(parent)
	if !strings.HasSuffix(n.Text, "\n") {
		n.Text += "\n"
	}
}

// ensureNewlineAfter makes the tail of id start with a newline.
func ensureNewlineAfter(t *doctree.Tree, id doctree.NodeID) {
	n := t.Node(id)
	if !strings.HasPrefix(n.Tail, "\n") {
		n.Tail = "\n" + n.Tail
	}
}

// toSnippet retags id as a snippet of the given format holding text,
// with newlines on both sides.
func toSnippet(t *doctree.Tree, id doctree.NodeID, format Format, text string) {
	t.RemoveChildren(id)
	n := t.Node(id)
	n.Tag = SnippetTag
	n.Attrs = []doctree.Attr{{Key: FormatAttr, Val: string(format)}}
	n.Text = text
	ensureNewlineBefore(t, id)
	ensureNewlineAfter(t, id)
}
