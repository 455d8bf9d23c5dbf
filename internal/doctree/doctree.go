// Package doctree holds a parsed HTML document as an arena of nodes.
//
// Character data follows the text/tail model: an element's Text is the
// data before its first child, and each child's Tail is the data between
// that child's end tag and the next sibling. Concatenating every Text and
// Tail in document order reproduces the document's character data.
package doctree

import (
	"slices"
	"strings"
)

// NodeID indexes a node in its Tree.
type NodeID int

// None marks a missing node (no parent, no sibling).
const None NodeID = -1

// Kind classifies a node.
type Kind uint8

const (
	DocumentNode Kind = iota
	ElementNode
	CommentNode
	DoctypeNode
)

// Attr is a single element attribute. Order is preserved on output.
type Attr struct {
	Key string
	Val string
}

// Node is one entry in the arena. Comments keep their body in Text.
// Doctype nodes keep the doctype name in Tag and any public/system
// identifiers in Attrs.
type Node struct {
	Kind     Kind
	Tag      string
	Attrs    []Attr
	Text     string
	Tail     string
	Parent   NodeID
	Children []NodeID
}

// Tree owns every node of one document. Node pointers returned by Node
// are valid until the next call that adds nodes.
type Tree struct {
	nodes []Node
	root  NodeID
}

// New returns a tree holding only an empty document node.
func New() *Tree {
	t := &Tree{}
	t.root = t.add(Node{Kind: DocumentNode, Parent: None})
	return t
}

// Root returns the document node.
func (t *Tree) Root() NodeID { return t.root }

// Len returns the number of nodes ever added, detached ones included.
func (t *Tree) Len() int { return len(t.nodes) }

// Node returns the node stored under id.
func (t *Tree) Node(id NodeID) *Node { return &t.nodes[id] }

func (t *Tree) add(n Node) NodeID {
	t.nodes = append(t.nodes, n)
	return NodeID(len(t.nodes) - 1)
}

// NewElement adds a detached element.
func (t *Tree) NewElement(tag string) NodeID {
	return t.add(Node{Kind: ElementNode, Tag: tag, Parent: None})
}

// AppendChild attaches child as the last child of parent.
func (t *Tree) AppendChild(parent, child NodeID) {
	t.nodes[child].Parent = parent
	t.nodes[parent].Children = append(t.nodes[parent].Children, child)
}

// RemoveChildren detaches all children of id and drops its Text.
// The element's own tag, attributes and tail are kept.
func (t *Tree) RemoveChildren(id NodeID) {
	for _, c := range t.nodes[id].Children {
		t.nodes[c].Parent = None
	}
	t.nodes[id].Children = nil
	t.nodes[id].Text = ""
}

// Detached reports whether id is no longer reachable from the root.
func (t *Tree) Detached(id NodeID) bool {
	for cur := id; cur != None; cur = t.nodes[cur].Parent {
		if cur == t.root {
			return false
		}
	}
	return true
}

// PreviousSibling returns the node before id under the same parent, or None.
func (t *Tree) PreviousSibling(id NodeID) NodeID {
	parent := t.nodes[id].Parent
	if parent == None {
		return None
	}
	siblings := t.nodes[parent].Children
	i := slices.Index(siblings, id)
	if i <= 0 {
		return None
	}
	return siblings[i-1]
}

// ElementChildren returns the element children of id, skipping comments.
func (t *Tree) ElementChildren(id NodeID) []NodeID {
	var out []NodeID
	for _, c := range t.nodes[id].Children {
		if t.nodes[c].Kind == ElementNode {
			out = append(out, c)
		}
	}
	return out
}

// Elements returns every attached element whose tag is in tags, in
// document order. A nil set matches every element.
func (t *Tree) Elements(tags map[string]bool) []NodeID {
	var out []NodeID
	var walk func(NodeID)
	walk = func(id NodeID) {
		n := &t.nodes[id]
		if n.Kind == ElementNode && (tags == nil || tags[n.Tag]) {
			out = append(out, id)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
	return out
}

// Find returns the first element with the given tag, or None.
func (t *Tree) Find(tag string) NodeID {
	found := t.Elements(map[string]bool{tag: true})
	if len(found) == 0 {
		return None
	}
	return found[0]
}

// TextContent concatenates the character data inside id: its own text,
// then for each child the child's content and tail. Comment bodies are
// not character data and are skipped.
func (t *Tree) TextContent(id NodeID) string {
	var buf strings.Builder
	t.writeText(&buf, id)
	return buf.String()
}

func (t *Tree) writeText(buf *strings.Builder, id NodeID) {
	n := &t.nodes[id]
	if n.Kind == ElementNode || n.Kind == DocumentNode {
		buf.WriteString(n.Text)
		for _, c := range n.Children {
			t.writeText(buf, c)
			buf.WriteString(t.nodes[c].Tail)
		}
	}
}

// Attr returns the value of attribute key on id.
func (t *Tree) Attr(id NodeID, key string) (string, bool) {
	for _, a := range t.nodes[id].Attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr sets or replaces attribute key on id.
func (t *Tree) SetAttr(id NodeID, key, val string) {
	n := &t.nodes[id]
	for i := range n.Attrs {
		if n.Attrs[i].Key == key {
			n.Attrs[i].Val = val
			return
		}
	}
	n.Attrs = append(n.Attrs, Attr{Key: key, Val: val})
}

// HasClass reports whether the class attribute of id lists class.
func (t *Tree) HasClass(id NodeID, class string) bool {
	v, ok := t.Attr(id, "class")
	if !ok {
		return false
	}
	return slices.Contains(strings.Fields(v), class)
}

// AddClass appends class to the class attribute of id unless present.
func (t *Tree) AddClass(id NodeID, class string) {
	if t.HasClass(id, class) {
		return
	}
	v, ok := t.Attr(id, "class")
	if !ok || strings.TrimSpace(v) == "" {
		t.SetAttr(id, "class", class)
		return
	}
	t.SetAttr(id, "class", v+" "+class)
}
