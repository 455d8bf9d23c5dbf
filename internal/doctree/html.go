package doctree

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Parse reads an HTML document into a Tree.
func Parse(r io.Reader) (*Tree, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	return FromHTML(doc), nil
}

// FromHTML converts a parsed x/net/html document into a Tree.
// Adjacent text nodes are merged into the surrounding Text or Tail.
func FromHTML(doc *html.Node) *Tree {
	t := New()
	t.convertChildren(t.root, doc)
	return t
}

func (t *Tree) convertChildren(parent NodeID, hn *html.Node) {
	var last NodeID = None
	for c := hn.FirstChild; c != nil; c = c.NextSibling {
		var id NodeID
		switch c.Type {
		case html.TextNode:
			if last == None {
				t.nodes[parent].Text += c.Data
			} else {
				t.nodes[last].Tail += c.Data
			}
			continue
		case html.ElementNode:
			attrs := make([]Attr, 0, len(c.Attr))
			for _, a := range c.Attr {
				key := a.Key
				if a.Namespace != "" {
					key = a.Namespace + ":" + a.Key
				}
				attrs = append(attrs, Attr{Key: key, Val: a.Val})
			}
			id = t.add(Node{Kind: ElementNode, Tag: c.Data, Attrs: attrs, Parent: None})
			t.AppendChild(parent, id)
			t.convertChildren(id, c)
		case html.CommentNode:
			id = t.add(Node{Kind: CommentNode, Text: c.Data, Parent: None})
			t.AppendChild(parent, id)
		case html.DoctypeNode:
			attrs := make([]Attr, 0, len(c.Attr))
			for _, a := range c.Attr {
				attrs = append(attrs, Attr{Key: a.Key, Val: a.Val})
			}
			id = t.add(Node{Kind: DoctypeNode, Tag: c.Data, Attrs: attrs, Parent: None})
			t.AppendChild(parent, id)
		default:
			continue
		}
		last = id
	}
}

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "keygen": true, "link": true,
	"meta": true, "param": true, "source": true, "track": true, "wbr": true,
}

var rawTextElements = map[string]bool{
	"script": true, "style": true, "xmp": true, "iframe": true,
	"noembed": true, "noframes": true,
}

// Render serializes the whole tree as HTML.
func (t *Tree) Render(w io.Writer) error {
	var buf strings.Builder
	t.render(&buf, t.root)
	_, err := io.WriteString(w, buf.String())
	return err
}

// String serializes the whole tree as HTML.
func (t *Tree) String() string {
	var buf strings.Builder
	t.render(&buf, t.root)
	return buf.String()
}

// RenderNode serializes id and its subtree, without its tail.
func (t *Tree) RenderNode(id NodeID) string {
	var buf strings.Builder
	t.render(&buf, id)
	return buf.String()
}

func (t *Tree) render(buf *strings.Builder, id NodeID) {
	n := &t.nodes[id]
	switch n.Kind {
	case DocumentNode:
		t.renderContent(buf, n, false)
	case DoctypeNode:
		buf.WriteString("<!DOCTYPE ")
		buf.WriteString(n.Tag)
		public, hasPublic := t.Attr(id, "public")
		system, hasSystem := t.Attr(id, "system")
		if hasPublic {
			fmt.Fprintf(buf, " PUBLIC %q", public)
			if hasSystem {
				fmt.Fprintf(buf, " %q", system)
			}
		} else if hasSystem {
			fmt.Fprintf(buf, " SYSTEM %q", system)
		}
		buf.WriteString(">")
	case CommentNode:
		buf.WriteString("<!--")
		buf.WriteString(n.Text)
		buf.WriteString("-->")
	case ElementNode:
		buf.WriteString("<")
		buf.WriteString(n.Tag)
		for _, a := range n.Attrs {
			buf.WriteString(" ")
			buf.WriteString(a.Key)
			buf.WriteString(`="`)
			buf.WriteString(html.EscapeString(a.Val))
			buf.WriteString(`"`)
		}
		buf.WriteString(">")
		if voidElements[n.Tag] {
			return
		}
		t.renderContent(buf, n, rawTextElements[n.Tag])
		buf.WriteString("</")
		buf.WriteString(n.Tag)
		buf.WriteString(">")
	}
}

func (t *Tree) renderContent(buf *strings.Builder, n *Node, raw bool) {
	writeData(buf, n.Text, raw)
	for _, c := range n.Children {
		t.render(buf, c)
		writeData(buf, t.nodes[c].Tail, raw)
	}
}

func writeData(buf *strings.Builder, s string, raw bool) {
	if raw {
		buf.WriteString(s)
		return
	}
	buf.WriteString(html.EscapeString(s))
}
