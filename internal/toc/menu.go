// Package toc builds the navigation index of a Doxygen html directory from
// its menudata.js and renders toctree directives from it.
package toc

import (
	"fmt"
	"path"
	"strings"
)

// MenuEntry is one node of the navigation tree.
type MenuEntry struct {
	Title    string
	Docname  string // url without anchor and extension
	URL      string
	Children []*MenuEntry

	// StructuralDummy is set when a child points at this entry's own page.
	// The entry then gets a generated toctree page of its own.
	StructuralDummy bool
}

// IsLeaf reports whether the entry has no children.
func (e *MenuEntry) IsLeaf() bool { return len(e.Children) == 0 }

// DocnameFromURL strips the anchor and extension from a menu url.
func DocnameFromURL(url string) string {
	page, _, _ := strings.Cut(url, "#")
	return strings.TrimSuffix(page, path.Ext(page))
}

func entryFromJSON(node map[string]any) (*MenuEntry, error) {
	title, ok := node["text"].(string)
	if !ok {
		return nil, fmt.Errorf("menu entry without text: %v", node)
	}
	url, ok := node["url"].(string)
	if !ok {
		return nil, fmt.Errorf("menu entry %q without url", title)
	}
	e := &MenuEntry{Title: title, Docname: DocnameFromURL(url), URL: url}
	children, dummy, err := compatibleChildren(node, e.Docname)
	if err != nil {
		return nil, fmt.Errorf("menu entry %q: %w", title, err)
	}
	e.Children = children
	e.StructuralDummy = dummy
	return e, nil
}

// compatibleChildren builds the children of a menu node in a form a
// toctree can hold. Toctrees cannot link anchors, so repeated leaves
// pointing at an already listed page are dropped. A child pointing at
// the parent's own page marks the parent as a structural dummy, unless
// that child is all that is left, in which case it is dropped too.
func compatibleChildren(node map[string]any, docname string) ([]*MenuEntry, bool, error) {
	raw, _ := node["children"].([]any)
	if len(raw) == 0 {
		return nil, false, nil
	}

	seen := make(map[string]bool)
	dummy := false
	var unique []*MenuEntry
	for _, r := range raw {
		childNode, ok := r.(map[string]any)
		if !ok {
			return nil, false, fmt.Errorf("unexpected child %T", r)
		}
		child, err := entryFromJSON(childNode)
		if err != nil {
			return nil, false, err
		}
		if seen[child.Docname] && child.IsLeaf() {
			continue
		}
		if child.Docname == docname {
			dummy = true
		}
		unique = append(unique, child)
		seen[child.Docname] = true
	}

	if len(unique) == 1 && unique[0].Docname == docname && unique[0].IsLeaf() {
		return nil, false, nil
	}
	return unique, dummy, nil
}

// buildTree turns decoded menudata into the navigation tree. The first
// top-level entry becomes the root; the remaining top-level entries
// become its children.
func buildTree(data any) (*MenuEntry, error) {
	top, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("menu data is %T, want object", data)
	}
	items, _ := top["children"].([]any)
	if len(items) == 0 {
		return nil, fmt.Errorf("menu data has no entries")
	}

	entries := make([]*MenuEntry, 0, len(items))
	for _, item := range items {
		node, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("unexpected menu item %T", item)
		}
		e, err := entryFromJSON(node)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	root := entries[0]
	root.Children = entries[1:]
	return root, nil
}

// flatten lists e and all its descendants in pre-order.
func flatten(e *MenuEntry) []*MenuEntry {
	out := []*MenuEntry{e}
	for _, c := range e.Children {
		out = append(out, flatten(c)...)
	}
	return out
}
