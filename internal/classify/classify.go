// Package classify detects embedded reStructuredText in Doxygen HTML and
// rewrites the matching elements into snippet elements in place.
package classify

import (
	"slices"
	"sort"

	"github.com/dgallion1/doxyrst/internal/doctree"
)

// Format labels how a snippet's text is embedded in the output.
type Format string

const (
	// FormatNone is reported by structural classifiers that emit no snippet.
	FormatNone Format = ""
	// FormatInline marks an inline role such as :doc:`page`.
	FormatInline Format = "rst:inline"
	// FormatBlock marks a block of markup.
	FormatBlock Format = "rst:block"
	// FormatRst marks an untyped snippet; it is written like a block.
	FormatRst Format = "rst"
)

// SnippetTag is the element name classifiers rewrite markup into.
const SnippetTag = "snippet"

// FormatAttr is the snippet attribute that carries its Format.
const FormatAttr = "format"

// InlineParentClass is added to the div holding an inline snippet.
const InlineParentClass = "doxyrst-inline-parent"

// Classifier recognizes one kind of embedded markup. TryClassify either
// rewrites the element and returns true, or leaves the tree untouched and
// returns false.
type Classifier interface {
	Tags() []string
	Final() bool
	Format() Format
	TryClassify(t *doctree.Tree, id doctree.NodeID) bool
}

type link struct {
	c    Classifier
	tags map[string]bool
}

// Chain runs classifiers in order against candidate elements.
type Chain struct {
	links []link
	tags  map[string]bool
}

// NewChain builds a chain from classifiers in priority order.
func NewChain(classifiers ...Classifier) *Chain {
	ch := &Chain{tags: make(map[string]bool)}
	for _, c := range classifiers {
		l := link{c: c, tags: make(map[string]bool)}
		for _, tag := range c.Tags() {
			l.tags[tag] = true
			ch.tags[tag] = true
		}
		ch.links = append(ch.links, l)
	}
	return ch
}

// DefaultChain returns the standard classifier order: inline roles,
// block markup, fragment blocks, then preformatted text.
func DefaultChain() *Chain {
	return NewChain(InlineRole{}, BlockMarkup{}, FragmentBlock{}, PreformattedLines{})
}

// Tags returns the union of tags any classifier in the chain handles.
func (ch *Chain) Tags() map[string]bool {
	out := make(map[string]bool, len(ch.tags))
	for k := range ch.tags {
		out[k] = true
	}
	return out
}

// Classify offers id to each classifier that handles its tag. It returns
// the format of the matching classifiers and whether any matched.
// The first final classifier to match ends the walk.
func (ch *Chain) Classify(t *doctree.Tree, id doctree.NodeID) (Format, bool) {
	matched := false
	format := FormatNone
	for _, l := range ch.links {
		if !l.tags[t.Node(id).Tag] {
			continue
		}
		if !l.c.TryClassify(t, id) {
			continue
		}
		matched = true
		if f := l.c.Format(); f != FormatNone {
			format = f
		}
		if l.c.Final() {
			break
		}
	}
	return format, matched
}

// Formats is the set of snippet formats found in one document.
type Formats map[Format]struct{}

// Add records f.
func (fs Formats) Add(f Format) { fs[f] = struct{}{} }

// Has reports whether f was recorded.
func (fs Formats) Has(f Format) bool {
	_, ok := fs[f]
	return ok
}

// Empty reports whether no markup was found.
func (fs Formats) Empty() bool { return len(fs) == 0 }

// Sorted returns the recorded formats in lexical order.
func (fs Formats) Sorted() []Format {
	out := make([]Format, 0, len(fs))
	for f := range fs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func tagsOf(tags ...string) []string { return slices.Clone(tags) }
