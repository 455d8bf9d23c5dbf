package classify

import (
	"github.com/dgallion1/doxyrst/internal/doctree"
)

// Normalizer runs a chain over every candidate element of a tree.
type Normalizer struct {
	chain *Chain
	tags  map[string]bool
}

// NewNormalizer computes the candidate tag set of chain once.
func NewNormalizer(chain *Chain) *Normalizer {
	return &Normalizer{chain: chain, tags: chain.Tags()}
}

// Normalize rewrites t in place and returns the snippet formats found.
// Candidates are collected up front in document order; elements detached
// by an earlier rewrite are skipped.
func (n *Normalizer) Normalize(t *doctree.Tree) Formats {
	formats := Formats{}
	for _, id := range t.Elements(n.tags) {
		if t.Detached(id) {
			continue
		}
		if f, ok := n.chain.Classify(t, id); ok && f != FormatNone {
			formats.Add(f)
		}
	}
	return formats
}
