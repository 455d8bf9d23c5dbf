package classify

import (
	"regexp"
	"strings"

	"github.com/dgallion1/doxyrst/internal/doctree"
)

// roleRe matches an inline role at the start of text: a colon-delimited
// role name followed by content quoted with backticks, single or double
// quotes.
var roleRe = regexp.MustCompile("^:([\\w:.+-]+):(?:`([^`]*)`|'([^']*)'|\"([^\"]*)\")")

var lineBreakRe = regexp.MustCompile(`[ \t\r]*\n\s*`)

// FoldLines replaces each line break, with the blanks around it, by a
// single space. Inline snippets must stay on one line.
func FoldLines(s string) string {
	return lineBreakRe.ReplaceAllString(s, " ")
}

// ParseInlineRole reports whether text starts with an inline role and
// returns it in canonical backtick form followed by any trailing text,
// folded onto a single line.
func ParseInlineRole(text string) (string, bool) {
	text = strings.TrimSpace(text)
	m := roleRe.FindStringSubmatchIndex(text)
	if m == nil {
		return "", false
	}
	name := text[m[2]:m[3]]
	var content string
	for g := 2; g <= 4; g++ {
		if start := m[2*g]; start >= 0 {
			content = text[start:m[2*g+1]]
			break
		}
	}
	return FoldLines(":" + name + ":`" + content + "`" + text[m[1]:]), true
}

// InlineRole turns code elements that start with an inline role into
// inline snippets. A paragraph parent becomes a div so the role can be
// placed between block-level raw html.
type InlineRole struct{}

func (InlineRole) Tags() []string { return tagsOf("code") }
func (InlineRole) Final() bool    { return true }
func (InlineRole) Format() Format { return FormatInline }

func (InlineRole) TryClassify(t *doctree.Tree, id doctree.NodeID) bool {
	if len(t.ElementChildren(id)) > 0 {
		return false
	}
	role, ok := ParseInlineRole(t.Node(id).Text)
	if !ok {
		return false
	}
	toSnippet(t, id, FormatInline, role)

	parent := t.Node(id).Parent
	if parent == doctree.None {
		return true
	}
	p := t.Node(parent)
	if p.Tag == "p" {
		p.Tag = "div"
	}
	if p.Tag == "div" {
		t.AddClass(parent, InlineParentClass)
	}
	return true
}
