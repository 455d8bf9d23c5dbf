package classify

import (
	"strings"

	"github.com/dgallion1/doxyrst/internal/doctree"
	"github.com/dgallion1/doxyrst/internal/rst"
)

// PreformattedLines rewrites a pre element as a Doxygen style fragment:
// a div with class "fragment" holding one div.line per line of text.
// The result holds no literal newlines, so it survives being embedded as
// a single raw html line. It produces no snippet.
type PreformattedLines struct{}

func (PreformattedLines) Tags() []string { return tagsOf("pre") }
func (PreformattedLines) Final() bool    { return true }
func (PreformattedLines) Format() Format { return FormatNone }

func (PreformattedLines) TryClassify(t *doctree.Tree, id doctree.NodeID) bool {
	lines := strings.Split(rst.Dedent(t.TextContent(id)), "\n")
	if len(lines) > 0 && strings.TrimSpace(lines[0]) == "" {
		lines = lines[1:]
	}
	if n := len(lines); n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		lines = lines[:n-1]
	}

	t.RemoveChildren(id)
	n := t.Node(id)
	n.Tag = "div"
	n.Attrs = []doctree.Attr{{Key: "class", Val: "fragment"}}
	for _, l := range lines {
		line := t.NewElement("div")
		t.SetAttr(line, "class", "line")
		t.Node(line).Text = l
		t.AppendChild(id, line)
	}
	return true
}
