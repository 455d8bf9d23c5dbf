package classify

import (
	"regexp"
	"strings"

	"github.com/dgallion1/doxyrst/internal/doctree"
	"github.com/dgallion1/doxyrst/internal/rst"
)

// Markers that announce a block of markup on their own line.
var blockMarkers = map[string]bool{
	"{rst}":                      true,
	"embed:rst":                  true,
	"embed:rst:leading-asterisk": true,
	"embed:rst:leading-slashes":  true,
}

var (
	directiveRe     = regexp.MustCompile(`^\.\. \w+::`)
	commentPrefixRe = regexp.MustCompile(`^[ \t]*(///|//!|\*)`)

	prefixStrippers = map[string]*regexp.Regexp{
		"///": regexp.MustCompile(`^[ \t]*///`),
		"//!": regexp.MustCompile(`^[ \t]*//!`),
		"*":   regexp.MustCompile(`^[ \t]*\*`),
	}
)

// stripCommentPrefix removes one layer of source comment prefix. The
// prefix is taken from the first non-blank line; when that line has none
// the text is returned unchanged.
func stripCommentPrefix(text string) (string, bool) {
	lines := strings.Split(text, "\n")
	first := firstNonBlank(lines)
	if first < 0 {
		return text, false
	}
	m := commentPrefixRe.FindStringSubmatch(lines[first])
	if m == nil {
		return text, false
	}
	re := prefixStrippers[m[1]]
	for i, l := range lines {
		lines[i] = re.ReplaceAllString(l, "")
	}
	return strings.Join(lines, "\n"), true
}

func firstNonBlank(lines []string) int {
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			return i
		}
	}
	return -1
}

// ParseBlockContent extracts a block of markup from element text. The
// block starts either with a marker line ("{rst}", "embed:rst", ...),
// which is dropped, or with a directive line (".. name::"), which is
// kept. It returns the dedented payload and whether text held a block.
func ParseBlockContent(text string) (string, bool) {
	stripped, hadPrefix := stripCommentPrefix(text)
	lines := strings.Split(stripped, "\n")
	first := firstNonBlank(lines)
	if first < 0 {
		return "", false
	}
	head := strings.TrimSpace(lines[first])

	var payload string
	switch {
	case blockMarkers[head]:
		rest := strings.Join(lines[first+1:], "\n")
		if !hadPrefix {
			rest, _ = stripCommentPrefix(rest)
		}
		payload = rst.Dedent(rest)
	case directiveRe.MatchString(head):
		payload = rst.Dedent(strings.Join(lines[first:], "\n"))
	default:
		return "", false
	}
	return rst.TrimBlankLines(payload), true
}

// BlockMarkup turns code and pre elements whose text is a block of
// markup into block snippets.
type BlockMarkup struct{}

func (BlockMarkup) Tags() []string { return tagsOf("code", "pre") }
func (BlockMarkup) Final() bool    { return true }
func (BlockMarkup) Format() Format { return FormatBlock }

func (BlockMarkup) TryClassify(t *doctree.Tree, id doctree.NodeID) bool {
	payload, ok := ParseBlockContent(t.TextContent(id))
	if !ok {
		return false
	}
	toSnippet(t, id, FormatBlock, "\n"+payload+"\n")
	return true
}

// FragmentBlock handles Doxygen code fragments, a div with class
// "fragment" whose children are one div.line per source line.
type FragmentBlock struct{}

func (FragmentBlock) Tags() []string { return tagsOf("div") }
func (FragmentBlock) Final() bool    { return true }
func (FragmentBlock) Format() Format { return FormatBlock }

func (FragmentBlock) TryClassify(t *doctree.Tree, id doctree.NodeID) bool {
	if !t.HasClass(id, "fragment") {
		return false
	}
	kids := t.ElementChildren(id)
	if len(kids) == 0 {
		return false
	}
	lines := make([]string, 0, len(kids))
	for _, k := range kids {
		if t.Node(k).Tag != "div" || !t.HasClass(k, "line") {
			return false
		}
		lines = append(lines, t.TextContent(k))
	}
	payload, ok := ParseBlockContent(strings.Join(lines, "\n"))
	if !ok {
		return false
	}
	toSnippet(t, id, FormatBlock, "\n"+payload+"\n")
	return true
}
