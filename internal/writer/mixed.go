package writer

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/dgallion1/doxyrst/internal/classify"
	"github.com/dgallion1/doxyrst/internal/doctree"
	"github.com/dgallion1/doxyrst/internal/rst"
)

var (
	// adjacentBlocksRe joins a block snippet with the one right after it.
	adjacentBlocksRe = regexp.MustCompile(`(?m)^</snippet>\s*<snippet format="` + string(classify.FormatBlock) + `">`)
	snippetStartRe   = regexp.MustCompile(`^<snippet format="([^"]*)">(?:(.*)</snippet>)?`)
)

const snippetEnd = "</snippet>"

// MixedContent serializes a normalized tree and splits it into raw html
// passthrough lines and natively embedded markup.
func MixedContent(t *doctree.Tree) ([]string, error) {
	text := adjacentBlocksRe.ReplaceAllString(t.String(), "")
	return Linearize(strings.Split(text, "\n"))
}

// Linearize walks serialized document lines. Html between snippets is
// buffered and emitted as single-line raw html directives; inline
// snippets are emitted as their own paragraph, folded onto one line if
// they span several. Block snippets are dedented and emitted verbatim.
func Linearize(lines []string) ([]string, error) {
	w := &lineWalker{lastRaw: -1}
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		m := snippetStartRe.FindStringSubmatchIndex(line)
		if m == nil {
			w.buf = append(w.buf, line)
			continue
		}
		format := classify.Format(line[m[2]:m[3]])
		rest := line[m[1]:]
		w.flush()

		if m[4] >= 0 {
			content := line[m[4]:m[5]]
			if format == classify.FormatInline {
				w.inline(html.UnescapeString(content))
			} else {
				w.block([]string{content})
			}
			w.keep(rest)
			continue
		}

		if format == classify.FormatInline {
			parts := []string{rest}
			closed := false
			for i++; i < len(lines); i++ {
				if before, after, ok := strings.Cut(lines[i], snippetEnd); ok {
					closed = true
					parts = append(parts, before)
					w.inline(html.UnescapeString(strings.TrimSpace(classify.FoldLines(strings.Join(parts, "\n")))))
					w.keep(after)
					break
				}
				parts = append(parts, lines[i])
			}
			if !closed {
				return nil, ErrUnterminatedSnippet
			}
			continue
		}

		var block []string
		closed := false
		for i++; i < len(lines); i++ {
			if after, ok := strings.CutPrefix(lines[i], snippetEnd); ok {
				closed = true
				w.block(block)
				w.keep(after)
				break
			}
			block = append(block, lines[i])
		}
		if !closed {
			return nil, ErrUnterminatedSnippet
		}
	}
	w.flush()
	return w.out, nil
}

type lineWalker struct {
	out     []string
	buf     []string
	lastRaw int // index in out of the last raw html content line
}

func (w *lineWalker) keep(s string) {
	if s != "" {
		w.buf = append(w.buf, s)
	}
}

func (w *lineWalker) blank() {
	if n := len(w.out); n > 0 && w.out[n-1] != "" {
		w.out = append(w.out, "")
	}
}

func (w *lineWalker) flush() {
	if len(w.buf) == 0 {
		return
	}
	text := strings.Join(w.buf, " ")
	w.buf = w.buf[:0]
	if strings.TrimSpace(text) == "" {
		return
	}
	w.blank()
	w.out = append(w.out, ".. raw:: html", "")
	w.lastRaw = len(w.out)
	w.out = append(w.out, rst.Indent+text, "")
}

func (w *lineWalker) inline(text string) {
	if w.lastRaw >= 0 && w.lastRaw == len(w.out)-2 {
		raw := w.out[w.lastRaw]
		if trimmed := strings.TrimRight(raw, " \t"); trimmed != raw {
			w.out[w.lastRaw] = trimmed + "&nbsp;"
		}
	}
	w.blank()
	w.out = append(w.out, text, "")
}

func (w *lineWalker) block(lines []string) {
	text := rst.Dedent(strings.Join(lines, "\n"))
	w.blank()
	for _, l := range strings.Split(text, "\n") {
		w.out = append(w.out, html.UnescapeString(l))
	}
	w.blank()
}
