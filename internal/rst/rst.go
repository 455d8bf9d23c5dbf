// Package rst holds small reStructuredText emitters shared by the writer
// and the navigation index.
package rst

import (
	"fmt"
	"strings"
)

// Indent is the directive content indentation used throughout.
const Indent = "   "

var safeEncoder = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"^", `\^`,
	"$", `\$`,
	"*", `\*`,
	"`", "\\`",
)

// Escape escapes characters with inline-markup meaning so text can be
// used verbatim in a section title.
func Escape(text string) string {
	return safeEncoder.Replace(text)
}

// Heading returns a title line and its underline.
func Heading(title string, underline byte) []string {
	n := len([]rune(title))
	if n == 0 {
		n = 1
	}
	return []string{title, strings.Repeat(string(underline), n)}
}

// IndentLines prefixes every non-empty line with prefix.
func IndentLines(lines []string, prefix string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		if l == "" {
			continue
		}
		out[i] = prefix + l
	}
	return out
}

// Container wraps content in a container directive with the given class.
func Container(class string, content []string) []string {
	out := []string{".. container:: " + class, ""}
	return append(out, IndentLines(content, Indent)...)
}

// RawHTMLFile references an html file by name through a raw directive.
func RawHTMLFile(name string) []string {
	return []string{"", ".. raw:: html", Indent + ":file: " + name}
}

// RawHTML embeds a single line of html through a raw directive.
func RawHTML(html string) []string {
	return []string{".. raw:: html", "", Indent + html, ""}
}

// Toctree renders a toctree directive listing entries ("Title <docname>").
func Toctree(caption string, maxDepth int, hidden bool, entries []string) []string {
	out := []string{".. toctree::"}
	if caption != "" {
		out = append(out, Indent+":caption: "+caption)
	}
	out = append(out, fmt.Sprintf("%s:maxdepth: %d", Indent, maxDepth))
	if hidden {
		out = append(out, Indent+":hidden:")
	}
	out = append(out, "")
	for _, e := range entries {
		out = append(out, Indent+e)
	}
	return append(out, "")
}

// TocEntry formats a toctree entry.
func TocEntry(title, docname string) string {
	return fmt.Sprintf("%s <%s>", title, docname)
}

// Dedent removes the longest common leading whitespace from every line.
// Lines holding only spaces and tabs are emptied and do not count
// towards the common margin.
func Dedent(text string) string {
	lines := strings.Split(text, "\n")
	var margin string
	found := false
	for i, l := range lines {
		trimmed := strings.TrimLeft(l, " \t")
		if trimmed == "" {
			lines[i] = ""
			continue
		}
		indent := l[:len(l)-len(trimmed)]
		if !found {
			margin, found = indent, true
			continue
		}
		margin = commonPrefix(margin, indent)
	}
	if margin != "" {
		for i, l := range lines {
			if l != "" {
				lines[i] = l[len(margin):]
			}
		}
	}
	return strings.Join(lines, "\n")
}

func commonPrefix(a, b string) string {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return a[:i]
		}
	}
	return a[:n]
}

// TrimBlankLines drops leading and trailing lines that hold only whitespace.
func TrimBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	start, end := 0, len(lines)
	for start < end && strings.TrimSpace(lines[start]) == "" {
		start++
	}
	for end > start && strings.TrimSpace(lines[end-1]) == "" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}
