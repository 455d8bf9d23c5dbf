package toc

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

const (
	titleMarker   = "@@@-TITLE-@@@"
	contentsStart = `<!--header--><div class="contents">`
	contentsEnd   = `</div><!-- contents -->`
)

var (
	contentsRe  = regexp.MustCompile(regexp.QuoteMeta(contentsStart) + `.*?` + regexp.QuoteMeta(contentsEnd))
	pageTitleRe = regexp.MustCompile(`(<div class="title">).*?(</div>)`)
)

// TemplateError is returned when index.html does not have the layout
// generated pages are cut from.
type TemplateError struct {
	Path string
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("%s: cannot find the page template: expected exactly one match of %q",
		e.Path, contentsStart+".*"+contentsEnd)
}

// PageChrome is the html around the content area of a Doxygen page.
type PageChrome struct {
	Prefix string // up to and including the content opening tag
	Suffix string // from the content closing tag on
}

// LoadPageChrome reads the page chrome from a Doxygen index.html.
func LoadPageChrome(path string) (PageChrome, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PageChrome{}, fmt.Errorf("read page template: %w", err)
	}
	chrome, ok := ParsePageChrome(string(data))
	if !ok {
		return PageChrome{}, &TemplateError{Path: path}
	}
	return chrome, nil
}

// ParsePageChrome cuts page html around its content area. Newlines are
// removed so the chrome fits on single raw html lines.
func ParsePageChrome(page string) (PageChrome, bool) {
	linear := strings.NewReplacer("\n", "", "\r", "").Replace(page)
	parts := contentsRe.Split(linear, -1)
	if len(parts) != 2 {
		return PageChrome{}, false
	}
	prefix := pageTitleRe.ReplaceAllString(parts[0], "${1}"+titleMarker+"${2}")
	return PageChrome{
		Prefix: prefix + contentsStart,
		Suffix: contentsEnd + parts[1],
	}, true
}

// PrefixWithTitle returns the prefix showing title as the page title.
func (c PageChrome) PrefixWithTitle(title string) string {
	return strings.ReplaceAll(c.Prefix, titleMarker, title)
}
