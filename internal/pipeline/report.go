package pipeline

import (
	"fmt"
	"strings"
	"time"
)

// Markdown renders the summary as a markdown section.
func (s Summary) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "## `%s`\n\n", s.Dir)
	b.WriteString("| | count |\n|---|---:|\n")
	rows := []struct {
		label string
		n     int
	}{
		{"html files", s.Scanned},
		{"converted", s.Converted},
		{"unchanged", s.Skipped},
		{"failed", s.Failed},
		{"with embedded rst", s.WithMarkup},
		{"structural pages", s.Dummies},
		{"removed", s.Removed},
		{"resources", s.Resources},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "| %s | %d |\n", r.label, r.n)
	}
	fmt.Fprintf(&b, "\nTook %s.\n", s.Duration.Round(time.Millisecond))
	if len(s.Errors) > 0 {
		b.WriteString("\n### Errors\n\n")
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "- `%s`\n", strings.ReplaceAll(e, "`", "'"))
		}
	}
	return b.String()
}

// Markdown renders the job status followed by one section per directory.
func (s JobSnapshot) Markdown() string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Build %s\n\n", s.ID)
	fmt.Fprintf(&b, "Status: **%s** (%s)\n", s.Status, s.Phase)
	for _, sum := range s.Summaries {
		b.WriteString("\n")
		b.WriteString(sum.Markdown())
	}
	if len(s.Summaries) == 0 && len(s.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range s.Errors {
			fmt.Fprintf(&b, "- %s\n", e)
		}
	}
	return b.String()
}
