package doxygen

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Settings a Doxyfile must carry for its html output to be convertible.
var mandatorySettings = map[string]string{
	"GENERATE_TREEVIEW": "NO",
	"DISABLE_INDEX":     "NO",
	"GENERATE_HTML":     "YES",
	"CREATE_SUBDIRS":    "NO",
}

// Settings that improve the result but are not required.
var recommendedSettings = map[string]string{
	"SEARCHENGINE":     "NO",
	"GENERATE_XML":     "NO",
	"DOT_IMAGE_FORMAT": "svg",
	"DOT_TRANSPARENT":  "YES",
	"INTERACTIVE_SVG":  "YES",
}

// Finding is one deviation from the expected Doxygen settings.
type Finding struct {
	Key  string
	Got  string // empty when the key is missing
	Want string
	Hint bool // recommended rather than mandatory
}

func (f Finding) String() string {
	level, verb := "Error", "required"
	if f.Hint {
		level, verb = "Hint", "recommended"
	}
	if f.Got == "" {
		return fmt.Sprintf("%s: Missing value for %s, but %s is %s.", level, f.Key, f.Want, verb)
	}
	return fmt.Sprintf("%s: Wrong value %s for %s, %s is %s.", level, f.Got, f.Key, f.Want, verb)
}

// ValidationError reports settings or paths that make an input unusable.
type ValidationError struct {
	Source   string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(e.Problems, "; "))
}

// SettingsReport is the outcome of validating a Doxyfile.
type SettingsReport struct {
	HTMLDir  string // absolute html output directory
	Findings []Finding
}

// Hints returns the non-fatal findings.
func (r SettingsReport) Hints() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Hint {
			out = append(out, f)
		}
	}
	return out
}

// SettingsValidator checks Doxyfile settings against what the converter
// needs.
type SettingsValidator struct{}

// Validate checks settings read from source. Mandatory deviations and
// an html output directory outside sphinxSource return a
// *ValidationError; recommended deviations are only reported.
func (SettingsValidator) Validate(source string, settings map[string]string, sphinxSource string) (SettingsReport, error) {
	var report SettingsReport
	var problems []string

	outDir := settings["OUTPUT_DIRECTORY"]
	if outDir == "" {
		problems = append(problems, Finding{Key: "OUTPUT_DIRECTORY", Want: "a directory inside the sphinx source"}.String())
	} else {
		htmlOut := settings["HTML_OUTPUT"]
		if htmlOut == "" {
			htmlOut = "html"
		}
		abs, err := filepath.Abs(filepath.Join(outDir, htmlOut))
		if err != nil {
			return report, fmt.Errorf("resolve output directory: %w", err)
		}
		report.HTMLDir = abs
		inside, err := isWithin(abs, sphinxSource)
		if err != nil {
			return report, err
		}
		if !inside {
			problems = append(problems, fmt.Sprintf(
				"the doxygen output directory %q (resolved to %q) is not inside the sphinx source directory %q",
				outDir, abs, sphinxSource))
		}
	}

	for _, f := range compare(settings, mandatorySettings, false) {
		report.Findings = append(report.Findings, f)
		problems = append(problems, f.String())
	}
	report.Findings = append(report.Findings, compare(settings, recommendedSettings, true)...)

	if len(problems) > 0 {
		return report, &ValidationError{Source: source, Problems: problems}
	}
	return report, nil
}

func compare(settings, want map[string]string, hint bool) []Finding {
	keys := make([]string, 0, len(want))
	for k := range want {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []Finding
	for _, k := range keys {
		got := settings[k]
		if got != want[k] {
			out = append(out, Finding{Key: k, Got: got, Want: want[k], Hint: hint})
		}
	}
	return out
}

func isWithin(path, root string) (bool, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false, fmt.Errorf("resolve %s: %w", root, err)
	}
	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		return false, nil
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)), nil
}

// OutputPathValidator checks that a directory holds Doxygen html output.
type OutputPathValidator struct{}

// Validate requires doxygen.css in dir. When an index.html with a
// generator meta tag is present, it must name Doxygen.
func (OutputPathValidator) Validate(dir string) error {
	if _, err := os.Stat(filepath.Join(dir, "doxygen.css")); err != nil {
		return &ValidationError{Source: dir, Problems: []string{
			`not a doxygen html output directory (no "doxygen.css" found)`,
		}}
	}

	f, err := os.Open(filepath.Join(dir, "index.html"))
	if err != nil {
		return nil
	}
	defer f.Close()
	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return nil
	}
	gen, ok := doc.Find(`meta[name="generator"]`).Attr("content")
	if ok && !strings.HasPrefix(strings.ToLower(gen), "doxygen") {
		return &ValidationError{Source: dir, Problems: []string{
			fmt.Sprintf("index.html was generated by %q, not doxygen", gen),
		}}
	}
	return nil
}
