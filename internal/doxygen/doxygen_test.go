package doxygen

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const menudata = `/*
 @licstart  The following is the entire license notice for the JavaScript code in this file.
 @licend  The above is the entire license notice for the JavaScript code in this file
*/
var menudata={children:[
{text:"Main Page",url:"index.html"},
{text:"Files",url:"files.html",children:[
{text:"File List",url:"files.html"}]}]}
`

func TestParseJSData(t *testing.T) {
	v, err := ParseJSData([]byte(menudata))
	require.NoError(t, err)

	root, ok := v.(map[string]any)
	require.True(t, ok)
	children, ok := root["children"].([]any)
	require.True(t, ok)
	require.Len(t, children, 2)
	first := children[0].(map[string]any)
	assert.Equal(t, "Main Page", first["text"])
	assert.Equal(t, "index.html", first["url"])
}

func TestReadJSDataFileErrors(t *testing.T) {
	_, err := ReadJSDataFile(filepath.Join(t.TempDir(), "menudata.js"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "menudata.js")
	require.NoError(t, os.WriteFile(path, []byte("var menudata={children:["), 0o644))
	_, err = ReadJSDataFile(path)
	assert.Error(t, err)
}

func TestReadDoxyfile(t *testing.T) {
	t.Setenv("DOXY_OUT", "/tmp/out")
	path := filepath.Join(t.TempDir(), "Doxyfile")
	require.NoError(t, os.WriteFile(path, []byte(`# comment
PROJECT_NAME     = "Demo"
OUTPUT_DIRECTORY = $(DOXY_OUT)/doxygen
  # indented comment
GENERATE_HTML    = YES
INPUT            = src
INPUT           += include

`), 0o644))

	settings, err := ReadDoxyfile(path)
	require.NoError(t, err)
	assert.Equal(t, "Demo", settings["PROJECT_NAME"])
	assert.Equal(t, "/tmp/out/doxygen", settings["OUTPUT_DIRECTORY"])
	assert.Equal(t, "YES", settings["GENERATE_HTML"])
	assert.Equal(t, "src include", settings["INPUT"])
}

func validSettings(out string) map[string]string {
	s := map[string]string{"OUTPUT_DIRECTORY": out}
	for k, v := range mandatorySettings {
		s[k] = v
	}
	for k, v := range recommendedSettings {
		s[k] = v
	}
	return s
}

func TestSettingsValidatorAccepts(t *testing.T) {
	sphinx := t.TempDir()
	out := filepath.Join(sphinx, "doxygen", "demo")

	report, err := SettingsValidator{}.Validate("Doxyfile", validSettings(out), sphinx)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(out, "html"), report.HTMLDir)
	assert.Empty(t, report.Findings)
}

func TestSettingsValidatorHintsOnly(t *testing.T) {
	sphinx := t.TempDir()
	settings := validSettings(filepath.Join(sphinx, "doxygen"))
	delete(settings, "SEARCHENGINE")
	settings["DOT_IMAGE_FORMAT"] = "png"

	report, err := SettingsValidator{}.Validate("Doxyfile", settings, sphinx)
	require.NoError(t, err)
	hints := report.Hints()
	require.Len(t, hints, 2)
	assert.Equal(t, "Hint: Wrong value png for DOT_IMAGE_FORMAT, svg is recommended.", hints[0].String())
	assert.Equal(t, "Hint: Missing value for SEARCHENGINE, but NO is recommended.", hints[1].String())
}

func TestSettingsValidatorRejects(t *testing.T) {
	sphinx := t.TempDir()
	settings := validSettings(filepath.Join(t.TempDir(), "elsewhere"))
	settings["GENERATE_TREEVIEW"] = "YES"

	_, err := SettingsValidator{}.Validate("Doxyfile", settings, sphinx)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	require.Len(t, verr.Problems, 2)
	assert.Contains(t, verr.Problems[0], "not inside the sphinx source directory")
	assert.Equal(t, "Error: Wrong value YES for GENERATE_TREEVIEW, NO is required.", verr.Problems[1])
}

func TestSettingsValidatorMissingOutputDirectory(t *testing.T) {
	settings := validSettings("")
	_, err := SettingsValidator{}.Validate("Doxyfile", settings, t.TempDir())
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Error(), "Missing value for OUTPUT_DIRECTORY")
}

func TestOutputPathValidator(t *testing.T) {
	dir := t.TempDir()
	err := OutputPathValidator{}.Validate(dir)
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "doxygen.css"), []byte("body{}"), 0o644))
	assert.NoError(t, OutputPathValidator{}.Validate(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<html><head><meta name="generator" content="Doxygen 1.9.5"/></head></html>`), 0o644))
	assert.NoError(t, OutputPathValidator{}.Validate(dir))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"),
		[]byte(`<html><head><meta name="generator" content="Hugo 0.120"/></head></html>`), 0o644))
	assert.Error(t, OutputPathValidator{}.Validate(dir))
}
