// Package doxygen reads Doxygen configuration and output artifacts.
package doxygen

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/yosuke-furukawa/json5/encoding/json5"
)

var (
	jsAssignRe       = regexp.MustCompile(`var .*=`)
	jsBlockCommentRe = regexp.MustCompile(`(?s)/\*.*?\*/`)
)

// ReadJSDataFile reads a Doxygen javascript data file such as
// menudata.js and decodes the assigned object.
func ReadJSDataFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	v, err := ParseJSData(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

// ParseJSData strips the variable assignment and comments from a
// javascript data file and decodes the remaining JSON5 literal.
func ParseJSData(data []byte) (any, error) {
	src := jsBlockCommentRe.ReplaceAllString(string(data), "")
	src = jsAssignRe.ReplaceAllString(src, "")
	src = strings.TrimRight(strings.TrimSpace(src), ";")

	var v any
	if err := json5.Unmarshal([]byte(src), &v); err != nil {
		return nil, fmt.Errorf("decode js data: %w", err)
	}
	return v, nil
}
