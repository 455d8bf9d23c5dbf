package doxygen

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var envRefRe = regexp.MustCompile(`\$\(([^)]+)\)`)

// ReadDoxyfile reads KEY = VALUE pairs from a Doxygen configuration file.
// Comment lines are skipped, "KEY += VALUE" appends to an earlier value
// and $(VAR) references are expanded from the environment.
func ReadDoxyfile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open doxyfile: %w", err)
	}
	defer f.Close()

	settings := make(map[string]string)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		appendValue := strings.HasSuffix(key, "+")
		key = strings.Trim(strings.TrimSpace(strings.TrimSuffix(key, "+")), `'"`)
		if key == "" {
			return nil, fmt.Errorf("%s:%d: missing key", path, lineNo)
		}
		value = expandEnv(strings.Trim(strings.TrimSpace(value), `'"`))
		if appendValue && settings[key] != "" {
			value = settings[key] + " " + value
		}
		settings[key] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read doxyfile: %w", err)
	}
	return settings, nil
}

func expandEnv(v string) string {
	if !strings.Contains(v, "$(") {
		return v
	}
	return envRefRe.ReplaceAllStringFunc(v, func(ref string) string {
		return os.Getenv(envRefRe.FindStringSubmatch(ref)[1])
	})
}
