package config

import (
	"bufio"
	"io"
	"strings"
)

// ParseINI parses sectioned key=value content into a map of section name to
// key/value pairs. Keys appearing before any [section] header land in the
// "" section. Lines starting with # or ; are comments; lines without = are
// skipped.
func ParseINI(r io.Reader) (map[string]map[string]string, error) {
	sections := make(map[string]map[string]string)
	current := ""

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, ";") {
			continue
		}

		// Section header
		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			current = strings.TrimSpace(strings.Trim(line, "[]"))
			if _, ok := sections[current]; !ok {
				sections[current] = make(map[string]string)
			}
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		sec := sections[current]
		if sec == nil {
			sec = make(map[string]string)
			sections[current] = sec
		}
		sec[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return sections, nil
}
