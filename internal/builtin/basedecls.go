package builtin

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ReadBaseDeclarations reads a base-declarations file: one exported
// name per line, UTF-8, as described in the design. Blank lines are
// skipped; no other syntax is recognized.
func ReadBaseDeclarations(r io.Reader) ([]string, error) {
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("builtin: read base declarations: %w", err)
	}
	return names, nil
}
