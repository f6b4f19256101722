// Package propsource parses properties-style "name = value" streams while
// preserving the order entries appear in.
package propsource

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Entry is a single name/value pair read from a stream.
type Entry struct {
	Name  string
	Value string
}

// Parse reads r line by line. Blank lines and lines starting with '#' or
// '!' are skipped. Every other line must contain '=' or ':' separating
// the name from the value. Names are trimmed; values keep their inner
// whitespace but lose leading/trailing space.
func Parse(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' || line[0] == '!' {
			continue
		}
		sep := separatorIndex(line)
		if sep < 0 {
			return nil, fmt.Errorf("propsource: line %d: missing '=' separator", lineNo)
		}
		name := strings.TrimSpace(line[:sep])
		if name == "" {
			return nil, fmt.Errorf("propsource: line %d: empty name", lineNo)
		}
		entries = append(entries, Entry{
			Name:  name,
			Value: strings.TrimSpace(line[sep+1:]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("propsource: %w", err)
	}
	return entries, nil
}

func separatorIndex(line string) int {
	for i, c := range line {
		if c == '=' || c == ':' {
			return i
		}
	}
	return -1
}
