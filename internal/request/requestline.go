package request

import (
	"bytes"
	"errors"
)

var (
	ErrMalformedRequestLine = errors.New("malformed request line")
)

// splitLines breaks data on line breaks. Both "\r\n" and a bare "\n"
// terminate a line; a trailing carriage return is dropped.
func splitLines(data []byte) []string {
	raw := bytes.Split(data, []byte("\n"))
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, string(bytes.TrimSuffix(l, []byte("\r"))))
	}
	// data ending in a line break leaves one empty element behind
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// tokens splits a line on runs of spaces and tabs. Empty tokens are
// never emitted.
func tokens(line string) []string {
	out := make([]string, 0, 3)
	start := -1
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			if start >= 0 {
				out = append(out, line[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, line[start:])
	}
	return out
}

// parseRequestLine parses: METHOD [TARGET [VERSION ...]]
// Returns: method, target, version, error
func parseRequestLine(line string) (string, string, string, error) {
	parts := tokens(line)
	if len(parts) == 0 {
		return "", "", "", ErrMalformedRequestLine
	}

	var method, target, version string
	method = parts[0]
	if len(parts) > 1 {
		target = parts[1]
	}
	if len(parts) > 2 {
		version = parts[2]
	}
	return method, target, version, nil
}
