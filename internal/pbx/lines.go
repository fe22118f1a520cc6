package pbx

import (
	"fmt"
	"os"
	"strings"
)

// ReadLines reads the descriptor at path and returns its lines in order.
// A missing or unreadable descriptor is the only fatal condition in this
// package.
func ReadLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read descriptor: %w", err)
	}
	return SplitLines(string(data)), nil
}

// SplitLines splits text on LF or CRLF line endings. A trailing newline does
// not produce an empty final line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

// sliceBefore returns the part of line before the first occurrence of sep,
// or the whole line when sep does not occur.
func sliceBefore(line, sep string) string {
	if i := strings.Index(line, sep); i >= 0 {
		return line[:i]
	}
	return line
}

// sliceBetween returns the text after the first occurrence of from up to the
// next occurrence of to. It returns "" when either delimiter is missing.
func sliceBetween(line, from, to string) string {
	start := strings.Index(line, from)
	if start < 0 {
		return ""
	}
	rest := line[start+len(from):]
	end := strings.Index(rest, to)
	if end < 0 {
		return ""
	}
	return rest[:end]
}
