package imports

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

// Directive marks an import line.
const Directive = "#import"

// ExtractImports scans the leading import block of r and returns the quoted
// file names it imports, in order.
//
// Lines before the first import are skipped. Once the block is entered, the
// first line that is not an import ends the scan, blank lines included, so
// imports further down the file are not reported. Angle-bracket imports
// name system headers and are logged and skipped. Lines may be of any
// length.
func ExtractImports(ctx context.Context, r io.Reader) ([]string, error) {
	log := ctxlog.FromContext(ctx)
	var names []string
	entered := false

	br := bufio.NewReader(r)
	lineNo := 0
	for {
		raw, readErr := br.ReadString('\n')
		if readErr != nil && readErr != io.EOF {
			return names, fmt.Errorf("scan imports: %w", readErr)
		}
		if raw == "" && readErr == io.EOF {
			return names, nil
		}
		lineNo++
		line := strings.TrimRight(raw, "\r\n")

		if !strings.Contains(line, Directive) {
			if entered {
				return names, nil
			}
		} else {
			entered = true
			if name := quoted(line); name != "" {
				names = append(names, name)
			} else {
				log.Debug("imports: skipping unquoted import", "line", lineNo, "text", strings.TrimSpace(line))
			}
		}
		if readErr == io.EOF {
			return names, nil
		}
	}
}

// quoted returns the text strictly between the first two double quotes of
// line, or "" when there are fewer than two.
func quoted(line string) string {
	open := strings.IndexByte(line, '"')
	if open < 0 {
		return ""
	}
	rest := line[open+1:]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return ""
	}
	return rest[:end]
}
