// Package pbx extracts build-file and group records from an Xcode
// project.pbxproj descriptor and resolves them into a folder hierarchy.
//
// The descriptor is scanned with delimiter heuristics rather than a plist
// grammar: only the PBXBuildFile and PBXGroup sections are read, and
// malformed entries are skipped instead of failing the parse.
package pbx

import (
	"context"
	"strings"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

// Section markers as written by Xcode.
const (
	BuildFileSectionBegin = "/* Begin PBXBuildFile section */"
	BuildFileSectionEnd   = "/* End PBXBuildFile section */"
	GroupSectionBegin     = "/* Begin PBXGroup section */"
	GroupSectionEnd       = "/* End PBXGroup section */"
)

// Delimiters used to slice record fields out of a line.
const (
	commentOpen    = " /* "
	buildFileIn    = " in"
	fileRefKey     = "fileRef = "
	groupStart     = "*/ = {"
	groupOpen      = " = {"
	groupEnd       = "};"
	pathKey        = "path = "
	valueEnd       = ";"
	quotedValueEnd = `";`
	childrenOpen   = "children = ("
	childrenClose  = ");"
)

// BuildFileRecord is one source entry from the PBXBuildFile section.
type BuildFileRecord struct {
	ID      string   `json:"id"`
	Kind    FileKind `json:"kind"`
	Name    string   `json:"name"`
	FileRef string   `json:"fileRef,omitempty"` // PBXFileReference id, when present on the line
}

// GroupRecord is one folder entry from the PBXGroup section. ChildIDs may
// name other groups or build files; the record cannot tell which.
type GroupRecord struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	ChildIDs []string `json:"childIds"`
}

// Records holds the id-indexed output of a descriptor parse. A later record
// with a duplicate id replaces the earlier one.
type Records struct {
	BuildFiles map[string]BuildFileRecord `json:"buildFiles"`
	Groups     map[string]GroupRecord     `json:"groups"`
}

// Parser extracts records from descriptor lines.
type Parser struct {
	// Classifier decides which build files are kept. Nil means DefaultClassifier.
	Classifier Classifier
}

func (p Parser) classifier() Classifier {
	if p.Classifier == nil {
		return DefaultClassifier
	}
	return p.Classifier
}

// ParseFile reads the descriptor at path and parses it with the default
// classifier. Only a read failure is returned as an error.
func ParseFile(ctx context.Context, path string) (*Records, error) {
	lines, err := ReadLines(path)
	if err != nil {
		return nil, err
	}
	return Parser{}.Parse(ctx, lines), nil
}

// Parse extracts both record tables from lines.
func (p Parser) Parse(ctx context.Context, lines []string) *Records {
	return &Records{
		BuildFiles: p.ParseBuildFiles(ctx, lines),
		Groups:     p.ParseGroups(ctx, lines),
	}
}

// --- Build files ---

// ParseBuildFiles scans the PBXBuildFile section. Lines that are malformed
// or name a non-source file produce no record.
func (p Parser) ParseBuildFiles(ctx context.Context, lines []string) map[string]BuildFileRecord {
	result := make(map[string]BuildFileRecord)
	inSection := false

	for _, raw := range lines {
		if strings.Contains(raw, BuildFileSectionBegin) {
			inSection = true
			continue
		}
		if strings.Contains(raw, BuildFileSectionEnd) {
			return result
		}
		if !inSection {
			continue
		}
		if rec, ok := p.parseBuildFileLine(strings.TrimSpace(raw)); ok {
			result[rec.ID] = rec
		}
	}
	return result
}

// parseBuildFileLine slices a line of the form
//
//	ID /* Name in Phase */ = {isa = PBXBuildFile; fileRef = REF /* Name */; };
//
// A field counts as missing when it is empty or when slicing degenerated to
// the whole line because a delimiter was absent.
func (p Parser) parseBuildFileLine(line string) (BuildFileRecord, bool) {
	id := sliceBefore(line, commentOpen)
	name := sliceBetween(line, commentOpen, buildFileIn)

	idMissing := id == "" || id == line
	nameMissing := name == "" || name == line
	if idMissing || nameMissing {
		return BuildFileRecord{}, false
	}

	kind := p.classifier().Classify(name)
	if kind == KindUnclassified {
		return BuildFileRecord{}, false
	}

	ref := strings.TrimSpace(sliceBefore(sliceBetween(line, fileRefKey, valueEnd), commentOpen))

	return BuildFileRecord{
		ID:      id,
		Kind:    kind,
		Name:    name,
		FileRef: ref,
	}, true
}

// --- Groups ---

// ParseGroups scans the PBXGroup section. Each group may span several
// physical lines; they are trimmed and joined before fields are sliced out.
func (p Parser) ParseGroups(ctx context.Context, lines []string) map[string]GroupRecord {
	log := ctxlog.FromContext(ctx)
	result := make(map[string]GroupRecord)
	inSection := false

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if strings.Contains(line, GroupSectionBegin) {
			inSection = true
			continue
		}
		if strings.Contains(line, GroupSectionEnd) {
			return result
		}
		if !inSection || !strings.Contains(line, groupStart) {
			continue
		}

		start := i
		joined, last := joinGroup(lines, start)
		i = last

		rec, ok := parseGroup(joined)
		if !ok {
			log.Debug("pbx: discarding group", "line", start+1, "text", joined)
			continue
		}
		result[rec.ID] = rec
	}
	return result
}

// joinGroup concatenates lines[start] through the first line containing the
// closing "};" (inclusive). It stops early, without consuming it, at the
// section end marker. The index of the last consumed line is returned.
func joinGroup(lines []string, start int) (string, int) {
	var sb strings.Builder
	last := start
	for j := start; j < len(lines); j++ {
		if j > start && strings.Contains(lines[j], GroupSectionEnd) {
			break
		}
		sb.WriteString(strings.TrimSpace(lines[j]))
		last = j
		if strings.Contains(lines[j], groupEnd) {
			break
		}
	}
	return sb.String(), last
}

// parseGroup slices id, path and children out of one joined group block.
func parseGroup(block string) (GroupRecord, bool) {
	id := strings.TrimSpace(sliceBefore(sliceBefore(block, groupOpen), commentOpen))
	name := pathValue(block)
	if id == "" || id == block || name == "" {
		return GroupRecord{}, false
	}

	return GroupRecord{
		ID:       id,
		Name:     name,
		ChildIDs: splitChildren(sliceBetween(block, childrenOpen, childrenClose)),
	}, true
}

// pathValue returns the group's path. A quoted value runs to its closing
// quote, so it may contain ';'.
func pathValue(block string) string {
	start := strings.Index(block, pathKey)
	if start < 0 {
		return ""
	}
	rest := strings.TrimLeft(block[start+len(pathKey):], " ")
	if strings.HasPrefix(rest, `"`) {
		if end := strings.Index(rest[1:], quotedValueEnd); end >= 0 {
			return rest[1 : end+1]
		}
		return ""
	}
	end := strings.Index(rest, valueEnd)
	if end < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:end])
}

// splitChildren turns "A /* a */,B /* b */," into ["A", "B"]. Empty pieces,
// including the one after a trailing comma, are dropped.
func splitChildren(list string) []string {
	if list == "" {
		return nil
	}
	var ids []string
	for _, piece := range strings.Split(list, ",") {
		id := strings.TrimSpace(sliceBefore(piece, commentOpen))
		// A piece that is only a comment, e.g. "/* a */", has no id.
		if id == "" || strings.HasPrefix(id, "/*") {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
