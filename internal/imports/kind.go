// Package imports computes the textual import closure of Objective-C
// sources: the files reachable from a starting header or implementation
// through "#import" lines, with every header pulled in together with its
// companion implementation file.
package imports

import (
	"path"
	"sort"
	"strings"
)

// Kind classifies a file name by extension.
type Kind int

const (
	KindUnrecognized Kind = iota
	KindHeader
	KindSource
)

const (
	HeaderExt = ".h"
	SourceExt = ".m"
)

func (k Kind) String() string {
	switch k {
	case KindHeader:
		return "header"
	case KindSource:
		return "source"
	default:
		return "unrecognized"
	}
}

// Classify returns the kind of name from its extension.
func Classify(name string) Kind {
	switch path.Ext(name) {
	case HeaderExt:
		return KindHeader
	case SourceExt:
		return KindSource
	default:
		return KindUnrecognized
	}
}

// Companion returns the implementation file for a header and the header for
// an implementation file. ok is false for unrecognized names.
func Companion(name string) (companion string, ok bool) {
	switch Classify(name) {
	case KindHeader:
		return strings.TrimSuffix(name, HeaderExt) + SourceExt, true
	case KindSource:
		return strings.TrimSuffix(name, SourceExt) + HeaderExt, true
	default:
		return "", false
	}
}

// Set is a set of file names.
type Set map[string]struct{}

func (s Set) Add(name string) { s[name] = struct{}{} }

func (s Set) Has(name string) bool {
	_, ok := s[name]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for name := range s {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
