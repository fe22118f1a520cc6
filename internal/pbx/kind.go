package pbx

import "strings"

// FileKind classifies a build-file record by the file it names.
type FileKind string

const (
	KindNativeSource    FileKind = "native"  // Objective-C / C headers and implementations
	KindManagedSource   FileKind = "managed" // Swift sources
	KindFolderReference FileKind = "folder"
	KindUnclassified    FileKind = "unclassified"
)

// Classifier maps a file-name suffix to a FileKind. Matching is by true
// suffix, so "Model.hpp.bak" or a directory named "a.mb" are not sources.
type Classifier map[string]FileKind

// DefaultClassifier recognizes Objective-C and Swift sources.
var DefaultClassifier = Classifier{
	".h":     KindNativeSource,
	".m":     KindNativeSource,
	".swift": KindManagedSource,
}

// Classify returns the kind for name, or KindUnclassified when no suffix
// in the classifier matches. The longest matching suffix wins.
func (c Classifier) Classify(name string) FileKind {
	kind := KindUnclassified
	best := 0
	for suffix, k := range c {
		if len(suffix) > best && strings.HasSuffix(name, suffix) {
			kind = k
			best = len(suffix)
		}
	}
	return kind
}

// IsSource reports whether k names compilable source.
func (k FileKind) IsSource() bool {
	return k == KindNativeSource || k == KindManagedSource
}
