package graph

import (
	"context"
	"errors"
)

// ErrUnsupportedLanguage is returned by Parse for languages without a grammar.
var ErrUnsupportedLanguage = errors.New("graph: unsupported language")

// ParseResult holds the extracted symbols and edges from a single file.
type ParseResult struct {
	File    FileNode     `json:"file"`
	Symbols []SymbolNode `json:"symbols"`
	Edges   []Edge       `json:"edges"` // DEFINES and raw IMPORTS edges
}

// Parser extracts structural information from source files.
type Parser interface {
	// Parse extracts symbols and relationships from a single source file.
	// IMPORTS edges carry the raw imported name as TargetID.
	Parse(ctx context.Context, path string, source []byte, lang Language) (*ParseResult, error)

	// SupportedLanguages returns the languages this parser can handle.
	SupportedLanguages() []Language

	// Close releases parser resources.
	Close() error
}
