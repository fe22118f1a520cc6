package graph

import (
	"bytes"
	"context"
	"fmt"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

// extractor extracts symbols and edges from a parsed tree-sitter AST.
type extractor interface {
	Extract(root *tree_sitter.Node, source []byte, filePath string) ([]SymbolNode, []Edge)
}

// TreeSitterParser implements Parser with the tree-sitter C grammar.
// Objective-C headers and implementations are parsed as C: plain C
// declarations are recovered and Objective-C constructs end up in error
// nodes that the extractor ignores. A new tree-sitter parser is created per
// Parse call.
type TreeSitterParser struct {
	languages  map[Language]*tree_sitter.Language
	extractors map[Language]extractor
}

// NewTreeSitterParser creates a TreeSitterParser for C and Objective-C.
func NewTreeSitterParser() *TreeSitterParser {
	c := tree_sitter.NewLanguage(tree_sitter_c.Language())
	return &TreeSitterParser{
		languages: map[Language]*tree_sitter.Language{
			LangC:    c,
			LangObjC: c,
		},
		extractors: map[Language]extractor{
			LangC:    &cExtractor{},
			LangObjC: &cExtractor{},
		},
	}
}

// Parse extracts symbols and relationships from a single source file.
func (p *TreeSitterParser) Parse(_ context.Context, path string, source []byte, lang Language) (*ParseResult, error) {
	tsLang, ok := p.languages[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}
	ext := p.extractors[lang]

	parser := tree_sitter.NewParser()
	defer parser.Close()

	if err := parser.SetLanguage(tsLang); err != nil {
		return nil, fmt.Errorf("set language %s: %w", lang, err)
	}

	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil, fmt.Errorf("tree-sitter returned nil tree for %s", path)
	}
	defer tree.Close()

	symbols, edges := ext.Extract(tree.RootNode(), source, path)

	return &ParseResult{
		File: FileNode{
			Path:     path,
			Language: lang,
			LOC:      countLOC(source),
		},
		Symbols: symbols,
		Edges:   edges,
	}, nil
}

// SupportedLanguages returns the languages this parser can handle.
func (p *TreeSitterParser) SupportedLanguages() []Language {
	return []Language{LangC, LangObjC}
}

// Close is a no-op because parsers are created per Parse call.
func (p *TreeSitterParser) Close() error {
	return nil
}

// countLOC counts newline bytes, plus one for a final unterminated line.
func countLOC(source []byte) int {
	if len(source) == 0 {
		return 0
	}
	n := bytes.Count(source, []byte{'\n'})
	if source[len(source)-1] != '\n' {
		n++
	}
	return n
}
