package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// cExtractor extracts C declarations and quoted include/import directives.
type cExtractor struct{}

func (e *cExtractor) Extract(root *tree_sitter.Node, source []byte, filePath string) ([]SymbolNode, []Edge) {
	var symbols []SymbolNode
	var edges []Edge

	cursor := root.Walk()
	defer cursor.Close()

	e.walk(cursor, source, filePath, &symbols, &edges)
	return symbols, edges
}

func (e *cExtractor) walk(
	cursor *tree_sitter.TreeCursor,
	source []byte,
	filePath string,
	symbols *[]SymbolNode,
	edges *[]Edge,
) {
	node := cursor.Node()

	switch node.Kind() {
	case "function_definition":
		if sym := e.extractFunction(node, source, filePath); sym != nil {
			e.define(*sym, symbols, edges)
		}
		// Bodies hold no file-level declarations.
		return

	case "declaration":
		if sym := e.extractPrototype(node, source, filePath); sym != nil {
			e.define(*sym, symbols, edges)
		}

	case "struct_specifier":
		if sym := e.extractTagged(node, source, filePath, SymbolKindStruct); sym != nil {
			e.define(*sym, symbols, edges)
		}

	case "enum_specifier":
		if sym := e.extractTagged(node, source, filePath, SymbolKindEnum); sym != nil {
			e.define(*sym, symbols, edges)
		}

	case "type_definition":
		if sym := e.extractTypedef(node, source, filePath); sym != nil {
			e.define(*sym, symbols, edges)
		}

	case "preproc_include":
		if edge := e.extractInclude(node, source, filePath); edge != nil {
			*edges = append(*edges, *edge)
		}
		return

	case "preproc_call":
		if edge := e.extractImport(node, source, filePath); edge != nil {
			*edges = append(*edges, *edge)
		}
		return
	}

	if cursor.GotoFirstChild() {
		e.walk(cursor, source, filePath, symbols, edges)
		for cursor.GotoNextSibling() {
			e.walk(cursor, source, filePath, symbols, edges)
		}
		cursor.GotoParent()
	}
}

func (e *cExtractor) define(sym SymbolNode, symbols *[]SymbolNode, edges *[]Edge) {
	*symbols = append(*symbols, sym)
	*edges = append(*edges, Edge{
		SourceID: sym.FilePath,
		TargetID: symbolKey(sym.FilePath, sym.Name),
		Kind:     EdgeKindDefines,
	})
}

func (e *cExtractor) extractFunction(node *tree_sitter.Node, source []byte, filePath string) *SymbolNode {
	name := declaratorName(node.ChildByFieldName("declarator"), source)
	if name == "" {
		return nil
	}
	return newSymbol(node, name, SymbolKindFunction, !hasStorageClass(node, source, "static"), filePath)
}

// extractPrototype handles "int f(int);" at file scope. Variable
// declarations are ignored.
func (e *cExtractor) extractPrototype(node *tree_sitter.Node, source []byte, filePath string) *SymbolNode {
	decl := node.ChildByFieldName("declarator")
	if decl == nil || !isFunctionDeclarator(decl) {
		return nil
	}
	name := declaratorName(decl, source)
	if name == "" {
		return nil
	}
	return newSymbol(node, name, SymbolKindFunction, !hasStorageClass(node, source, "static"), filePath)
}

// extractTagged handles named struct and enum definitions. Bare references
// such as "struct Foo *p" have no body and are skipped.
func (e *cExtractor) extractTagged(node *tree_sitter.Node, source []byte, filePath string, kind SymbolKind) *SymbolNode {
	nameNode := node.ChildByFieldName("name")
	if nameNode == nil || node.ChildByFieldName("body") == nil {
		return nil
	}
	return newSymbol(node, nameNode.Utf8Text(source), kind, true, filePath)
}

func (e *cExtractor) extractTypedef(node *tree_sitter.Node, source []byte, filePath string) *SymbolNode {
	name := declaratorName(node.ChildByFieldName("declarator"), source)
	if name == "" {
		return nil
	}
	return newSymbol(node, name, SymbolKindTypedef, true, filePath)
}

// extractInclude handles #include "x.h". System includes in angle brackets
// are not project files.
func (e *cExtractor) extractInclude(node *tree_sitter.Node, source []byte, filePath string) *Edge {
	pathNode := node.ChildByFieldName("path")
	if pathNode == nil || pathNode.Kind() != "string_literal" {
		return nil
	}
	return importEdge(filePath, pathNode.Utf8Text(source))
}

// extractImport handles #import "x.h", which the C grammar sees as an
// unknown preprocessor directive.
func (e *cExtractor) extractImport(node *tree_sitter.Node, source []byte, filePath string) *Edge {
	directive := node.ChildByFieldName("directive")
	if directive == nil || strings.TrimSpace(directive.Utf8Text(source)) != "#import" {
		return nil
	}
	arg := node.ChildByFieldName("argument")
	if arg == nil {
		return nil
	}
	return importEdge(filePath, arg.Utf8Text(source))
}

func importEdge(filePath, literal string) *Edge {
	literal = strings.TrimSpace(literal)
	if len(literal) < 2 || literal[0] != '"' || literal[len(literal)-1] != '"' {
		return nil
	}
	name := literal[1 : len(literal)-1]
	if name == "" {
		return nil
	}
	return &Edge{SourceID: filePath, TargetID: name, Kind: EdgeKindImports}
}

// declaratorName follows nested declarator fields (pointer, function,
// array, parenthesized) down to the declared identifier.
func declaratorName(node *tree_sitter.Node, source []byte) string {
	for node != nil {
		switch node.Kind() {
		case "identifier", "type_identifier", "field_identifier":
			return node.Utf8Text(source)
		}
		next := node.ChildByFieldName("declarator")
		if next == nil && node.Kind() == "parenthesized_declarator" && node.NamedChildCount() > 0 {
			next = node.NamedChild(0)
		}
		node = next
	}
	return ""
}

func isFunctionDeclarator(node *tree_sitter.Node) bool {
	for node != nil {
		if node.Kind() == "function_declarator" {
			return true
		}
		node = node.ChildByFieldName("declarator")
	}
	return false
}

func hasStorageClass(node *tree_sitter.Node, source []byte, class string) bool {
	for i := uint(0); i < node.ChildCount(); i++ {
		child := node.Child(i)
		if child != nil && child.Kind() == "storage_class_specifier" && child.Utf8Text(source) == class {
			return true
		}
	}
	return false
}

func newSymbol(node *tree_sitter.Node, name string, kind SymbolKind, exported bool, filePath string) *SymbolNode {
	return &SymbolNode{
		Name:      name,
		Kind:      kind,
		Exported:  exported,
		FilePath:  filePath,
		StartLine: int(node.StartPosition().Row) + 1,
		EndLine:   int(node.EndPosition().Row) + 1,
	}
}
