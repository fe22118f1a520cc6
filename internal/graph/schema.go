package graph

import "path"

// --- Enums ---

// NodeKind classifies nodes in the project graph.
type NodeKind string

const (
	NodeKindFolder  NodeKind = "folder"
	NodeKindFile    NodeKind = "file"
	NodeKindSymbol  NodeKind = "symbol"
	NodeKindCluster NodeKind = "cluster"
)

// SymbolKind classifies C-level declarations found in sources.
type SymbolKind string

const (
	SymbolKindFunction SymbolKind = "function"
	SymbolKindStruct   SymbolKind = "struct"
	SymbolKindEnum     SymbolKind = "enum"
	SymbolKindTypedef  SymbolKind = "typedef"
	SymbolKindVariable SymbolKind = "variable"
)

// EdgeKind classifies relationships between nodes.
type EdgeKind string

const (
	EdgeKindContains  EdgeKind = "CONTAINS"  // folder -> folder or file
	EdgeKindImports   EdgeKind = "IMPORTS"   // file -> file
	EdgeKindCompanion EdgeKind = "COMPANION" // header -> implementation
	EdgeKindDefines   EdgeKind = "DEFINES"   // file -> symbol
	EdgeKindBelongs   EdgeKind = "BELONGS"   // file -> cluster
)

// Language identifies the source language of a project file.
type Language string

const (
	LangObjC    Language = "objc"
	LangSwift   Language = "swift"
	LangC       Language = "c"
	LangUnknown Language = "unknown"
)

// LanguageForPath infers the language of p from its extension.
func LanguageForPath(p string) Language {
	switch path.Ext(p) {
	case ".h", ".m":
		return LangObjC
	case ".swift":
		return LangSwift
	case ".c":
		return LangC
	default:
		return LangUnknown
	}
}

// --- Models ---

// FolderNode is a resolved project group.
type FolderNode struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// FileNode is a project file. Path is its materialized project path.
type FileNode struct {
	Path     string   `json:"path"`
	Name     string   `json:"name"`
	Language Language `json:"language"`
	LOC      int      `json:"loc"`
}

// SymbolNode represents a named declaration.
type SymbolNode struct {
	Name      string     `json:"name"`
	Kind      SymbolKind `json:"kind"`
	Exported  bool       `json:"exported"`
	FilePath  string     `json:"filePath"`
	StartLine int        `json:"startLine"`
	EndLine   int        `json:"endLine"`
}

// ClusterNode represents a group of files connected by imports.
type ClusterNode struct {
	Name          string   `json:"name"`
	CohesionScore float64  `json:"cohesionScore"`
	Members       []string `json:"members"` // file paths
}

// Edge represents a relationship between two nodes.
type Edge struct {
	SourceID string   `json:"sourceId"`
	TargetID string   `json:"targetId"`
	Kind     EdgeKind `json:"kind"`
}

// GraphStats summarizes a project graph.
type GraphStats struct {
	FolderCount  int `json:"folderCount"`
	FileCount    int `json:"fileCount"`
	SymbolCount  int `json:"symbolCount"`
	ClusterCount int `json:"clusterCount"`
	EdgeCount    int `json:"edgeCount"`
}

// DependencyChain is an ordered sequence of nodes forming a dependency path.
type DependencyChain struct {
	Nodes []string `json:"nodes"` // node IDs in order
	Depth int      `json:"depth"`
}

// ImpactResult describes the blast radius of changing a set of files.
type ImpactResult struct {
	DirectlyAffected     []string `json:"directlyAffected"`     // files that import changed files
	TransitivelyAffected []string `json:"transitivelyAffected"` // full downstream closure
	RiskScore            float64  `json:"riskScore"`            // 0.0-1.0, affected share of all files
}
