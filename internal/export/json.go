package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dusk-indust/xcgraph/internal/pbx"
	"github.com/dusk-indust/xcgraph/internal/project"
)

// ProjectExport is the top-level JSON export structure.
type ProjectExport struct {
	ExportedAt string          `json:"exportedAt"`
	Summary    project.Summary `json:"summary"`
	Tree       FolderExport    `json:"tree"`
	Closure    *ClosureExport  `json:"closure,omitempty"`
}

// FolderExport is a folder with its children in name order.
type FolderExport struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Path       string         `json:"path"`
	Files      []FileExport   `json:"files,omitempty"`
	Subfolders []FolderExport `json:"subfolders,omitempty"`
}

// FileExport is one resolved project file.
type FileExport struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// ClosureExport is the import closure of a single start file.
type ClosureExport struct {
	Start   string      `json:"start"`
	Files   []string    `json:"files"`
	Imports [][2]string `json:"imports,omitempty"`
}

// BuildJSON assembles the export for an analysis. closure may be nil.
func BuildJSON(a *project.Analysis, closure *ClosureExport) *ProjectExport {
	return &ProjectExport{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Summary:    a.Summary,
		Tree:       exportFolder(a.Root),
		Closure:    closure,
	}
}

// WriteJSON writes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}
	_, err = w.Write(append(out, '\n'))
	return err
}

func exportFolder(f *pbx.Folder) FolderExport {
	out := FolderExport{ID: f.ID, Name: f.Name, Path: f.Path}
	for _, file := range f.SortedFiles() {
		out.Files = append(out.Files, FileExport{ID: file.ID, Name: file.Name, Path: file.Path})
	}
	for _, sub := range f.SortedSubfolders() {
		out.Subfolders = append(out.Subfolders, exportFolder(sub))
	}
	return out
}
