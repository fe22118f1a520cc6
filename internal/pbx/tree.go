package pbx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dusk-indust/xcgraph/internal/ctxlog"
)

// PathDelimiter joins folder and file names into materialized paths.
const PathDelimiter = "/"

var (
	// ErrNoRootFolder is returned when no group carries the requested name.
	ErrNoRootFolder = errors.New("pbx: no root folder")
	// ErrNoRootRecord is returned when the root id has no group record.
	ErrNoRootRecord = errors.New("pbx: no root group record")
)

// File is a resolved leaf of the project hierarchy. ID is the child id the
// group lists, either a build-file id or a file reference.
type File struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Folder is a resolved group. Files and Subfolders are keyed by id, which is
// the identity of a node; equal names or paths do not collide.
type Folder struct {
	ID         string             `json:"id"`
	Name       string             `json:"name"`
	Path       string             `json:"path"`
	Files      map[string]*File   `json:"files"`
	Subfolders map[string]*Folder `json:"subfolders"`
}

func newFolder(id, name, path string) *Folder {
	return &Folder{
		ID:         id,
		Name:       name,
		Path:       path,
		Files:      make(map[string]*File),
		Subfolders: make(map[string]*Folder),
	}
}

// FindRootID returns the id of the first group named rootName. Group ids are
// visited in sorted order so the choice among equally named groups is stable.
func (r *Records) FindRootID(rootName string) (string, bool) {
	ids := make([]string, 0, len(r.Groups))
	for id := range r.Groups {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if r.Groups[id].Name == rootName {
			return id, true
		}
	}
	return "", false
}

// Resolve builds the folder tree rooted at the group named rootName.
//
// Child ids are looked up first among groups, then among build files by
// build-file id, then by file reference. Ids found nowhere are logged as
// missing references and skipped. Groups that contain themselves, directly
// or through other groups, are not detected and recurse without bound.
func Resolve(ctx context.Context, records *Records, rootName string) (*Folder, error) {
	rootID, ok := records.FindRootID(rootName)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoRootFolder, rootName)
	}
	return ResolveID(ctx, records, rootID)
}

// ResolveID builds the folder tree rooted at the group with the given id.
func ResolveID(ctx context.Context, records *Records, rootID string) (*Folder, error) {
	raw, ok := records.Groups[rootID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoRootRecord, rootID)
	}

	res := &resolver{
		records: records,
		byRef:   make(map[string]BuildFileRecord),
		log:     ctxlog.FromContext(ctx),
	}
	// Several build files may share a file reference, one per target or
	// build phase. The smallest id wins.
	for _, bf := range records.BuildFiles {
		if bf.FileRef == "" {
			continue
		}
		if prev, ok := res.byRef[bf.FileRef]; ok && prev.ID < bf.ID {
			continue
		}
		res.byRef[bf.FileRef] = bf
	}

	root := newFolder(raw.ID, raw.Name, raw.Name)
	res.attach(root, raw)
	return root, nil
}

type resolver struct {
	records *Records
	byRef   map[string]BuildFileRecord
	log     *slog.Logger
}

// lookupFile finds the build file a group child names, by build-file id
// first and then by file reference.
func (r *resolver) lookupFile(id string) (BuildFileRecord, bool) {
	if bf, ok := r.records.BuildFiles[id]; ok {
		return bf, true
	}
	bf, ok := r.byRef[id]
	return bf, ok
}

// attach resolves every child of raw into folder, in child-list order.
func (r *resolver) attach(folder *Folder, raw GroupRecord) {
	for _, childID := range raw.ChildIDs {
		if group, ok := r.records.Groups[childID]; ok {
			sub := newFolder(group.ID, group.Name, folder.Path+PathDelimiter+group.Name)
			r.attach(sub, group)
			folder.Subfolders[sub.ID] = sub
			continue
		}
		if bf, ok := r.lookupFile(childID); ok {
			folder.Files[childID] = &File{
				ID:   childID,
				Name: bf.Name,
				Path: folder.Path + PathDelimiter + bf.Name,
			}
			continue
		}
		r.log.Debug("pbx: missing reference", "id", childID, "folder", folder.Path)
	}
}

// --- Traversal helpers ---

// SortedFiles returns the folder's files ordered by name, then id.
func (f *Folder) SortedFiles() []*File {
	out := make([]*File, 0, len(f.Files))
	for _, file := range f.Files {
		out = append(out, file)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// SortedSubfolders returns the folder's subfolders ordered by name, then id.
func (f *Folder) SortedSubfolders() []*Folder {
	out := make([]*Folder, 0, len(f.Subfolders))
	for _, sub := range f.Subfolders {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Walk calls fn for f and every descendant folder, parents before children,
// siblings in name order.
func (f *Folder) Walk(fn func(*Folder)) {
	fn(f)
	for _, sub := range f.SortedSubfolders() {
		sub.Walk(fn)
	}
}

// CountFiles returns the number of files in f and all descendants.
func (f *Folder) CountFiles() int {
	n := 0
	f.Walk(func(folder *Folder) { n += len(folder.Files) })
	return n
}

// CountFolders returns the number of folders in the tree, f included.
func (f *Folder) CountFolders() int {
	n := 0
	f.Walk(func(*Folder) { n++ })
	return n
}

// FilePaths returns the materialized path of every file in the tree, sorted.
func (f *Folder) FilePaths() []string {
	var paths []string
	f.Walk(func(folder *Folder) {
		for _, file := range folder.Files {
			paths = append(paths, file.Path)
		}
	})
	sort.Strings(paths)
	return paths
}
