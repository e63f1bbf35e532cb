package database

import (
	"math"
	"path/filepath"
)

// FolderID is the arena index of a Folder.
type FolderID uint32

// FileID is the arena index of a File.
type FileID uint32

// NoParent marks a root folder.
const NoParent FolderID = math.MaxUint32

// Kind tells files and folders apart.
type Kind uint8

const (
	KindNone Kind = iota
	KindFile
	KindFolder
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindFolder:
		return "folder"
	default:
		return "none"
	}
}

// entry holds the fields shared by files and folders.
type entry struct {
	name   string
	size   uint64
	parent FolderID
}

// Name returns the entry name. The filesystem root is stored with an empty
// name and reported as the path separator.
func (e *entry) Name() string {
	if e.name == "" {
		return string(filepath.Separator)
	}
	return e.name
}

// Size returns the file size, or the aggregated size of all descendant files
// for a folder.
func (e *entry) Size() uint64 { return e.size }

// Parent returns the containing folder. ok is false for roots.
func (e *entry) Parent() (id FolderID, ok bool) {
	return e.parent, e.parent != NoParent
}

// File is a leaf entry.
type File struct {
	entry
}

// Kind returns KindFile.
func (*File) Kind() Kind { return KindFile }

// Folder is a directory entry with its own child lists.
type Folder struct {
	entry

	folders []FolderID
	files   []FileID

	// index is the position in the folder array at the last save or load.
	index uint32
}

// Kind returns KindFolder.
func (*Folder) Kind() Kind { return KindFolder }

// Folders returns the child folders. The slice must not be modified.
func (f *Folder) Folders() []FolderID { return f.folders }

// Files returns the child files. The slice must not be modified.
func (f *Folder) Files() []FileID { return f.files }

// Index returns the serialization index assigned at the last save or load.
func (f *Folder) Index() uint32 { return f.index }

// IsRoot reports whether the folder has no parent.
func (f *Folder) IsRoot() bool { return f.parent == NoParent }

func destroyFile(f *File) {
	*f = File{}
}

func destroyFolder(f *Folder) {
	*f = Folder{}
}
