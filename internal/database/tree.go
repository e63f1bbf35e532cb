package database

import (
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"fsindex/internal/pool"
)

// Tree owns the file and folder arenas of one scan or load generation.
// Parent and child links are arena indices.
type Tree struct {
	files   *pool.Pool[File]
	folders *pool.Pool[Folder]

	// collate.Collator keeps per-call buffers and is not safe for concurrent
	// use; the parallel sort takes one per goroutine from here.
	collators sync.Pool
}

func newTree(blockSize int, locale language.Tag) *Tree {
	t := &Tree{
		files:   pool.New(blockSize, destroyFile),
		folders: pool.New(blockSize, destroyFolder),
	}
	t.collators.New = func() any {
		return collate.New(locale, collate.Numeric)
	}
	return t
}

// release frees every entry of this generation.
func (t *Tree) release() {
	t.files.ReleaseAll()
	t.folders.ReleaseAll()
}

// File returns the file with the given id.
func (t *Tree) File(id FileID) *File { return t.files.Get(uint32(id)) }

// Folder returns the folder with the given id.
func (t *Tree) Folder(id FolderID) *Folder { return t.folders.Get(uint32(id)) }

// newRoot allocates a parentless folder.
func (t *Tree) newRoot(name string) FolderID {
	id, f := t.folders.Alloc()
	f.name = name
	f.parent = NoParent
	return FolderID(id)
}

// newFolder allocates a folder and links it under parent.
func (t *Tree) newFolder(name string, parent FolderID) FolderID {
	id, f := t.folders.Alloc()
	f.name = name
	f.parent = parent
	p := t.Folder(parent)
	p.folders = append(p.folders, FolderID(id))
	return FolderID(id)
}

// newFile allocates a file, links it under parent and adds its size to every
// ancestor.
func (t *Tree) newFile(name string, size uint64, parent FolderID) FileID {
	id, f := t.files.Alloc()
	f.name = name
	f.size = size
	f.parent = parent
	p := t.Folder(parent)
	p.files = append(p.files, FileID(id))
	t.addFolderSize(parent, size)
	return FileID(id)
}

func (t *Tree) addFolderSize(id FolderID, size uint64) {
	for id != NoParent {
		f := t.Folder(id)
		f.size += size
		id = f.parent
	}
}

// depth returns the number of folders on the chain starting at id.
func (t *Tree) depth(id FolderID) int {
	d := 0
	for id != NoParent {
		d++
		id = t.Folder(id).parent
	}
	return d
}

// ancestor walks n parents up from id.
func (t *Tree) ancestor(id FolderID, n int) FolderID {
	for ; n > 0 && id != NoParent; n-- {
		id = t.Folder(id).parent
	}
	return id
}

func (t *Tree) appendFolderPath(b *strings.Builder, id FolderID) {
	f := t.Folder(id)
	if f.parent != NoParent {
		t.appendFolderPath(b, f.parent)
		b.WriteByte(filepath.Separator)
	}
	b.WriteString(f.name)
}

func (t *Tree) folderPath(id FolderID) string {
	var b strings.Builder
	t.appendFolderPath(&b, id)
	if b.Len() == 0 {
		return string(filepath.Separator)
	}
	return b.String()
}

func (t *Tree) fullPath(parent FolderID, name string) string {
	if parent == NoParent {
		if name == "" {
			return string(filepath.Separator)
		}
		return name
	}
	var b strings.Builder
	t.appendFolderPath(&b, parent)
	b.WriteByte(filepath.Separator)
	b.WriteString(name)
	return b.String()
}

// FilePath returns the path of the folder containing the file.
func (t *Tree) FilePath(id FileID) string {
	return t.folderPath(t.File(id).parent)
}

// FileFullPath returns the absolute path of the file.
func (t *Tree) FileFullPath(id FileID) string {
	f := t.File(id)
	return t.fullPath(f.parent, f.name)
}

// FolderPath returns the path of the folder containing the folder. Roots
// return an empty string.
func (t *Tree) FolderPath(id FolderID) string {
	f := t.Folder(id)
	if f.parent == NoParent {
		return ""
	}
	return t.folderPath(f.parent)
}

// FolderFullPath returns the absolute path of the folder.
func (t *Tree) FolderFullPath(id FolderID) string {
	f := t.Folder(id)
	return t.fullPath(f.parent, f.name)
}
