package database

import (
	"cmp"
	"path/filepath"
	"strings"

	"golang.org/x/text/collate"
)

// CompareNames orders names naturally: digit runs compare numerically, so
// "file2" sorts before "file10". Names the collator considers equal fall back
// to byte order, giving a total order.
func (t *Tree) CompareNames(a, b string) int {
	if a == b {
		return 0
	}
	c := t.collators.Get().(*collate.Collator)
	res := c.CompareString(a, b)
	t.collators.Put(c)
	if res != 0 {
		return res
	}
	return strings.Compare(a, b)
}

// compareChains compares two folder chains of equal depth top-down.
func (t *Tree) compareChains(a, b FolderID) int {
	if a == b || a == NoParent || b == NoParent {
		return 0
	}
	fa, fb := t.Folder(a), t.Folder(b)
	if fa.parent != fb.parent {
		if res := t.compareChains(fa.parent, fb.parent); res != 0 {
			return res
		}
	}
	return t.CompareNames(fa.name, fb.name)
}

// comparePath orders two entries by their parent chains, then by their own
// names. A shallower chain that ties with the top of a deeper one sorts first.
func (t *Tree) comparePath(aParent, bParent FolderID, aName, bName string) int {
	da, db := t.depth(aParent), t.depth(bParent)
	switch {
	case da > db:
		if res := t.compareChains(t.ancestor(aParent, da-db), bParent); res != 0 {
			return res
		}
		return 1
	case da < db:
		if res := t.compareChains(aParent, t.ancestor(bParent, db-da)); res != 0 {
			return res
		}
		return -1
	}
	if res := t.compareChains(aParent, bParent); res != 0 {
		return res
	}
	return t.CompareNames(aName, bName)
}

// CompareFilesByName orders files by their own names.
func (t *Tree) CompareFilesByName(a, b FileID) int {
	return t.CompareNames(t.File(a).name, t.File(b).name)
}

// CompareFoldersByName orders folders by their own names.
func (t *Tree) CompareFoldersByName(a, b FolderID) int {
	return t.CompareNames(t.Folder(a).name, t.Folder(b).name)
}

// CompareFilesByPath orders files depth-first by path.
func (t *Tree) CompareFilesByPath(a, b FileID) int {
	fa, fb := t.File(a), t.File(b)
	return t.comparePath(fa.parent, fb.parent, fa.name, fb.name)
}

// CompareFoldersByPath orders folders depth-first by path.
func (t *Tree) CompareFoldersByPath(a, b FolderID) int {
	fa, fb := t.Folder(a), t.Folder(b)
	return t.comparePath(fa.parent, fb.parent, fa.name, fb.name)
}

// CompareFilesBySize orders files by size, smallest first.
func (t *Tree) CompareFilesBySize(a, b FileID) int {
	return cmp.Compare(t.File(a).size, t.File(b).size)
}

// CompareFoldersBySize orders folders by aggregated size, smallest first.
func (t *Tree) CompareFoldersBySize(a, b FolderID) int {
	return cmp.Compare(t.Folder(a).size, t.Folder(b).size)
}

// fileType is the lower-cased extension of name without the dot.
func fileType(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// CompareFilesByType orders files by extension, files without one first.
// Files of the same type compare equal.
func (t *Tree) CompareFilesByType(a, b FileID) int {
	return strings.Compare(fileType(t.File(a).name), fileType(t.File(b).name))
}

// compareFiles is the storage order: path first, name as tiebreak.
func (t *Tree) compareFiles(a, b FileID) int {
	if res := t.CompareFilesByPath(a, b); res != 0 {
		return res
	}
	return t.CompareFilesByName(a, b)
}

// compareFolders is the storage order: path first, name as tiebreak.
func (t *Tree) compareFolders(a, b FolderID) int {
	if res := t.CompareFoldersByPath(a, b); res != 0 {
		return res
	}
	return t.CompareFoldersByName(a, b)
}
