package database

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCompareNames(t *testing.T) {
	tree := newTree(16, language.Und)

	tests := []struct {
		a, b string
		want int
	}{
		{"file2", "file10", -1},
		{"file10", "file2", 1},
		{"a", "a", 0},
		{"b", "a", 1},
		{"a", "b", -1},
		{"", "a", -1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(tree.CompareNames(tt.a, tt.b)))
		})
	}
}

func TestCompareNamesIsTotal(t *testing.T) {
	tree := newTree(16, language.Und)

	// Distinct names never compare equal, even when the collator can't tell
	// them apart.
	names := []string{"a", "A", "file2", "file02", "é", "é"}
	for _, a := range names {
		for _, b := range names {
			res := tree.CompareNames(a, b)
			if a == b {
				assert.Zero(t, res)
				continue
			}
			assert.NotZero(t, res, "%q vs %q", a, b)
			assert.Equal(t, -sign(res), sign(tree.CompareNames(b, a)))
		}
	}
}

// testTree builds:
//
//	/r
//	/r/x
//	/r/a/y
//	/r/a/c/d
//	/r/b/e
func testTree(t *testing.T) (tree *Tree, folders map[string]FolderID, files map[string]FileID) {
	t.Helper()
	tree = newTree(4, language.Und)
	folders = map[string]FolderID{}
	files = map[string]FileID{}

	folders["r"] = tree.newRoot("/r")
	folders["a"] = tree.newFolder("a", folders["r"])
	folders["b"] = tree.newFolder("b", folders["r"])
	folders["c"] = tree.newFolder("c", folders["a"])

	files["x"] = tree.newFile("x", 1, folders["r"])
	files["y"] = tree.newFile("y", 2, folders["a"])
	files["d"] = tree.newFile("d", 4, folders["c"])
	files["e"] = tree.newFile("e", 8, folders["b"])
	return tree, folders, files
}

func TestCompareFilesByPath(t *testing.T) {
	tree, _, files := testTree(t)

	tests := []struct {
		name string
		a, b string
		want int
	}{
		{"shallower first", "x", "y", -1},
		{"deeper last", "d", "x", 1},
		{"branch decides before depth", "d", "e", -1},
		{"same depth by chain", "e", "y", 1},
		{"equal", "d", "d", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(tree.CompareFilesByPath(files[tt.a], files[tt.b])))
		})
	}
}

func TestCompareFoldersByPath(t *testing.T) {
	tree, folders, _ := testTree(t)

	assert.Equal(t, -1, sign(tree.CompareFoldersByPath(folders["r"], folders["a"])))
	assert.Equal(t, -1, sign(tree.CompareFoldersByPath(folders["a"], folders["c"])))
	// b lives in /r, c in /r/a.
	assert.Equal(t, -1, sign(tree.CompareFoldersByPath(folders["b"], folders["c"])))
	assert.Equal(t, 1, sign(tree.CompareFoldersByPath(folders["c"], folders["b"])))
}

func TestStorageOrder(t *testing.T) {
	tree, folders, files := testTree(t)
	f10 := tree.newFile("file10", 0, folders["r"])
	f2 := tree.newFile("file2", 0, folders["r"])

	ids := []FileID{files["e"], files["d"], f10, files["y"], files["x"], f2}
	slices.SortFunc(ids, tree.compareFiles)

	var got []string
	for _, id := range ids {
		got = append(got, tree.FileFullPath(id))
	}
	assert.Equal(t, []string{
		"/r/file2",
		"/r/file10",
		"/r/x",
		"/r/a/y",
		"/r/a/c/d",
		"/r/b/e",
	}, got)
}

func TestCompareBySize(t *testing.T) {
	tree, folders, files := testTree(t)

	assert.Equal(t, -1, sign(tree.CompareFilesBySize(files["x"], files["e"])))
	assert.Equal(t, 0, tree.CompareFilesBySize(files["x"], files["x"]))
	assert.Equal(t, 1, sign(tree.CompareFoldersBySize(folders["r"], folders["a"])))
}

func TestCompareFilesByType(t *testing.T) {
	tree := newTree(4, language.Und)
	root := tree.newRoot("/r")
	files := map[string]FileID{}
	for _, name := range []string{"a.txt", "b.TXT", "c.go", "Makefile", ".bashrc", "x.tar.gz"} {
		files[name] = tree.newFile(name, 0, root)
	}

	tests := []struct {
		a, b string
		want int
	}{
		{"a.txt", "c.go", 1},
		{"a.txt", "b.TXT", 0},
		{"Makefile", "c.go", -1},
		{"x.tar.gz", "c.go", 1},
		{".bashrc", "Makefile", 1},
	}
	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, sign(tree.CompareFilesByType(files[tt.a], files[tt.b])))
		})
	}
}

func TestTreePaths(t *testing.T) {
	tree, folders, files := testTree(t)

	require.Equal(t, uint64(15), tree.Folder(folders["r"]).Size())
	assert.Equal(t, uint64(6), tree.Folder(folders["a"]).Size())

	assert.Equal(t, "/r/a/c", tree.FilePath(files["d"]))
	assert.Equal(t, "/r/a/c/d", tree.FileFullPath(files["d"]))
	assert.Equal(t, "/r/a", tree.FolderPath(folders["c"]))
	assert.Equal(t, "/r/a/c", tree.FolderFullPath(folders["c"]))
	assert.Equal(t, "", tree.FolderPath(folders["r"]))
	assert.Equal(t, "/r", tree.FolderFullPath(folders["r"]))

	parent, ok := tree.File(files["y"]).Parent()
	assert.True(t, ok)
	assert.Equal(t, folders["a"], parent)
	_, ok = tree.Folder(folders["r"]).Parent()
	assert.False(t, ok)
	assert.True(t, tree.Folder(folders["r"]).IsRoot())
	assert.Equal(t, KindFile, tree.File(files["y"]).Kind())
	assert.Equal(t, KindFolder, tree.Folder(folders["a"]).Kind())
	assert.Equal(t, []FolderID{folders["c"]}, tree.Folder(folders["a"]).Folders())
	assert.Equal(t, []FileID{files["y"]}, tree.Folder(folders["a"]).Files())
}

func TestFilesystemRootName(t *testing.T) {
	tree := newTree(4, language.Und)
	root := tree.newRoot(rootName("/"))
	usr := tree.newFolder("usr", root)
	f := tree.newFile("f", 0, usr)

	assert.Equal(t, "/", tree.Folder(root).Name())
	assert.Equal(t, "/", tree.FolderFullPath(root))
	assert.Equal(t, "/usr", tree.FolderFullPath(usr))
	assert.Equal(t, "/usr/f", tree.FileFullPath(f))
	assert.Equal(t, "/", tree.FolderPath(usr))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "folder", KindFolder.String())
	assert.Equal(t, "none", KindNone.String())
	assert.Equal(t, "none", Kind(42).String())
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}
