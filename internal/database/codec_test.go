package database

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func encodeTestTree(t *testing.T) ([]byte, *Tree, []FolderID, []FileID) {
	t.Helper()
	tree, folders, files := testTree(t)

	folderIDs := []FolderID{folders["r"], folders["a"], folders["c"], folders["b"]}
	fileIDs := []FileID{files["x"], files["y"], files["d"], files["e"]}
	assignFolderIndices(tree, folderIDs)

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, tree, folderIDs, fileIDs))
	return buf.Bytes(), tree, folderIDs, fileIDs
}

func TestCodecRoundTrip(t *testing.T) {
	data, src, srcFolders, srcFiles := encodeTestTree(t)

	dst := newTree(4, language.Und)
	files, folders, err := decode(data, dst)
	require.NoError(t, err)
	require.Equal(t, len(srcFolders), folders.Len())
	require.Equal(t, len(srcFiles), files.Len())

	for i, id := range srcFolders {
		want, got := src.Folder(id), dst.Folder(folders.Get(i))
		assert.Equal(t, src.FolderFullPath(id), dst.FolderFullPath(folders.Get(i)))
		assert.Equal(t, want.Size(), got.Size())
		assert.Equal(t, want.IsRoot(), got.IsRoot())
		assert.Equal(t, KindFolder, got.Kind())
		assert.Equal(t, uint32(i), got.Index())
		assert.Len(t, got.Folders(), len(want.Folders()))
		assert.Len(t, got.Files(), len(want.Files()))
	}
	for i, id := range srcFiles {
		assert.Equal(t, src.FileFullPath(id), dst.FileFullPath(files.Get(i)))
		assert.Equal(t, src.File(id).Size(), dst.File(files.Get(i)).Size())
		assert.Equal(t, KindFile, dst.File(files.Get(i)).Kind())
	}
}

func TestCodecEmpty(t *testing.T) {
	tree := newTree(4, language.Und)

	var buf bytes.Buffer
	require.NoError(t, encode(&buf, tree, nil, nil))
	assert.Equal(t, headerSize, buf.Len())
	assert.Equal(t, []byte("FSDB\x00\x02"), buf.Bytes()[:6])

	files, folders, err := decode(buf.Bytes(), newTree(4, language.Und))
	require.NoError(t, err)
	assert.Zero(t, files.Len())
	assert.Zero(t, folders.Len())
}

func TestNameEncoder(t *testing.T) {
	var e nameEncoder

	steps := []struct {
		name   string
		prefix int
		suffix string
	}{
		{"abc", 0, "abc"},
		{"abd", 2, "d"},
		{"abd", 3, ""},
		{"ab", 2, ""},
		{"x", 0, "x"},
	}
	var d nameDecoder
	for _, s := range steps {
		prefix, suffix, err := e.next(s.name)
		require.NoError(t, err)
		assert.Equal(t, s.prefix, prefix, s.name)
		assert.Equal(t, s.suffix, suffix, s.name)

		got, err := d.next(prefix, []byte(suffix))
		require.NoError(t, err)
		assert.Equal(t, s.name, got)
	}

	e.reset()
	prefix, suffix, err := e.next("abc")
	require.NoError(t, err)
	assert.Zero(t, prefix)
	assert.Equal(t, "abc", suffix)
}

func TestNameEncoderLimits(t *testing.T) {
	var e nameEncoder

	_, _, err := e.next(strings.Repeat("a", 256))
	assert.ErrorIs(t, err, ErrNameTooLong)

	// A failed name doesn't become the previous name.
	long := strings.Repeat("a", 255)
	prefix, suffix, err := e.next(long)
	require.NoError(t, err)
	assert.Zero(t, prefix)
	assert.Len(t, suffix, 255)

	// Shared prefixes are capped at 255 bytes.
	prefix, suffix, err = e.next(strings.Repeat("a", 300))
	require.NoError(t, err)
	assert.Equal(t, 255, prefix)
	assert.Len(t, suffix, 45)
}

func TestEncodeNameTooLong(t *testing.T) {
	tree := newTree(4, language.Und)
	root := tree.newRoot("/r")
	file := tree.newFile(strings.Repeat("n", 300), 1, root)
	assignFolderIndices(tree, []FolderID{root})

	var buf bytes.Buffer
	err := encode(&buf, tree, []FolderID{root}, []FileID{file})
	assert.ErrorIs(t, err, ErrNameTooLong)
}

func TestDecodeRejectsTruncation(t *testing.T) {
	data, _, _, _ := encodeTestTree(t)

	for n := 0; n < len(data); n++ {
		_, _, err := decode(data[:n], newTree(4, language.Und))
		assert.ErrorIs(t, err, ErrFormat, "length %d", n)
	}
}

func TestDecodeHeader(t *testing.T) {
	valid, _, _, _ := encodeTestTree(t)

	tests := []struct {
		name   string
		mutate func([]byte)
	}{
		{"bad magic", func(b []byte) { copy(b, "FSDX") }},
		{"major mismatch", func(b []byte) { b[4] = 1 }},
		{"minor mismatch", func(b []byte) { b[5] = 1 }},
		{"folder count too large", func(b []byte) { binary.LittleEndian.PutUint32(b[6:], 1<<30) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := bytes.Clone(valid)
			tt.mutate(data)
			_, _, err := decode(data, newTree(4, language.Und))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

type rawRecord struct {
	prefix uint8
	suffix string
	size   uint64
	parent uint32
}

func rawDatabase(folders, files []rawRecord) []byte {
	b := []byte(magic)
	b = append(b, versionMajor, versionMinor)
	b = binary.LittleEndian.AppendUint32(b, uint32(len(folders)))
	b = binary.LittleEndian.AppendUint32(b, uint32(len(files)))
	for _, r := range append(folders, files...) {
		b = append(b, r.prefix, uint8(len(r.suffix)))
		b = append(b, r.suffix...)
		b = binary.LittleEndian.AppendUint64(b, r.size)
		b = binary.LittleEndian.AppendUint32(b, r.parent)
	}
	return b
}

func TestDecodeInvalidRecords(t *testing.T) {
	tests := []struct {
		name    string
		folders []rawRecord
		files   []rawRecord
	}{
		{
			name:    "dangling folder parent",
			folders: []rawRecord{{suffix: "/r", parent: 0}, {suffix: "a", parent: 7}},
		},
		{
			name:    "dangling file parent",
			folders: []rawRecord{{suffix: "/r", parent: 0}},
			files:   []rawRecord{{suffix: "f", parent: 1}},
		},
		{
			name:    "parent cycle",
			folders: []rawRecord{{suffix: "/r", parent: 0}, {suffix: "a", parent: 2}, {suffix: "b", parent: 1}},
		},
		{
			name:    "prefix beyond previous name",
			folders: []rawRecord{{prefix: 3, suffix: "r", parent: 0}},
		},
		{
			name:    "file prefix does not carry over folders",
			folders: []rawRecord{{suffix: "/r", parent: 0}},
			files:   []rawRecord{{prefix: 1, suffix: "f", parent: 0}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := decode(rawDatabase(tt.folders, tt.files), newTree(4, language.Und))
			assert.ErrorIs(t, err, ErrFormat)
		})
	}
}

func TestDecodeRebuildsChildren(t *testing.T) {
	data := rawDatabase(
		[]rawRecord{
			{suffix: "/r", size: 3, parent: 0},
			{suffix: "a", size: 2, parent: 0},
			{prefix: 0, suffix: "b", size: 1, parent: 1},
		},
		[]rawRecord{
			{suffix: "file", size: 1, parent: 2},
			{prefix: 4, suffix: "2", size: 1, parent: 1},
			{prefix: 3, suffix: "x", size: 1, parent: 0},
		},
	)

	tree := newTree(2, language.Und)
	files, folders, err := decode(data, tree)
	require.NoError(t, err)

	root := tree.Folder(folders.Get(0))
	assert.True(t, root.IsRoot())
	assert.Equal(t, []FolderID{folders.Get(1)}, root.Folders())
	assert.Equal(t, []FileID{files.Get(2)}, root.Files())

	assert.Equal(t, "/r/a/b/file", tree.FileFullPath(files.Get(0)))
	assert.Equal(t, "/r/a/file2", tree.FileFullPath(files.Get(1)))
	assert.Equal(t, "/r/fix", tree.FileFullPath(files.Get(2)))
}
