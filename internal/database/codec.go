package database

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"fsindex/internal/darray"
)

// File format, all integers little-endian:
//
//	magic      [4]byte "FSDB"
//	major      uint8
//	minor      uint8
//	numFolders uint32
//	numFiles   uint32
//	folders    [numFolders]record
//	files      [numFiles]record
//
//	record:
//	  prefixLen uint8   bytes shared with the previous record's name
//	  suffixLen uint8
//	  suffix    [suffixLen]byte
//	  size      uint64
//	  parent    uint32  folder index; a root stores its own index
//
// The previous name resets to empty at the start of the file section.
const (
	magic        = "FSDB"
	versionMajor = 0
	versionMinor = 2
	headerSize   = len(magic) + 2 + 4 + 4

	maxNameDelta = math.MaxUint8
)

// DefaultFileName is the database file name inside the save directory.
const DefaultFileName = "fsindex.db"

// nameEncoder delta-encodes a sequence of names against the previous one.
type nameEncoder struct {
	prev string
}

// next returns the shared prefix length and the new suffix for name.
func (e *nameEncoder) next(name string) (prefix int, suffix string, err error) {
	prefix = commonPrefix(e.prev, name)
	if prefix > maxNameDelta {
		prefix = maxNameDelta
	}
	suffix = name[prefix:]
	if len(suffix) > maxNameDelta {
		return 0, "", fmt.Errorf("%w: %q", ErrNameTooLong, name)
	}
	e.prev = name
	return prefix, suffix, nil
}

func (e *nameEncoder) reset() { e.prev = "" }

func commonPrefix(a, b string) int {
	n := min(len(a), len(b))
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return i
}

// nameDecoder rebuilds names from prefix/suffix pairs.
type nameDecoder struct {
	buf []byte
}

func (d *nameDecoder) next(prefix int, suffix []byte) (string, error) {
	if prefix > len(d.buf) {
		return "", fmt.Errorf("%w: name prefix %d exceeds previous name length %d", ErrFormat, prefix, len(d.buf))
	}
	d.buf = append(d.buf[:prefix], suffix...)
	return string(d.buf), nil
}

func (d *nameDecoder) reset() { d.buf = d.buf[:0] }

// assignFolderIndices numbers folders by their position in the folder array.
func assignFolderIndices(t *Tree, folders []FolderID) {
	for i, id := range folders {
		t.Folder(id).index = uint32(i)
	}
}

// encode writes the tree in flat-array order. Folder indices must already be
// assigned.
func encode(w io.Writer, t *Tree, folders []FolderID, files []FileID) error {
	bw := bufio.NewWriterSize(w, 64*1024)

	hdr := make([]byte, 0, headerSize)
	hdr = append(hdr, magic...)
	hdr = append(hdr, versionMajor, versionMinor)
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(folders)))
	hdr = binary.LittleEndian.AppendUint32(hdr, uint32(len(files)))
	if _, err := bw.Write(hdr); err != nil {
		return err
	}

	var (
		names nameEncoder
		rec   = make([]byte, 0, 2+maxNameDelta+8+4)
	)
	writeRecord := func(e *entry, parent uint32) error {
		prefix, suffix, err := names.next(e.name)
		if err != nil {
			return err
		}
		rec = append(rec[:0], uint8(prefix), uint8(len(suffix)))
		rec = append(rec, suffix...)
		rec = binary.LittleEndian.AppendUint64(rec, e.size)
		rec = binary.LittleEndian.AppendUint32(rec, parent)
		_, err = bw.Write(rec)
		return err
	}

	for _, id := range folders {
		f := t.Folder(id)
		parent := f.index
		if f.parent != NoParent {
			parent = t.Folder(f.parent).index
		}
		if err := writeRecord(&f.entry, parent); err != nil {
			return fmt.Errorf("write folder %q: %w", f.name, err)
		}
	}

	names.reset()
	for _, id := range files {
		f := t.File(id)
		if err := writeRecord(&f.entry, t.Folder(f.parent).index); err != nil {
			return fmt.Errorf("write file %q: %w", f.name, err)
		}
	}

	return bw.Flush()
}

// reader is a bounds-checked cursor over an encoded database.
type reader struct {
	data []byte
	off  int
}

func (r *reader) take(n int) ([]byte, error) {
	if n > len(r.data)-r.off {
		return nil, fmt.Errorf("%w: unexpected end of data at offset %d", ErrFormat, r.off)
	}
	b := r.data[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) readUint8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (r *reader) readUint32() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) readUint64() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// record reads one entry record into e and returns its parent index.
func (r *reader) record(names *nameDecoder, e *entry) (uint32, error) {
	prefix, err := r.readUint8()
	if err != nil {
		return 0, err
	}
	n, err := r.readUint8()
	if err != nil {
		return 0, err
	}
	suffix, err := r.take(int(n))
	if err != nil {
		return 0, err
	}
	if e.name, err = names.next(int(prefix), suffix); err != nil {
		return 0, err
	}
	if e.size, err = r.readUint64(); err != nil {
		return 0, err
	}
	return r.readUint32()
}

// header validates the preamble and returns the record counts.
func (r *reader) header() (numFolders, numFiles uint32, err error) {
	m, err := r.take(len(magic))
	if err != nil {
		return 0, 0, err
	}
	if string(m) != magic {
		return 0, 0, fmt.Errorf("%w: bad magic %q", ErrFormat, m)
	}
	major, err := r.readUint8()
	if err != nil {
		return 0, 0, err
	}
	minor, err := r.readUint8()
	if err != nil {
		return 0, 0, err
	}
	if major != versionMajor || minor != versionMinor {
		return 0, 0, fmt.Errorf("%w: unsupported version %d.%d, want %d.%d", ErrFormat, major, minor, versionMajor, versionMinor)
	}
	if numFolders, err = r.readUint32(); err != nil {
		return 0, 0, err
	}
	if numFiles, err = r.readUint32(); err != nil {
		return 0, 0, err
	}
	return numFolders, numFiles, nil
}

// minRecordSize is the encoded size of a record with an empty suffix.
const minRecordSize = 2 + 8 + 4

// decode rebuilds a tree and its flat arrays from data. On error everything
// allocated so far belongs to t and must be released by the caller.
func decode(data []byte, t *Tree) (*darray.Array[FileID], *darray.Array[FolderID], error) {
	r := &reader{data: data}
	numFolders, numFiles, err := r.header()
	if err != nil {
		return nil, nil, err
	}
	if remaining := uint64(len(data) - r.off); (uint64(numFolders)+uint64(numFiles))*minRecordSize > remaining {
		return nil, nil, fmt.Errorf("%w: %d folders and %d files don't fit in %d bytes", ErrFormat, numFolders, numFiles, remaining)
	}

	folders := darray.New[FolderID](int(numFolders))
	for i := uint32(0); i < numFolders; i++ {
		id, f := t.folders.Alloc()
		f.index = i
		f.parent = NoParent
		folders.Add(FolderID(id))
	}

	var names nameDecoder
	for i := uint32(0); i < numFolders; i++ {
		f := t.Folder(folders.Get(int(i)))
		parent, err := r.record(&names, &f.entry)
		if err != nil {
			return nil, nil, err
		}
		if parent == i {
			continue
		}
		if parent >= numFolders {
			return nil, nil, fmt.Errorf("%w: folder %d references missing parent %d", ErrFormat, i, parent)
		}
		f.parent = folders.Get(int(parent))
	}
	if err := checkFolderChains(t, folders.Items()); err != nil {
		return nil, nil, err
	}
	for _, id := range folders.Items() {
		f := t.Folder(id)
		if f.parent != NoParent {
			p := t.Folder(f.parent)
			p.folders = append(p.folders, id)
		}
	}

	names.reset()
	files := darray.New[FileID](int(numFiles))
	for i := uint32(0); i < numFiles; i++ {
		id, f := t.files.Alloc()
		parent, err := r.record(&names, &f.entry)
		if err != nil {
			return nil, nil, err
		}
		if parent >= numFolders {
			return nil, nil, fmt.Errorf("%w: file %d references missing parent %d", ErrFormat, i, parent)
		}
		f.parent = folders.Get(int(parent))
		p := t.Folder(f.parent)
		p.files = append(p.files, FileID(id))
		files.Add(FileID(id))
	}

	return files, folders, nil
}

// checkFolderChains rejects parent cycles so every chain ends at a root.
func checkFolderChains(t *Tree, folders []FolderID) error {
	const (
		unknown = iota
		visiting
		done
	)
	state := make([]uint8, t.folders.Len())
	var stack []FolderID
	for _, start := range folders {
		stack = stack[:0]
		id := start
		for id != NoParent && state[id] == unknown {
			state[id] = visiting
			stack = append(stack, id)
			id = t.Folder(id).parent
		}
		if id != NoParent && state[id] == visiting {
			return fmt.Errorf("%w: folder %d is its own ancestor", ErrFormat, t.Folder(id).index)
		}
		for _, s := range stack {
			state[s] = done
		}
	}
	return nil
}
