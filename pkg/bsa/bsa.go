// Package bsa reads uncompressed hashed-directory archives (.bsa, version 0x100).
//
// Layout: a 12-byte header (version, hash table offset, file count), a
// directory of (size, offset) pairs followed by name offsets and the name
// block, a table of 64-bit name hashes, then the file data. Entry offsets are
// relative to the start of the data.
package bsa

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/Faultbox/vvardenfell/pkg/cursor"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// Version is the only supported archive version.
const Version = 0x100

const (
	headerSize = 12
	// minEntrySize is the smallest directory footprint of one file:
	// size+offset, name offset, one-character name with NUL, hash.
	minEntrySize = 8 + 4 + 1 + 8
)

// Archive errors.
var (
	ErrTruncatedHeader = errors.New("archive shorter than its header")
	ErrInvalidVersion  = errors.New("unsupported archive version")
	ErrTooManyFiles    = errors.New("file count exceeds archive size")
	ErrDirectoryBounds = errors.New("directory extends past end of archive")
	ErrNameBounds      = errors.New("file name offset outside name block")
	ErrNotFound        = errors.New("file not found in archive")
	ErrShortRead       = errors.New("file data extends past end of archive")
)

// Header is the fixed archive header.
type Header struct {
	Version   uint32
	DirSize   uint32 // size of the directory; the hash table follows it
	FileCount uint32
}

// Entry describes one stored file.
type Entry struct {
	Name           string // as stored, decoded to UTF-8
	Hash           Hash
	Size           uint32
	RelativeOffset uint32 // from the start of the data block
	AbsoluteOffset int64  // from the start of the archive
}

// Archive is an opened archive. The directory is immutable after Open and
// Extract may be called from multiple goroutines.
type Archive struct {
	path    string
	file    *os.File
	size    int64
	header  Header
	entries []Entry
	byName  map[string]int
	byHash  map[Hash]int
}

// Open opens an archive and reads its directory.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &dataerr.IOError{Path: path, Err: err}
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, &dataerr.IOError{Path: path, Err: err}
	}

	a := &Archive{
		path:   path,
		file:   file,
		size:   info.Size(),
		byName: make(map[string]int),
		byHash: make(map[Hash]int),
	}
	if err := a.readHeader(); err != nil {
		file.Close()
		return nil, err
	}
	if err := a.readDirectory(); err != nil {
		file.Close()
		return nil, err
	}
	return a, nil
}

// Close closes the archive file.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

// Path returns the archive file path.
func (a *Archive) Path() string { return a.path }

// Header returns the archive header.
func (a *Archive) Header() Header { return a.header }

func (a *Archive) formatErr(offset int64, err error) error {
	return dataerr.Format(a.path, "", offset, err)
}

func (a *Archive) readHeader() error {
	if a.size < headerSize {
		return a.formatErr(0, ErrTruncatedHeader)
	}
	r := io.NewSectionReader(a.file, 0, headerSize)
	if err := binary.Read(r, binary.LittleEndian, &a.header); err != nil {
		return &dataerr.IOError{Path: a.path, Err: fmt.Errorf("reading header: %w", err)}
	}
	if a.header.Version != Version {
		return a.formatErr(0, fmt.Errorf("%w: 0x%x", ErrInvalidVersion, a.header.Version))
	}
	if uint64(a.header.FileCount)*minEntrySize > uint64(a.size-headerSize) {
		return a.formatErr(8, fmt.Errorf("%w: %d files in %d bytes", ErrTooManyFiles, a.header.FileCount, a.size))
	}
	return nil
}

func (a *Archive) readDirectory() error {
	count := int(a.header.FileCount)
	dirSize := int64(a.header.DirSize)
	dataStart := headerSize + dirSize + 8*int64(count)
	if dataStart > a.size || dirSize < 12*int64(count) {
		return a.formatErr(4, fmt.Errorf("%w: directory %d bytes, %d files", ErrDirectoryBounds, dirSize, count))
	}

	block := make([]byte, dirSize+8*int64(count))
	if _, err := a.file.ReadAt(block, headerSize); err != nil {
		return &dataerr.IOError{Path: a.path, Err: fmt.Errorf("reading directory: %w", err)}
	}

	dir := cursor.New(block[:8*count])
	names := block[12*count : dirSize]
	hashes := cursor.New(block[dirSize:])
	nameOffsets := cursor.New(block[8*count : 12*count])

	a.entries = make([]Entry, count)
	for i := range a.entries {
		e := &a.entries[i]
		e.Size = dir.U32()
		e.RelativeOffset = dir.U32()
		e.AbsoluteOffset = dataStart + int64(e.RelativeOffset)

		off := int(nameOffsets.U32())
		if off >= len(names) {
			return a.formatErr(headerSize+8*int64(count)+4*int64(i),
				fmt.Errorf("%w: entry %d offset %d, block %d", ErrNameBounds, i, off, len(names)))
		}
		raw := names[off:]
		if end := bytes.IndexByte(raw, 0); end >= 0 {
			raw = raw[:end]
		}
		e.Name = encoding.Windows1252ToUTF8(raw)
		e.Hash = Hash{Low: hashes.U32(), High: hashes.U32()}

		a.byName[encoding.NormalizeArchivePath(e.Name)] = i
		a.byHash[e.Hash] = i
	}
	return nil
}

// Entries returns a copy of the directory in stored order.
func (a *Archive) Entries() []Entry {
	return append([]Entry(nil), a.entries...)
}

// List returns all stored file names, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.entries))
	for _, e := range a.entries {
		result = append(result, e.Name)
	}
	sort.Strings(result)
	return result
}

// Lookup finds an entry by path, ignoring case and separator style.
func (a *Archive) Lookup(path string) (*Entry, bool) {
	if i, ok := a.byName[encoding.NormalizeArchivePath(path)]; ok {
		return &a.entries[i], true
	}
	return a.LookupHash(HashPath(path))
}

// LookupHash finds an entry by its stored hash.
func (a *Archive) LookupHash(h Hash) (*Entry, bool) {
	i, ok := a.byHash[h]
	if !ok {
		return nil, false
	}
	return &a.entries[i], true
}

// Contains reports whether the archive stores path.
func (a *Archive) Contains(path string) bool {
	_, ok := a.Lookup(path)
	return ok
}

// Extract reads the bytes of one entry.
func (a *Archive) Extract(e *Entry) ([]byte, error) {
	if e.AbsoluteOffset+int64(e.Size) > a.size {
		return nil, dataerr.Format(a.path, e.Name, e.AbsoluteOffset,
			fmt.Errorf("%w: %d bytes at %d, archive %d", ErrShortRead, e.Size, e.AbsoluteOffset, a.size))
	}
	data := make([]byte, e.Size)
	n, err := a.file.ReadAt(data, e.AbsoluteOffset)
	if n < len(data) {
		if err == nil || errors.Is(err, io.EOF) {
			err = ErrShortRead
		}
		return nil, dataerr.Format(a.path, e.Name, e.AbsoluteOffset, err)
	}
	return data, nil
}

// Read extracts the file stored under path.
func (a *Archive) Read(path string) ([]byte, error) {
	e, ok := a.Lookup(path)
	if !ok {
		return nil, dataerr.Format(a.path, path, 0, ErrNotFound)
	}
	return a.Extract(e)
}
