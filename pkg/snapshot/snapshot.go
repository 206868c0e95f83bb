// Package snapshot caches decoded content file tables on disk.
//
// A snapshot starts with a header: the magic "VVSN", a format version, the
// 16-byte BLAKE3 digest of the source file and the entry count of every table. The tables
// follow in a fixed order with entries sorted by key. A snapshot is valid
// only while the source file hashes to the recorded digest.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"lukechampine.com/blake3"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/esm"
)

const (
	magic = "VVSN"
	// FormatVersion changes whenever the on-disk layout does.
	FormatVersion uint32 = 2
	// Ext is the file extension of snapshots.
	Ext = ".vvsn"
)

// DigestSize is the length of the content hash in bytes.
const DigestSize = 16

// Digest is the content hash of a source file.
type Digest [DigestSize]byte

type header struct {
	version uint32
	source  Digest
	counts  [tableCount]uint32
}

// PathFor returns the snapshot path for sourcePath inside cacheDir.
func PathFor(cacheDir, sourcePath string) string {
	return filepath.Join(cacheDir, filepath.Base(sourcePath)+Ext)
}

// HashFile returns the digest of a file.
func HashFile(path string) (Digest, error) {
	var sum Digest
	f, err := os.Open(path)
	if err != nil {
		return sum, &dataerr.IOError{Path: path, Err: err}
	}
	defer f.Close()

	h := blake3.New(DigestSize, nil)
	if _, err := io.Copy(h, f); err != nil {
		return sum, &dataerr.IOError{Path: path, Err: err}
	}
	copy(sum[:], h.Sum(nil))
	return sum, nil
}

// Exists reports whether cachePath holds a valid snapshot of sourcePath.
// A missing or stale snapshot is a miss, not an error.
func Exists(sourcePath, cachePath string) (bool, error) {
	f, err := os.Open(cachePath)
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, &dataerr.IOError{Path: cachePath, Err: err}
	}
	defer f.Close()

	h, err := readHeader(newDecoder(f))
	if errors.Is(err, dataerr.ErrCacheInvalid) {
		return false, nil
	}
	if err != nil {
		return false, &dataerr.IOError{Path: cachePath, Err: err}
	}

	sum, err := HashFile(sourcePath)
	if err != nil {
		return false, err
	}
	return h.source == sum, nil
}

// Save writes a snapshot of t, keyed to the current content of sourcePath.
// The file is written under a temporary name and renamed into place.
func Save(t *esm.Tables, sourcePath, cachePath string) error {
	sum, err := HashFile(sourcePath)
	if err != nil {
		return err
	}

	dir := filepath.Dir(cachePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &dataerr.IOError{Path: dir, Err: err}
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(cachePath)+".tmp*")
	if err != nil {
		return &dataerr.IOError{Path: cachePath, Err: err}
	}
	tmpPath := tmp.Name()

	err = Write(tmp, t, sum)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(tmpPath, cachePath)
	}
	if err != nil {
		os.Remove(tmpPath)
		return &dataerr.IOError{Path: cachePath, Err: err}
	}
	return nil
}

// Load reads a snapshot written by Save. It does not check freshness; call
// Exists first.
func Load(cachePath string) (*esm.Tables, error) {
	f, err := os.Open(cachePath)
	if err != nil {
		return nil, &dataerr.IOError{Path: cachePath, Err: err}
	}
	defer f.Close()

	t, _, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot %s: %w", cachePath, err)
	}
	return t, nil
}

// Write encodes t with the given source digest.
func Write(w io.Writer, t *esm.Tables, source Digest) error {
	e := newEncoder(w)
	e.write([]byte(magic))
	e.u32(FormatVersion)
	e.write(source[:])
	for _, n := range counts(t) {
		e.u32(n)
	}
	encodeTables(e, t)
	return e.flush()
}

// Read decodes a snapshot and returns its tables and source digest. A bad
// header or a truncated body is reported as dataerr.ErrCacheInvalid.
func Read(r io.Reader) (*esm.Tables, Digest, error) {
	d := newDecoder(r)
	h, err := readHeader(d)
	if err != nil {
		return nil, Digest{}, err
	}
	t := decodeTables(d, h.counts)
	if d.err != nil {
		return nil, Digest{}, fmt.Errorf("%w: body: %v", dataerr.ErrCacheInvalid, d.err)
	}
	return t, h.source, nil
}

func readHeader(d *decoder) (header, error) {
	var h header
	m := d.raw(len(magic))
	if d.err != nil || string(m) != magic {
		return h, fmt.Errorf("%w: bad magic", dataerr.ErrCacheInvalid)
	}
	h.version = d.u32()
	copy(h.source[:], d.raw(DigestSize))
	for i := range h.counts {
		h.counts[i] = d.u32()
	}
	if d.err != nil {
		return h, fmt.Errorf("%w: truncated header: %v", dataerr.ErrCacheInvalid, d.err)
	}
	if h.version != FormatVersion {
		return h, fmt.Errorf("%w: format version %d, want %d", dataerr.ErrCacheInvalid, h.version, FormatVersion)
	}
	return h, nil
}
