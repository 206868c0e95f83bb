// Package bsatest builds small archives for tests.
package bsatest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/vvardenfell/pkg/bsa"
	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// File is one archive member.
type File struct {
	Name string
	Data []byte
}

// Build encodes files as a version 0x100 archive. Data is stored in the
// given order.
func Build(files ...File) []byte {
	count := len(files)

	var names bytes.Buffer
	nameOffsets := make([]uint32, count)
	for i, f := range files {
		nameOffsets[i] = uint32(names.Len())
		names.Write(encoding.UTF8ToWindows1252(f.Name))
		names.WriteByte(0)
	}
	dirSize := uint32(12*count + names.Len())

	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(bsa.Version))
	binary.Write(&buf, binary.LittleEndian, dirSize)
	binary.Write(&buf, binary.LittleEndian, uint32(count))

	var offset uint32
	for _, f := range files {
		binary.Write(&buf, binary.LittleEndian, uint32(len(f.Data)))
		binary.Write(&buf, binary.LittleEndian, offset)
		offset += uint32(len(f.Data))
	}
	binary.Write(&buf, binary.LittleEndian, nameOffsets)
	buf.Write(names.Bytes())

	for _, f := range files {
		h := bsa.HashPath(f.Name)
		binary.Write(&buf, binary.LittleEndian, h.Low)
		binary.Write(&buf, binary.LittleEndian, h.High)
	}
	for _, f := range files {
		buf.Write(f.Data)
	}
	return buf.Bytes()
}

// WriteFile builds an archive into the test's temp directory and returns its path.
func WriteFile(t testing.TB, name string, files ...File) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, Build(files...), 0o644); err != nil {
		t.Fatalf("writing archive: %v", err)
	}
	return path
}
