// Package nif reads NetImmerse/Gamebryo 4.x scene graph files (.nif).
//
// A file is a text signature line, the binary version, a record count and
// the records. Each record starts with its length-prefixed type name; there
// is no per-record size, so every supported type must be read field by field
// to stay aligned. Records reference each other by index into the record
// list; references are kept as indices and resolved with File.Get after the
// whole file has been read.
package nif

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/vvardenfell/pkg/cursor"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
)

// Parser errors.
var (
	ErrInvalidSignature      = errors.New("invalid NIF signature")
	ErrUnsupportedVersion    = errors.New("unsupported NIF version")
	ErrUnknownRecordType     = errors.New("unknown record type")
	ErrTooManyRecords        = errors.New("record count exceeds file size")
	ErrInvalidBoundingVolume = errors.New("invalid bounding volume")
	ErrInterpolation         = errors.New("unknown key interpolation")
)

// Known signature prefixes.
var signaturePrefixes = []string{
	"NetImmerse File Format",
	"Gamebryo File Format",
}

// Version numbers are packed a.b.c.d, one byte each.
const (
	VersionMorrowind uint32 = 0x04000002

	minVersion      uint32 = 0x04000000
	maxVersion      uint32 = 0x05000001 // exclusive
	byteBoolVersion uint32 = 0x04010001 // bools are one byte from here on
)

// maxSignature bounds the search for the end of the signature line.
const maxSignature = 128

// MakeVersion packs a dotted version.
func MakeVersion(a, b, c, d uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// VersionString formats a packed version as a.b.c.d.
func VersionString(v uint32) string {
	return fmt.Sprintf("%d.%d.%d.%d", v>>24, v>>16&0xff, v>>8&0xff, v&0xff)
}

// Ref is an index into File.Records. NoRef marks an empty link.
type Ref int32

// NoRef is the empty reference.
const NoRef Ref = -1

// Valid reports whether r points at a record.
func (r Ref) Valid() bool { return r >= 0 }

// Record is one decoded record.
type Record interface {
	TypeName() string
	object() *Object
}

// Object is embedded by every record type.
type Object struct {
	Type  string // type name as stored in the file
	Index int    // position in File.Records
}

// TypeName returns the stored type name.
func (o *Object) TypeName() string { return o.Type }

func (o *Object) object() *Object { return o }

// File is a decoded model file.
type File struct {
	Name      string
	Signature string
	Version   uint32
	Records   []Record
	Roots     []Ref
}

// Get returns the record a reference points to.
func (f *File) Get(r Ref) (Record, bool) {
	if r < 0 || int(r) >= len(f.Records) {
		return nil, false
	}
	return f.Records[r], true
}

// Resolve returns the record r points to when it has type T.
func Resolve[T Record](f *File, r Ref) (T, bool) {
	var zero T
	rec, ok := f.Get(r)
	if !ok {
		return zero, false
	}
	v, ok := rec.(T)
	return v, ok
}

// ParseFile reads and parses a file from disk.
func ParseFile(path string, log *zap.Logger) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &dataerr.IOError{Path: path, Err: err}
	}
	return Parse(data, path, log)
}

// Parse decodes a whole model file. Any error is fatal: without per-record
// sizes a misread record leaves the rest of the stream unreadable.
func Parse(data []byte, name string, log *zap.Logger) (*File, error) {
	if log == nil {
		log = zap.NewNop()
	}

	f := &File{Name: name}
	end := bytes.IndexByte(data[:min(len(data), maxSignature)], '\n')
	if end < 0 {
		return nil, dataerr.Format(name, "header", 0, ErrInvalidSignature)
	}
	f.Signature = string(data[:end])
	if !hasSignaturePrefix(f.Signature) {
		return nil, dataerr.Format(name, "header", 0, fmt.Errorf("%w: %q", ErrInvalidSignature, f.Signature))
	}

	c := cursor.New(data)
	c.Seek(end + 1)
	f.Version = c.U32()
	numRecords := c.U32()
	if err := c.Err(); err != nil {
		return nil, dataerr.Format(name, "header", int64(c.Pos()), err)
	}
	if text, ok := parseSignatureVersion(f.Signature); ok && text != f.Version {
		log.Warn("signature version differs from header version",
			zap.String("file", name),
			zap.String("signature", VersionString(text)),
			zap.String("header", VersionString(f.Version)))
	}
	if f.Version < minVersion || f.Version >= maxVersion {
		return nil, dataerr.Format(name, "header", int64(end+1),
			fmt.Errorf("%w: %s", ErrUnsupportedVersion, VersionString(f.Version)))
	}
	// every record needs at least its 4-byte type name length
	if int64(numRecords)*4 > int64(c.Remaining()) {
		return nil, dataerr.Format(name, "header", int64(c.Pos()),
			fmt.Errorf("%w: %d records", ErrTooManyRecords, numRecords))
	}

	s := &stream{Cursor: c, version: f.Version}
	f.Records = make([]Record, 0, numRecords)
	for i := 0; i < int(numRecords); i++ {
		start := s.Pos()
		typeName := s.Str()
		if err := s.Err(); err != nil {
			return nil, dataerr.Format(name, fmt.Sprintf("record %d", i), int64(start), err)
		}

		build, ok := builders[typeName]
		if !ok {
			if !strings.HasSuffix(typeName, "ExtraData") {
				return nil, dataerr.Format(name, typeName, int64(start),
					fmt.Errorf("%w: record %d", ErrUnknownRecordType, i))
			}
			build = readRawExtraData
		}

		rec := build(s)
		if err := s.Err(); err != nil {
			return nil, dataerr.Format(name, typeName, int64(start), fmt.Errorf("record %d: %w", i, err))
		}
		o := rec.object()
		o.Type = typeName
		o.Index = i
		f.Records = append(f.Records, rec)
	}

	f.Roots = s.Refs()
	if err := s.Err(); err != nil {
		return nil, dataerr.Format(name, "roots", int64(s.Pos()), err)
	}

	log.Debug("model parsed",
		zap.String("file", name),
		zap.String("version", VersionString(f.Version)),
		zap.Int("records", len(f.Records)),
		zap.Int("roots", len(f.Roots)))
	return f, nil
}

func hasSignaturePrefix(sig string) bool {
	for _, p := range signaturePrefixes {
		if strings.HasPrefix(sig, p) {
			return true
		}
	}
	return false
}

// parseSignatureVersion extracts "Version a.b.c.d" from the signature line.
func parseSignatureVersion(sig string) (uint32, bool) {
	i := strings.Index(sig, "Version ")
	if i < 0 {
		return 0, false
	}
	parts := strings.Split(strings.TrimSpace(sig[i+len("Version "):]), ".")
	if len(parts) != 4 {
		return 0, false
	}
	var v uint32
	for _, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return 0, false
		}
		v = v<<8 | uint32(n)
	}
	return v, true
}
