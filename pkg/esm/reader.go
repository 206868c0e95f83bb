// Package esm reads the game's content database files (.esm/.esp).
//
// A file is a flat sequence of records. Each record has a 16-byte header
// (4-byte tag, payload size, an unused word, flags) followed by tagged
// subrecords (4-byte tag, u32 size, payload). The Reader keeps three
// remaining-byte counters (file, record, subrecord) so that any record can be
// abandoned and the stream resumed exactly at the next record.
package esm

import (
	"errors"
	"fmt"

	"github.com/Faultbox/vvardenfell/pkg/cursor"
	"github.com/Faultbox/vvardenfell/pkg/dataerr"
	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// Reader errors.
var (
	ErrInvalidMagic     = errors.New("invalid content file magic: expected 'TES3'")
	ErrTruncatedRecord  = errors.New("truncated record header")
	ErrRecordTooLarge   = errors.New("record size exceeds remaining file bytes")
	ErrTruncatedSub     = errors.New("truncated subrecord header")
	ErrSubTooLarge      = errors.New("subrecord size exceeds remaining record bytes")
	ErrUnexpectedSub    = errors.New("unexpected subrecord")
	ErrUnconsumed       = errors.New("previous record not fully consumed")
	ErrSubPayloadLength = errors.New("subrecord payload has unexpected length")
)

const (
	recordHeaderSize = 16
	subHeaderSize    = 8

	// FlagDeleted marks a record as deleted in its header flags.
	FlagDeleted = 0x0020
	// FlagPersistent marks references that stay loaded.
	FlagPersistent = 0x0400
	// FlagBlocked marks records protected from modification by plugins.
	FlagBlocked = 0x2000
)

// Tag is a 4-byte record or subrecord code stored little-endian.
type Tag uint32

// MakeTag converts a 4-character code to a Tag.
func MakeTag(s string) Tag {
	if len(s) != 4 {
		panic("esm: tag must be 4 bytes: " + s)
	}
	return Tag(uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24)
}

// String returns the 4-character code.
func (t Tag) String() string {
	return string([]byte{byte(t), byte(t >> 8), byte(t >> 16), byte(t >> 24)})
}

// RecordHeader describes the current top-level record.
type RecordHeader struct {
	Tag    Tag
	Size   uint32
	Flags  uint32
	Offset int64 // offset of the record header
	End    int64 // offset of the next record
}

// Deleted reports whether the header flags mark the record deleted.
func (h RecordHeader) Deleted() bool { return h.Flags&FlagDeleted != 0 }

type subHeader struct {
	tag  Tag
	size uint32
}

// Reader walks records and subrecords of one content file.
type Reader struct {
	name string
	c    *cursor.Cursor

	fileLeft int64
	recLeft  int64
	subLeft  int64

	rec     RecordHeader
	sub     subHeader
	pending *subHeader

	err error
}

// Open checks the leading TES3 tag and returns a reader positioned at the first record.
func Open(data []byte, name string) (*Reader, error) {
	if len(data) < 4 || Tag(uint32(data[0])|uint32(data[1])<<8|uint32(data[2])<<16|uint32(data[3])<<24) != TagTES3 {
		return nil, dataerr.Format(name, "", 0, ErrInvalidMagic)
	}
	return &Reader{
		name:     name,
		c:        cursor.New(data),
		fileLeft: int64(len(data)),
	}, nil
}

// Name returns the file name used in error context.
func (r *Reader) Name() string { return r.name }

// Offset returns the absolute cursor position.
func (r *Reader) Offset() int64 { return int64(r.c.Pos()) }

// Record returns the header of the current record.
func (r *Reader) Record() RecordHeader { return r.rec }

// SubTag returns the tag of the current subrecord.
func (r *Reader) SubTag() Tag { return r.sub.tag }

// Err returns the sticky payload error of the current record.
func (r *Reader) Err() error { return r.err }

// HasMoreRecords reports whether unread records remain.
func (r *Reader) HasMoreRecords() bool { return r.fileLeft > 0 }

// HasMoreSubs reports whether the current record has unread subrecords.
func (r *Reader) HasMoreSubs() bool { return r.recLeft > 0 || r.pending != nil }

// Consumed reports whether every byte of the current record has been read.
func (r *Reader) Consumed() bool {
	return r.recLeft == 0 && r.subLeft == 0 && r.pending == nil
}

// fail builds a FormatError carrying the current position.
func (r *Reader) fail(err error) error {
	tag := r.rec.Tag.String()
	if r.sub.tag != 0 {
		tag += "." + r.sub.tag.String()
	}
	return dataerr.Format(r.name, tag, r.Offset(), err)
}

// NextRecord reads the next record header. The previous record must have
// been fully consumed or skipped. Errors from NextRecord are fatal: the
// offsets of later records can no longer be trusted.
func (r *Reader) NextRecord() (RecordHeader, error) {
	if !r.Consumed() {
		return r.rec, r.fail(ErrUnconsumed)
	}
	if r.fileLeft < recordHeaderSize {
		return RecordHeader{}, dataerr.Format(r.name, "", r.Offset(), ErrTruncatedRecord)
	}
	start := r.Offset()
	tag := Tag(r.c.U32())
	size := r.c.U32()
	r.c.U32()
	flags := r.c.U32()
	if err := r.c.Err(); err != nil {
		return RecordHeader{}, dataerr.Format(r.name, tag.String(), start, err)
	}
	r.fileLeft -= recordHeaderSize
	if int64(size) > r.fileLeft {
		return RecordHeader{}, dataerr.Format(r.name, tag.String(), start,
			fmt.Errorf("%w: %d > %d", ErrRecordTooLarge, size, r.fileLeft))
	}
	r.fileLeft -= int64(size)
	r.recLeft = int64(size)
	r.subLeft = 0
	r.sub = subHeader{}
	r.err = nil
	r.rec = RecordHeader{
		Tag:    tag,
		Size:   size,
		Flags:  flags,
		Offset: start,
		End:    start + recordHeaderSize + int64(size),
	}
	return r.rec, nil
}

// NextSub advances to the next subrecord and returns its tag. Unread payload
// of the current subrecord is skipped first. When expected is given and the
// next tag differs, the subrecord is held back for the next caller and
// ErrUnexpectedSub is returned.
func (r *Reader) NextSub(expected ...Tag) (Tag, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.subLeft > 0 {
		r.c.Skip(int(r.subLeft))
		r.subLeft = 0
	}

	var h subHeader
	if r.pending != nil {
		h = *r.pending
		r.pending = nil
	} else {
		if r.recLeft < subHeaderSize {
			r.err = r.fail(ErrTruncatedSub)
			return 0, r.err
		}
		h.tag = Tag(r.c.U32())
		h.size = r.c.U32()
		r.recLeft -= subHeaderSize
		if int64(h.size) > r.recLeft {
			r.sub = h
			r.err = r.fail(fmt.Errorf("%w: %d > %d", ErrSubTooLarge, h.size, r.recLeft))
			return 0, r.err
		}
		r.recLeft -= int64(h.size)
	}

	if len(expected) > 0 && h.tag != expected[0] {
		r.pending = &h
		return h.tag, r.fail(fmt.Errorf("%w: got %s, want %s", ErrUnexpectedSub, h.tag, expected[0]))
	}
	r.sub = h
	r.subLeft = int64(h.size)
	return h.tag, nil
}

// IsNextSub consumes the next subrecord header when its tag matches and
// holds it back otherwise.
func (r *Reader) IsNextSub(tag Tag) bool {
	if !r.HasMoreSubs() {
		return false
	}
	got, err := r.NextSub()
	if err != nil {
		return false
	}
	if got == tag {
		return true
	}
	r.PutBack()
	return false
}

// PutBack holds the current subrecord so the next NextSub returns it again.
// Only valid before any of its payload is read.
func (r *Reader) PutBack() {
	if r.subLeft != int64(r.sub.size) {
		r.err = r.fail(errors.New("put back after partial read"))
		return
	}
	h := r.sub
	r.pending = &h
	r.subLeft = 0
}

// SkipSub moves past the rest of the current (or held back) subrecord.
func (r *Reader) SkipSub() {
	if r.subLeft > 0 {
		r.c.Skip(int(r.subLeft))
		r.subLeft = 0
		return
	}
	if r.pending != nil {
		r.c.Skip(int(r.pending.size))
		r.pending = nil
	}
}

// SkipRecord moves to the end of the current record regardless of what was
// read. An error here means the cursor itself is broken and is fatal.
func (r *Reader) SkipRecord() error {
	r.c.Seek(int(r.rec.End))
	r.recLeft = 0
	r.subLeft = 0
	r.pending = nil
	r.err = nil
	if err := r.c.Err(); err != nil {
		return dataerr.Format(r.name, r.rec.Tag.String(), r.rec.Offset, err)
	}
	return nil
}

// EndRecord finishes the current record after its builder returns. The
// unread tail of the last subrecord is skipped; unread subrecords are an error.
func (r *Reader) EndRecord() error {
	if r.err != nil {
		return r.err
	}
	if r.subLeft > 0 {
		r.c.Skip(int(r.subLeft))
		r.subLeft = 0
	}
	if r.recLeft > 0 || r.pending != nil {
		left := r.recLeft
		if r.pending != nil {
			left += subHeaderSize + int64(r.pending.size)
		}
		return r.fail(fmt.Errorf("%w: %d bytes left unread", ErrUnconsumed, left))
	}
	return nil
}

// SubSize returns the unread payload size of the current subrecord.
func (r *Reader) SubSize() int { return int(r.subLeft) }

// claim reserves n payload bytes or records a bounds error.
func (r *Reader) claim(n int64) bool {
	if r.err != nil {
		return false
	}
	if n > r.subLeft {
		r.err = r.fail(&dataerr.BoundsError{Offset: r.c.Pos(), Need: int(n), Len: int(r.subLeft)})
		return false
	}
	r.subLeft -= n
	return true
}

// SubBytes reads n payload bytes. The slice aliases the file buffer.
func (r *Reader) SubBytes(n int) []byte {
	if !r.claim(int64(n)) {
		return nil
	}
	return r.c.Bytes(n)
}

// SubString reads the rest of the payload as a NUL-terminated string.
func (r *Reader) SubString() string {
	return encoding.TrimNullString(r.SubBytes(int(r.subLeft)))
}

// SubFixedString reads an n-byte NUL-padded string.
func (r *Reader) SubFixedString(n int) string {
	return encoding.FixedStringToUTF8(r.SubBytes(n))
}

// SubU8 reads a byte of payload.
func (r *Reader) SubU8() uint8 {
	if !r.claim(1) {
		return 0
	}
	return r.c.U8()
}

// SubU16 reads a uint16 of payload.
func (r *Reader) SubU16() uint16 {
	if !r.claim(2) {
		return 0
	}
	return r.c.U16()
}

// SubI16 reads an int16 of payload.
func (r *Reader) SubI16() int16 { return int16(r.SubU16()) }

// SubU32 reads a uint32 of payload.
func (r *Reader) SubU32() uint32 {
	if !r.claim(4) {
		return 0
	}
	return r.c.U32()
}

// SubI32 reads an int32 of payload.
func (r *Reader) SubI32() int32 { return int32(r.SubU32()) }

// SubU64 reads a uint64 of payload.
func (r *Reader) SubU64() uint64 {
	if !r.claim(8) {
		return 0
	}
	return r.c.U64()
}

// SubF32 reads a float32 of payload.
func (r *Reader) SubF32() float32 {
	if !r.claim(4) {
		return 0
	}
	return r.c.F32()
}

// SubVec3 reads three float32 values of payload.
func (r *Reader) SubVec3() [3]float32 {
	if !r.claim(12) {
		return [3]float32{}
	}
	return r.c.Vec3()
}

// RequireSize fails the record when the current payload is not exactly n bytes.
func (r *Reader) RequireSize(n int) bool {
	if r.err != nil {
		return false
	}
	if int(r.subLeft) != n {
		r.err = r.fail(fmt.Errorf("%w: %d, want %d", ErrSubPayloadLength, r.subLeft, n))
		return false
	}
	return true
}
