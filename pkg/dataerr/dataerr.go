// Package dataerr defines the error taxonomy shared by the archive, database
// and model decoders.
package dataerr

import (
	"errors"
	"fmt"
)

// Sentinel errors. Use errors.Is to classify a decoder failure.
var (
	ErrFormat       = errors.New("format error")
	ErrBounds       = errors.New("read past end of buffer")
	ErrCacheInvalid = errors.New("cache invalid")
)

// IOError reports a file that could not be opened or read.
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// FormatError reports bytes that do not match the expected layout.
// Tag and Offset describe the last known position in the stream.
type FormatError struct {
	Path   string
	Tag    string
	Offset int64
	Err    error
}

func (e *FormatError) Error() string {
	msg := "format error"
	if e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Tag != "" {
		return fmt.Sprintf("%s: %s at offset %d: %s", e.Path, e.Tag, e.Offset, msg)
	}
	return fmt.Sprintf("%s: offset %d: %s", e.Path, e.Offset, msg)
}

func (e *FormatError) Unwrap() error { return e.Err }

// Is makes every FormatError match ErrFormat.
func (e *FormatError) Is(target error) bool { return target == ErrFormat }

// BoundsError reports a read of Need bytes at Offset from a buffer of length Len.
type BoundsError struct {
	Offset int
	Need   int
	Len    int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("read of %d bytes at offset %d exceeds length %d", e.Need, e.Offset, e.Len)
}

// Is makes every BoundsError match ErrBounds.
func (e *BoundsError) Is(target error) bool { return target == ErrBounds }

// Format builds a FormatError wrapping err, or a formatted message when err is nil.
func Format(path, tag string, offset int64, err error) *FormatError {
	return &FormatError{Path: path, Tag: tag, Offset: offset, Err: err}
}
