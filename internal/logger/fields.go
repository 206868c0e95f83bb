package logger

import (
	"errors"

	"go.uber.org/zap"

	"github.com/Faultbox/vvardenfell/pkg/dataerr"
)

// ErrorFields returns zap.Error(err) plus the location carried by a
// decoder error: file, record tag and offset for a FormatError, the path
// for an IOError, offset and length for a BoundsError.
func ErrorFields(err error) []zap.Field {
	fields := []zap.Field{zap.Error(err)}

	var fe *dataerr.FormatError
	var ioe *dataerr.IOError
	switch {
	case errors.As(err, &fe):
		fields = append(fields, zap.String("file", fe.Path))
		if fe.Tag != "" {
			fields = append(fields, zap.String("record", fe.Tag))
		}
		fields = append(fields, zap.Int64("offset", fe.Offset))
	case errors.As(err, &ioe):
		fields = append(fields, zap.String("file", ioe.Path))
	}

	var be *dataerr.BoundsError
	if errors.As(err, &be) {
		fields = append(fields, zap.Int("read_offset", be.Offset), zap.Int("read_len", be.Need))
	}
	return fields
}
