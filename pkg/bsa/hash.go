package bsa

import (
	"math/bits"

	"github.com/Faultbox/vvardenfell/pkg/encoding"
)

// Hash is the 64-bit directory hash of an archive path, stored as two
// little-endian words.
type Hash struct {
	Low  uint32
	High uint32
}

// HashPath hashes a path the way archive directories do. The path is
// lowercased and '/' becomes '\' first, so the result does not depend on
// case or separator style.
func HashPath(name string) Hash {
	return hashBytes(encoding.UTF8ToWindows1252(encoding.NormalizeArchivePath(name)))
}

// hashBytes folds the first half of the name into Low and the second half,
// with a rotate-right per byte, into High. Bytes are sign-extended before
// shifting.
func hashBytes(name []byte) Hash {
	half := len(name) >> 1

	var sum, off uint32
	for i := 0; i < half; i++ {
		sum ^= signed(name[i]) << (off & 0x1f)
		off += 8
	}
	h := Hash{Low: sum}

	sum, off = 0, 0
	for i := half; i < len(name); i++ {
		temp := signed(name[i]) << (off & 0x1f)
		sum ^= temp
		sum = bits.RotateLeft32(sum, -int(temp&0x1f))
		off += 8
	}
	h.High = sum
	return h
}

func signed(b byte) uint32 {
	return uint32(int32(int8(b)))
}
