// Package tartype defines types shared by the ustar package and its internal
// packages. This avoids circular imports between ustar, index and internal/field.
package tartype

import (
	"math"
	"time"
)

// BlockSize is the size of a header block and the alignment unit of data regions.
const BlockSize = 512

// MaxPaddable is the largest size PaddedSize rounds without overflow.
const MaxPaddable = math.MaxUint64 - (BlockSize - 1)

// Header is a decoded USTAR header.
//
// A Header is only produced for a block whose embedded checksum matched. The
// string fields are copies; a Header stays valid after the buffer it was
// decoded from is released.
type Header struct {
	// Name is the entry path exactly as stored in the name field.
	Name string

	// Uname is the owner's user name.
	Uname string

	// Gname is the owner's group name.
	Gname string

	// UID is the owner's numeric user ID.
	UID uint64

	// GID is the owner's numeric group ID.
	GID uint64

	// ModTime is the modification time in seconds since the Unix epoch.
	ModTime uint64

	// Size is the length in bytes of the entry's data region.
	Size uint64

	// Typeflag is the raw type byte. It is reported as stored and never validated.
	Typeflag byte

	// Offset is the byte offset of the header block in the archive buffer.
	Offset int64
}

// Time returns ModTime as a time.Time.
func (h Header) Time() time.Time {
	return time.Unix(int64(h.ModTime), 0) //nolint:gosec // octal field holds at most 11 digits
}

// DataOffset returns the offset of the first byte of the entry's data region.
func (h Header) DataOffset() int64 {
	return h.Offset + BlockSize
}

// PaddedSize returns Size rounded up to the next block boundary.
func (h Header) PaddedSize() uint64 {
	return PaddedSize(h.Size)
}

// PaddedSize rounds n up to a multiple of BlockSize.
//
// n must not exceed MaxPaddable; larger values wrap around. Sizes decoded from
// a header are far below the limit.
func PaddedSize(n uint64) uint64 {
	return ((n + BlockSize - 1) / BlockSize) * BlockSize
}
