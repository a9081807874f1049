package testutil

import (
	"fmt"
	"testing"

	"github.com/meigma/ustar/internal/field"
	"github.com/meigma/ustar/internal/tartype"
)

// TestEntry holds data for building test header blocks.
type TestEntry struct {
	Name     string
	Uname    string
	Gname    string
	Mode     uint64
	UID      uint64
	GID      uint64
	ModTime  uint64
	Size     uint64
	Typeflag byte

	// Data is written after the header. When Data is nil, Size zero bytes are
	// written instead; when Size is zero, len(Data) is used.
	Data []byte
}

func (e TestEntry) size() uint64 {
	if e.Size == 0 && e.Data != nil {
		return uint64(len(e.Data))
	}
	return e.Size
}

// BuildBlock encodes e as a 512-byte USTAR header block with a valid checksum.
func BuildBlock(tb testing.TB, e TestEntry) []byte {
	tb.Helper()

	block := make([]byte, tartype.BlockSize)
	putText(tb, block, field.Name, e.Name)
	putOctal(tb, block, field.Mode, e.Mode)
	putOctal(tb, block, field.UID, e.UID)
	putOctal(tb, block, field.GID, e.GID)
	putOctal(tb, block, field.Size, e.size())
	putOctal(tb, block, field.ModTime, e.ModTime)
	typeflag := e.Typeflag
	if typeflag == 0 {
		typeflag = '0'
	}
	block[field.Typeflag.Offset] = typeflag
	copy(field.Magic.Of(block), "ustar\x0000")
	putText(tb, block, field.Uname, e.Uname)
	putText(tb, block, field.Gname, e.Gname)
	RewriteChecksum(block)
	return block
}

// BuildArchive concatenates header blocks and padded data regions for entries.
// If trailer is set, two zero blocks are appended.
func BuildArchive(tb testing.TB, entries []TestEntry, trailer bool) []byte {
	tb.Helper()

	var buf []byte
	for _, e := range entries {
		buf = append(buf, BuildBlock(tb, e)...)
		size := e.size()
		data := make([]byte, tartype.PaddedSize(size))
		copy(data, e.Data)
		buf = append(buf, data...)
	}
	if trailer {
		buf = append(buf, make([]byte, 2*tartype.BlockSize)...)
	}
	return buf
}

// RewriteChecksum recomputes the checksum of block and stores it in the
// "%06o\x00 " form written by common tar implementations.
func RewriteChecksum(block []byte) {
	sum := field.ComputeChecksum(block)
	copy(field.Checksum.Of(block), fmt.Sprintf("%06o\x00 ", sum))
}

func putText(tb testing.TB, block []byte, f field.Field, s string) {
	tb.Helper()
	if len(s) >= f.Width {
		tb.Fatalf("testutil: %q does not fit field %s", s, f.Name)
	}
	copy(f.Of(block), s)
}

func putOctal(tb testing.TB, block []byte, f field.Field, v uint64) {
	tb.Helper()
	s := fmt.Sprintf("%0*o", f.Width-1, v)
	if len(s) >= f.Width {
		tb.Fatalf("testutil: %d does not fit field %s", v, f.Name)
	}
	copy(f.Of(block), s)
}
