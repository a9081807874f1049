// Package field describes the byte layout of a USTAR header block and decodes
// its text, octal and checksum fields.
//
// All functions operate on a 512-byte block window. Slices returned by Field.Of
// alias that window and must not outlive the decode call that produced them.
package field

import "github.com/meigma/ustar/internal/tartype"

// Field is a named byte range within a header block.
type Field struct {
	Name   string
	Offset int
	Width  int
}

// Header block layout. Offsets are relative to the start of the block.
var (
	Name     = Field{Name: "name", Offset: 0, Width: 100}
	Mode     = Field{Name: "mode", Offset: 100, Width: 8}
	UID      = Field{Name: "uid", Offset: 108, Width: 8}
	GID      = Field{Name: "gid", Offset: 116, Width: 8}
	Size     = Field{Name: "size", Offset: 124, Width: 12}
	ModTime  = Field{Name: "mtime", Offset: 136, Width: 12}
	Checksum = Field{Name: "chksum", Offset: 148, Width: 8}
	Typeflag = Field{Name: "typeflag", Offset: 156, Width: 1}
	Linkname = Field{Name: "linkname", Offset: 157, Width: 100}
	Magic    = Field{Name: "magic", Offset: 257, Width: 8}
	Uname    = Field{Name: "uname", Offset: 265, Width: 32}
	Gname    = Field{Name: "gname", Offset: 297, Width: 32}
	Device   = Field{Name: "devmajor/devminor", Offset: 329, Width: 16}
	Prefix   = Field{Name: "prefix", Offset: 345, Width: 155}
)

// Layout lists every field in block order.
var Layout = []Field{
	Name, Mode, UID, GID, Size, ModTime, Checksum, Typeflag,
	Linkname, Magic, Uname, Gname, Device, Prefix,
}

// Of returns the bytes of f within block.
func (f Field) Of(block []byte) []byte {
	return block[f.Offset : f.Offset+f.Width]
}

// End returns the offset one past the last byte of f.
func (f Field) End() int {
	return f.Offset + f.Width
}

// BlockSize is the width of a header block.
const BlockSize = tartype.BlockSize
