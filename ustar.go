package ustar

import (
	"io"

	"github.com/meigma/ustar/internal/field"
	"github.com/meigma/ustar/internal/tartype"
)

// Re-export types from internal/tartype for public API.
type (
	// Header is a decoded USTAR header.
	Header = tartype.Header

	// HeaderError records a header failure and the location it was found at.
	HeaderError = tartype.HeaderError
)

// BlockSize is the size of a header block and the alignment unit of data regions.
const BlockSize = tartype.BlockSize

// MaxPaddable is the largest size PaddedSize rounds without overflow.
const MaxPaddable = tartype.MaxPaddable

// Sentinel errors re-exported from internal/tartype.
var (
	// ErrBufferTooShort is returned when a header window does not fit the buffer.
	ErrBufferTooShort = tartype.ErrBufferTooShort

	// ErrMalformedField is returned when a text field is unterminated or not valid text.
	ErrMalformedField = tartype.ErrMalformedField

	// ErrInvalidOctal is returned when a numeric field is not valid base-8.
	ErrInvalidOctal = tartype.ErrInvalidOctal

	// ErrChecksumMismatch is returned when a header block fails its checksum.
	ErrChecksumMismatch = tartype.ErrChecksumMismatch

	// ErrTruncated is returned when the archive ends before the next header block.
	ErrTruncated = tartype.ErrTruncated

	// ErrSizeOverflow is returned when a byte count exceeds supported limits.
	ErrSizeOverflow = tartype.ErrSizeOverflow
)

// PaddedSize rounds n up to a multiple of BlockSize.
var PaddedSize = tartype.PaddedSize

// Decode decodes the header block that starts at off in buf.
//
// It returns io.EOF if the block is all zeros, which marks the end of an
// archive. Any other failure is a *HeaderError wrapping ErrBufferTooShort,
// ErrMalformedField, ErrInvalidOctal or ErrChecksumMismatch. Decode never
// panics and does not modify buf.
func Decode(buf []byte, off int64) (Header, error) {
	if off < 0 || off > int64(len(buf))-BlockSize {
		return Header{}, &HeaderError{Offset: off, Err: ErrBufferTooShort}
	}
	block := buf[off : off+BlockSize]

	if field.IsZero(block) {
		return Header{}, io.EOF
	}

	ok, err := field.VerifyChecksum(block)
	if err != nil {
		return Header{}, &HeaderError{Offset: off, Field: field.Checksum.Name, Err: err}
	}
	if !ok {
		return Header{}, &HeaderError{Offset: off, Err: ErrChecksumMismatch}
	}

	d := decoder{block: block, off: off}
	hdr := Header{
		Name:     d.text(field.Name),
		Uname:    d.text(field.Uname),
		Gname:    d.text(field.Gname),
		UID:      d.octal(field.UID),
		GID:      d.octal(field.GID),
		ModTime:  d.octal(field.ModTime),
		Size:     d.octal(field.Size),
		Typeflag: block[field.Typeflag.Offset],
		Offset:   off,
	}
	if d.err == nil && hdr.Name == "" {
		d.err = &HeaderError{Offset: off, Field: field.Name.Name, Err: ErrMalformedField}
	}
	if d.err != nil {
		return Header{}, d.err
	}
	return hdr, nil
}

// decoder holds the first field error seen while decoding a block.
type decoder struct {
	block []byte
	off   int64
	err   error
}

func (d *decoder) text(f field.Field) string {
	if d.err != nil {
		return ""
	}
	s, err := field.Text(f.Of(d.block))
	if err != nil {
		d.err = &HeaderError{Offset: d.off, Field: f.Name, Err: err}
		return ""
	}
	return string(s)
}

func (d *decoder) octal(f field.Field) uint64 {
	if d.err != nil {
		return 0
	}
	v, err := field.Octal(f.Of(d.block))
	if err != nil {
		d.err = &HeaderError{Offset: d.off, Field: f.Name, Err: err}
		return 0
	}
	return v
}
