package field

import (
	"bytes"
	"math"
	"unicode/utf8"

	"github.com/meigma/ustar/internal/tartype"
)

// Text returns the bytes of a NUL-terminated text field, excluding the NUL.
//
// It fails with ErrMalformedField if no NUL appears within b or if the bytes
// before it are not valid UTF-8. The result aliases b.
func Text(b []byte) ([]byte, error) {
	n := bytes.IndexByte(b, 0)
	if n < 0 {
		return nil, tartype.ErrMalformedField
	}
	s := b[:n]
	if !utf8.Valid(s) {
		return nil, tartype.ErrMalformedField
	}
	return s, nil
}

// Octal decodes a NUL-terminated base-8 field.
//
// Text extraction failures report ErrMalformedField. Empty text, a byte
// outside '0'..'7', or a value above math.MaxUint64 report ErrInvalidOctal.
func Octal(b []byte) (uint64, error) {
	s, err := Text(b)
	if err != nil {
		return 0, err
	}
	if len(s) == 0 {
		return 0, tartype.ErrInvalidOctal
	}
	var v uint64
	for _, c := range s {
		if c < '0' || c > '7' {
			return 0, tartype.ErrInvalidOctal
		}
		if v > math.MaxUint64>>3 {
			return 0, tartype.ErrInvalidOctal
		}
		v = v<<3 | uint64(c-'0')
	}
	return v, nil
}

// IsZero reports whether every byte of block is zero.
func IsZero(block []byte) bool {
	for _, c := range block {
		if c != 0 {
			return false
		}
	}
	return true
}
