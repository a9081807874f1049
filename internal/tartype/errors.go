package tartype

import (
	"errors"
	"fmt"
)

// Sentinel errors for header decoding and archive iteration.
var (
	// ErrBufferTooShort is returned when a 512-byte header window does not fit
	// inside the buffer.
	ErrBufferTooShort = errors.New("ustar: buffer too short for header block")

	// ErrMalformedField is returned when a text field has no NUL terminator
	// within its width or does not hold valid text.
	ErrMalformedField = errors.New("ustar: malformed header field")

	// ErrInvalidOctal is returned when a numeric field is not a valid base-8 number.
	ErrInvalidOctal = errors.New("ustar: invalid octal field")

	// ErrChecksumMismatch is returned when the embedded checksum does not match
	// the checksum computed over the header block.
	ErrChecksumMismatch = errors.New("ustar: header checksum mismatch")

	// ErrTruncated is returned when the archive ends before the next header block.
	ErrTruncated = errors.New("ustar: archive truncated")

	// ErrSizeOverflow is returned when a byte count exceeds supported limits.
	ErrSizeOverflow = errors.New("ustar: size overflow")
)

// HeaderError records a header failure and the location it was found at.
type HeaderError struct {
	// Offset is the byte offset of the header block in the buffer.
	Offset int64

	// Field names the header field that failed to decode, if any.
	Field string

	// Err is one of the package sentinel errors.
	Err error
}

func (e *HeaderError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%v (block at offset %d)", e.Err, e.Offset)
	}
	return fmt.Sprintf("%v: field %q (block at offset %d)", e.Err, e.Field, e.Offset)
}

func (e *HeaderError) Unwrap() error {
	return e.Err
}
