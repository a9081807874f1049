// Package ustar decodes USTAR archive headers from an in-memory buffer.
//
// The package is a parser only: it never writes archives and never reads
// entry contents. Given a fully resident buffer it decodes each 512-byte
// header block into a [Header], validates the block checksum, and walks the
// archive entry by entry.
//
// # Decoding a single block
//
// [Decode] inspects one block at a byte offset:
//
//	hdr, err := ustar.Decode(buf, 0)
//	switch {
//	case errors.Is(err, io.EOF):
//	    // all-zero block: end of archive
//	case err != nil:
//	    // ErrBufferTooShort, ErrMalformedField, ErrInvalidOctal or ErrChecksumMismatch
//	}
//
// # Iterating an archive
//
// A [Reader] advances past each header and its block-padded data region:
//
//	r := ustar.NewReader(buf)
//	for hdr := range r.All() {
//	    fmt.Println(hdr.Name, hdr.Size)
//	}
//	if err := r.Err(); err != nil {
//	    // ErrTruncated or a header decode failure
//	}
//
// A clean end (an all-zero block) leaves Err nil. A truncated or corrupt
// archive always surfaces as an error, never as a silent end of iteration.
//
// Loading archives from disk and building lookup indexes live in the
// [github.com/meigma/ustar/source] and [github.com/meigma/ustar/index]
// packages.
package ustar
