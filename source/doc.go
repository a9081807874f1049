// Package source loads archives into memory for header decoding.
//
// Archives may be stored plain or compressed with gzip, zstd or lz4; the
// compression is detected from the leading magic bytes. The decompressed
// archive is capped at a configurable size and fingerprinted with a content
// digest.
package source
