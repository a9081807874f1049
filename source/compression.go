package source

import "bytes"

// Compression identifies the compression wrapping an archive.
type Compression uint8

const (
	// CompressionNone marks a plain archive.
	CompressionNone Compression = iota

	// CompressionGzip marks a gzip stream.
	CompressionGzip

	// CompressionZstd marks a zstd frame.
	CompressionZstd

	// CompressionLZ4 marks an lz4 frame.
	CompressionLZ4
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionGzip:
		return "gzip"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return "unknown"
	}
}

type magic struct {
	sig         []byte
	compression Compression
}

// standard file signatures
var magics = []magic{
	{sig: []byte{0x1f, 0x8b}, compression: CompressionGzip},
	{sig: []byte{0x28, 0xb5, 0x2f, 0xfd}, compression: CompressionZstd},
	{sig: []byte{0x04, 0x22, 0x4d, 0x18}, compression: CompressionLZ4},
}

// magicLen is the number of leading bytes Detect needs.
const magicLen = 4

// Detect returns the compression identified by the leading bytes of an archive.
// Unrecognized input is reported as CompressionNone.
func Detect(head []byte) Compression {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.sig) {
			return m.compression
		}
	}
	return CompressionNone
}
