package source

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/opencontainers/go-digest"
	"github.com/pierrec/lz4/v4"

	"github.com/meigma/ustar"
	"github.com/meigma/ustar/internal/sizing"
)

// DefaultMaxSize is the default cap on the decompressed archive size.
const DefaultMaxSize = 1 << 30

// Archive is an archive loaded into memory.
type Archive struct {
	// Path is the file the archive was loaded from, or "" for Read.
	Path string

	// Data holds the decompressed archive bytes.
	Data []byte

	// Compression is the compression detected on the stored archive.
	Compression Compression

	// Digest is the canonical digest of Data.
	Digest digest.Digest
}

// Load reads the archive stored at path.
func Load(ctx context.Context, path string, opts ...Option) (*Archive, error) {
	f, err := os.Open(path) //nolint:gosec // path is supplied by the caller by design
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	a, err := Read(ctx, f, opts...)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	a.Path = path
	return a, nil
}

// Read reads an archive from r, decompressing it if needed.
//
// It returns ustar.ErrSizeOverflow if the decompressed archive is larger than
// the configured maximum.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*Archive, error) {
	cfg := newConfig(opts)

	br := bufio.NewReader(&ctxReader{ctx: ctx, r: r})
	head, err := br.Peek(magicLen)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read archive header: %w", err)
	}
	compression := Detect(head)

	body, closeFn, err := cfg.decompressor(compression, br)
	if err != nil {
		return nil, fmt.Errorf("open %s stream: %w", compression, err)
	}
	defer closeFn()

	data, err := sizing.ReadAllWithLimit(body, cfg.maxSize, ustar.ErrSizeOverflow)
	if err != nil {
		return nil, fmt.Errorf("read %s archive: %w", compression, err)
	}

	a := &Archive{
		Data:        data,
		Compression: compression,
		Digest:      digest.FromBytes(data),
	}
	cfg.log().Debug("archive loaded",
		slog.String("compression", compression.String()),
		slog.Int("size", len(data)),
		slog.String("digest", a.Digest.String()))
	return a, nil
}

// decompressor wraps r according to c. The returned function releases
// decoder resources and must always be called.
func (c *config) decompressor(compression Compression, r io.Reader) (io.Reader, func(), error) {
	switch compression {
	case CompressionGzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case CompressionZstd:
		zopts := []zstd.DOption{zstd.WithDecoderConcurrency(1)}
		if c.maxDecoderMemory > 0 {
			zopts = append(zopts, zstd.WithDecoderMaxMemory(c.maxDecoderMemory))
		}
		dec, err := zstd.NewReader(r, zopts...)
		if err != nil {
			return nil, nil, err
		}
		return dec, dec.Close, nil
	case CompressionLZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}

// ctxReader stops reading once its context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
