package source

import (
	"bytes"
	"context"
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ustar"
	"github.com/meigma/ustar/internal/testutil"
)

func testArchive(tb testing.TB) []byte {
	tb.Helper()
	return testutil.BuildArchive(tb, []testutil.TestEntry{
		{Name: "hello.txt", Data: []byte("hello, world\n"), Uname: "gopher", Gname: "gopher"},
		{Name: "data.bin", Data: bytes.Repeat([]byte{7}, 4096)},
	}, true)
}

func TestDetect(t *testing.T) {
	t.Parallel()

	raw := testArchive(t)
	tests := []struct {
		name string
		head []byte
		want Compression
	}{
		{name: "plain", head: raw, want: CompressionNone},
		{name: "gzip", head: testutil.Gzip(t, raw), want: CompressionGzip},
		{name: "zstd", head: testutil.Zstd(t, raw), want: CompressionZstd},
		{name: "lz4", head: testutil.LZ4(t, raw), want: CompressionLZ4},
		{name: "empty", head: nil, want: CompressionNone},
		{name: "short", head: []byte{0x28, 0xb5}, want: CompressionNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Detect(tc.head))
		})
	}
}

func TestCompressionString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "none", CompressionNone.String())
	assert.Equal(t, "gzip", CompressionGzip.String())
	assert.Equal(t, "zstd", CompressionZstd.String())
	assert.Equal(t, "lz4", CompressionLZ4.String())
	assert.Equal(t, "unknown", Compression(99).String())
}

func TestLoad(t *testing.T) {
	t.Parallel()

	raw := testArchive(t)
	tests := []struct {
		name  string
		file  string
		data  []byte
		wantC Compression
	}{
		{name: "plain", file: "a.tar", data: raw, wantC: CompressionNone},
		{name: "gzip", file: "a.tar.gz", data: testutil.Gzip(t, raw), wantC: CompressionGzip},
		{name: "zstd", file: "a.tar.zst", data: testutil.Zstd(t, raw), wantC: CompressionZstd},
		{name: "lz4", file: "a.tar.lz4", data: testutil.LZ4(t, raw), wantC: CompressionLZ4},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			path := testutil.WriteFile(t, tc.file, tc.data)

			a, err := Load(context.Background(), path)
			require.NoError(t, err)
			assert.Equal(t, path, a.Path)
			assert.Equal(t, tc.wantC, a.Compression)
			assert.Equal(t, raw, a.Data)
			assert.Equal(t, digest.FromBytes(raw), a.Digest)

			hdrs, err := ustar.Headers(a.Data)
			require.NoError(t, err)
			require.Len(t, hdrs, 2)
			assert.Equal(t, "hello.txt", hdrs[0].Name)
			assert.Equal(t, uint64(4096), hdrs[1].Size)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(context.Background(), "/nonexistent/archive.tar")
	assert.Error(t, err)
}

func TestReadMaxSize(t *testing.T) {
	t.Parallel()

	raw := testArchive(t)

	t.Run("plain over limit", func(t *testing.T) {
		t.Parallel()
		_, err := Read(context.Background(), bytes.NewReader(raw), WithMaxSize(1024))
		assert.ErrorIs(t, err, ustar.ErrSizeOverflow)
	})

	t.Run("compressed over limit", func(t *testing.T) {
		t.Parallel()
		_, err := Read(context.Background(), bytes.NewReader(testutil.Zstd(t, raw)), WithMaxSize(1024), WithMaxDecoderMemory(64<<20))
		assert.ErrorIs(t, err, ustar.ErrSizeOverflow)
	})

	t.Run("exact limit", func(t *testing.T) {
		t.Parallel()
		a, err := Read(context.Background(), bytes.NewReader(raw), WithMaxSize(uint64(len(raw))))
		require.NoError(t, err)
		assert.Len(t, a.Data, len(raw))
	})
}

func TestReadCorruptStream(t *testing.T) {
	t.Parallel()

	gz := testutil.Gzip(t, testArchive(t))
	corrupt := gz[:len(gz)/2]

	_, err := Read(context.Background(), bytes.NewReader(corrupt))
	assert.Error(t, err)
}

func TestReadEmpty(t *testing.T) {
	t.Parallel()

	a, err := Read(context.Background(), bytes.NewReader(nil))
	require.NoError(t, err)
	assert.Empty(t, a.Data)
	assert.Equal(t, CompressionNone, a.Compression)
}

func TestReadCanceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, bytes.NewReader(testArchive(t)))
	assert.ErrorIs(t, err, context.Canceled)
}
