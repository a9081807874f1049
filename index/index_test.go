package index

import (
	"testing"

	"github.com/opencontainers/go-digest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meigma/ustar"
	"github.com/meigma/ustar/internal/testutil"
)

// mustLoadIndex loads an index or fails the test.
func mustLoadIndex(tb testing.TB, data []byte) *Index {
	tb.Helper()
	idx, err := Load(data)
	require.NoError(tb, err, "Load failed")
	return idx
}

func collectNames(seq func(func(ustar.Header) bool)) []string {
	names := []string{}
	for h := range seq {
		names = append(names, h.Name)
	}
	return names
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("empty data", func(t *testing.T) {
		t.Parallel()
		_, err := Load(nil)
		assert.ErrorIs(t, err, ErrInvalidIndex)
	})

	t.Run("root offset out of range", func(t *testing.T) {
		t.Parallel()
		_, err := Load([]byte{0xff, 0xff, 0, 0})
		assert.ErrorIs(t, err, ErrInvalidIndex)
	})

	t.Run("corrupt data", func(t *testing.T) {
		t.Parallel()
		valid := Build([]ustar.Header{{Name: "a.txt", Uname: "u"}, {Name: "b.txt"}})
		// The first string written by the builder sits at the end of the buffer.
		truncated := valid[:len(valid)-8]

		for _, data := range [][]byte{
			{4, 0, 0, 0, 0xff, 0xff, 0xff, 0x7f},
			{4, 0, 0, 0, 0},
			{8, 0, 0, 0, 1, 2, 3, 4, 9, 9, 9, 9},
			truncated,
		} {
			idx, err := Load(data)
			assert.ErrorIs(t, err, ErrInvalidIndex, "data %x", data)
			assert.Nil(t, idx)
		}
	})

	t.Run("valid index", func(t *testing.T) {
		t.Parallel()
		data := Build([]ustar.Header{{Name: "test.txt", Size: 100}})
		idx := mustLoadIndex(t, data)
		assert.Equal(t, 1, idx.Len())
		assert.Equal(t, uint32(Version), idx.Version())
	})

	t.Run("empty index", func(t *testing.T) {
		t.Parallel()
		idx := mustLoadIndex(t, Build(nil))
		assert.Equal(t, 0, idx.Len())
		_, ok := idx.Lookup("anything")
		assert.False(t, ok)
		assert.Empty(t, collectNames(idx.EntriesWithPrefix("")))
	})
}

func TestIndexLookup(t *testing.T) {
	t.Parallel()

	hdrs := []ustar.Header{
		{Name: "b/file3.txt", Offset: 2048, Size: 150, UID: 7, GID: 8, Uname: "u", Gname: "g", ModTime: 99, Typeflag: '0'},
		{Name: "a/file1.txt", Offset: 0, Size: 100},
		{Name: "a/file2.txt", Offset: 1024, Size: 200},
	}
	idx := mustLoadIndex(t, Build(hdrs))

	t.Run("existing name", func(t *testing.T) {
		t.Parallel()
		h, ok := idx.Lookup("b/file3.txt")
		require.True(t, ok, "expected to find entry")
		assert.Equal(t, hdrs[0], h)
	})

	t.Run("non-existing name", func(t *testing.T) {
		t.Parallel()
		_, ok := idx.Lookup("a/file1")
		assert.False(t, ok)
		_, ok = idx.Lookup("zzz")
		assert.False(t, ok)
		_, ok = idx.Lookup("")
		assert.False(t, ok)
	})

	t.Run("all entries accessible", func(t *testing.T) {
		t.Parallel()
		for _, want := range hdrs {
			h, ok := idx.Lookup(want.Name)
			require.True(t, ok, "expected to find entry %q", want.Name)
			assert.Equal(t, want.Offset, h.Offset, "entry %q offset mismatch", want.Name)
		}
	})
}

func TestIndexDuplicateNames(t *testing.T) {
	t.Parallel()

	hdrs := []ustar.Header{
		{Name: "config", Offset: 0, Size: 1},
		{Name: "other", Offset: 1024},
		{Name: "config", Offset: 1536, Size: 2},
	}
	idx := mustLoadIndex(t, Build(hdrs))

	h, ok := idx.Lookup("config")
	require.True(t, ok)
	assert.Equal(t, int64(1536), h.Offset, "later entries shadow earlier ones")
	assert.Equal(t, []string{"config", "config", "other"}, collectNames(idx.Entries()))
}

func TestIndexEntriesWithPrefix(t *testing.T) {
	t.Parallel()

	hdrs := []ustar.Header{
		{Name: "assets/css/main.css"},
		{Name: "assets/css/reset.css"},
		{Name: "assets/images/logo.png"},
		{Name: "assets/images/banner.png"},
		{Name: "src/main.go"},
		{Name: "src/util/helper.go"},
	}
	idx := mustLoadIndex(t, Build(hdrs))

	tests := []struct {
		name     string
		prefix   string
		expected []string
	}{
		{
			name:     "assets directory",
			prefix:   "assets/",
			expected: []string{"assets/css/main.css", "assets/css/reset.css", "assets/images/banner.png", "assets/images/logo.png"},
		},
		{
			name:     "assets/css subdirectory",
			prefix:   "assets/css/",
			expected: []string{"assets/css/main.css", "assets/css/reset.css"},
		},
		{
			name:     "src directory",
			prefix:   "src/",
			expected: []string{"src/main.go", "src/util/helper.go"},
		},
		{
			name:     "nonexistent directory",
			prefix:   "nonexistent/",
			expected: []string{},
		},
		{
			name:     "empty prefix matches all",
			prefix:   "",
			expected: []string{"assets/css/main.css", "assets/css/reset.css", "assets/images/banner.png", "assets/images/logo.png", "src/main.go", "src/util/helper.go"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, collectNames(idx.EntriesWithPrefix(tc.prefix)))
		})
	}
}

func TestIndexEarlyStop(t *testing.T) {
	t.Parallel()

	idx := mustLoadIndex(t, Build([]ustar.Header{{Name: "a"}, {Name: "b"}, {Name: "c"}}))

	var got []string
	for h := range idx.Entries() {
		got = append(got, h.Name)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestBuildArchive(t *testing.T) {
	t.Parallel()

	archive := testutil.BuildArchive(t, []testutil.TestEntry{
		{Name: "z.txt", Data: []byte("zzz")},
		{Name: "a.txt", Data: []byte("aaaa"), UID: 1000},
	}, true)
	d := digest.FromBytes(archive)

	data, err := BuildArchive(archive, WithArchiveDigest(d))
	require.NoError(t, err)
	idx := mustLoadIndex(t, data)

	assert.Equal(t, int64(len(archive)), idx.ArchiveSize())
	assert.Equal(t, d, idx.ArchiveDigest())
	assert.Equal(t, []string{"a.txt", "z.txt"}, collectNames(idx.Entries()))

	h, ok := idx.Lookup("a.txt")
	require.True(t, ok)
	assert.Equal(t, int64(1024), h.Offset)
	assert.Equal(t, uint64(4), h.Size)
	assert.Equal(t, uint64(1000), h.UID)

	// The recorded offset decodes to the same header.
	direct, err := ustar.Decode(archive, h.Offset)
	require.NoError(t, err)
	assert.Equal(t, direct, h)
}

func TestBuildArchiveFailure(t *testing.T) {
	t.Parallel()

	archive := testutil.BuildArchive(t, []testutil.TestEntry{{Name: "a.txt"}}, false)
	_, err := BuildArchive(archive)
	assert.ErrorIs(t, err, ustar.ErrTruncated)
}

func TestBuildWithoutDigest(t *testing.T) {
	t.Parallel()

	idx := mustLoadIndex(t, Build([]ustar.Header{{Name: "a"}}))
	assert.Equal(t, digest.Digest(""), idx.ArchiveDigest())
	assert.Equal(t, int64(0), idx.ArchiveSize())
}
