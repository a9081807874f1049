package index

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"slices"
	"sort"
	"strings"

	flatbuffers "github.com/google/flatbuffers/go"
	"github.com/opencontainers/go-digest"

	"github.com/meigma/ustar"
	"github.com/meigma/ustar/internal/fb"
)

// Version is the index format version written by Build.
const Version = 1

// ErrInvalidIndex is returned when index data cannot be parsed.
var ErrInvalidIndex = errors.New("ustar: invalid index")

// Index provides name lookups over the headers of one archive.
//
// Index is backed by FlatBuffers and provides O(log n) lookups by name.
type Index struct {
	data []byte
	root *fb.Index
}

// Build serializes hdrs to the FlatBuffers index format.
//
// hdrs is not modified. Entries with equal names keep their archive order.
func Build(hdrs []ustar.Header, opts ...Option) []byte {
	cfg := buildConfig{}
	for _, opt := range opts {
		opt(&cfg)
	}

	sorted := slices.Clone(hdrs)
	slices.SortStableFunc(sorted, func(a, b ustar.Header) int {
		return strings.Compare(a.Name, b.Name)
	})

	builder := flatbuffers.NewBuilder(1024)

	// Build entries in reverse order (FlatBuffers requirement)
	entryOffsets := make([]flatbuffers.UOffsetT, len(sorted))
	for i := len(sorted) - 1; i >= 0; i-- {
		h := sorted[i]

		nameOffset := builder.CreateString(h.Name)
		unameOffset := builder.CreateString(h.Uname)
		gnameOffset := builder.CreateString(h.Gname)

		fb.EntryStart(builder)
		fb.EntryAddName(builder, nameOffset)
		fb.EntryAddUname(builder, unameOffset)
		fb.EntryAddGname(builder, gnameOffset)
		fb.EntryAddOffset(builder, h.Offset)
		fb.EntryAddSize(builder, h.Size)
		fb.EntryAddUid(builder, h.UID)
		fb.EntryAddGid(builder, h.GID)
		fb.EntryAddMtime(builder, h.ModTime)
		fb.EntryAddTypeflag(builder, h.Typeflag)
		entryOffsets[i] = fb.EntryEnd(builder)
	}

	fb.IndexStartEntriesVector(builder, len(sorted))
	for i := len(entryOffsets) - 1; i >= 0; i-- {
		builder.PrependUOffsetT(entryOffsets[i])
	}
	entriesOffset := builder.EndVector(len(sorted))

	var digestOffset flatbuffers.UOffsetT
	if cfg.archiveDigest != "" {
		digestOffset = builder.CreateString(cfg.archiveDigest.String())
	}

	fb.IndexStart(builder)
	fb.IndexAddVersion(builder, Version)
	fb.IndexAddArchiveSize(builder, cfg.archiveSize)
	if digestOffset != 0 {
		fb.IndexAddArchiveDigest(builder, digestOffset)
	}
	fb.IndexAddEntries(builder, entriesOffset)
	indexOffset := fb.IndexEnd(builder)

	builder.Finish(indexOffset)
	return builder.FinishedBytes()
}

// BuildArchive decodes every header in archive and serializes them.
//
// The archive size is recorded automatically. Decode failures are returned
// unchanged and no index is produced.
func BuildArchive(archive []byte, opts ...Option) ([]byte, error) {
	hdrs, err := ustar.Headers(archive)
	if err != nil {
		return nil, fmt.Errorf("read archive headers: %w", err)
	}
	opts = append([]Option{WithArchiveSize(int64(len(archive)))}, opts...)
	return Build(hdrs, opts...), nil
}

// Load parses a FlatBuffers-encoded index.
//
// The provided data is retained by the index; callers must not modify it
// after calling Load. Load visits every entry once, so corrupt data is
// reported as ErrInvalidIndex here rather than surfacing in later lookups.
func Load(data []byte) (idx *Index, err error) {
	defer func() {
		if r := recover(); r != nil {
			idx = nil
			err = fmt.Errorf("%w: %v", ErrInvalidIndex, r)
		}
	}()
	if len(data) < flatbuffers.SizeUOffsetT {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidIndex, len(data))
	}
	if int(flatbuffers.GetUOffsetT(data)) >= len(data) {
		return nil, fmt.Errorf("%w: root offset out of range", ErrInvalidIndex)
	}

	root := fb.GetRootAsIndex(data, 0)
	if v := root.Version(); v != Version {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrInvalidIndex, v)
	}
	_ = root.ArchiveDigest()

	var e fb.Entry
	for i := range root.EntriesLength() {
		if !root.Entries(&e, i) {
			return nil, fmt.Errorf("%w: missing entry %d", ErrInvalidIndex, i)
		}
		_ = headerFromEntry(&e)
	}

	return &Index{
		data: data,
		root: root,
	}, nil
}

// Version returns the format version of the index.
func (idx *Index) Version() uint32 {
	return idx.root.Version()
}

// ArchiveSize returns the byte length of the indexed archive, or 0 if unknown.
func (idx *Index) ArchiveSize() int64 {
	return idx.root.ArchiveSize()
}

// ArchiveDigest returns the digest of the indexed archive, or "" if none was recorded.
func (idx *Index) ArchiveDigest() digest.Digest {
	return digest.Digest(idx.root.ArchiveDigest())
}

// Len returns the number of entries in the index.
func (idx *Index) Len() int {
	return idx.root.EntriesLength()
}

// Lookup returns the header recorded for name.
//
// If the archive held several entries named name, the last one is returned.
func (idx *Index) Lookup(name string) (ustar.Header, bool) {
	key := []byte(name)
	n := idx.Len()

	// First entry sorting after name; the match, if any, is just before it.
	i := sort.Search(n, func(i int) bool {
		var e fb.Entry
		if !idx.root.Entries(&e, i) {
			return false
		}
		return bytes.Compare(e.Name(), key) > 0
	})
	if i == 0 {
		return ustar.Header{}, false
	}

	var e fb.Entry
	if !idx.root.Entries(&e, i-1) || !bytes.Equal(e.Name(), key) {
		return ustar.Header{}, false
	}
	return headerFromEntry(&e), true
}

// Entries returns an iterator over all entries in name-sorted order.
func (idx *Index) Entries() iter.Seq[ustar.Header] {
	return func(yield func(ustar.Header) bool) {
		var e fb.Entry
		for i := range idx.Len() {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !yield(headerFromEntry(&e)) {
				return
			}
		}
	}
}

// EntriesWithPrefix returns an iterator over entries whose names begin with
// prefix, in name-sorted order.
func (idx *Index) EntriesWithPrefix(prefix string) iter.Seq[ustar.Header] {
	return func(yield func(ustar.Header) bool) {
		n := idx.Len()
		if n == 0 {
			return
		}
		prefixBytes := []byte(prefix)

		start := sort.Search(n, func(i int) bool {
			var e fb.Entry
			if !idx.root.Entries(&e, i) {
				return false
			}
			return bytes.Compare(e.Name(), prefixBytes) >= 0
		})

		var e fb.Entry
		for i := start; i < n; i++ {
			if !idx.root.Entries(&e, i) {
				return
			}
			if !bytes.HasPrefix(e.Name(), prefixBytes) {
				return
			}
			if !yield(headerFromEntry(&e)) {
				return
			}
		}
	}
}

func headerFromEntry(e *fb.Entry) ustar.Header {
	return ustar.Header{
		Name:     string(e.Name()),
		Uname:    string(e.Uname()),
		Gname:    string(e.Gname()),
		UID:      e.Uid(),
		GID:      e.Gid(),
		ModTime:  e.Mtime(),
		Size:     e.Size(),
		Typeflag: e.Typeflag(),
		Offset:   e.Offset(),
	}
}
